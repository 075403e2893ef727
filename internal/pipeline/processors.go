package pipeline

import (
	"fmt"
	"os"

	"github.com/ricardopieper/pony-lang/internal/analyzer"
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/dispatch"
	"github.com/ricardopieper/pony-lang/internal/vm"
)

// DecodeProcessor reads the front end's declaration tree from SourcePath.
type DecodeProcessor struct{}

func (DecodeProcessor) Name() string { return "decode" }

func (DecodeProcessor) Process(ctx *Context) *Context {
	f, err := os.Open(ctx.SourcePath)
	if err != nil {
		ctx.FatalErr = fmt.Errorf("open %s: %w", ctx.SourcePath, err)
		return ctx
	}
	defer f.Close()

	program, err := ast.DecodeProgram(f)
	if err != nil {
		ctx.FatalErr = fmt.Errorf("decode %s: %w", ctx.SourcePath, err)
		return ctx
	}
	if program.File == "" {
		program.File = ctx.SourcePath
	}
	ctx.Program = program
	return ctx
}

// AnalyzeProcessor runs semantic analysis, collecting every diagnostic.
type AnalyzeProcessor struct{}

func (AnalyzeProcessor) Name() string { return "analyze" }

func (AnalyzeProcessor) Process(ctx *Context) *Context {
	if ctx.Program == nil {
		return ctx
	}
	ctx.Analysis = analyzer.New(ctx.Diags).Analyze(ctx.Program)
	return ctx
}

// DispatchProcessor builds the immutable dispatch-table set from validated
// impls. It runs even with body-level errors present since the tables only
// depend on declarations, which is what inspection tooling wants.
type DispatchProcessor struct{}

func (DispatchProcessor) Name() string { return "dispatch" }

func (DispatchProcessor) Process(ctx *Context) *Context {
	if ctx.Analysis == nil {
		return ctx
	}
	ctx.Tables = dispatch.Build(ctx.Analysis.Table)
	return ctx
}

// CompileProcessor lowers the program to bytecode. It requires a clean
// diagnostics list: the compiler trusts analysis completely.
type CompileProcessor struct{}

func (CompileProcessor) Name() string { return "compile" }

func (CompileProcessor) Process(ctx *Context) *Context {
	if ctx.Failed() || ctx.Analysis == nil || ctx.Tables == nil {
		return ctx
	}
	img, err := vm.Compile(ctx.Analysis, ctx.Tables)
	if err != nil {
		ctx.FatalErr = err
		return ctx
	}
	ctx.Image = img
	return ctx
}
