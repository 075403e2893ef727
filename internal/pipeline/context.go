package pipeline

import (
	"github.com/ricardopieper/pony-lang/internal/analyzer"
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
	"github.com/ricardopieper/pony-lang/internal/dispatch"
	"github.com/ricardopieper/pony-lang/internal/vm"
)

// Context carries everything produced so far through the stages. Stages
// fill their slot and read what upstream stages left; a nil slot means the
// producing stage did not run or bailed on existing errors.
type Context struct {
	SourcePath string
	Program    *ast.Program

	Diags *diagnostics.List

	Analysis *analyzer.Result
	Tables   *dispatch.Set
	Image    *vm.Image

	// FatalErr is an infrastructure failure (unreadable input, encode
	// failure), distinct from user diagnostics.
	FatalErr error
}

func NewContext(sourcePath string) *Context {
	return &Context{
		SourcePath: sourcePath,
		Diags:      diagnostics.NewList(),
	}
}

// Failed reports whether anything went wrong, user-level or otherwise.
func (c *Context) Failed() bool {
	return c.FatalErr != nil || c.Diags.HasErrors()
}
