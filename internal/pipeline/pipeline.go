// Package pipeline sequences the compilation stages: decode, analyze,
// dispatch-table construction, bytecode lowering. Each stage is a Processor
// over a shared context.
package pipeline

import (
	"go.uber.org/zap"
)

// Processor is one compilation stage.
type Processor interface {
	Name() string
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
	log        *zap.Logger
}

func New(log *zap.Logger, processors ...Processor) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{processors: processors, log: log}
}

// Run executes the pipeline. Stages keep running after upstream errors so
// one invocation collects every diagnostic it can; stages that need clean
// input check the diagnostics list themselves.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		before := ctx.Diags.Len()
		ctx = processor.Process(ctx)
		p.log.Debug("stage finished",
			zap.String("stage", processor.Name()),
			zap.Int("new_diagnostics", ctx.Diags.Len()-before))
	}
	return ctx
}
