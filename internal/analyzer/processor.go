package analyzer

import (
	"github.com/isshe/luacoderassist/internal/pipeline"
	"github.com/isshe/luacoderassist/internal/symbols"
)

type Processor struct{}

func (ap *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	env := ctx.Env
	if env == nil {
		env = symbols.Global()
	}
	ctx.Module = Walk(env, ctx.Chunk, len(ctx.Source), ctx.URI)
	return ctx
}
