package lexer

import "github.com/isshe/luacoderassist/internal/pipeline"

type Processor struct{}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	ctx.Tokens = Tokenize(ctx.Source)
	return ctx
}
