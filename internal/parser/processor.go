package parser

import (
	"github.com/isshe/luacoderassist/internal/diagnostics"
	"github.com/isshe/luacoderassist/internal/pipeline"
	"github.com/isshe/luacoderassist/internal/token"
)

type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Tokens == nil {
		// Should not happen when the lexer runs first, but as a safeguard:
		err := diagnostics.NewError("P000", token.Token{}, "parser: token stream is nil")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	p := New(ctx.Tokens)
	ctx.Chunk = p.ParseChunk(len(ctx.Source))
	ctx.Errors = append(ctx.Errors, p.Errors()...)

	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.URI
		}
	}
	return ctx
}
