// Package pipeline chains the lexer, parser and analyzer stages that
// turn one document into a module symbol.
package pipeline

import (
	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/diagnostics"
	"github.com/isshe/luacoderassist/internal/symbols"
	"github.com/isshe/luacoderassist/internal/token"
)

// Context carries one document through the stages. Each stage fills the
// fields it owns and appends diagnostics; later stages run even when
// earlier ones errored so hosts get both parse errors and a best-effort
// symbol model.
type Context struct {
	Source string
	URI    string
	Env    *symbols.Environment // nil selects the process-wide environment

	Tokens []token.Token
	Chunk  *ast.Chunk
	Module *symbols.Symbol
	Errors []*diagnostics.Error
}

func NewContext(source, uri string) *Context {
	return &Context{Source: source, URI: uri}
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
