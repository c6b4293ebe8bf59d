// Package parser builds a parse tree from a Lua token stream.
//
// The parser is error-tolerant: syntax errors are recorded as positioned
// diagnostics and parsing resynchronizes at the next statement boundary,
// so a partial chunk is produced even for broken documents. Every node
// carries byte-offset ranges.
package parser

import (
	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/diagnostics"
	"github.com/isshe/luacoderassist/internal/lexer"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/token"
)

type Parser struct {
	tokens  []token.Token
	pos     int
	prevEnd int // byte end of the previously consumed token
	errors  []*diagnostics.Error
}

// New creates a parser over a token stream. The stream must be terminated
// by an EOF token, as produced by lexer.Tokenize.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 {
		tokens = []token.Token{{Type: token.EOF}}
	}
	return &Parser{tokens: tokens}
}

// Parse lexes and parses a whole source document.
func Parse(source string) (*ast.Chunk, []*diagnostics.Error) {
	p := New(lexer.Tokenize(source))
	chunk := p.ParseChunk(len(source))
	return chunk, p.Errors()
}

// ParseChunk parses the token stream as a top-level chunk. sourceLen is
// the document length in bytes, used for the chunk range.
func (p *Parser) ParseChunk(sourceLen int) *ast.Chunk {
	body := p.parseBlock()
	for p.cur().Type != token.EOF {
		// Trailing garbage after the block, e.g. a stray `end`.
		p.errorNear("'<eof>' expected")
		p.next()
		body = append(body, p.parseBlock()...)
	}
	return &ast.Chunk{Body: body, Loc: srcrange.New(0, sourceLen)}
}

func (p *Parser) Errors() []*diagnostics.Error {
	return p.errors
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) next() {
	p.prevEnd = p.cur().End
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) check(t token.Type) bool {
	return p.cur().Type == t
}

func (p *Parser) accept(t token.Type) bool {
	if p.check(t) {
		p.next()
		return true
	}
	return false
}

// expect consumes a token of the given type or records a diagnostic and
// leaves the stream untouched.
func (p *Parser) expect(t token.Type) bool {
	if p.accept(t) {
		return true
	}
	p.errorNear("'" + t.String() + "' expected")
	return false
}

func (p *Parser) expectName() *ast.Identifier {
	tok := p.cur()
	if tok.Type != token.Name {
		p.errorNear("<name> expected")
		return nil
	}
	p.next()
	return &ast.Identifier{Name: tok.Lexeme, Loc: srcrange.New(tok.Pos, tok.End)}
}

func (p *Parser) errorNear(message string) {
	tok := p.cur()
	near := tok.Lexeme
	if tok.Type == token.EOF {
		near = "<eof>"
	}
	p.errors = append(p.errors, diagnostics.NewError("P001", tok, message+" near '"+near+"'"))
}

// synchronize skips tokens until something that can plausibly start or
// follow a statement, guaranteeing progress.
func (p *Parser) synchronize() {
	p.next()
	for {
		switch p.cur().Type {
		case token.EOF, token.If, token.While, token.Do, token.For, token.Repeat,
			token.Function, token.Local, token.Return, token.Break, token.Goto,
			token.Semicolon, token.End, token.Else, token.Elseif, token.Until:
			return
		}
		p.next()
	}
}

// blockFollow reports whether t terminates a block body.
func blockFollow(t token.Type) bool {
	switch t {
	case token.EOF, token.End, token.Else, token.Elseif, token.Until:
		return true
	}
	return false
}
