package parser

import (
	"strconv"
	"strings"

	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/token"
)

// Lua operator precedence. Concat and exponentiation are right
// associative; unary operators bind at unaryPriority.
const unaryPriority = 8

type opPriority struct {
	left  int
	right int
}

var binaryPriority = map[token.Type]opPriority{
	token.Or:      {1, 1},
	token.And:     {2, 2},
	token.Lt:      {3, 3},
	token.Gt:      {3, 3},
	token.Le:      {3, 3},
	token.Ge:      {3, 3},
	token.Neq:     {3, 3},
	token.Eq:      {3, 3},
	token.Concat:  {5, 4},
	token.Plus:    {6, 6},
	token.Minus:   {6, 6},
	token.Star:    {7, 7},
	token.Slash:   {7, 7},
	token.Percent: {7, 7},
	token.Caret:   {10, 9},
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseSubExpression(0)
}

func (p *Parser) parseExpressionList() []ast.Expression {
	var list []ast.Expression
	if e := p.parseExpression(); e != nil {
		list = append(list, e)
	}
	for p.accept(token.Comma) {
		if e := p.parseExpression(); e != nil {
			list = append(list, e)
		}
	}
	return list
}

func (p *Parser) parseSubExpression(limit int) ast.Expression {
	start := p.cur().Pos
	var left ast.Expression
	switch p.cur().Type {
	case token.Not, token.Minus, token.Hash:
		op := p.cur().Lexeme
		p.next()
		arg := p.parseSubExpression(unaryPriority)
		if arg == nil {
			return nil
		}
		left = &ast.UnaryExpression{Operator: op, Argument: arg, Loc: srcrange.New(start, p.prevEnd)}
	default:
		left = p.parseSimpleExpression()
	}
	if left == nil {
		return nil
	}
	for {
		prio, ok := binaryPriority[p.cur().Type]
		if !ok || prio.left <= limit {
			return left
		}
		opTok := p.cur()
		p.next()
		right := p.parseSubExpression(prio.right)
		if right == nil {
			return left
		}
		loc := srcrange.New(left.Range().Start, p.prevEnd)
		if opTok.Type == token.And || opTok.Type == token.Or {
			left = &ast.LogicalExpression{Operator: opTok.Lexeme, Left: left, Right: right, Loc: loc}
		} else {
			left = &ast.BinaryExpression{Operator: opTok.Lexeme, Left: left, Right: right, Loc: loc}
		}
	}
}

func (p *Parser) parseSimpleExpression() ast.Expression {
	tok := p.cur()
	loc := srcrange.New(tok.Pos, tok.End)
	switch tok.Type {
	case token.Nil:
		p.next()
		return &ast.NilLiteral{Loc: loc}
	case token.True:
		p.next()
		return &ast.BooleanLiteral{Value: true, Loc: loc}
	case token.False:
		p.next()
		return &ast.BooleanLiteral{Value: false, Loc: loc}
	case token.Number:
		p.next()
		return &ast.NumericLiteral{Value: parseNumber(tok.Lexeme), Raw: tok.Lexeme, Loc: loc}
	case token.String:
		p.next()
		return &ast.StringLiteral{Value: tok.Literal, Raw: tok.Lexeme, Loc: loc}
	case token.Vararg:
		p.next()
		return &ast.VarargLiteral{Loc: loc}
	case token.Function:
		start := tok.Pos
		p.next()
		return p.parseFunctionBody(nil, false, start)
	case token.LBrace:
		return p.parseTableConstructor()
	default:
		return p.parseSuffixedExpression()
	}
}

func (p *Parser) parsePrimaryExpression() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.Name:
		p.next()
		return &ast.Identifier{Name: tok.Lexeme, Loc: srcrange.New(tok.Pos, tok.End)}
	case token.LParen:
		p.next()
		expr := p.parseExpression()
		p.expect(token.RParen)
		return expr
	default:
		return nil
	}
}

func (p *Parser) parseSuffixedExpression() ast.Expression {
	expr := p.parsePrimaryExpression()
	if expr == nil {
		return nil
	}
	for {
		start := expr.Range().Start
		switch p.cur().Type {
		case token.Dot:
			p.next()
			name := p.expectName()
			if name == nil {
				return expr
			}
			expr = &ast.MemberExpression{Base: expr, Indexer: ".", Identifier: name, Loc: srcrange.New(start, p.prevEnd)}
		case token.Colon:
			p.next()
			name := p.expectName()
			if name == nil {
				return expr
			}
			expr = &ast.MemberExpression{Base: expr, Indexer: ":", Identifier: name, Loc: srcrange.New(start, p.prevEnd)}
		case token.LBracket:
			p.next()
			index := p.parseExpression()
			p.expect(token.RBracket)
			expr = &ast.IndexExpression{Base: expr, Index: index, Loc: srcrange.New(start, p.prevEnd)}
		case token.LParen:
			p.next()
			var args []ast.Expression
			if !p.check(token.RParen) {
				args = p.parseExpressionList()
			}
			p.expect(token.RParen)
			expr = &ast.CallExpression{Base: expr, Arguments: args, Loc: srcrange.New(start, p.prevEnd)}
		case token.String:
			tok := p.cur()
			p.next()
			arg := &ast.StringLiteral{Value: tok.Literal, Raw: tok.Lexeme, Loc: srcrange.New(tok.Pos, tok.End)}
			expr = &ast.StringCallExpression{Base: expr, Argument: arg, Loc: srcrange.New(start, p.prevEnd)}
		case token.LBrace:
			arg := p.parseTableConstructor()
			tc, ok := arg.(*ast.TableConstructorExpression)
			if !ok {
				return expr
			}
			expr = &ast.TableCallExpression{Base: expr, Argument: tc, Loc: srcrange.New(start, p.prevEnd)}
		default:
			return expr
		}
	}
}

func (p *Parser) parseTableConstructor() ast.Expression {
	start := p.cur().Pos
	p.expect(token.LBrace)
	var fields []ast.TableField
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		switch {
		case p.check(token.LBracket):
			fstart := p.cur().Pos
			p.next()
			key := p.parseExpression()
			p.expect(token.RBracket)
			p.expect(token.Assign)
			value := p.parseExpression()
			fields = append(fields, &ast.TableKey{Key: key, Value: value, Loc: srcrange.New(fstart, p.prevEnd)})
		case p.check(token.Name) && p.peek().Type == token.Assign:
			key := p.expectName()
			p.next() // =
			value := p.parseExpression()
			if key != nil {
				fields = append(fields, &ast.TableKeyString{Key: key, Value: value, Loc: srcrange.New(key.Loc.Start, p.prevEnd)})
			}
		default:
			fstart := p.cur().Pos
			value := p.parseExpression()
			if value == nil {
				p.errorNear("'}' expected")
				p.synchronize()
				return &ast.TableConstructorExpression{Fields: fields, Loc: srcrange.New(start, p.prevEnd)}
			}
			fields = append(fields, &ast.TableValue{Value: value, Loc: srcrange.New(fstart, p.prevEnd)})
		}
		if !p.accept(token.Comma) && !p.accept(token.Semicolon) {
			break
		}
	}
	p.expect(token.RBrace)
	return &ast.TableConstructorExpression{Fields: fields, Loc: srcrange.New(start, p.prevEnd)}
}

// parseNumber converts a Lua numeric literal to a float. Hex literals
// without a binary exponent are parsed as integers.
func parseNumber(raw string) float64 {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "0x") && !strings.ContainsAny(lower, "p.") {
		if v, err := strconv.ParseUint(lower[2:], 16, 64); err == nil {
			return float64(v)
		}
		return 0
	}
	if v, err := strconv.ParseFloat(lower, 64); err == nil {
		return v
	}
	return 0
}
