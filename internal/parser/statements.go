package parser

import (
	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/token"
)

func (p *Parser) parseBlock() []ast.Statement {
	var body []ast.Statement
	for !blockFollow(p.cur().Type) {
		if p.check(token.Return) {
			body = append(body, p.parseReturn())
			break
		}
		if stmt := p.parseStatement(); stmt != nil {
			body = append(body, stmt)
		}
	}
	return body
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.Semicolon:
		p.next()
		return nil
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.Do:
		return p.parseDo()
	case token.For:
		return p.parseFor()
	case token.Repeat:
		return p.parseRepeat()
	case token.Function:
		return p.parseFunctionStatement()
	case token.Local:
		return p.parseLocal()
	case token.Break:
		tok := p.cur()
		p.next()
		return &ast.BreakStatement{Loc: srcrange.New(tok.Pos, tok.End)}
	case token.Goto:
		start := p.cur().Pos
		p.next()
		label := p.expectName()
		return &ast.GotoStatement{Label: label, Loc: srcrange.New(start, p.prevEnd)}
	case token.DoubleColon:
		start := p.cur().Pos
		p.next()
		name := p.expectName()
		p.expect(token.DoubleColon)
		return &ast.LabelStatement{Name: name, Loc: srcrange.New(start, p.prevEnd)}
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseIf() ast.Statement {
	start := p.cur().Pos
	p.next()
	cond := p.parseExpression()
	p.expect(token.Then)
	body := p.parseBlock()
	clauses := []ast.Clause{
		&ast.IfClause{Condition: cond, Body: body, Loc: srcrange.New(start, p.prevEnd)},
	}
	for p.check(token.Elseif) {
		cstart := p.cur().Pos
		p.next()
		cond := p.parseExpression()
		p.expect(token.Then)
		body := p.parseBlock()
		clauses = append(clauses, &ast.ElseifClause{Condition: cond, Body: body, Loc: srcrange.New(cstart, p.prevEnd)})
	}
	if p.check(token.Else) {
		cstart := p.cur().Pos
		p.next()
		body := p.parseBlock()
		clauses = append(clauses, &ast.ElseClause{Body: body, Loc: srcrange.New(cstart, p.prevEnd)})
	}
	p.expect(token.End)
	return &ast.IfStatement{Clauses: clauses, Loc: srcrange.New(start, p.prevEnd)}
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.cur().Pos
	p.next()
	cond := p.parseExpression()
	p.expect(token.Do)
	body := p.parseBlock()
	p.expect(token.End)
	return &ast.WhileStatement{Condition: cond, Body: body, Loc: srcrange.New(start, p.prevEnd)}
}

func (p *Parser) parseDo() ast.Statement {
	start := p.cur().Pos
	p.next()
	body := p.parseBlock()
	p.expect(token.End)
	return &ast.DoStatement{Body: body, Loc: srcrange.New(start, p.prevEnd)}
}

func (p *Parser) parseRepeat() ast.Statement {
	start := p.cur().Pos
	p.next()
	body := p.parseBlock()
	p.expect(token.Until)
	cond := p.parseExpression()
	return &ast.RepeatStatement{Condition: cond, Body: body, Loc: srcrange.New(start, p.prevEnd)}
}

func (p *Parser) parseFor() ast.Statement {
	start := p.cur().Pos
	p.next()
	first := p.expectName()
	if first == nil {
		p.synchronize()
		return nil
	}
	if p.accept(token.Assign) {
		begin := p.parseExpression()
		p.expect(token.Comma)
		limit := p.parseExpression()
		var step ast.Expression
		if p.accept(token.Comma) {
			step = p.parseExpression()
		}
		p.expect(token.Do)
		body := p.parseBlock()
		p.expect(token.End)
		return &ast.ForNumericStatement{
			Variable: first, Start: begin, Limit: limit, Step: step,
			Body: body, Loc: srcrange.New(start, p.prevEnd),
		}
	}
	names := []*ast.Identifier{first}
	for p.accept(token.Comma) {
		if name := p.expectName(); name != nil {
			names = append(names, name)
		}
	}
	p.expect(token.In)
	iterators := p.parseExpressionList()
	p.expect(token.Do)
	body := p.parseBlock()
	p.expect(token.End)
	return &ast.ForGenericStatement{
		Variables: names, Iterators: iterators,
		Body: body, Loc: srcrange.New(start, p.prevEnd),
	}
}

func (p *Parser) parseLocal() ast.Statement {
	start := p.cur().Pos
	p.next()
	if p.check(token.Function) {
		p.next()
		name := p.expectName()
		var ident ast.Expression
		if name != nil {
			ident = name
		}
		return p.parseFunctionBody(ident, true, start)
	}
	var names []*ast.Identifier
	if name := p.expectName(); name != nil {
		names = append(names, name)
	} else {
		p.synchronize()
		return nil
	}
	for p.accept(token.Comma) {
		if name := p.expectName(); name != nil {
			names = append(names, name)
		}
	}
	var init []ast.Expression
	if p.accept(token.Assign) {
		init = p.parseExpressionList()
	}
	return &ast.LocalStatement{Variables: names, Init: init, Loc: srcrange.New(start, p.prevEnd)}
}

// parseFunctionStatement parses `function funcname funcbody`; funcname is
// Name {'.' Name} [':' Name].
func (p *Parser) parseFunctionStatement() ast.Statement {
	start := p.cur().Pos
	p.next()
	name := p.expectName()
	if name == nil {
		p.synchronize()
		return nil
	}
	var ident ast.Expression = name
	for p.check(token.Dot) || p.check(token.Colon) {
		indexer := "."
		if p.check(token.Colon) {
			indexer = ":"
		}
		p.next()
		member := p.expectName()
		if member == nil {
			break
		}
		ident = &ast.MemberExpression{
			Base: ident, Indexer: indexer, Identifier: member,
			Loc: srcrange.New(ident.Range().Start, member.Loc.End),
		}
		if indexer == ":" {
			break
		}
	}
	return p.parseFunctionBody(ident, false, start)
}

// parseFunctionBody parses the parameter list, body and closing `end`.
// start is the offset of the `function` (or `local`) keyword so the
// declaration range covers the whole definition.
func (p *Parser) parseFunctionBody(ident ast.Expression, isLocal bool, start int) *ast.FunctionDeclaration {
	var params []ast.Expression
	p.expect(token.LParen)
	for !p.check(token.RParen) && !p.check(token.EOF) {
		if p.check(token.Name) {
			name := p.expectName()
			params = append(params, name)
		} else if p.check(token.Vararg) {
			tok := p.cur()
			p.next()
			params = append(params, &ast.VarargLiteral{Loc: srcrange.New(tok.Pos, tok.End)})
		} else {
			p.errorNear("<name> expected")
			break
		}
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	body := p.parseBlock()
	p.expect(token.End)
	return &ast.FunctionDeclaration{
		Identifier: ident, IsLocal: isLocal, Parameters: params,
		Body: body, Loc: srcrange.New(start, p.prevEnd),
	}
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.cur().Pos
	p.next()
	var args []ast.Expression
	if !blockFollow(p.cur().Type) && !p.check(token.Semicolon) {
		args = p.parseExpressionList()
	}
	p.accept(token.Semicolon)
	return &ast.ReturnStatement{Arguments: args, Loc: srcrange.New(start, p.prevEnd)}
}

// parseExpressionStatement parses an assignment or a call statement,
// both of which begin with a suffixed expression.
func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.cur().Pos
	expr := p.parseSuffixedExpression()
	if expr == nil {
		p.errorNear("unexpected symbol")
		p.synchronize()
		return nil
	}
	if p.check(token.Assign) || p.check(token.Comma) {
		targets := []ast.Expression{expr}
		for p.accept(token.Comma) {
			if t := p.parseSuffixedExpression(); t != nil {
				targets = append(targets, t)
			}
		}
		p.expect(token.Assign)
		init := p.parseExpressionList()
		return &ast.AssignmentStatement{Variables: targets, Init: init, Loc: srcrange.New(start, p.prevEnd)}
	}
	switch expr.(type) {
	case *ast.CallExpression, *ast.StringCallExpression, *ast.TableCallExpression:
		return &ast.CallStatement{Expression: expr, Loc: srcrange.New(start, p.prevEnd)}
	}
	p.errorNear("syntax error")
	p.synchronize()
	return nil
}
