package analyzer

import (
	"fmt"

	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/symbols"
)

// fnPlacement carries how a function declaration binds its symbol when
// it is the RHS of an initialization: the continuation places the symbol
// and the function inherits the LHS name and location.
type fnPlacement struct {
	cont     placement
	name     string
	location srcrange.Range
}

func (a *analysis) functionDeclaration(n *ast.FunctionDeclaration, fp fnPlacement) {
	ft := symbols.NewFunctionType()
	name, loc := a.functionName(n, fp)

	start := loc.Start
	if n.Loc.Start < start {
		start = n.Loc.Start
	}
	fsym := &symbols.Symbol{
		Name:     name,
		Location: loc,
		Range:    srcrange.New(start, n.Loc.End),
		IsLocal:  n.IsLocal,
		URI:      a.uri,
		Kind:     symbols.FunctionSymbol,
		Type:     ft,
		State:    a.state,
	}

	var parent *symbols.Symbol // receiver table for method syntax
	methodIndexer := ""
	_, plainName := n.Identifier.(*ast.Identifier)

	switch {
	case n.IsLocal || plainName:
		// `local foo; function foo() end` assigns to the earlier local:
		// the declaration is retargeted in place so exactly one symbol
		// survives, carrying the function's identity.
		prior := a.stack.Search(func(s *symbols.Symbol) bool {
			return s.Name == name && s.IsLocal && s.VisibleAt(n.Loc.Start)
		})
		switch {
		case prior != nil:
			prior.Location = loc
			prior.Range = fsym.Range
			prior.Scope = srcrange.Of(loc, a.stack.Current())
			prior.Kind = symbols.FunctionSymbol
			prior.Type = ft
			fsym = prior
		case n.IsLocal:
			fsym.Scope = srcrange.Of(loc, a.stack.Current())
			a.stack.Push(fsym)
			a.addToOwner(fsym)
		default:
			// Plain global function.
			fsym.Scope = symbols.VirtualRange
			if a.mtype.ModuleMode {
				fsym.Scope = a.docRange()
				a.mtype.Set(name, fsym, false)
			} else {
				a.mtype.Menv.Globals[name] = fsym
				a.env.SetDocGlobal(a.uri, name, fsym)
			}
			a.addToOwner(fsym)
		}
	case fp.cont != nil:
		fp.cont(fsym)
	default:
		member, ok := n.Identifier.(*ast.MemberExpression)
		if !ok {
			break // anonymous function expression: no placement
		}
		base := a.resolveChain(member.Base)
		if base == nil {
			break
		}
		t := a.ensureTable(base)
		if t == nil {
			break
		}
		if base.Kind == symbols.TableSymbol || base.Kind == symbols.VariableSymbol {
			base.Kind = symbols.ClassSymbol
		}
		fsym.Scope = a.docRange()
		existed := t.Get(name) != nil
		t.Set(name, fsym, true)
		if !existed {
			base.AddChild(fsym)
		}
		parent = base
		methodIndexer = member.Indexer
	}

	a.stack.Enter(n.Loc)

	// Colon methods get an implicit self at slot 0, typed as the
	// receiver; the formals shift right by one.
	offset := 0
	var selfSym *symbols.Symbol
	if parent != nil && methodIndexer == ":" {
		selfSym = &symbols.Symbol{
			Name:     "self",
			Location: loc,
			Range:    loc,
			Scope:    srcrange.Of(loc, a.stack.Current()),
			IsLocal:  true,
			URI:      a.uri,
			Kind:     symbols.ParameterSymbol,
			Type:     parent.Type,
			State:    a.state,
		}
		ft.SetParam(0, selfSym)
		offset = 1
	}
	for i, param := range n.Parameters {
		id, ok := param.(*ast.Identifier)
		if !ok {
			continue // vararg
		}
		ps := &symbols.Symbol{
			Name:     id.Name,
			Location: id.Loc,
			Range:    id.Loc,
			Scope:    srcrange.Of(id.Loc, a.stack.Current()),
			IsLocal:  true,
			URI:      a.uri,
			Kind:     symbols.ParameterSymbol,
			Type:     symbols.Any,
			State:    a.state,
		}
		ft.SetParam(i+offset, ps)
		a.stack.Push(ps)
	}
	if selfSym != nil {
		a.stack.Push(selfSym)
	}

	a.funcs = append(a.funcs, a.current)
	a.current = fsym
	a.walkBody(n.Body)
	a.current = a.funcs[len(a.funcs)-1]
	a.funcs = a.funcs[:len(a.funcs)-1]
	a.stack.Exit(n.Loc.End)
}

// functionName resolves the declared name and its location. Anonymous
// functions get a synthesized name that cannot collide with user code.
func (a *analysis) functionName(n *ast.FunctionDeclaration, fp fnPlacement) (string, srcrange.Range) {
	if fp.cont != nil {
		return fp.name, fp.location
	}
	switch id := n.Identifier.(type) {
	case *ast.Identifier:
		return id.Name, id.Loc
	case *ast.MemberExpression:
		if id.Identifier != nil {
			return id.Identifier.Name, id.Identifier.Loc
		}
	}
	return fmt.Sprintf("@fn%d", n.Loc.Start), n.Loc
}
