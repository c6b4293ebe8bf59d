package analyzer

import (
	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/symbols"
	"github.com/isshe/luacoderassist/internal/typequery"
)

// initCtx carries one binding of a multi-assignment: the RHS expression
// (nil when the left side outnumbers the right), the tuple index to
// select from a multi-value RHS, and the identity of the bound name.
type initCtx struct {
	init     ast.Expression
	index    int
	name     string
	location srcrange.Range
	isLocal  bool
}

// placement receives the constructed symbol and decides where it lives:
// the scope stack, a table field, the global environment, or an existing
// declaration patched in place.
type placement func(*symbols.Symbol)

func (a *analysis) localStatement(n *ast.LocalStatement) {
	var prevInit ast.Expression
	prevIndex := 0
	for i, variable := range n.Variables {
		var init ast.Expression
		index := 0
		if i < len(n.Init) {
			init = n.Init[i]
			prevInit, prevIndex = init, i
		} else {
			// Slots without their own RHS bind the last RHS expression at
			// increasing tuple positions, which models a trailing call
			// expanding to fill them.
			init = prevInit
			index = i - prevIndex
		}
		if variable == nil || variable.Name == "_" {
			continue
		}
		a.initStatement(initCtx{
			init:     init,
			index:    index,
			name:     variable.Name,
			location: variable.Loc,
			isLocal:  true,
		}, a.placeLocal)
	}
}

func (a *analysis) assignmentStatement(n *ast.AssignmentStatement) {
	var prevInit ast.Expression
	prevIndex := 0
	for i, target := range n.Variables {
		var init ast.Expression
		index := 0
		if i < len(n.Init) {
			init = n.Init[i]
			prevInit, prevIndex = init, i
		} else {
			init = prevInit
			index = i - prevIndex
		}
		switch target := target.(type) {
		case *ast.Identifier:
			if target.Name == "_" {
				continue
			}
			existing := a.mtype.Search(target.Name, target.Loc.Start)
			if existing == a.module {
				// The document's own module symbol is not a Lua variable.
				existing = nil
			}
			if existing != nil && existing.Valid() {
				if !symbols.IsAny(existing.Type) {
					// Re-assignment never re-types a declared symbol.
					continue
				}
				if existing.IsLocal {
					// `local x; x = 1` patches the declaration in place.
					a.initStatement(initCtx{init, index, target.Name, target.Loc, true}, func(s *symbols.Symbol) {
						existing.Type = s.Type
						if existing.Kind == symbols.VariableSymbol {
							existing.Kind = s.Kind
						}
					})
					continue
				}
			}
			a.initStatement(initCtx{init, index, target.Name, target.Loc, false}, a.placeGlobal)
		case *ast.MemberExpression:
			if target.Indexer != "." {
				continue
			}
			a.assignMember(target.Base, target.Identifier, init, index)
		case *ast.IndexExpression:
			if key, ok := target.Index.(*ast.StringLiteral); ok {
				a.assignMember(target.Base, &ast.Identifier{Name: key.Value, Loc: key.Loc}, init, index)
			}
		}
	}
}

// assignMember binds `base.field = init`. The base chain is resolved
// from the scope stack; any segment that is not a table aborts silently.
func (a *analysis) assignMember(base ast.Expression, field *ast.Identifier, init ast.Expression, index int) {
	if field == nil || field.Name == "" {
		return
	}
	baseSym := a.resolveChain(base)
	if baseSym == nil {
		return
	}
	t := a.ensureTable(baseSym)
	if t == nil {
		return
	}
	a.initStatement(initCtx{init, index, field.Name, field.Loc, false}, func(s *symbols.Symbol) {
		if s.Kind == symbols.VariableSymbol {
			s.Kind = symbols.PropertySymbol
		}
		s.Scope = a.docRange()
		existed := t.Get(field.Name) != nil
		t.Set(field.Name, s, true)
		if !existed {
			baseSym.AddChild(s)
		}
	})
}

// initStatement builds the symbol for one binding and hands it to the
// placement policy. Function and setmetatable initializers take over the
// construction themselves.
func (a *analysis) initStatement(c initCtx, place placement) {
	sym := &symbols.Symbol{
		Name:     c.name,
		Location: c.location,
		Range:    c.location,
		IsLocal:  c.isLocal,
		URI:      a.uri,
		Kind:     symbols.VariableSymbol,
		Type:     symbols.Any,
		State:    a.state,
	}
	if c.init != nil {
		end := c.init.Range().End
		if end < c.location.End {
			end = c.location.End
		}
		sym.Range = srcrange.New(c.location.Start, end)
	}

	switch init := c.init.(type) {
	case nil:
		place(sym)
	case *ast.TableConstructorExpression:
		sym.Kind = symbols.TableSymbol
		sym.Type = a.tableFromConstructor(init)
		place(sym)
	case *ast.FunctionDeclaration:
		a.functionDeclaration(init, fnPlacement{cont: place, name: c.name, location: c.location})
	case *ast.CallExpression:
		if isName(init.Base, "setmetatable") {
			a.setmetatableInit(init, c, place)
			return
		}
		// Walk the call once: a trailing-call RHS reaches here once per
		// filled LHS slot, and only the first slot owns the side effects.
		if c.index == 0 {
			a.walkNode(init)
		}
		sym.Type = symbols.NewLazyType(a.mtype, init, c.name, c.index)
		place(sym)
	case *ast.StringCallExpression, *ast.TableCallExpression:
		if c.index == 0 {
			a.walkNode(c.init)
		}
		sym.Type = symbols.NewLazyType(a.mtype, c.init, c.name, c.index)
		place(sym)
	case *ast.Identifier:
		if init.Name == c.name {
			// `local x = x` captures the outer x: a local copies its
			// current type, a global is asked of the type-query engine.
			if src := a.stack.SearchName(c.name, init.Loc.Start); src != nil && src.IsLocal {
				sym.Type = src.Type
			} else {
				sym.Type = typequery.GlobalType(a.env, c.name)
			}
			place(sym)
			return
		}
		sym.Type = symbols.NewLazyType(a.mtype, init, c.name, c.index)
		place(sym)
	default:
		sym.Type = symbols.NewLazyType(a.mtype, c.init, c.name, c.index)
		place(sym)
	}
}

// placeLocal pushes a declaration on the current scope frame, visible
// from its declaration site to the end of the enclosing block.
func (a *analysis) placeLocal(sym *symbols.Symbol) {
	sym.Scope = srcrange.Of(sym.Location, a.stack.Current())
	a.stack.Push(sym)
	a.addToOwner(sym)
}

// placeGlobal registers a genuinely new global: a module field in module
// mode, otherwise an entry in _G and the document's globals map.
func (a *analysis) placeGlobal(sym *symbols.Symbol) {
	sym.IsLocal = false
	if a.mtype.ModuleMode {
		sym.Scope = a.docRange()
		a.mtype.Set(sym.Name, sym, false)
	} else {
		sym.Scope = symbols.VirtualRange
		a.mtype.Menv.Globals[sym.Name] = sym
		a.env.SetDocGlobal(a.uri, sym.Name, sym)
	}
	a.addToOwner(sym)
}

// tableFromConstructor builds a table type from the string-keyed fields
// of a constructor expression. Computed and non-string keys are ignored.
func (a *analysis) tableFromConstructor(tc *ast.TableConstructorExpression) *symbols.TableType {
	t := symbols.NewTableType()
	for _, f := range tc.Fields {
		var key *ast.Identifier
		var value ast.Expression
		switch f := f.(type) {
		case *ast.TableKeyString:
			key, value = f.Key, f.Value
		case *ast.TableKey:
			if s, ok := f.Key.(*ast.StringLiteral); ok {
				key = &ast.Identifier{Name: s.Value, Loc: s.Loc}
				value = f.Value
			}
		}
		if key == nil || key.Name == "" {
			continue
		}
		a.initStatement(initCtx{value, 0, key.Name, key.Loc, false}, func(s *symbols.Symbol) {
			if s.Kind == symbols.VariableSymbol {
				s.Kind = symbols.PropertySymbol
			}
			s.Scope = a.docRange()
			t.Set(key.Name, s, false)
		})
	}
	return t
}

// resolveChain resolves a dotted/bracket-string target chain starting
// from the scope stack. Returns nil if any segment is missing or not a
// table.
func (a *analysis) resolveChain(expr ast.Expression) *symbols.Symbol {
	switch n := expr.(type) {
	case *ast.Identifier:
		return a.mtype.Search(n.Name, n.Loc.Start)
	case *ast.MemberExpression:
		if n.Indexer != "." || n.Identifier == nil {
			return nil
		}
		base := a.resolveChain(n.Base)
		if base == nil {
			return nil
		}
		t := symbols.TableOf(base.Type)
		if t == nil {
			return nil
		}
		return t.Get(n.Identifier.Name)
	case *ast.IndexExpression:
		key, ok := n.Index.(*ast.StringLiteral)
		if !ok {
			return nil
		}
		base := a.resolveChain(n.Base)
		if base == nil {
			return nil
		}
		t := symbols.TableOf(base.Type)
		if t == nil {
			return nil
		}
		return t.Get(key.Value)
	}
	return nil
}

// ensureTable returns the table part of a symbol's type, upgrading an
// untyped symbol to a fresh table. Non-table symbols yield nil.
func (a *analysis) ensureTable(sym *symbols.Symbol) *symbols.TableType {
	if t := symbols.TableOf(sym.Type); t != nil {
		return t
	}
	if symbols.IsAny(sym.Type) {
		t := symbols.NewTableType()
		sym.Type = t
		if sym.Kind == symbols.VariableSymbol {
			sym.Kind = symbols.TableSymbol
		}
		return t
	}
	return nil
}

func isName(e ast.Expression, name string) bool {
	id, ok := e.(*ast.Identifier)
	return ok && id.Name == name
}
