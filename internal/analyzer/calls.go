package analyzer

import (
	"regexp"

	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/symbols"
)

// callExpression intercepts the builtins that shape the module model;
// every other call just walks its callee and arguments for side effects.
// String and table sugar calls dispatch through here with a single
// argument.
func (a *analysis) callExpression(base ast.Expression, args []ast.Expression, node ast.Expression) {
	if id, ok := base.(*ast.Identifier); ok {
		switch id.Name {
		case "module":
			if name := stringArgument(args, 0); name != "" {
				a.module.Name = name
				a.mtype.ModuleMode = true
			}
			return
		case "require":
			if path := stringArgument(args, 0); path != "" {
				a.addImport(path, node)
			}
			return
		case "pcall":
			// pcall(require, "path") imports like a plain require; a
			// non-literal path is dropped.
			if len(args) >= 2 && isRequireRef(args[0]) {
				if path := stringArgument(args, 1); path != "" {
					a.addImport(path, node)
				}
				return
			}
		case "setmetatable":
			a.setmetatableStatement(args)
			return
		}
	}
	a.walkNode(base)
	for _, arg := range args {
		a.walkNode(arg)
	}
}

func stringArgument(args []ast.Expression, i int) string {
	if i >= len(args) {
		return ""
	}
	if s, ok := args[i].(*ast.StringLiteral); ok {
		return s.Value
	}
	return ""
}

// isRequireRef matches the require reference in both spellings,
// pcall(require, ...) and pcall("require", ...).
func isRequireRef(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.Identifier:
		return v.Name == "require"
	case *ast.StringLiteral:
		return v.Value == "require"
	}
	return false
}

var importNameRe = regexp.MustCompile(`\w+(?:-\w+)*$`)

// addImport appends a lazy symbol for a require'd module, named after
// the trailing component of the path literal.
func (a *analysis) addImport(path string, node ast.Expression) {
	name := importNameRe.FindString(path)
	if name == "" {
		return
	}
	sym := &symbols.Symbol{
		Name:     name,
		Location: node.Range(),
		Range:    node.Range(),
		Scope:    a.docRange(),
		URI:      a.uri,
		Kind:     symbols.ModuleSymbol,
		Type:     symbols.NewLazyType(a.mtype, node, name, 0),
		State:    a.state,
	}
	a.mtype.Import(sym)
}

// setmetatableStatement handles standalone `setmetatable(T, M)`.
func (a *analysis) setmetatableStatement(args []ast.Expression) {
	if len(args) == 0 {
		return
	}
	var target *symbols.Symbol
	if id, ok := args[0].(*ast.Identifier); ok {
		target = a.mtype.Search(id.Name, id.Loc.Start)
	}
	if target == nil {
		return
	}
	t := a.ensureTable(target)
	if t == nil {
		return
	}
	if len(args) >= 2 {
		t.SetMetatable(a.metatableSymbol(args[1]))
	}
}

// setmetatableInit handles `local x = setmetatable(T, M)`: the bound
// symbol takes T's type, reusing T's symbol outright when the LHS names
// the same table.
func (a *analysis) setmetatableInit(call *ast.CallExpression, c initCtx, place placement) {
	args := call.Arguments
	var sym *symbols.Symbol
	var t *symbols.TableType
	if len(args) > 0 {
		switch target := args[0].(type) {
		case *ast.TableConstructorExpression:
			t = a.tableFromConstructor(target)
			sym = a.newInitSymbol(c, call, symbols.TableSymbol, t)
		case *ast.Identifier:
			if src := a.mtype.Search(target.Name, target.Loc.Start); src != nil {
				t = a.ensureTable(src)
				if target.Name == c.name {
					sym = src
				} else {
					sym = a.newInitSymbol(c, call, symbols.TableSymbol, src.Type)
				}
			}
		}
	}
	if sym == nil {
		sym = a.newInitSymbol(c, call, symbols.VariableSymbol, symbols.Any)
	}
	if t != nil && len(args) >= 2 {
		t.SetMetatable(a.metatableSymbol(args[1]))
	}
	place(sym)
}

func (a *analysis) newInitSymbol(c initCtx, init ast.Expression, kind symbols.Kind, typ symbols.Type) *symbols.Symbol {
	end := init.Range().End
	if end < c.location.End {
		end = c.location.End
	}
	return &symbols.Symbol{
		Name:     c.name,
		Location: c.location,
		Range:    srcrange.New(c.location.Start, end),
		IsLocal:  c.isLocal,
		URI:      a.uri,
		Kind:     kind,
		Type:     typ,
		State:    a.state,
	}
}

// metatableSymbol wraps the metatable expression in a distinguished
// __metatable symbol: a constructed table when the expression is an
// inline constructor, otherwise a lazy reference.
func (a *analysis) metatableSymbol(m ast.Expression) *symbols.Symbol {
	var mt symbols.Type
	if tc, ok := m.(*ast.TableConstructorExpression); ok {
		mt = a.tableFromConstructor(tc)
	} else {
		mt = symbols.NewLazyType(a.mtype, m, "__metatable", 0)
	}
	return &symbols.Symbol{
		Name:     "__metatable",
		Location: m.Range(),
		Range:    m.Range(),
		Scope:    a.docRange(),
		URI:      a.uri,
		Kind:     symbols.TableSymbol,
		Type:     mt,
		State:    a.state,
	}
}
