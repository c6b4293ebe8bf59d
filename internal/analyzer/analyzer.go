// Package analyzer builds a module symbol from a Lua parse tree.
//
// The walk is a single syntax-directed pass that maintains a stack of
// nested lexical scopes, a stack of enclosing function contexts, and the
// process-wide global environment. Expression types are not inferred
// during the walk: they are bound as lazy references and forced later by
// the type-query engine. The analyzer never fails; node shapes it cannot
// make sense of are skipped, so even incoherent documents produce a
// usable outline.
package analyzer

import (
	"regexp"

	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/diagnostics"
	"github.com/isshe/luacoderassist/internal/parser"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/symbols"
)

// analysis is the walk state for one document.
type analysis struct {
	env     *symbols.Environment
	uri     string
	length  int
	module  *symbols.Symbol
	mtype   *symbols.ModuleType
	stack   *symbols.ScopeStack
	state   *symbols.State
	current *symbols.Symbol   // enclosing function symbol, nil at top level
	funcs   []*symbols.Symbol // saved enclosing functions
}

// Analyze parses and analyzes a document against the process-wide global
// environment. Parse errors are returned alongside the (still useful)
// module symbol built from the partial tree.
func Analyze(code, uri string) (*symbols.Symbol, []*diagnostics.Error) {
	return AnalyzeIn(symbols.Global(), code, uri)
}

// AnalyzeIn analyzes a document against an explicit environment. Hosts
// that need isolation (tests, parallel workspaces) thread their own.
func AnalyzeIn(env *symbols.Environment, code, uri string) (*symbols.Symbol, []*diagnostics.Error) {
	chunk, errs := parser.Parse(code)
	module := Walk(env, chunk, len(code), uri)
	return module, errs
}

// Walk analyzes an already-parsed chunk of the given source length.
func Walk(env *symbols.Environment, chunk *ast.Chunk, length int, uri string) *symbols.Symbol {
	a := &analysis{env: env, uri: uri, length: length}
	a.mtype = symbols.NewModuleType()
	a.mtype.SetMetatable(env.Metatable())
	a.state = symbols.NewState()
	root := srcrange.New(0, length+1)
	a.module = &symbols.Symbol{
		Name:     ModuleName(uri),
		Location: srcrange.New(0, 1),
		Range:    root,
		Scope:    root,
		URI:      uri,
		Kind:     symbols.ModuleSymbol,
		Type:     a.mtype,
		State:    a.state,
	}
	a.stack = a.mtype.Menv.Stack
	a.stack.Enter(root)
	a.stack.Push(a.module)
	if chunk != nil {
		a.walkBody(chunk.Body)
	}
	if a.mtype.ModuleMode {
		env.MergeModule(a.module)
	}
	return a.module
}

var moduleNameRe = regexp.MustCompile(`(\w+(?:-\w+)*)(?:\.lua)?$`)

// ModuleName derives a module's default name from the trailing path
// component of its document identifier.
func ModuleName(uri string) string {
	if m := moduleNameRe.FindStringSubmatch(uri); m != nil {
		return m[1]
	}
	return "main"
}

func (a *analysis) walkBody(body []ast.Statement) {
	for _, stmt := range body {
		a.walkNode(stmt)
	}
}

// walkNode dispatches on the concrete node type. Unrecognized kinds are
// a deliberate no-op.
func (a *analysis) walkNode(node ast.Node) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.Chunk:
		a.walkBody(n.Body)
	case *ast.LocalStatement:
		a.localStatement(n)
	case *ast.AssignmentStatement:
		a.assignmentStatement(n)
	case *ast.FunctionDeclaration:
		a.functionDeclaration(n, fnPlacement{})
	case *ast.CallStatement:
		a.walkNode(n.Expression)
	case *ast.CallExpression:
		a.callExpression(n.Base, n.Arguments, n)
	case *ast.StringCallExpression:
		a.callExpression(n.Base, []ast.Expression{n.Argument}, n)
	case *ast.TableCallExpression:
		a.callExpression(n.Base, []ast.Expression{n.Argument}, n)
	case *ast.IfStatement:
		for _, clause := range n.Clauses {
			a.walkNode(clause)
		}
	case *ast.IfClause:
		a.scopedBody(n.Loc, n.Body)
	case *ast.ElseifClause:
		a.scopedBody(n.Loc, n.Body)
	case *ast.ElseClause:
		a.scopedBody(n.Loc, n.Body)
	case *ast.WhileStatement:
		a.scopedBody(n.Loc, n.Body)
	case *ast.RepeatStatement:
		a.scopedBody(n.Loc, n.Body)
	case *ast.DoStatement:
		a.scopedBody(n.Loc, n.Body)
	case *ast.ForNumericStatement:
		a.forNumeric(n)
	case *ast.ForGenericStatement:
		a.forGeneric(n)
	case *ast.ReturnStatement:
		a.returnStatement(n)
	case *ast.MemberExpression:
		a.walkNode(n.Base)
	}
}

// scopedBody opens a block scope spanning r, walks the body, and closes.
func (a *analysis) scopedBody(r srcrange.Range, body []ast.Statement) {
	a.stack.Enter(r)
	a.walkBody(body)
	a.stack.Exit(r.End)
}

func (a *analysis) forNumeric(n *ast.ForNumericStatement) {
	a.stack.Enter(n.Loc)
	if n.Variable != nil && n.Variable.Name != "_" {
		v := &symbols.Symbol{
			Name:     n.Variable.Name,
			Location: n.Variable.Loc,
			Range:    n.Variable.Loc,
			Scope:    srcrange.Of(n.Variable.Loc, a.stack.Current()),
			IsLocal:  true,
			URI:      a.uri,
			Kind:     symbols.VariableSymbol,
			Type:     symbols.Number,
			State:    a.state,
		}
		a.stack.Push(v)
	}
	a.walkBody(n.Body)
	a.stack.Exit(n.Loc.End)
}

func (a *analysis) forGeneric(n *ast.ForGenericStatement) {
	a.stack.Enter(n.Loc)
	var iter ast.Expression
	if len(n.Iterators) > 0 {
		iter = n.Iterators[0]
	}
	for i, variable := range n.Variables {
		if variable == nil || variable.Name == "_" {
			continue
		}
		var vtype symbols.Type = symbols.Any
		if iter != nil {
			vtype = symbols.NewLazyType(a.mtype, iter, variable.Name, i)
		}
		v := &symbols.Symbol{
			Name:     variable.Name,
			Location: variable.Loc,
			Range:    variable.Loc,
			Scope:    srcrange.Of(variable.Loc, a.stack.Current()),
			IsLocal:  true,
			URI:      a.uri,
			Kind:     symbols.VariableSymbol,
			Type:     vtype,
			State:    a.state,
		}
		a.stack.Push(v)
	}
	a.walkBody(n.Body)
	a.stack.Exit(n.Loc.End)
}

func (a *analysis) docRange() srcrange.Range {
	return srcrange.New(0, a.length+1)
}

// addToOwner records a declaration under the enclosing function, or the
// module when none is active. Children drive the document outline.
func (a *analysis) addToOwner(sym *symbols.Symbol) {
	if a.current != nil {
		a.current.AddChild(sym)
	} else {
		a.module.AddChild(sym)
	}
}
