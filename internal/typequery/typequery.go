// Package typequery is the type-query engine: it forces lazy type
// references on demand by re-walking the recorded expression node inside
// its module context and selecting the requested tuple position.
//
// Forcing is pure with respect to the symbol model; it never mutates a
// module. Resolution is depth-limited so reference cycles degrade to
// `any` instead of diverging.
package typequery

import (
	"regexp"

	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/symbols"
)

const maxDepth = 16

// Force resolves a type to its concrete form. Non-lazy types are
// returned unchanged; unresolvable references yield any.
func Force(t symbols.Type) symbols.Type {
	return force(t, 0)
}

func force(t symbols.Type, depth int) symbols.Type {
	if depth > maxDepth {
		return symbols.Any
	}
	lt, ok := t.(*symbols.LazyType)
	if !ok {
		if t == nil {
			return symbols.Any
		}
		return t
	}
	if lt.Context == nil || lt.Node == nil {
		return symbols.Any
	}
	return ofNode(lt.Context, lt.Node, lt.Index, depth+1)
}

// GlobalType resolves a name through the global environment. The
// analyzer asks this for the `local x = x` capture of a global x.
func GlobalType(env *symbols.Environment, name string) symbols.Type {
	if env == nil {
		return symbols.Any
	}
	if sym := env.Get(name); sym != nil {
		return Force(sym.Type)
	}
	return symbols.Any
}

func ofNode(ctx *symbols.ModuleType, node ast.Node, index int, depth int) symbols.Type {
	if depth > maxDepth || node == nil {
		return symbols.Any
	}
	switch n := node.(type) {
	case *ast.NumericLiteral:
		return symbols.Number
	case *ast.StringLiteral:
		return symbols.String
	case *ast.BooleanLiteral:
		return symbols.Boolean
	case *ast.NilLiteral:
		return symbols.Nil
	case *ast.TableConstructorExpression:
		return symbols.Table
	case *ast.Identifier:
		if sym := ctx.Search(n.Name, n.Loc.Start); sym != nil {
			return force(sym.Type, depth+1)
		}
		return symbols.Any
	case *ast.MemberExpression:
		if n.Identifier == nil {
			return symbols.Any
		}
		return fieldType(ctx, n.Base, n.Identifier.Name, depth)
	case *ast.IndexExpression:
		if key, ok := n.Index.(*ast.StringLiteral); ok {
			return fieldType(ctx, n.Base, key.Value, depth)
		}
		return symbols.Any
	case *ast.CallExpression:
		return callType(ctx, n.Base, n.Arguments, index, depth)
	case *ast.StringCallExpression:
		return callType(ctx, n.Base, []ast.Expression{n.Argument}, index, depth)
	case *ast.TableCallExpression:
		return callType(ctx, n.Base, []ast.Expression{n.Argument}, index, depth)
	case *ast.BinaryExpression:
		switch n.Operator {
		case "+", "-", "*", "/", "%", "^":
			return symbols.Number
		case "..":
			return symbols.String
		case "==", "~=", "<", ">", "<=", ">=":
			return symbols.Boolean
		}
		return symbols.Any
	case *ast.UnaryExpression:
		switch n.Operator {
		case "not":
			return symbols.Boolean
		case "#", "-":
			return symbols.Number
		}
		return symbols.Any
	case *ast.LogicalExpression:
		if t := ofNode(ctx, n.Left, 0, depth+1); !symbols.IsAny(t) {
			return t
		}
		return ofNode(ctx, n.Right, 0, depth+1)
	}
	return symbols.Any
}

func fieldType(ctx *symbols.ModuleType, base ast.Expression, name string, depth int) symbols.Type {
	bt := ofNode(ctx, base, 0, depth+1)
	if t := symbols.TableOf(bt); t != nil {
		if field := t.Get(name); field != nil {
			return force(field.Type, depth+1)
		}
	}
	return symbols.Any
}

var importNameRe = regexp.MustCompile(`\w+(?:-\w+)*$`)

func callType(ctx *symbols.ModuleType, base ast.Expression, args []ast.Expression, index, depth int) symbols.Type {
	// require("path") resolves to the registered module, if any document
	// has published one under the trailing path component.
	if id, ok := base.(*ast.Identifier); ok && id.Name == "require" {
		if len(args) > 0 {
			if path, ok := args[0].(*ast.StringLiteral); ok {
				if name := importNameRe.FindString(path.Value); name != "" {
					if sym := ctx.Fallback(name); sym != nil {
						return force(sym.Type, depth+1)
					}
				}
			}
		}
		return symbols.Any
	}
	ft, ok := ofNode(ctx, base, 0, depth+1).(*symbols.FunctionType)
	if !ok {
		return symbols.Any
	}
	if r := ft.Return(index); r != nil {
		return force(r.Type, depth+1)
	}
	if ft.TailCall != nil {
		// No direct slot: the tail call's multi-value result fills the
		// remaining positions. Its first value sits in the last return
		// slot, so later positions shift down by that slot's index.
		if lt, ok := ft.TailCall.(*symbols.LazyType); ok {
			shift := len(ft.Returns()) - 1
			if shift < 0 {
				shift = 0
			}
			return ofNode(lt.Context, lt.Node, index-shift, depth+1)
		}
		return force(ft.TailCall, depth+1)
	}
	return symbols.Any
}
