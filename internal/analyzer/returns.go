package analyzer

import (
	"fmt"

	"github.com/isshe/luacoderassist/internal/ast"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/symbols"
)

// returnStatement binds every return argument into the enclosing
// function's return slots, or into the module's return symbol at top
// level. A call in the last slot additionally becomes the function's
// tail-call type so multi-value results chain through.
func (a *analysis) returnStatement(n *ast.ReturnStatement) {
	for i, arg := range n.Arguments {
		if arg == nil {
			continue
		}
		last := i == len(n.Arguments)-1
		slot := i
		a.initStatement(initCtx{
			init:     arg,
			index:    0,
			name:     fmt.Sprintf("R%d", i),
			location: arg.Range(),
			isLocal:  true,
		}, func(s *symbols.Symbol) {
			s.Scope = srcrange.Of(s.Location, a.stack.Current())
			if a.current != nil {
				ft, ok := a.current.Type.(*symbols.FunctionType)
				if !ok {
					return
				}
				if last && isCall(arg) {
					ft.TailCall = s.Type
				}
				ft.SetReturn(slot, s)
			} else {
				a.mtype.Return = s
			}
		})
	}
}

func isCall(e ast.Expression) bool {
	switch e.(type) {
	case *ast.CallExpression, *ast.StringCallExpression, *ast.TableCallExpression:
		return true
	}
	return false
}
