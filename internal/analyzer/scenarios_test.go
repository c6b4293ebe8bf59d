package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isshe/luacoderassist/internal/symbols"
	"github.com/isshe/luacoderassist/internal/typequery"
)

// Trailing-call expansion: the last RHS call fills the remaining slots.
func TestScenarioMultiValueLocal(t *testing.T) {
	module, _ := analyzeSrc(t, nil, "local a, b, c = true, f()")

	a := childNamed(t, module, "a")
	lazyA, ok := a.Type.(*symbols.LazyType)
	require.True(t, ok, "a binds lazily to its own initializer")
	require.Equal(t, 0, lazyA.Index)
	require.Equal(t, symbols.Boolean, typequery.Force(a.Type))

	b := childNamed(t, module, "b")
	lazyB, ok := b.Type.(*symbols.LazyType)
	require.True(t, ok)
	require.Equal(t, 0, lazyB.Index, "b selects tuple position 0 of f()")

	c := childNamed(t, module, "c")
	lazyC, ok := c.Type.(*symbols.LazyType)
	require.True(t, ok)
	require.Equal(t, 1, lazyC.Index, "c selects tuple position 1 of f()")
	require.Same(t, lazyB.Node, lazyC.Node, "b and c share the trailing call")
}

// Method syntax: class upgrade, implicit self, shifted formals, return
// chaining, and the chunk's return slot.
func TestScenarioClassModule(t *testing.T) {
	src := "local M = {}\nfunction M:hello(name) return name end\nreturn M"
	module, mtype := analyzeSrc(t, nil, src)

	m := childNamed(t, module, "M")
	require.Equal(t, symbols.ClassSymbol, m.Kind)

	table := symbols.TableOf(m.Type)
	require.NotNil(t, table)
	hello := table.Get("hello")
	require.NotNil(t, hello)
	require.Equal(t, symbols.FunctionSymbol, hello.Kind)

	ft, ok := hello.Type.(*symbols.FunctionType)
	require.True(t, ok)
	self := ft.Param(0)
	require.NotNil(t, self)
	require.Equal(t, "self", self.Name)
	require.Same(t, m.Type, self.Type, "self carries the receiver's type")
	name := ft.Param(1)
	require.NotNil(t, name)
	require.Equal(t, "name", name.Name)

	r0 := ft.Return(0)
	require.NotNil(t, r0)
	require.True(t, symbols.IsAny(typequery.Force(r0.Type)), "return chains to the untyped parameter")

	require.NotNil(t, mtype.Return, "the chunk returns M")
	require.Same(t, m.Type, typequery.Force(mtype.Return.Type))
}

// module(...) switches globals into module fields.
func TestScenarioModuleMode(t *testing.T) {
	env := symbols.NewEnvironment()
	module, mtype := analyzeSrc(t, env, "module(\"foo\")\nfunction bar() end")

	require.True(t, mtype.ModuleMode)
	require.Equal(t, "foo", module.Name)
	require.NotNil(t, mtype.Get("bar"), "bar is a module field")
	require.Nil(t, env.Get("bar"), "bar must not leak into _G")
	require.Same(t, module, env.Get("foo"), "the module registers under its name")
}

// require imports.
func TestScenarioRequire(t *testing.T) {
	module, mtype := analyzeSrc(t, nil, "local socket = require(\"socket.core\")")

	require.Len(t, mtype.Imports, 1)
	imp := mtype.Imports[0]
	require.Equal(t, "core", imp.Name)
	require.Equal(t, symbols.ModuleSymbol, imp.Kind)
	_, ok := imp.Type.(*symbols.LazyType)
	require.True(t, ok, "imports stay lazy until queried")

	socket := childNamed(t, module, "socket")
	_, ok = socket.Type.(*symbols.LazyType)
	require.True(t, ok, "the binding is a lazy reference to the import")
}

func TestScenarioPcallRequire(t *testing.T) {
	_, mtype := analyzeSrc(t, nil, "local ok, mod = pcall(require, \"lib.json-util\")")
	require.Len(t, mtype.Imports, 1, "pcall'd require imports exactly once")
	require.Equal(t, "json-util", mtype.Imports[0].Name)
}

// setmetatable as an initializer.
func TestScenarioSetmetatableInit(t *testing.T) {
	module, _ := analyzeSrc(t, nil, "local T = setmetatable({}, { __index = base })")

	tsym := childNamed(t, module, "T")
	require.Equal(t, symbols.TableSymbol, tsym.Kind)
	table := symbols.TableOf(tsym.Type)
	require.NotNil(t, table)
	meta := table.Metatable
	require.NotNil(t, meta)
	require.Equal(t, "__metatable", meta.Name)
	metaTable := symbols.TableOf(meta.Type)
	require.NotNil(t, metaTable, "an inline constructor builds a concrete metatable")
	require.NotNil(t, metaTable.Get("__index"))
}

// setmetatable as a standalone statement, reusing the named table.
func TestScenarioSetmetatableStatement(t *testing.T) {
	module, _ := analyzeSrc(t, nil, "local T = {}\nsetmetatable(T, { __call = run })")
	tsym := childNamed(t, module, "T")
	table := symbols.TableOf(tsym.Type)
	require.NotNil(t, table.Metatable)
	require.NotNil(t, symbols.TableOf(table.Metatable.Type).Get("__call"))
}

// Loop scoping.
func TestScenarioNumericFor(t *testing.T) {
	src := "for i = 1, 10 do local x = i end"
	_, mtype := analyzeSrc(t, nil, src)
	stack := mtype.Menv.Stack

	require.Nil(t, stack.SearchName("i", len(src)), "i is not visible after the loop")
	require.Nil(t, stack.SearchName("x", len(src)), "x is not visible after the loop")

	inside := 27 // offset of the i reference in the body
	i := stack.SearchName("i", inside)
	require.NotNil(t, i)
	require.Equal(t, symbols.VariableSymbol, i.Kind)
	require.Equal(t, symbols.Number, i.Type)

	x := stack.SearchName("x", inside)
	require.NotNil(t, x)
	require.Equal(t, symbols.Number, typequery.Force(x.Type), "x chains to i")
}

func TestScenarioGenericFor(t *testing.T) {
	src := "for k, v in pairs(t) do end"
	_, mtype := analyzeSrc(t, nil, src)
	stack := mtype.Menv.Stack

	k := stack.SearchName("k", 24)
	require.NotNil(t, k)
	lazyK, ok := k.Type.(*symbols.LazyType)
	require.True(t, ok)
	require.Equal(t, 0, lazyK.Index)

	v := stack.SearchName("v", 24)
	require.NotNil(t, v)
	lazyV, ok := v.Type.(*symbols.LazyType)
	require.True(t, ok)
	require.Equal(t, 1, lazyV.Index, "each variable indexes the first iterator")
	require.Same(t, lazyK.Node, lazyV.Node)
}
