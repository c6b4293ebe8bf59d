package typequery_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isshe/luacoderassist/internal/analyzer"
	"github.com/isshe/luacoderassist/internal/symbols"
	"github.com/isshe/luacoderassist/internal/typequery"
)

func analyze(t *testing.T, env *symbols.Environment, src, uri string) *symbols.Symbol {
	t.Helper()
	if env == nil {
		env = symbols.NewEnvironment()
	}
	module, errs := analyzer.AnalyzeIn(env, src, uri)
	require.Empty(t, errs)
	return module
}

func child(t *testing.T, module *symbols.Symbol, name string) *symbols.Symbol {
	t.Helper()
	for _, c := range module.Children {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no child %q", name)
	return nil
}

func TestForceLiterals(t *testing.T) {
	module := analyze(t, nil, "local s = 'hi'\nlocal n = 4.5\nlocal b = false\nlocal z = nil\nlocal tc = {}", "file:///t/lit.lua")
	require.Equal(t, symbols.String, typequery.Force(child(t, module, "s").Type))
	require.Equal(t, symbols.Number, typequery.Force(child(t, module, "n").Type))
	require.Equal(t, symbols.Boolean, typequery.Force(child(t, module, "b").Type))
	require.Equal(t, symbols.Nil, typequery.Force(child(t, module, "z").Type))
	require.NotNil(t, symbols.TableOf(typequery.Force(child(t, module, "tc").Type)))
}

func TestForceOperators(t *testing.T) {
	module := analyze(t, nil, "local a = 1 + 2\nlocal s = 'a' .. 'b'\nlocal c = 1 < 2\nlocal n = -x\nlocal nt = not x", "file:///t/ops.lua")
	require.Equal(t, symbols.Number, typequery.Force(child(t, module, "a").Type))
	require.Equal(t, symbols.String, typequery.Force(child(t, module, "s").Type))
	require.Equal(t, symbols.Boolean, typequery.Force(child(t, module, "c").Type))
	require.Equal(t, symbols.Number, typequery.Force(child(t, module, "n").Type))
	require.Equal(t, symbols.Boolean, typequery.Force(child(t, module, "nt").Type))
}

func TestForceCallReturn(t *testing.T) {
	src := "local function f() return 1 end\nlocal y = f()"
	module := analyze(t, nil, src, "file:///t/call.lua")
	require.Equal(t, symbols.Number, typequery.Force(child(t, module, "y").Type))
}

func TestForceTailCallChain(t *testing.T) {
	src := `local function g() return 1, 'a' end
local function f() return g() end
local a, b = f()`
	module := analyze(t, nil, src, "file:///t/chain.lua")
	require.Equal(t, symbols.Number, typequery.Force(child(t, module, "a").Type))
	require.Equal(t, symbols.String, typequery.Force(child(t, module, "b").Type),
		"the tail call's second value flows through f")
}

func TestForceMemberAccess(t *testing.T) {
	src := "local t = { n = 1 }\nlocal v = t.n"
	module := analyze(t, nil, src, "file:///t/member.lua")
	require.Equal(t, symbols.Number, typequery.Force(child(t, module, "v").Type))
}

func TestForceUnknownIsAny(t *testing.T) {
	module := analyze(t, nil, "local y = mystery()", "file:///t/unknown.lua")
	require.True(t, symbols.IsAny(typequery.Force(child(t, module, "y").Type)))
}

func TestForceCycleDegradesToAny(t *testing.T) {
	// Two untyped globals referencing each other must not diverge.
	env := symbols.NewEnvironment()
	module := analyze(t, env, "x = y\ny = x\nlocal probe = x", "file:///t/cycle.lua")
	require.True(t, symbols.IsAny(typequery.Force(child(t, module, "probe").Type)))
}

func TestGlobalShortcut(t *testing.T) {
	env := symbols.NewEnvironment()
	analyze(t, env, "Registry = { items = {} }", "file:///t/defs.lua")

	module := analyze(t, env, "local Registry = Registry", "file:///t/use.lua")
	reg := child(t, module, "Registry")
	require.NotNil(t, symbols.TableOf(reg.Type),
		"the local captures the global's concrete type at analysis time")
}

func TestRequireResolvesRegisteredModule(t *testing.T) {
	env := symbols.NewEnvironment()
	analyze(t, env, "module(\"core\")\nfunction hi() end", "file:///t/core.lua")

	module := analyze(t, env, "local core = require(\"socket.core\")", "file:///t/user.lua")
	core := child(t, module, "core")
	forced := typequery.Force(core.Type)
	mt, ok := forced.(*symbols.ModuleType)
	require.True(t, ok, "require forces to the registered module, got %T", forced)
	require.NotNil(t, mt.Get("hi"))
}

func TestGlobalTypeLookup(t *testing.T) {
	env := symbols.NewEnvironment()
	require.True(t, symbols.IsAny(typequery.GlobalType(env, "missing")))

	analyze(t, env, "flag = true", "file:///t/flag.lua")
	require.Equal(t, symbols.Boolean, typequery.GlobalType(env, "flag"))
}
