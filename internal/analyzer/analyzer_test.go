package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isshe/luacoderassist/internal/symbols"
	"github.com/isshe/luacoderassist/internal/typequery"
)

func analyzeSrc(t *testing.T, env *symbols.Environment, src string) (*symbols.Symbol, *symbols.ModuleType) {
	t.Helper()
	if env == nil {
		env = symbols.NewEnvironment()
	}
	module, errs := AnalyzeIn(env, src, "file:///project/example.lua")
	require.Empty(t, errs, "unexpected parse errors")
	require.NotNil(t, module)
	mtype, ok := module.Type.(*symbols.ModuleType)
	require.True(t, ok, "module symbol must carry a module type")
	return module, mtype
}

func childNamed(t *testing.T, parent *symbols.Symbol, name string) *symbols.Symbol {
	t.Helper()
	for _, c := range parent.Children {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no child named %q in %q (have %v)", name, parent.Name, childNames(parent))
	return nil
}

func childNames(parent *symbols.Symbol) []string {
	var names []string
	for _, c := range parent.Children {
		names = append(names, c.Name)
	}
	return names
}

func TestModuleName(t *testing.T) {
	cases := map[string]string{
		"file:///a/b/socket.lua":  "socket",
		"file:///x/jit-utils.lua": "jit-utils",
		"plain":                   "plain",
		"file:///a/init":          "init",
	}
	for uri, want := range cases {
		if got := ModuleName(uri); got != want {
			t.Errorf("ModuleName(%q) = %q, want %q", uri, got, want)
		}
	}
}

func TestLocalBinding(t *testing.T) {
	module, _ := analyzeSrc(t, nil, "local n = 42")
	n := childNamed(t, module, "n")
	require.True(t, n.IsLocal)
	require.Equal(t, symbols.VariableSymbol, n.Kind)
	require.Equal(t, symbols.Number, typequery.Force(n.Type))
}

func TestPlaceholderIsSkipped(t *testing.T) {
	module, mtype := analyzeSrc(t, nil, "local _, b = f()")
	for _, name := range childNames(module) {
		require.NotEqual(t, "_", name)
	}
	require.Nil(t, mtype.Menv.Stack.SearchName("_", 20))
	b := childNamed(t, module, "b")
	lazy, ok := b.Type.(*symbols.LazyType)
	require.True(t, ok)
	require.Equal(t, 1, lazy.Index)
}

func TestLocalRetargetByFunction(t *testing.T) {
	src := "local foo\nfunction foo() end"
	module, mtype := analyzeSrc(t, nil, src)

	count := 0
	var survivor *symbols.Symbol
	for _, s := range mtype.Menv.Stack.Symbols() {
		if s.Name == "foo" {
			count++
			survivor = s
		}
	}
	require.Equal(t, 1, count, "exactly one foo must survive")
	require.Equal(t, symbols.FunctionSymbol, survivor.Kind)
	// Location is the identifier of the second declaration.
	require.Equal(t, 19, survivor.Location.Start)
	require.Equal(t, 22, survivor.Location.End)
	require.Len(t, module.Children, 1)
}

func TestAssignmentPreservesTypedLocal(t *testing.T) {
	module, _ := analyzeSrc(t, nil, "local x = 1\nx = 'str'")
	x := childNamed(t, module, "x")
	require.Equal(t, symbols.Number, typequery.Force(x.Type),
		"assignment must not re-type a declared local")
	require.Len(t, module.Children, 1)
}

func TestAssignmentPatchesUntypedLocal(t *testing.T) {
	module, _ := analyzeSrc(t, nil, "local x\nx = 1")
	x := childNamed(t, module, "x")
	require.Equal(t, symbols.Number, typequery.Force(x.Type))
}

func TestGlobalAssignment(t *testing.T) {
	env := symbols.NewEnvironment()
	_, mtype := analyzeSrc(t, env, "answer = 42")
	g := env.Get("answer")
	require.NotNil(t, g)
	require.False(t, g.IsLocal)
	require.Equal(t, symbols.Number, typequery.Force(g.Type))
	require.Contains(t, env.DocGlobals("file:///project/example.lua"), "answer")
	require.Contains(t, mtype.Menv.Globals, "answer")
}

func TestMemberAssignment(t *testing.T) {
	module, _ := analyzeSrc(t, nil, "local t = {}\nt.count = 1\nt['tag'] = 'x'")
	tsym := childNamed(t, module, "t")
	table := symbols.TableOf(tsym.Type)
	require.NotNil(t, table)
	count := table.Get("count")
	require.NotNil(t, count)
	require.Equal(t, symbols.PropertySymbol, count.Kind)
	require.Equal(t, symbols.Number, typequery.Force(count.Type))
	require.NotNil(t, table.Get("tag"), "bracket-string assignment binds a field")
}

func TestTableConstructorFields(t *testing.T) {
	module, _ := analyzeSrc(t, nil, "local cfg = { host = 'x', port = 80, [1] = true, ['key'] = 0 }")
	cfg := childNamed(t, module, "cfg")
	require.Equal(t, symbols.TableSymbol, cfg.Kind)
	table := symbols.TableOf(cfg.Type)
	require.NotNil(t, table)
	require.Equal(t, []string{"host", "port", "key"}, table.Names(),
		"string keys in insertion order; numeric keys ignored")
	require.Equal(t, symbols.String, typequery.Force(table.Get("host").Type))
}

func TestSymbolRangeNesting(t *testing.T) {
	src := `local top = {}
function top.make(n)
  local acc = {}
  for i = 1, n do
    acc[1] = i
  end
  return acc
end
return top`
	_, mtype := analyzeSrc(t, nil, src)
	for _, s := range mtype.Menv.Stack.Symbols() {
		require.True(t, s.Range.ContainsRange(s.Location),
			"%s: location %v must be inside range %v", s.Name, s.Location, s.Range)
		require.True(t, s.Scope.ContainsRange(s.Range),
			"%s: range %v must be inside scope %v", s.Name, s.Range, s.Scope)
	}
}

func TestModuleMergeIdempotent(t *testing.T) {
	env := symbols.NewEnvironment()
	src := "module(\"shared\")\nfunction bar() end"
	m1, errs := AnalyzeIn(env, src, "file:///p/shared.lua")
	require.Empty(t, errs)
	t1 := symbols.TableOf(m1.Type)
	bar1 := t1.Get("bar")
	require.NotNil(t, bar1)

	_, errs = AnalyzeIn(env, src, "file:///p/shared.lua")
	require.Empty(t, errs)

	got := env.Get("shared")
	require.Same(t, m1, got, "a valid module entry must win the merge")
	require.Same(t, bar1, symbols.TableOf(got.Type).Get("bar"))

	// Invalidation flips the rule: the fresh analysis replaces the entry.
	m1.State.Valid = false
	m3, errs := AnalyzeIn(env, src, "file:///p/shared.lua")
	require.Empty(t, errs)
	require.Same(t, m3, env.Get("shared"))
}

func TestReanalysisInvalidation(t *testing.T) {
	env := symbols.NewEnvironment()
	m1, _ := AnalyzeIn(env, "local a = 1", "file:///p/doc.lua")
	require.True(t, m1.Valid())
	m1.State.Valid = false
	for _, s := range m1.Children {
		require.False(t, s.Valid(), "invalidation must cover every symbol of the pass")
	}
}

func TestRepeatScopeSeesBodyLocals(t *testing.T) {
	src := "repeat local done = true until done"
	_, mtype := analyzeSrc(t, nil, src)
	// The until condition offset lies inside the repeat node's range, so
	// body locals stay resolvable there.
	done := mtype.Menv.Stack.SearchName("done", len(src)-4)
	require.NotNil(t, done)
}

func TestAnonymousFunctionArgument(t *testing.T) {
	_, mtype := analyzeSrc(t, nil, "register(function(ev) return ev end)")
	var anon *symbols.Symbol
	for _, s := range mtype.Menv.Stack.Symbols() {
		if s.Kind == symbols.ParameterSymbol && s.Name == "ev" {
			anon = s
		}
	}
	require.NotNil(t, anon, "parameters of anonymous callbacks are analyzed")
}
