package symbols

import (
	"testing"

	"github.com/isshe/luacoderassist/internal/srcrange"
)

func namedSymbol(name string, state *State) *Symbol {
	return &Symbol{
		Name:     name,
		Location: srcrange.New(0, 1),
		Range:    srcrange.New(0, 1),
		Scope:    VirtualRange,
		Kind:     VariableSymbol,
		Type:     Any,
		State:    state,
	}
}

func TestTableTypeInsertionOrder(t *testing.T) {
	state := NewState()
	table := NewTableType()
	table.Set("c", namedSymbol("c", state), false)
	table.Set("a", namedSymbol("a", state), false)
	table.Set("b", namedSymbol("b", state), false)
	// Overwriting keeps the position of the first definition.
	table.Set("a", namedSymbol("a2", state), true)

	got := table.Names()
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
	if table.Get("a").Name != "a2" {
		t.Error("overwrite should replace the stored symbol")
	}
}

func TestFunctionTypeSlots(t *testing.T) {
	state := NewState()
	ft := NewFunctionType()
	ft.SetParam(1, namedSymbol("b", state))
	if ft.Param(0) != nil {
		t.Error("unset slot should be nil")
	}
	if ft.Param(1) == nil || ft.Param(1).Name != "b" {
		t.Error("slot 1 should hold b")
	}
	if ft.Param(5) != nil || ft.Return(0) != nil {
		t.Error("out of range slots should be nil")
	}
}

func TestScopeStackPositionalLookup(t *testing.T) {
	stack := NewScopeStack()
	stack.Enter(srcrange.New(0, 100))

	outer := namedSymbol("x", NewState())
	outer.IsLocal = true
	outer.Location = srcrange.New(10, 11)
	outer.Scope = srcrange.New(10, 100)
	stack.Push(outer)

	inner := namedSymbol("x", NewState())
	inner.IsLocal = true
	inner.Location = srcrange.New(40, 41)
	inner.Scope = srcrange.New(40, 60)
	stack.Push(inner)

	if got := stack.SearchName("x", 5); got != nil {
		t.Error("x must not resolve before its declaration")
	}
	if got := stack.SearchName("x", 20); got != outer {
		t.Error("only the outer x is visible at 20")
	}
	if got := stack.SearchName("x", 50); got != inner {
		t.Error("the inner x shadows at 50")
	}
	if got := stack.SearchName("x", 70); got != outer {
		t.Error("after the inner scope ends the outer x resolves again")
	}
}

func TestScopeStackExitClamps(t *testing.T) {
	stack := NewScopeStack()
	stack.Enter(srcrange.New(0, 100))
	sym := namedSymbol("v", NewState())
	sym.IsLocal = true
	sym.Location = srcrange.New(12, 13)
	sym.Scope = srcrange.Of(sym.Location, stack.Current())
	stack.Push(sym)
	stack.Exit(40)

	if sym.Scope.End != 40 {
		t.Errorf("scope end = %d, want clamped to 40", sym.Scope.End)
	}
	if stack.Depth() != 0 {
		t.Errorf("depth = %d, want 0", stack.Depth())
	}
}

func TestStatePassIdentity(t *testing.T) {
	a, b := NewState(), NewState()
	if a.Pass == b.Pass {
		t.Error("distinct passes must get distinct IDs")
	}
	if !a.Valid || !b.Valid {
		t.Error("fresh states start valid")
	}
}

func TestModuleSearchFallsThroughToGlobal(t *testing.T) {
	env := NewEnvironment()
	printSym := namedSymbol("print", NewState())
	env.Set("print", printSym)

	mtype := NewModuleType()
	mtype.SetMetatable(env.Metatable())
	if got := mtype.Search("print", 0); got != printSym {
		t.Fatalf("Search(print) = %v, want the global symbol", got)
	}
	if got := mtype.Search("missing", 0); got != nil {
		t.Fatalf("Search(missing) = %v, want nil", got)
	}
}

func TestMergeModuleReplacesStale(t *testing.T) {
	env := NewEnvironment()

	state1 := NewState()
	m1 := namedSymbol("shared", state1)
	t1 := NewModuleType()
	t1.Set("a", namedSymbol("a", state1), false)
	m1.Type = t1
	env.MergeModule(m1)
	if env.Get("shared") != m1 {
		t.Fatal("first merge should insert the module")
	}

	// A valid existing module keeps its fields; new names are adopted.
	state2 := NewState()
	m2 := namedSymbol("shared", state2)
	t2 := NewModuleType()
	t2.Set("a", namedSymbol("a", state2), false)
	t2.Set("b", namedSymbol("b", state2), false)
	m2.Type = t2
	env.MergeModule(m2)

	if env.Get("shared") != m1 {
		t.Fatal("valid module must not be replaced")
	}
	if got := t1.Get("a"); got == nil || got.State != state1 {
		t.Error("valid field must keep the original symbol")
	}
	if got := t1.Get("b"); got == nil || got.State != state2 {
		t.Error("new field must be adopted")
	}

	// Once stale, the whole entry is replaced.
	state1.Valid = false
	state3 := NewState()
	m3 := namedSymbol("shared", state3)
	m3.Type = NewModuleType()
	env.MergeModule(m3)
	if env.Get("shared") != m3 {
		t.Fatal("stale module must be replaced")
	}
}

func TestDocGlobals(t *testing.T) {
	env := NewEnvironment()
	sym := namedSymbol("g", NewState())
	env.SetDocGlobal("file:///a.lua", "g", sym)

	if env.Get("g") != sym {
		t.Error("doc global must be visible in _G")
	}
	doc := env.DocGlobals("file:///a.lua")
	if doc["g"] != sym {
		t.Error("doc global must be recorded per document")
	}
	if len(env.DocGlobals("file:///b.lua")) != 0 {
		t.Error("other documents start with no globals")
	}
}
