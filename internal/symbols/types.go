package symbols

import (
	"fmt"

	"github.com/isshe/luacoderassist/internal/ast"
)

// Type is the interface over all type variants attached to symbols.
type Type interface {
	String() string
}

// BasicType is one of the primitive type tags. The singletons below are
// the only instances; `any` stands for unknown.
type BasicType struct {
	Tag string
}

func (t *BasicType) String() string { return t.Tag }

var (
	Any     = &BasicType{Tag: "any"}
	Number  = &BasicType{Tag: "number"}
	String  = &BasicType{Tag: "string"}
	Boolean = &BasicType{Tag: "boolean"}
	Nil     = &BasicType{Tag: "nil"}
	Table   = &BasicType{Tag: "table"}
)

// IsAny reports whether t carries no information.
func IsAny(t Type) bool {
	return t == nil || t == Any
}

// TableType maps string field names to symbols. Field iteration follows
// insertion order of first definition.
type TableType struct {
	fields    map[string]*Symbol
	order     []string
	Metatable *Symbol
}

func NewTableType() *TableType {
	return &TableType{fields: make(map[string]*Symbol)}
}

func (t *TableType) String() string { return "table" }

// Set inserts or overwrites a field. With merge, an assignment-extended
// field keeps the insertion position of its first definition; the stored
// value is replaced either way.
func (t *TableType) Set(name string, sym *Symbol, merge bool) {
	if _, ok := t.fields[name]; !ok {
		t.order = append(t.order, name)
	}
	t.fields[name] = sym
}

func (t *TableType) Get(name string) *Symbol {
	return t.fields[name]
}

// Names returns the field names in insertion order.
func (t *TableType) Names() []string {
	return t.order
}

func (t *TableType) Len() int {
	return len(t.fields)
}

// SetMetatable attaches a metatable symbol; repeated calls replace it.
func (t *TableType) SetMetatable(sym *Symbol) {
	t.Metatable = sym
}

// FunctionType holds positional parameter and return slots plus an
// optional tail-call type: the type of the call expression in the last
// return slot, which transparently chains multi-value returns.
type FunctionType struct {
	params   []*Symbol
	returns  []*Symbol
	TailCall Type
}

func NewFunctionType() *FunctionType {
	return &FunctionType{}
}

func (f *FunctionType) String() string { return "function" }

func (f *FunctionType) SetParam(i int, sym *Symbol) {
	for len(f.params) <= i {
		f.params = append(f.params, nil)
	}
	f.params[i] = sym
}

func (f *FunctionType) Param(i int) *Symbol {
	if i < 0 || i >= len(f.params) {
		return nil
	}
	return f.params[i]
}

func (f *FunctionType) Params() []*Symbol { return f.params }

func (f *FunctionType) SetReturn(i int, sym *Symbol) {
	for len(f.returns) <= i {
		f.returns = append(f.returns, nil)
	}
	f.returns[i] = sym
}

func (f *FunctionType) Return(i int) *Symbol {
	if i < 0 || i >= len(f.returns) {
		return nil
	}
	return f.returns[i]
}

func (f *FunctionType) Returns() []*Symbol { return f.returns }

// LazyType defers typing of an expression until first queried. It keeps
// the owning module as context, the expression node, a debug name, and
// the tuple position to select from a multi-value result. Forcing is the
// type-query engine's job; the analyzer never forces during its walk, so
// the module graph must outlive every lazy reference into it.
type LazyType struct {
	Context *ModuleType
	Node    ast.Node
	Name    string
	Index   int
}

func NewLazyType(ctx *ModuleType, node ast.Node, name string, index int) *LazyType {
	return &LazyType{Context: ctx, Node: node, Name: name, Index: index}
}

func (t *LazyType) String() string {
	return fmt.Sprintf("<lazy %s#%d>", t.Name, t.Index)
}
