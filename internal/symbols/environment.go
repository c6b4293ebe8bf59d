package symbols

import (
	"math"
	"sync"

	"github.com/isshe/luacoderassist/internal/srcrange"
)

// Environment is the process-wide global environment: a ModuleType named
// _G persisting across analyses, plus the per-document maps of the
// global names each document registered. All access goes through the
// mutex; analyses of different documents may then run in parallel.
type Environment struct {
	mu         sync.RWMutex
	root       *Symbol
	meta       *Symbol // shared metatable attached to every module: __index = _G
	docGlobals map[string]map[string]*Symbol
}

// VirtualRange is the scope stamped on globals: visible everywhere.
var VirtualRange = srcrange.New(0, math.MaxInt32)

func NewEnvironment() *Environment {
	gtype := NewModuleType()
	root := &Symbol{
		Name:     "_G",
		Location: srcrange.New(0, 1),
		Range:    VirtualRange,
		Scope:    VirtualRange,
		Kind:     ModuleSymbol,
		Type:     gtype,
		State:    NewState(),
	}
	metaTable := NewTableType()
	metaTable.Set("__index", root, false)
	meta := &Symbol{
		Name:     "__metatable",
		Location: srcrange.New(0, 0),
		Range:    VirtualRange,
		Scope:    VirtualRange,
		Kind:     TableSymbol,
		Type:     metaTable,
		State:    root.State,
	}
	return &Environment{
		root:       root,
		meta:       meta,
		docGlobals: make(map[string]map[string]*Symbol),
	}
}

var (
	globalOnce sync.Once
	globalEnv  *Environment
)

// Global returns the process-wide singleton environment. Hosts that want
// isolation thread their own Environment through AnalyzeIn instead.
func Global() *Environment {
	globalOnce.Do(func() {
		globalEnv = NewEnvironment()
	})
	return globalEnv
}

// Root returns the _G module symbol.
func (e *Environment) Root() *Symbol {
	return e.root
}

// Type returns _G's module type.
func (e *Environment) Type() *ModuleType {
	return e.root.Type.(*ModuleType)
}

// Metatable returns the shared metatable whose __index is _G. The
// analyzer attaches it to every module type it creates, so module-level
// name searches fall through to the global environment.
func (e *Environment) Metatable() *Symbol {
	return e.meta
}

// Get looks up a globally visible name.
func (e *Environment) Get(name string) *Symbol {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.Type().Get(name)
}

// Set registers a globally visible name.
func (e *Environment) Set(name string, sym *Symbol) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Type().Set(name, sym, false)
}

// SetDocGlobal registers a global introduced by a document, both in _G
// and in the document's own globals map.
func (e *Environment) SetDocGlobal(uri, name string, sym *Symbol) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Type().Set(name, sym, false)
	doc := e.docGlobals[uri]
	if doc == nil {
		doc = make(map[string]*Symbol)
		e.docGlobals[uri] = doc
	}
	doc[name] = sym
}

// DocGlobals returns a copy of the global names a document registered.
func (e *Environment) DocGlobals(uri string) map[string]*Symbol {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]*Symbol, len(e.docGlobals[uri]))
	for k, v := range e.docGlobals[uri] {
		out[k] = v
	}
	return out
}

// MergeModule inserts a module symbol under its name, or merges its
// fields into an existing module of the same name. The rule is monotone:
// valid existing entries win, absent or stale entries are replaced.
// Entries that disappeared from the new analysis are not removed.
func (e *Environment) MergeModule(sym *Symbol) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.Type()
	existing := g.Get(sym.Name)
	if existing == nil || !existing.Valid() {
		g.Set(sym.Name, sym, false)
		return
	}
	origType := tableOf(existing.Type)
	newType := tableOf(sym.Type)
	if origType == nil || newType == nil {
		g.Set(sym.Name, sym, false)
		return
	}
	mergeTableFields(origType, newType)
}

// mergeTableFields copies fields from src that are absent or stale on
// dst. Validity is only inspected on symbols, never on bare type values.
func mergeTableFields(dst, src *TableType) {
	for _, name := range src.Names() {
		field := src.Get(name)
		if field == nil {
			continue
		}
		orig := dst.Get(name)
		if orig == nil || !orig.Valid() {
			dst.Set(name, field, true)
		}
	}
}
