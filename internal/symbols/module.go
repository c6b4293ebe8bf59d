package symbols

// ModuleEnv is the per-document environment of a module: its scope stack
// and the map of global names this document introduced into _G.
type ModuleEnv struct {
	Stack   *ScopeStack
	Globals map[string]*Symbol
}

// ModuleType is the type of a whole document. It is a table (the module
// fields) extended with the module environment, the module-mode flag set
// by a top-level module(...) call, the chunk's return symbol, and the
// lazy symbols standing for require'd modules.
type ModuleType struct {
	TableType
	Menv       *ModuleEnv
	ModuleMode bool
	Return     *Symbol
	Imports    []*Symbol
}

func NewModuleType() *ModuleType {
	return &ModuleType{
		TableType: *NewTableType(),
		Menv: &ModuleEnv{
			Stack:   NewScopeStack(),
			Globals: make(map[string]*Symbol),
		},
	}
}

func (m *ModuleType) String() string { return "module" }

// Import appends a lazy symbol standing for a require'd module.
func (m *ModuleType) Import(sym *Symbol) {
	m.Imports = append(m.Imports, sym)
}

// FindImport returns the import with the given name, if any.
func (m *ModuleType) FindImport(name string) *Symbol {
	for _, imp := range m.Imports {
		if imp.Name == name {
			return imp
		}
	}
	return nil
}

// Search resolves a name at a source position: the document's scope
// stack first (position-filtered), then the module's own fields, then
// the metatable's __index chain, which for modules ends at _G.
func (m *ModuleType) Search(name string, pos int) *Symbol {
	if sym := m.Menv.Stack.SearchName(name, pos); sym != nil {
		return sym
	}
	if sym := m.Get(name); sym != nil {
		return sym
	}
	return m.Fallback(name)
}

// Fallback resolves a name through the metatable __index chain.
func (m *ModuleType) Fallback(name string) *Symbol {
	seen := 0
	t := &m.TableType
	for t.Metatable != nil && seen < 8 {
		seen++
		meta := tableOf(t.Metatable.Type)
		if meta == nil {
			return nil
		}
		index := meta.Get("__index")
		if index == nil {
			return nil
		}
		next := tableOf(index.Type)
		if next == nil {
			return nil
		}
		if sym := next.Get(name); sym != nil {
			return sym
		}
		t = next
	}
	return nil
}

// tableOf unwraps a type to its table part, if it has one.
func tableOf(t Type) *TableType {
	switch tt := t.(type) {
	case *TableType:
		return tt
	case *ModuleType:
		return &tt.TableType
	}
	return nil
}

// TableOf exposes the table part of a type to other packages.
func TableOf(t Type) *TableType {
	return tableOf(t)
}
