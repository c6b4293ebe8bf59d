package main

import (
	"log"

	"github.com/isshe/luacoderassist/internal/config"
	"github.com/isshe/luacoderassist/internal/srcrange"
	"github.com/isshe/luacoderassist/internal/symbols"
)

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	if params.RootURI != nil && *params.RootURI != "" {
		s.rootPath = s.uriToPath(*params.RootURI)
	} else if params.RootPath != nil && *params.RootPath != "" {
		s.rootPath = *params.RootPath
	}

	if s.rootPath != "" {
		cfg, err := config.Load(s.rootPath)
		if err != nil {
			log.Printf("config: %v", err)
		} else {
			s.cfg = cfg
		}
	}
	s.seedPreloads()
	log.Printf("initialized (lua %s, root %q)", s.cfg.LuaVersion, s.rootPath)

	return s.sendResult(id, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:       1, // full sync
			HoverProvider:          true,
			DefinitionProvider:     true,
			DocumentSymbolProvider: true,
		},
	})
}

// seedPreloads registers the configured global names so documents can
// reference host-injected values without triggering unknown lookups.
func (s *LanguageServer) seedPreloads() {
	for _, name := range s.cfg.Preload {
		if s.env.Get(name) != nil {
			continue
		}
		s.env.Set(name, &symbols.Symbol{
			Name:     name,
			Location: srcrange.New(0, 0),
			Range:    symbols.VirtualRange,
			Scope:    symbols.VirtualRange,
			URI:      "preload://" + name,
			Kind:     symbols.VariableSymbol,
			Type:     symbols.Any,
			State:    symbols.NewState(),
		})
	}
}

func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	sym, content := s.symbolAtPosition(params.TextDocument.URI, params.Position)
	if sym == nil {
		return s.sendResult(id, nil)
	}
	hoverRange := rangeForSpan(content, sym.Location)
	return s.sendResult(id, Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: "```lua\n" + FormatSymbol(sym) + "\n```",
		},
		Range: &hoverRange,
	})
}

func (s *LanguageServer) handleDefinition(id interface{}, params DefinitionParams) error {
	sym, content := s.symbolAtPosition(params.TextDocument.URI, params.Position)
	if sym == nil {
		return s.sendResult(id, nil)
	}
	uri := params.TextDocument.URI
	if sym.URI != "" && sym.URI != uri {
		// Defined by another document; jumping there needs that
		// document's text for position mapping, so stay silent.
		return s.sendResult(id, nil)
	}
	return s.sendResult(id, Location{
		URI:   uri,
		Range: rangeForSpan(content, sym.Location),
	})
}

func (s *LanguageServer) handleDocumentSymbol(id interface{}, params DocumentSymbolParams) error {
	docState := s.document(params.TextDocument.URI)
	if docState == nil {
		return s.sendResult(id, nil)
	}
	docState.Mu.RLock()
	module := docState.Module
	content := docState.Content
	docState.Mu.RUnlock()
	if module == nil {
		return s.sendResult(id, nil)
	}

	out := make([]DocumentSymbol, 0, len(module.Children))
	for _, child := range module.Children {
		out = append(out, documentSymbolTree(child, content, 0))
	}
	return s.sendResult(id, out)
}

func documentSymbolTree(sym *symbols.Symbol, content string, depth int) DocumentSymbol {
	ds := DocumentSymbol{
		Name:           sym.Name,
		Detail:         FormatType(sym.Type),
		Kind:           lspSymbolKind(sym.Kind),
		Range:          rangeForSpan(content, clampRange(sym.Range, len(content))),
		SelectionRange: rangeForSpan(content, clampRange(sym.Location, len(content))),
	}
	if depth >= 8 {
		return ds
	}
	for _, child := range sym.Children {
		ds.Children = append(ds.Children, documentSymbolTree(child, content, depth+1))
	}
	return ds
}

func clampRange(r srcrange.Range, max int) srcrange.Range {
	if r.Start > max {
		r.Start = max
	}
	if r.End > max {
		r.End = max
	}
	return r
}

// symbolAtPosition finds the symbol named or declared at an editor
// position: the declaration whose identifier covers the offset wins,
// then a scope-aware search for the word under the cursor.
func (s *LanguageServer) symbolAtPosition(uri string, pos Position) (*symbols.Symbol, string) {
	docState := s.document(uri)
	if docState == nil {
		return nil, ""
	}
	docState.Mu.RLock()
	content := docState.Content
	module := docState.Module
	docState.Mu.RUnlock()
	if module == nil {
		return nil, content
	}
	mtype, ok := module.Type.(*symbols.ModuleType)
	if !ok {
		return nil, content
	}

	offset := offsetForPosition(content, pos)
	if sym := mtype.Menv.Stack.Search(func(sm *symbols.Symbol) bool {
		return sm.Location.Contains(offset)
	}); sym != nil {
		return sym, content
	}

	word := getWordAtPosition(content, pos.Line, pos.Character)
	if word == "" {
		return nil, content
	}
	if sym := mtype.Search(word, offset); sym != nil {
		return sym, content
	}
	return nil, content
}
