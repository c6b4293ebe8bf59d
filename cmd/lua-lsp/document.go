package main

import (
	"log"
	"sync"

	"github.com/isshe/luacoderassist/internal/analyzer"
	"github.com/isshe/luacoderassist/internal/diagnostics"
	"github.com/isshe/luacoderassist/internal/lexer"
	"github.com/isshe/luacoderassist/internal/parser"
	"github.com/isshe/luacoderassist/internal/pipeline"
	"github.com/isshe/luacoderassist/internal/symbols"
)

// DocumentState stores the state of a single open document.
type DocumentState struct {
	Content string
	Module  *symbols.Symbol
	Errors  []*diagnostics.Error
	Mu      sync.RWMutex
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	content := params.TextDocument.Text

	var previous *symbols.Symbol
	if old := s.document(uri); old != nil {
		old.Mu.RLock()
		previous = old.Module
		old.Mu.RUnlock()
	}

	docState := &DocumentState{Content: content}
	docState.Module, docState.Errors = s.analyzeDocument(content, uri, previous)

	s.mu.Lock()
	s.documents[uri] = docState
	s.mu.Unlock()

	log.Printf("opened %s (pass %s)", uri, passID(docState.Module))
	return s.publishDiagnostics(uri, docState.Errors)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	content := params.ContentChanges[0].Text

	s.mu.RLock()
	docState, exists := s.documents[uri]
	s.mu.RUnlock()
	if !exists {
		return s.handleDidOpen(DidOpenTextDocumentParams{
			TextDocument: TextDocumentItem{URI: uri, Text: content},
		})
	}

	docState.Mu.Lock()
	previous := docState.Module
	docState.Mu.Unlock()

	module, errs := s.analyzeDocument(content, uri, previous)

	docState.Mu.Lock()
	docState.Content = content
	docState.Module = module
	docState.Errors = errs
	docState.Mu.Unlock()

	log.Printf("changed %s (pass %s)", uri, passID(module))
	return s.publishDiagnostics(uri, errs)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
	log.Printf("closed %s", params.TextDocument.URI)
	return nil
}

// analyzeDocument runs the lexer/parser/analyzer pipeline. The previous
// module, if any, is invalidated first so every consumer still holding
// its symbols sees them as stale.
func (s *LanguageServer) analyzeDocument(content, uri string, previous *symbols.Symbol) (*symbols.Symbol, []*diagnostics.Error) {
	if max := s.cfg.MaxFileSizeKB; max > 0 && len(content) > max*1024 {
		log.Printf("skipping %s: larger than %d KB", uri, max)
		return nil, nil
	}
	if previous != nil && previous.State != nil {
		previous.State.Valid = false
	}

	ctx := pipeline.NewContext(content, uri)
	ctx.Env = s.env
	ctx = pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&analyzer.Processor{},
	).Run(ctx)
	return ctx.Module, ctx.Errors
}

func (s *LanguageServer) publishDiagnostics(uri string, errs []*diagnostics.Error) error {
	s.mu.RLock()
	docState := s.documents[uri]
	s.mu.RUnlock()

	content := ""
	if docState != nil {
		docState.Mu.RLock()
		content = docState.Content
		docState.Mu.RUnlock()
	}

	diags := make([]Diagnostic, 0, len(errs))
	for _, err := range errs {
		diags = append(diags, Diagnostic{
			Range:    rangeForOffsets(content, err.Pos, err.End),
			Severity: severityError,
			Code:     err.Code,
			Message:  err.Message,
			Source:   "lua-lsp",
		})
	}
	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  PublishDiagnosticsParams{URI: uri, Diagnostics: diags},
	})
}

// document returns the state of an open document, or nil.
func (s *LanguageServer) document(uri string) *DocumentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[uri]
}

func passID(module *symbols.Symbol) string {
	if module == nil || module.State == nil {
		return "none"
	}
	return module.State.Pass.String()
}
