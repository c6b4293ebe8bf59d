package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/isshe/luacoderassist/internal/config"
	"github.com/isshe/luacoderassist/internal/symbols"
)

// LanguageServer hosts documents and serves symbol queries over stdio.
type LanguageServer struct {
	documents map[string]*DocumentState
	mu        sync.RWMutex
	writer    io.Writer
	writeMu   sync.Mutex
	rootPath  string
	cfg       *config.Config
	env       *symbols.Environment
}

func NewLanguageServer(writer io.Writer, env *symbols.Environment) *LanguageServer {
	if env == nil {
		env = symbols.Global()
	}
	return &LanguageServer{
		documents: make(map[string]*DocumentState),
		writer:    writer,
		cfg:       config.Default(),
		env:       env,
	}
}

// Start reads Content-Length framed JSON-RPC messages until EOF.
func (s *LanguageServer) Start(reader io.Reader) {
	r := bufio.NewReader(reader)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("error reading header: %v", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		contentLength, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("error parsing Content-Length: %v", err)
			continue
		}
		// Consume remaining headers up to the blank separator line.
		for {
			sep, err := r.ReadString('\n')
			if err != nil {
				log.Printf("error reading separator: %v", err)
				return
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}
		content := make([]byte, contentLength)
		if _, err := io.ReadFull(r, content); err != nil {
			log.Printf("error reading content: %v", err)
			return
		}
		if err := s.handleMessage(content); err != nil {
			log.Printf("error handling message: %v", err)
		}
	}
}

// envelope is the common frame of requests and notifications.
type envelope struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (s *LanguageServer) handleMessage(content []byte) error {
	var msg envelope
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %v", err)
	}
	if msg.ID != nil {
		return s.handleRequest(msg)
	}
	return s.handleNotification(msg)
}

func (s *LanguageServer) handleRequest(msg envelope) error {
	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleInitialize(msg.ID, params)

	case "shutdown":
		return s.sendResult(msg.ID, nil)

	case "textDocument/hover":
		var params HoverParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleHover(msg.ID, params)

	case "textDocument/definition":
		var params DefinitionParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDefinition(msg.ID, params)

	case "textDocument/documentSymbol":
		var params DocumentSymbolParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDocumentSymbol(msg.ID, params)

	default:
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      msg.ID,
			Error: &Error{
				Code:    codeMethodNotFound,
				Message: fmt.Sprintf("Method not found: %s", msg.Method),
			},
		})
	}
}

func (s *LanguageServer) handleNotification(msg envelope) error {
	switch msg.Method {
	case "initialized":
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidClose(params)

	case "exit":
		exitFunc()
		return nil

	default:
		return nil
	}
}

func unmarshalParams(raw json.RawMessage, out interface{}) error {
	if raw == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (s *LanguageServer) sendResult(id, result interface{}) error {
	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: result})
}

func (s *LanguageServer) sendResponse(response ResponseMessage) error {
	return s.sendMessage(response)
}

func (s *LanguageServer) sendNotification(notification NotificationMessage) error {
	return s.sendMessage(notification)
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}

func (s *LanguageServer) uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
