package main

import (
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

// exitFunc ends the process when the client sends the exit notification.
var exitFunc = func() { os.Exit(0) }

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr) // stdout carries the LSP protocol
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		log.SetPrefix("\x1b[36mlua-lsp:\x1b[0m ")
	} else {
		log.SetPrefix("lua-lsp: ")
	}

	server := NewLanguageServer(os.Stdout, nil)
	server.Start(os.Stdin)
}
