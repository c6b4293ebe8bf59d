// Package cmd implements the luasym command line interface, a developer
// tool for inspecting the symbol model outside an editor.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "luasym",
	Short: "Inspect the symbol model of Lua documents",
	Long: `luasym runs the Lua semantic analyzer on source files and prints
what a language-service client would see: the document outline with
inferred types, or the parse diagnostics.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
