package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isshe/luacoderassist/internal/parser"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.lua>",
	Short: "Parse a Lua file and report diagnostics",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			exitWithError("%v", err)
		}
		_, errs := parser.Parse(string(data))
		for _, e := range errs {
			e.File = args[0]
			fmt.Println(e.Error())
		}
		if len(errs) > 0 {
			os.Exit(1)
		}
		fmt.Printf("%s: ok\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
