package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/isshe/luacoderassist/internal/analyzer"
	"github.com/isshe/luacoderassist/internal/symbols"
	"github.com/isshe/luacoderassist/internal/typequery"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <file.lua>",
	Short: "Print the symbol outline of a Lua file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			exitWithError("%v", err)
		}
		env := symbols.NewEnvironment()
		module, _ := analyzer.AnalyzeIn(env, string(data), args[0])
		fmt.Printf("%s %s\n", module.Kind, module.Name)
		for _, child := range module.Children {
			printOutline(child, 1)
		}
		if mtype, ok := module.Type.(*symbols.ModuleType); ok {
			for _, imp := range mtype.Imports {
				fmt.Printf("  import %s\n", imp.Name)
			}
		}
	},
}

func printOutline(sym *symbols.Symbol, depth int) {
	if depth > 8 {
		return
	}
	fmt.Printf("%s%s %s: %s\n", strings.Repeat("  ", depth), sym.Kind, sym.Name, shortType(sym.Type))
	for _, child := range sym.Children {
		printOutline(child, depth+1)
	}
}

func shortType(t symbols.Type) string {
	switch typ := typequery.Force(t).(type) {
	case *symbols.BasicType:
		return typ.Tag
	case *symbols.FunctionType:
		var params []string
		for _, p := range typ.Params() {
			if p == nil {
				params = append(params, "?")
			} else {
				params = append(params, p.Name)
			}
		}
		return "function(" + strings.Join(params, ", ") + ")"
	case *symbols.ModuleType:
		return "module"
	case *symbols.TableType:
		return fmt.Sprintf("table(%d fields)", typ.Len())
	}
	return "any"
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}
