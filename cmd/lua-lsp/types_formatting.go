package main

import (
	"strings"

	"github.com/isshe/luacoderassist/internal/symbols"
	"github.com/isshe/luacoderassist/internal/typequery"
)

// FormatType renders a type for hover display, forcing lazy references
// through the type-query engine first.
func FormatType(t symbols.Type) string {
	return formatType(t, 0)
}

func formatType(t symbols.Type, depth int) string {
	if depth > 3 {
		return "..."
	}
	switch typ := typequery.Force(t).(type) {
	case *symbols.BasicType:
		return typ.Tag
	case *symbols.ModuleType:
		return "module"
	case *symbols.FunctionType:
		var params []string
		for _, p := range typ.Params() {
			if p == nil {
				params = append(params, "?")
				continue
			}
			params = append(params, p.Name)
		}
		sig := "function(" + strings.Join(params, ", ") + ")"
		if rets := typ.Returns(); len(rets) > 0 {
			var out []string
			for _, r := range rets {
				if r == nil {
					out = append(out, "any")
					continue
				}
				out = append(out, formatType(r.Type, depth+1))
			}
			sig += " -> " + strings.Join(out, ", ")
		}
		return sig
	case *symbols.TableType:
		names := typ.Names()
		if len(names) == 0 {
			return "table {}"
		}
		shown := names
		truncated := false
		if len(shown) > 5 {
			shown = shown[:5]
			truncated = true
		}
		out := "table { " + strings.Join(shown, ", ")
		if truncated {
			out += ", ..."
		}
		return out + " }"
	}
	return "any"
}

// FormatSymbol renders the hover line for a symbol.
func FormatSymbol(sym *symbols.Symbol) string {
	qualifier := "global"
	if sym.IsLocal {
		qualifier = "local"
	}
	switch sym.Kind {
	case symbols.ModuleSymbol:
		return "module " + sym.Name
	case symbols.ParameterSymbol:
		return "parameter " + sym.Name + ": " + FormatType(sym.Type)
	default:
		return qualifier + " " + sym.Name + ": " + FormatType(sym.Type)
	}
}

func lspSymbolKind(kind symbols.Kind) int {
	switch kind {
	case symbols.ModuleSymbol:
		return symbolKindModule
	case symbols.ClassSymbol:
		return symbolKindClass
	case symbols.TableSymbol:
		return symbolKindObject
	case symbols.FunctionSymbol:
		return symbolKindFunction
	case symbols.PropertySymbol:
		return symbolKindProperty
	default:
		return symbolKindVariable
	}
}
