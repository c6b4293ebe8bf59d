// Package symbols defines the symbol model produced by the analyzer: named
// declarations, their inferred types, lexical scopes, and the process-wide
// global environment shared across documents.
package symbols

import (
	"github.com/google/uuid"

	"github.com/isshe/luacoderassist/internal/srcrange"
)

// Kind classifies a declaration for outlines and completion ranking.
type Kind int

const (
	ModuleSymbol Kind = iota
	ClassSymbol
	TableSymbol
	FunctionSymbol
	ParameterSymbol
	VariableSymbol
	PropertySymbol
)

var kindNames = map[Kind]string{
	ModuleSymbol:    "module",
	ClassSymbol:     "class",
	TableSymbol:     "table",
	FunctionSymbol:  "function",
	ParameterSymbol: "parameter",
	VariableSymbol:  "variable",
	PropertySymbol:  "property",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// State is shared by reference among all symbols created in one analysis
// pass. Re-analyzing a document flips Valid to false on the old pass, so
// consumers holding stale references see them as invalid in bulk. Pass
// identifies the analysis that produced the symbols, for log correlation.
type State struct {
	Pass  uuid.UUID
	Valid bool
}

func NewState() *State {
	return &State{Pass: uuid.New(), Valid: true}
}

// Symbol is a named declaration.
//
// Location covers the defining identifier token, Range the definition
// expression, and Scope the span over which the name resolves; the three
// nest: Location within Range within Scope.
type Symbol struct {
	Name     string
	Location srcrange.Range
	Range    srcrange.Range
	Scope    srcrange.Range
	IsLocal  bool
	URI      string
	Kind     Kind
	Type     Type
	State    *State
	Children []*Symbol
}

func (s *Symbol) AddChild(c *Symbol) {
	s.Children = append(s.Children, c)
}

// Valid reports whether the symbol belongs to a still-current analysis.
func (s *Symbol) Valid() bool {
	return s.State != nil && s.State.Valid
}

// VisibleAt reports whether the symbol resolves at the given position:
// the position must be inside the symbol's scope and not precede its
// declaration.
func (s *Symbol) VisibleAt(pos int) bool {
	return s.Location.Start <= pos && s.Scope.Contains(pos)
}
