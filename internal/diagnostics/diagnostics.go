// Package diagnostics defines positioned error values shared by the
// parser and the language-server host.
package diagnostics

import (
	"fmt"

	"github.com/isshe/luacoderassist/internal/token"
)

// Error is a single positioned diagnostic. Line and Column are 1-based;
// Pos and End are byte offsets into the source.
type Error struct {
	Code    string
	Message string
	File    string
	Line    int
	Column  int
	Pos     int
	End     int
}

// NewError builds a diagnostic anchored at a token.
func NewError(code string, tok token.Token, message string) *Error {
	end := tok.End
	if end < tok.Pos {
		end = tok.Pos
	}
	return &Error{
		Code:    code,
		Message: message,
		Line:    tok.Line,
		Column:  tok.Column,
		Pos:     tok.Pos,
		End:     end,
	}
}

func (e *Error) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: [%s] %s", file, e.Line, e.Column, e.Code, e.Message)
}
