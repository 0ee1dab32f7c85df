package event

import "fmt"

// Mark is a position in the source text: a byte offset plus the 1-based line
// and column it falls on.
type Mark struct {
	Offset int
	Line   int
	Column int
}

// IsZero reports whether the mark carries no line/column information.
func (m Mark) IsZero() bool {
	return m.Line == 0 && m.Column == 0
}

func (m Mark) String() string {
	if m.IsZero() {
		return fmt.Sprintf("position %d", m.Offset)
	}
	return fmt.Sprintf("line %d column %d", m.Line, m.Column)
}
