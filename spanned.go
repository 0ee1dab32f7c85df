package yamel

import "github.com/yamel-format/yamel/decode"

// Spanned wraps any decodable value with its location in the source text:
// the starting byte offset, the byte length, and the document path it was
// reached by. The binder recognizes the wrapper anywhere a value is
// expected.
type Spanned[T any] struct {
	Value T
	Start int
	Len   int
	Path  string
}

// Span returns the value's byte range as [start, end).
func (s *Spanned[T]) Span() (start, end int) {
	return s.Start, s.Start + s.Len
}

func (s *Spanned[T]) spanValue() any {
	return &s.Value
}

func (s *Spanned[T]) setSpan(sp decode.Span) {
	s.Start, s.Len, s.Path = sp.Start, sp.Len, sp.Path
}
