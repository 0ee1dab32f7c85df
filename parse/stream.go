// Package parse adapts the underlying YAML parser into the flat per-document
// event streams the loader buffers. The lexical grammar itself is the
// parser's business; this package only flattens its syntax tree, recomputes
// byte offsets, and converts parser failures into positioned syntax errors.
package parse

import (
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	gtoken "github.com/goccy/go-yaml/token"

	"github.com/yamel-format/yamel/errs"
	"github.com/yamel-format/yamel/event"
)

// Doc is one document's flattened event stream. When the document could not
// be parsed, Events is empty and Err holds the positioned syntax error.
type Doc struct {
	Events []event.Event
	Marks  []event.Mark
	Err    error
}

// Stream pulls successive documents out of one source text.
type Stream struct {
	src   []byte
	lines []int // byte offset of each line start, line 1 first
	fatal error

	parsed bool
	queue  []*Doc
	chunks []chunk
}

// chunk is a document-sized slice of the source, produced when the source as
// a whole fails to parse. Parsing per chunk lets earlier documents decode
// even when a later one is malformed.
type chunk struct {
	data     []byte
	baseLine int // newline count before the chunk start
}

// New builds a stream over data. Errors, including invalid UTF-8, are
// deferred to the documents they affect.
func New(data []byte) *Stream {
	s := &Stream{src: data, lines: lineIndex(data)}
	if !utf8.Valid(data) {
		s.fatal = errs.InvalidUTF8()
	}
	return s
}

// FromReader reads r fully and builds a stream. Read errors are deferred.
func FromReader(r io.Reader) *Stream {
	data, err := io.ReadAll(r)
	s := New(data)
	if err != nil && s.fatal == nil {
		s.fatal = errs.IO(err)
	}
	return s
}

// Source returns the raw input. Scalar Repr slices point into it.
func (s *Stream) Source() []byte {
	return s.src
}

// Next returns the next document, or ok=false when the stream is exhausted.
// A fatal source error replays on every call, so a broken stream stays
// consistently broken instead of re-attempting the parse.
func (s *Stream) Next() (*Doc, bool) {
	if s.fatal != nil {
		return &Doc{Err: errs.Shared(s.fatal)}, true
	}
	if !s.parsed {
		s.parsed = true
		s.parse()
	}
	for {
		if len(s.queue) > 0 {
			d := s.queue[0]
			s.queue = s.queue[1:]
			return d, true
		}
		if len(s.chunks) == 0 {
			return nil, false
		}
		c := s.chunks[0]
		s.chunks = s.chunks[1:]
		s.parseChunk(c)
	}
}

func (s *Stream) parse() {
	f, err := parser.ParseBytes(s.src, 0)
	if err == nil {
		for _, d := range f.Docs {
			if doc := s.flattenDoc(d, 0); doc != nil {
				s.queue = append(s.queue, doc)
			}
		}
		return
	}
	// The source does not parse as a whole. Retry per document so every
	// document before (and after) the broken one still loads; the error
	// stays attached to the document that owns it.
	s.chunks = splitChunks(s.src)
}

func (s *Stream) parseChunk(c chunk) {
	f, err := parser.ParseBytes(c.data, 0)
	if err != nil {
		s.queue = append(s.queue, &Doc{Err: s.syntaxError(err, c.baseLine)})
		return
	}
	for _, d := range f.Docs {
		if doc := s.flattenDoc(d, c.baseLine); doc != nil {
			s.queue = append(s.queue, doc)
		}
	}
}

// splitChunks cuts the source at every line whose first column starts a
// document marker. The marker line belongs to the chunk it opens.
func splitChunks(src []byte) []chunk {
	var out []chunk
	start, startLine := 0, 0
	off, line := 0, 0
	for off < len(src) {
		end := off
		for end < len(src) && src[end] != '\n' {
			end++
		}
		if off > 0 && isDocMarker(src[off:end]) {
			out = append(out, chunk{data: src[start:off], baseLine: startLine})
			start, startLine = off, line
		}
		off = end + 1
		line++
	}
	out = append(out, chunk{data: src[start:], baseLine: startLine})
	return out
}

func isDocMarker(line []byte) bool {
	if !strings.HasPrefix(string(line), "---") {
		return false
	}
	if len(line) == 3 {
		return true
	}
	switch line[3] {
	case ' ', '\t', '\r':
		return true
	}
	return false
}

var errPosRE = regexp.MustCompile(`^\[(\d+):(\d+)\]\s*`)

// syntaxError converts a parser error into a deferred errs syntax error,
// recovering the position from the error's "[line:column]" prefix when
// present and translating chunk-local lines to source lines.
func (s *Stream) syntaxError(err error, baseLine int) error {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	m := errPosRE.FindStringSubmatch(msg)
	if m == nil {
		return errs.Syntax(msg)
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	mark := s.markAt(baseLine+line, col)
	return errs.SyntaxAt(strings.TrimSpace(msg[len(m[0]):]), mark)
}

func lineIndex(src []byte) []int {
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

// markAt resolves a 1-based line/column pair to a mark. Columns count
// characters, so the offset walk advances rune by rune.
func (s *Stream) markAt(line, col int) event.Mark {
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	var off int
	if line-1 < len(s.lines) {
		off = s.lines[line-1]
		for i := 1; i < col && off < len(s.src) && s.src[off] != '\n'; i++ {
			_, n := utf8.DecodeRune(s.src[off:])
			off += n
		}
	} else {
		off = len(s.src)
	}
	return event.Mark{Offset: off, Line: line, Column: col}
}

// markFromOffset is the inverse of markAt: binary search the line index,
// then count runes for the column.
func (s *Stream) markFromOffset(off int) event.Mark {
	if off > len(s.src) {
		off = len(s.src)
	}
	line := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > off })
	col := 1
	for i := s.lines[line-1]; i < off; col++ {
		_, n := utf8.DecodeRune(s.src[i:])
		i += n
	}
	return event.Mark{Offset: off, Line: line, Column: col}
}

func (s *Stream) tokenMark(tok *gtoken.Token, lineOff int) event.Mark {
	if tok == nil || tok.Position == nil {
		return event.Mark{Line: 1, Column: 1}
	}
	return s.markAt(tok.Position.Line+lineOff, tok.Position.Column)
}

func (s *Stream) flattenDoc(d *ast.DocumentNode, lineOff int) *Doc {
	if d == nil || (d.Body == nil && d.Start == nil) {
		return nil
	}
	f := &flattener{s: s, lineOff: lineOff}
	if d.Body == nil {
		// Explicit "---" with no content is an empty document whose
		// value is null.
		mark := s.tokenMark(d.Start, lineOff)
		f.emit(event.Event{Kind: event.KindScalar, Scalar: &event.Scalar{}}, mark, mark.Offset)
		return &Doc{Events: f.events, Marks: f.marks}
	}
	if err := f.node(d.Body, "", ""); err != nil {
		return &Doc{Err: err}
	}
	return &Doc{Events: f.events, Marks: f.marks}
}
