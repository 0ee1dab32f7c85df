package parse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
	gtoken "github.com/goccy/go-yaml/token"

	"github.com/yamel-format/yamel/errs"
	"github.com/yamel-format/yamel/event"
)

// flattener walks one document's syntax tree and appends (event, mark)
// pairs in source order. It also tracks the exclusive end offset of the
// last node so block containers can synthesize their End marks; the parser
// only reports where nodes start.
type flattener struct {
	s       *Stream
	lineOff int
	events  []event.Event
	marks   []event.Mark
	end     int
}

func (f *flattener) emit(ev event.Event, mark event.Mark, end int) {
	f.events = append(f.events, ev)
	f.marks = append(f.marks, mark)
	f.end = end
}

func (f *flattener) node(n ast.Node, anchor, tag string) error {
	switch x := n.(type) {
	case nil:
		// a hole in the tree ("- " with no entry); an empty plain scalar
		mark := f.s.markFromOffset(f.end)
		f.emit(event.Event{
			Kind:   event.KindScalar,
			Anchor: anchor,
			Scalar: &event.Scalar{Tag: tag},
		}, mark, f.end)
		return nil
	case *ast.AnchorNode:
		name := ""
		if x.Name != nil {
			name = x.Name.GetToken().Value
		}
		return f.node(x.Value, name, tag)
	case *ast.TagNode:
		t := tag
		if x.Start != nil {
			t = normalizeTag(x.Start.Value)
		}
		if x.Value == nil {
			mark := f.s.tokenMark(x.Start, f.lineOff)
			f.emit(event.Event{
				Kind:   event.KindScalar,
				Anchor: anchor,
				Scalar: &event.Scalar{Tag: t},
			}, mark, mark.Offset)
			return nil
		}
		return f.node(x.Value, anchor, t)
	case *ast.AliasNode:
		return f.alias(x)
	case *ast.MappingKeyNode:
		return f.node(x.Value, anchor, tag)
	case *ast.SequenceNode:
		return f.sequence(x, anchor)
	case *ast.MappingNode:
		return f.mapping(x, anchor)
	case *ast.MappingValueNode:
		// a one-pair block mapping comes through unwrapped
		mark := f.s.tokenMark(x.Key.GetToken(), f.lineOff)
		f.emit(event.Event{Kind: event.KindMappingStart, Anchor: anchor}, mark, mark.Offset)
		if err := f.pair(x); err != nil {
			return err
		}
		f.emit(event.Event{Kind: event.KindMappingEnd}, f.s.markFromOffset(f.end), f.end)
		return nil
	case *ast.StringNode:
		return f.scalar(x.GetToken(), []byte(x.Value), styleOf(x.GetToken()), anchor, tag)
	case *ast.LiteralNode:
		st := event.Literal
		if x.Start != nil && strings.HasPrefix(x.Start.Value, ">") {
			st = event.Folded
		}
		var val string
		if x.Value != nil {
			val = x.Value.Value
		}
		return f.scalar(x.Start, []byte(val), st, anchor, tag)
	case *ast.NullNode, *ast.BoolNode, *ast.IntegerNode, *ast.FloatNode,
		*ast.InfinityNode, *ast.NanNode, *ast.MergeKeyNode:
		tok := n.GetToken()
		return f.scalar(tok, []byte(tok.Value), styleOf(tok), anchor, tag)
	default:
		return errs.Syntax(fmt.Sprintf("unsupported YAML node %T", n))
	}
}

func (f *flattener) scalar(tok *gtoken.Token, val []byte, style event.Style, anchor, tag string) error {
	mark := f.s.tokenMark(tok, f.lineOff)
	repr, end := f.repr(mark.Offset, val, style)
	f.emit(event.Event{
		Kind:   event.KindScalar,
		Anchor: anchor,
		Scalar: &event.Scalar{Tag: tag, Style: style, Value: val, Repr: repr},
	}, mark, end)
	return nil
}

// alias emits a reference event. The loader fills in the target index; -1
// means unresolved.
func (f *flattener) alias(x *ast.AliasNode) error {
	name := ""
	if x.Value != nil {
		name = x.Value.GetToken().Value
	}
	mark := f.s.tokenMark(x.GetToken(), f.lineOff)
	src := f.s.src
	// the mark must land on the '*' indicator, not the name after it
	if mark.Offset > 0 && mark.Offset <= len(src) &&
		(mark.Offset == len(src) || src[mark.Offset] != '*') && src[mark.Offset-1] == '*' {
		mark.Offset--
		mark.Column--
	}
	f.emit(event.Event{Kind: event.KindAlias, Anchor: name, Alias: -1}, mark, mark.Offset+1+len(name))
	return nil
}

func (f *flattener) sequence(x *ast.SequenceNode, anchor string) error {
	var mark event.Mark
	if x.Start != nil {
		mark = f.s.tokenMark(x.Start, f.lineOff)
	} else {
		mark = f.s.tokenMark(x.GetToken(), f.lineOff)
	}
	f.emit(event.Event{Kind: event.KindSequenceStart, Anchor: anchor}, mark, mark.Offset)
	for _, v := range x.Values {
		if err := f.node(v, "", ""); err != nil {
			return err
		}
	}
	if x.IsFlowStyle {
		// the end event sits on the closing bracket itself
		if i := matchClose(f.s.src, mark.Offset); i >= 0 {
			f.emit(event.Event{Kind: event.KindSequenceEnd}, f.s.markFromOffset(i), i+1)
			return nil
		}
	}
	f.emit(event.Event{Kind: event.KindSequenceEnd}, f.s.markFromOffset(f.end), f.end)
	return nil
}

func (f *flattener) mapping(x *ast.MappingNode, anchor string) error {
	var mark event.Mark
	switch {
	case x.IsFlowStyle:
		mark = f.s.tokenMark(x.Start, f.lineOff)
	case len(x.Values) > 0 && x.Values[0].Key != nil:
		// block mappings start at their first key
		mark = f.s.tokenMark(x.Values[0].Key.GetToken(), f.lineOff)
	default:
		mark = f.s.tokenMark(x.GetToken(), f.lineOff)
	}
	f.emit(event.Event{Kind: event.KindMappingStart, Anchor: anchor}, mark, mark.Offset)
	for _, kv := range x.Values {
		if err := f.pair(kv); err != nil {
			return err
		}
	}
	if x.IsFlowStyle {
		if i := matchClose(f.s.src, mark.Offset); i >= 0 {
			f.emit(event.Event{Kind: event.KindMappingEnd}, f.s.markFromOffset(i), i+1)
			return nil
		}
	}
	f.emit(event.Event{Kind: event.KindMappingEnd}, f.s.markFromOffset(f.end), f.end)
	return nil
}

func (f *flattener) pair(kv *ast.MappingValueNode) error {
	if err := f.node(kv.Key, "", ""); err != nil {
		return err
	}
	return f.node(kv.Value, "", "")
}

// repr returns the contiguous source window covering the scalar's
// representation when the decoded bytes provably match it, plus the
// exclusive end offset of the representation. Block scalars never borrow
// and their end is approximated by their header line.
func (f *flattener) repr(off int, val []byte, style event.Style) ([]byte, int) {
	src := f.s.src
	switch style {
	case event.Plain:
		end := off + len(val)
		if end <= len(src) && bytes.Equal(src[off:end], val) {
			return src[off:end], end
		}
		return nil, lineEnd(src, off)
	case event.SingleQuoted, event.DoubleQuoted:
		q := byte('\'')
		if style == event.DoubleQuoted {
			q = '"'
		}
		end := off + len(val) + 2
		if end <= len(src) && src[off] == q && src[end-1] == q && bytes.Equal(src[off+1:end-1], val) {
			return src[off:end], end
		}
		return nil, closeQuote(src, off, q)
	default:
		return nil, lineEnd(src, off)
	}
}

func lineEnd(src []byte, off int) int {
	for i := off; i < len(src); i++ {
		if src[i] == '\n' {
			return i
		}
	}
	return len(src)
}

func closeQuote(src []byte, off int, q byte) int {
	for i := off + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if q == '"' {
				i++
			}
		case q:
			if q == '\'' && i+1 < len(src) && src[i+1] == '\'' {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(src)
}

// matchClose finds the closing bracket matching the flow opener at off,
// honoring quoted strings and comments. Returns -1 when the source has no
// match (the parser accepted it, so this should not happen).
func matchClose(src []byte, off int) int {
	depth := 0
	for i := off; i < len(src); i++ {
		switch src[i] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		case '\'':
			i = closeQuote(src, i, '\'') - 1
		case '"':
			i = closeQuote(src, i, '"') - 1
		case '#':
			if i == off || isFlowSpace(src[i-1]) {
				for i < len(src) && src[i] != '\n' {
					i++
				}
			}
		}
	}
	return -1
}

func isFlowSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', ',', '[', '{':
		return true
	}
	return false
}

func normalizeTag(v string) string {
	v = strings.TrimSpace(v)
	if rest, ok := strings.CutPrefix(v, "tag:yaml.org,2002:"); ok {
		return "!!" + rest
	}
	return v
}

func styleOf(tok *gtoken.Token) event.Style {
	if tok == nil {
		return event.Plain
	}
	switch tok.Type {
	case gtoken.SingleQuoteType:
		return event.SingleQuoted
	case gtoken.DoubleQuoteType:
		return event.DoubleQuoted
	}
	return event.Plain
}
