// Package load buffers parsed documents into immutable event arenas.
// Anchors are resolved at load time: every alias event carries the index of
// its target, and an alias naming an anchor that is not yet defined cuts the
// document short with a deferred error, raised only if the decoder actually
// reaches that point.
package load

import (
	"io"

	"github.com/yamel-format/yamel/debug"
	"github.com/yamel-format/yamel/errs"
	"github.com/yamel-format/yamel/event"
	"github.com/yamel-format/yamel/parse"
)

// Document is one loaded document: an ordered (event, mark) arena, the
// anchor table built while loading, and an optional deferred error reported
// when the decoder consumes past the last buffered event. Read-only after
// construction; any number of cursors may walk it.
type Document struct {
	Events  []event.Event
	Marks   []event.Mark
	Anchors map[string]int
	Err     error
}

// Loader pulls successive documents from one source.
type Loader struct {
	stream *parse.Stream
}

func New(data []byte) *Loader {
	return &Loader{stream: parse.New(data)}
}

func FromReader(r io.Reader) *Loader {
	return &Loader{stream: parse.FromReader(r)}
}

// Source returns the raw input bytes backing scalar Repr slices.
func (l *Loader) Source() []byte {
	return l.stream.Source()
}

// NextDocument returns the next document, or nil when the stream is
// exhausted.
func (l *Loader) NextDocument() *Document {
	d, ok := l.stream.Next()
	if !ok {
		return nil
	}
	doc := &Document{
		Events:  d.Events,
		Marks:   d.Marks,
		Anchors: map[string]int{},
		Err:     d.Err,
	}
	for i := range doc.Events {
		ev := &doc.Events[i]
		switch {
		case ev.Kind == event.KindAlias:
			target, ok := doc.Anchors[ev.Anchor]
			if !ok {
				// forward or missing anchor; nothing past this
				// point is reachable without it
				if debug.Alias() {
					debug.Logf("alias *%s unresolved at %s", ev.Anchor, doc.Marks[i])
				}
				doc.Err = errs.UnknownAnchor(doc.Marks[i])
				doc.Events = doc.Events[:i]
				doc.Marks = doc.Marks[:i]
				return doc
			}
			ev.Alias = target
			if debug.Alias() {
				debug.Logf("alias *%s -> event %d", ev.Anchor, target)
			}
		case ev.Anchor != "":
			doc.Anchors[ev.Anchor] = i
		}
		if debug.Events() {
			debug.Logf("event %d %s at %s", i, ev.Kind, doc.Marks[i])
		}
	}
	return doc
}
