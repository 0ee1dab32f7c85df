package decode

import "github.com/yamel-format/yamel/event"

// Span is a value's byte range in the source plus the path it was reached
// by.
type Span struct {
	Start int
	Len   int
	Path  string
}

// CaptureSpan records where the next value sits while f decodes it
// normally. The start is the next event's mark; the length is the decoded
// byte count for scalars, and for containers is recovered by scanning the
// event arena for the matching end mark.
func (d *Decoder) CaptureSpan(f func(*Decoder) error) (Span, error) {
	_, mark, err := d.peek()
	if err != nil {
		return Span{}, err
	}
	var span Span
	err = d.recursionCheck(mark, func(d *Decoder) error {
		saved := *d.pos
		span.Start = d.doc.Marks[saved].Offset
		if err := f(d); err != nil {
			return err
		}
		n, err := d.itemLength(saved)
		if err != nil {
			return err
		}
		span.Len = n
		span.Path = d.path.String()
		return nil
	})
	if err != nil {
		return Span{}, err
	}
	return span, nil
}

func (d *Decoder) itemLength(pos int) (int, error) {
	ev := &d.doc.Events[pos]
	start := d.doc.Marks[pos].Offset
	switch ev.Kind {
	case event.KindScalar:
		return len(ev.Scalar.Value), nil
	case event.KindSequenceStart:
		end, err := d.offsetPastSequenceEnd(pos)
		if err != nil {
			return 0, err
		}
		return end - start, nil
	case event.KindMappingStart:
		end, err := d.offsetOfMappingEnd(pos)
		if err != nil {
			return 0, err
		}
		return end - start, nil
	}
	return 0, nil
}

// offsetPastSequenceEnd scans forward to the matching sequence end and
// returns one past its mark.
func (d *Decoder) offsetPastSequenceEnd(pos int) (int, error) {
	nesting := 0
	for i := pos; i < len(d.doc.Events); i++ {
		switch d.doc.Events[i].Kind {
		case event.KindSequenceStart:
			nesting++
		case event.KindSequenceEnd:
			nesting--
			if nesting == 0 {
				return d.doc.Marks[i].Offset + 1, nil
			}
		}
	}
	return 0, d.endError()
}

// offsetOfMappingEnd scans from the event before the mapping start,
// counting only sequence nesting, and returns the mark of the last event
// visited. The asymmetry with the sequence scan reproduces how end marks
// fall for mappings reached through a preceding key.
func (d *Decoder) offsetOfMappingEnd(pos int) (int, error) {
	nesting := 0
	last := -1
	from := pos - 1
	if from < 0 {
		from = 0
	}
	for i := from; i < len(d.doc.Events); i++ {
		switch d.doc.Events[i].Kind {
		case event.KindSequenceStart:
			nesting++
		case event.KindSequenceEnd:
			nesting--
			if nesting == 0 {
				if last < 0 {
					return 0, d.endError()
				}
				return last, nil
			}
		}
		last = d.doc.Marks[i].Offset
	}
	if last < 0 {
		return 0, d.endError()
	}
	return last, nil
}
