// Package event defines the flat event vocabulary shared by the loader and
// the deserializer: a document is an ordered sequence of events, each carrying
// a mark into the source text.
package event

// Kind identifies an event in a document's flattened node stream.
type Kind int

const (
	// KindAlias references a previously anchored node.
	KindAlias Kind = iota + 1
	KindScalar
	KindSequenceStart
	KindSequenceEnd
	KindMappingStart
	KindMappingEnd
)

func (k Kind) String() string {
	switch k {
	case KindAlias:
		return "alias"
	case KindScalar:
		return "scalar"
	case KindSequenceStart:
		return "sequence start"
	case KindSequenceEnd:
		return "sequence end"
	case KindMappingStart:
		return "mapping start"
	case KindMappingEnd:
		return "mapping end"
	}
	return "unknown"
}

// Style is the presentation style of a scalar in the source. Only plain
// scalars are subject to implicit typing.
type Style int

const (
	Plain Style = iota
	SingleQuoted
	DoubleQuoted
	Literal
	Folded
)

// Scalar is the payload of a KindScalar event.
type Scalar struct {
	// Tag is the explicit tag, e.g. "!!int" or "!variant"; empty when the
	// node is untagged.
	Tag string

	Style Style

	// Value holds the decoded scalar bytes.
	Value []byte

	// Repr is the raw source window covering the scalar's representation,
	// when it is contiguous in the input. It enables borrowing string
	// values directly from the source instead of copying. Nil when no
	// contiguous representation exists.
	Repr []byte
}

// Event is one element of a document's event sequence. Events are immutable
// once produced.
type Event struct {
	Kind Kind

	// Anchor is the anchor name defined by a Scalar/SequenceStart/
	// MappingStart event, or the referenced name for a KindAlias event.
	Anchor string

	// Alias is the document event index an alias resolves to. It is set by
	// the loader; the deserializer trusts it unconditionally.
	Alias int

	// Scalar is non-nil exactly when Kind is KindScalar.
	Scalar *Scalar
}
