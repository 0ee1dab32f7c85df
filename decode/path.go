package decode

import (
	"fmt"
	"strconv"
)

type pathKind int

const (
	rootSegment pathKind = iota
	seqSegment
	mapSegment
	aliasSegment
	unknownSegment
)

// Path is a parent-linked trail through the document, used only for
// diagnostics and span capture. Segments share their parents, so extending a
// path never copies it; rendering happens on demand.
type Path struct {
	kind   pathKind
	parent *Path
	key    string
	index  int
}

var rootPath = &Path{kind: rootSegment}

func (p *Path) seq(index int) *Path {
	return &Path{kind: seqSegment, parent: p, index: index}
}

func (p *Path) mapKey(key string) *Path {
	return &Path{kind: mapSegment, parent: p, key: key}
}

func (p *Path) alias() *Path {
	return &Path{kind: aliasSegment, parent: p}
}

func (p *Path) unknown() *Path {
	return &Path{kind: unknownSegment, parent: p}
}

// isRoot reports whether p renders as the document root. Alias segments are
// transparent.
func (p *Path) isRoot() bool {
	for q := p; ; q = q.parent {
		switch q.kind {
		case rootSegment:
			return true
		case aliasSegment:
		default:
			return false
		}
	}
}

// String renders the dotted form: "." for the root, "b[0].C.d" for nested
// segments. A map key directly under the root drops the leading dot;
// sequence indexes do not.
func (p *Path) String() string {
	switch p.kind {
	case rootSegment:
		return "."
	case seqSegment:
		return p.parent.String() + "[" + strconv.Itoa(p.index) + "]"
	case mapSegment:
		if p.parent.isRoot() {
			return p.key
		}
		return p.parent.String() + "." + p.key
	case aliasSegment:
		return p.parent.String()
	case unknownSegment:
		if p.parent.isRoot() {
			return "?"
		}
		return p.parent.String() + ".?"
	}
	panic(fmt.Sprintf("invalid path segment %d", p.kind))
}
