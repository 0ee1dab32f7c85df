// Package errs defines the structured errors produced while loading and
// decoding YAML documents. An *Error optionally carries a source mark and a
// dotted path into the document; both are stamped at most once, by the frame
// closest to the failure.
package errs

import (
	"errors"
	"fmt"

	"github.com/yamel-format/yamel/event"
)

var (
	// ErrEndOfStream reports a request for a value when the stream has no
	// more documents.
	ErrEndOfStream = errors.New("EOF while parsing a value")

	// ErrMoreThanOneDocument reports a single-value decode of a stream
	// holding two or more documents.
	ErrMoreThanOneDocument = errors.New("deserializing from YAML containing more than one document is not supported")

	ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")

	// ErrUnknownAnchor reports an alias whose anchor was never defined at
	// or before the alias position.
	ErrUnknownAnchor = errors.New("unknown anchor")

	// ErrSyntax wraps lexical or syntactic failures from the underlying
	// parser.
	ErrSyntax = errors.New("syntax error")

	ErrInvalidUTF8 = errors.New("invalid UTF-8 input")
)

// Error is the concrete error type for everything this module reports.
type Error struct {
	err     error
	msg     string
	mark    event.Mark
	hasMark bool
	path    string
	frozen  bool
}

func (e *Error) Error() string {
	msg := e.msg
	if msg == "" && e.err != nil {
		msg = e.err.Error()
	}
	if !e.hasMark {
		return msg
	}
	if e.path != "" && e.path != "." {
		return fmt.Sprintf("%s: %s at %s", e.path, msg, e.mark)
	}
	return fmt.Sprintf("%s at %s", msg, e.mark)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Mark returns the stamped source position, if any.
func (e *Error) Mark() (event.Mark, bool) {
	return e.mark, e.hasMark
}

// Path returns the stamped document path, if any.
func (e *Error) Path() string {
	return e.path
}

// Message builds a semantic error with no location yet. FixMark stamps it
// with the position and path of the frame that catches it first.
func Message(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

func EndOfStream() *Error {
	return &Error{err: ErrEndOfStream, frozen: true}
}

func MoreThanOneDocument() *Error {
	return &Error{err: ErrMoreThanOneDocument, frozen: true}
}

func RecursionLimitExceeded(mark event.Mark) *Error {
	return &Error{err: ErrRecursionLimitExceeded, mark: mark, hasMark: true, frozen: true}
}

func UnknownAnchor(mark event.Mark) *Error {
	return &Error{err: ErrUnknownAnchor, mark: mark, hasMark: true, frozen: true}
}

// Syntax wraps a parser message with no usable position.
func Syntax(msg string) *Error {
	return &Error{err: ErrSyntax, msg: msg, frozen: true}
}

// SyntaxAt wraps a parser message positioned at mark.
func SyntaxAt(msg string, mark event.Mark) *Error {
	return &Error{err: ErrSyntax, msg: msg, mark: mark, hasMark: true, frozen: true}
}

func IO(err error) *Error {
	return &Error{err: err, frozen: true}
}

func InvalidUTF8() *Error {
	return &Error{err: ErrInvalidUTF8, frozen: true}
}

// Shared freezes err so it can be replayed verbatim for every subsequent
// request on a poisoned stream.
func Shared(err error) error {
	var e *Error
	if errors.As(err, &e) {
		e.frozen = true
		return e
	}
	return err
}

// FixMark stamps mark and path onto an error that does not yet carry a
// location. Errors already holding a mark, and non-message kinds, pass
// through untouched: the innermost stamp wins. The path is rendered only
// here, on the error exit, never on the happy path.
func FixMark(err error, mark event.Mark, path fmt.Stringer) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{err: err, msg: err.Error()}
	}
	if e.frozen || e.hasMark {
		return e
	}
	e.mark = mark
	e.hasMark = true
	e.path = path.String()
	return e
}
