package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/yamel-format/yamel"
	"github.com/yamel-format/yamel/errs"
)

// openArg opens a named file, with "-" standing for the command's input.
func openArg(cc *cli.Context, name string) (io.Reader, func() error, error) {
	if name == "-" {
		return cc.In, func() error { return nil }, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open %q: %w", name, err)
	}
	return f, f.Close, nil
}

// decodeAll reads every document from r into generic values. Document
// errors are collected, not fatal: later documents still decode. A source
// that cannot be read at all replays the same error for every remaining
// document, so decodeAll stops on the first repeat.
func decodeAll(r io.Reader) ([]any, []error) {
	var (
		values []any
		derrs  []error
		last   error
	)
	dec := yamel.NewDecoder(r)
	for {
		var v any
		err := dec.Decode(&v)
		if err == io.EOF {
			return values, derrs
		}
		if err != nil {
			derrs = append(derrs, err)
			if err == last || errors.Is(err, errs.ErrInvalidUTF8) {
				return values, derrs
			}
			last = err
			continue
		}
		values = append(values, v)
	}
}

// eachArg runs f once per named input, or once on the command's input when
// no names are given.
func eachArg(cc *cli.Context, args []string, f func(name string, r io.Reader) error) error {
	if len(args) == 0 {
		return f("-", cc.In)
	}
	for _, name := range args {
		r, closer, err := openArg(cc, name)
		if err != nil {
			return err
		}
		err = f(name, r)
		if cerr := closer(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("error processing %s: %w", name, err)
		}
	}
	return nil
}
