package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/scott-cotton/cli"
)

type GetConfig struct {
	*MainConfig
	Get *cli.Command
}

func getCommand(m *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: m}
	return cli.NewCommandAt(&cfg.Get, "get").
		WithSynopsis("print the value at a dotted path, e.g. spec.containers[0].image").
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
}

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a value path", cli.ErrUsage)
	}
	cfg.setupColor()
	path := args[0]
	segs, err := parsePath(path)
	if err != nil {
		return fmt.Errorf("%w: %v", cli.ErrUsage, err)
	}
	return eachArg(cc, args[1:], func(name string, r io.Reader) error {
		values, errs := decodeAll(r)
		if len(errs) > 0 {
			return errs[0]
		}
		for _, v := range values {
			got, err := walkPath(v, segs)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			dumpState.Fdump(cc.Out, got)
		}
		return nil
	})
}

type pathSeg struct {
	key   string
	index int
	isKey bool
}

// parsePath splits "a.b[0].c" into key and index segments. A leading "."
// names the document root.
func parsePath(s string) ([]pathSeg, error) {
	var segs []pathSeg
	s = strings.TrimPrefix(s, ".")
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			continue
		}
		key := part
		var indexes []int
		for {
			open := strings.IndexByte(key, '[')
			if open < 0 {
				break
			}
			close := strings.IndexByte(key[open:], ']')
			if close < 0 {
				return nil, fmt.Errorf("unclosed index in %q", part)
			}
			n, err := strconv.Atoi(key[open+1 : open+close])
			if err != nil {
				return nil, fmt.Errorf("bad index in %q: %v", part, err)
			}
			indexes = append(indexes, n)
			key = key[:open] + key[open+close+1:]
		}
		if key != "" {
			segs = append(segs, pathSeg{key: key, isKey: true})
		}
		for _, n := range indexes {
			segs = append(segs, pathSeg{index: n})
		}
	}
	return segs, nil
}

func walkPath(v any, segs []pathSeg) (any, error) {
	for _, seg := range segs {
		if seg.isKey {
			switch m := v.(type) {
			case map[string]any:
				inner, present := m[seg.key]
				if !present {
					return nil, fmt.Errorf("no key %q", seg.key)
				}
				v = inner
			case map[any]any:
				inner, present := m[seg.key]
				if !present {
					return nil, fmt.Errorf("no key %q", seg.key)
				}
				v = inner
			default:
				return nil, fmt.Errorf("cannot index %T with key %q", v, seg.key)
			}
			continue
		}
		s, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("cannot index %T with [%d]", v, seg.index)
		}
		if seg.index < 0 || seg.index >= len(s) {
			return nil, fmt.Errorf("index %d out of range (%d elements)", seg.index, len(s))
		}
		v = s[seg.index]
	}
	return v, nil
}
