package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type DiffConfig struct {
	*MainConfig
	Diff *cli.Command
}

func diffCommand(m *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: m}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithSynopsis("compare the decoded content of two inputs").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

// diff compares decoded values, not text, so quoting style, key order, and
// comments never register as changes.
func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %d", cli.ErrUsage, len(args))
	}
	cfg.setupColor()
	a, err := renderArg(cc, args[0])
	if err != nil {
		return err
	}
	b, err := renderArg(cc, args[1])
	if err != nil {
		return err
	}
	if a == b {
		return nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	printDiffs(cc.Out, diffs)
	return cli.ExitCodeErr(1)
}

func renderArg(cc *cli.Context, name string) (string, error) {
	r, closer, err := openArg(cc, name)
	if err != nil {
		return "", err
	}
	defer closer()
	values, errs := decodeAll(r)
	if len(errs) > 0 {
		return "", fmt.Errorf("error decoding %s: %w", name, errs[0])
	}
	out := ""
	for _, v := range values {
		out += dumpState.Sdump(v)
	}
	return out, nil
}

func printDiffs(w io.Writer, diffs []diffmatchpatch.Diff) {
	ins := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			ins.Fprint(w, d.Text)
		case diffmatchpatch.DiffDelete:
			del.Fprint(w, d.Text)
		default:
			fmt.Fprint(w, d.Text)
		}
	}
	fmt.Fprintln(w)
}
