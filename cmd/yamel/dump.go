package main

import (
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
)

type DumpConfig struct {
	*MainConfig
	Dump *cli.Command
}

func dumpCommand(m *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: m}
	return cli.NewCommandAt(&cfg.Dump, "dump").
		WithSynopsis("decode documents and print their Go values").
		WithRun(func(cc *cli.Context, args []string) error {
			return dump(cfg, cc, args)
		})
}

// dumpState keeps map keys sorted so output is stable across runs.
var dumpState = &spew.ConfigState{Indent: "  ", SortKeys: true}

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		cfg.Dump.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	cfg.setupColor()
	header := color.New(color.FgCyan, color.Bold)
	failed := false
	err = eachArg(cc, args, func(name string, r io.Reader) error {
		values, errs := decodeAll(r)
		for i, v := range values {
			header.Fprintf(cc.Out, "--- %s document %d\n", name, i)
			dumpState.Fdump(cc.Out, v)
		}
		for _, derr := range errs {
			failed = true
			color.New(color.FgRed).Fprintf(cc.Out, "--- %s: %v\n", name, derr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed {
		return cli.ExitCodeErr(1)
	}
	return nil
}
