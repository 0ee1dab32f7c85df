package main

import (
	"io"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
)

type CheckConfig struct {
	*MainConfig
	Check *cli.Command
}

func checkCommand(m *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: m}
	return cli.NewCommandAt(&cfg.Check, "check").
		WithSynopsis("decode every document, reporting positioned errors").
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
}

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		cfg.Check.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	cfg.setupColor()
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	failed := false
	err = eachArg(cc, args, func(name string, r io.Reader) error {
		values, errs := decodeAll(r)
		if len(errs) == 0 {
			ok.Fprintf(cc.Out, "%s: %d document(s) ok\n", name, len(values))
			return nil
		}
		failed = true
		for _, derr := range errs {
			bad.Fprintf(cc.Out, "%s: %v\n", name, derr)
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
