package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/yamel-format/yamel/decode"
	"github.com/yamel-format/yamel/load"
)

type SpansConfig struct {
	*MainConfig
	Spans *cli.Command
}

func spansCommand(m *MainConfig) *cli.Command {
	cfg := &SpansConfig{MainConfig: m}
	return cli.NewCommandAt(&cfg.Spans, "spans").
		WithSynopsis("print the source byte range of every document").
		WithRun(func(cc *cli.Context, args []string) error {
			return spans(cfg, cc, args)
		})
}

func spans(cfg *SpansConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Spans.Parse(cc, args)
	if err != nil {
		cfg.Spans.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	cfg.setupColor()
	return eachArg(cc, args, func(name string, r io.Reader) error {
		return spansReader(cc.Out, name, r)
	})
}

func spansReader(w io.Writer, name string, r io.Reader) error {
	loader := load.FromReader(r)
	src := loader.Source()
	rng := color.New(color.FgYellow)
	for i := 0; ; i++ {
		doc := loader.NextDocument()
		if doc == nil {
			return nil
		}
		d := decode.NewDecoder(doc)
		span, err := d.CaptureSpan(func(d *decode.Decoder) error {
			return d.Ignored()
		})
		if err != nil {
			return err
		}
		end := span.Start + span.Len
		rng.Fprintf(w, "%s document %d: bytes [%d, %d)\n", name, i, span.Start, end)
		if span.Start <= end && end <= len(src) {
			fmt.Fprintf(w, "%s\n", src[span.Start:end])
		}
	}
}
