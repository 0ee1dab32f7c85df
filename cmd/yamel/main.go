// Command yamel inspects YAML documents with the position-carrying decoder:
// dump decoded values, query them by path, show source spans, check files,
// and diff decoded content.
package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}

type MainConfig struct {
	NoColor bool `cli:"name=no-color desc='disable colored output'"`
}

func (m *MainConfig) setupColor() {
	if m.NoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommand("yamel").
		WithSynopsis("inspect YAML documents with source positions").
		WithOpts(opts...).
		WithSubs(
			dumpCommand(cfg),
			getCommand(cfg),
			spansCommand(cfg),
			checkCommand(cfg),
			diffCommand(cfg),
		)
}
