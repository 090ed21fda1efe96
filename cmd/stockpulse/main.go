// Command stockpulse serves the stock metrics dashboard over HTTP and
// renders its views in the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds every command to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&versionCmd{}, "")
	c.Register(&serveCmd{}, "server")

	c.Register(&catalogCmd{}, "views")
	c.Register(&dateCmd{}, "views")
	c.Register(&rangeCmd{}, "views")
	c.Register(&monthCmd{}, "views")
	c.Register(&symbolsCmd{}, "views")
	c.Register(&highsCmd{}, "views")
	c.Register(&searchCmd{}, "views")

	c.Register(&exportCmd{}, "export")
}
