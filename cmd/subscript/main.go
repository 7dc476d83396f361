package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/subscript/cmd/subscript/commands"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Stdout: os.Stdout}
	parser := kong.Parse(cli,
		kong.Name("subscript"),
		kong.Description("Compile HTML pages with tag macros, Markdown, SASS and Starlark plugins."),
		kong.Vars{"version": version.String()},
		kong.Bind(global, cli),
		kong.UsageOnError(),
	)
	if err := parser.Run(); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
