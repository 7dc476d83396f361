package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/subscript/internal/build"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
)

// RenderCmd compiles a single file with the project's cache and plugins.
type RenderCmd struct {
	File   string `arg:"" help:"HTML file to compile." type:"existingfile"`
	Output string `short:"o" help:"Write to this file instead of stdout."`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	p, err := openProject(root.Manifest, false)
	if err != nil {
		return err
	}
	defer p.Close()

	data, err := os.ReadFile(r.File)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot read file").
			WithContext("path", r.File).
			Build()
	}
	out := build.CompileString(context.Background(), p.builder.Env(r.File), string(data)) + "\n"

	if r.Output != "" {
		if err := os.WriteFile(r.Output, []byte(out), 0o644); err != nil { // #nosec G306 -- rendered page is public output
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write output").
				WithContext("path", r.Output).
				Build()
		}
		return nil
	}
	_, err = fmt.Fprint(g.Stdout, out)
	return err
}
