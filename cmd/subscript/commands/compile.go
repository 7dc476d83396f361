package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/subscript/internal/build"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
)

// CompileCmd compiles the whole project once.
type CompileCmd struct{}

func (c *CompileCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := openProject(root.Manifest, false)
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := p.builder.Build(ctx, "")
	if err != nil {
		return err
	}
	return reportError(report)
}

// reportError turns page failures into a build error.
func reportError(report *build.Report) error {
	failed := report.Failed()
	if len(failed) == 0 {
		return nil
	}
	b := ferrors.NewError(ferrors.CategoryBuild, fmt.Sprintf("%d of %d pages failed", len(failed), len(report.Pages))).
		WithContext("build_id", report.BuildID)
	if failed[0].Err != nil {
		b = b.WithContext("first_failure", failed[0].Err.Error())
	}
	return b.Build()
}
