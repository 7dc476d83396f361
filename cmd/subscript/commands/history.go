package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/subscript/internal/config"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/journal"
)

// HistoryCmd lists journal entries.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of entries to show." default:"20"`
	Build string `help:"Only show the pages of this build id."`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Manifest)
	if err != nil {
		return err
	}
	if cfg.Build.Journal == "" {
		return ferrors.ValidationError("build journal is disabled; set build.journal = true in the manifest").Build()
	}
	store, err := journal.Open(cfg.Build.Journal)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryJournal, "cannot open build journal").
			WithContext("path", cfg.Build.Journal).
			Build()
	}
	defer store.Close()

	var entries []journal.Entry
	if h.Build != "" {
		entries, err = store.ForBuild(context.Background(), h.Build)
	} else {
		entries, err = store.Recent(context.Background(), h.Limit)
	}
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryJournal, "cannot read build journal").Build()
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tBUILD\tSTATUS\tMS\tWARNINGS\tINPUT")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.BuildID, e.Status, e.DurationMS, e.Warnings, e.Input)
	}
	return tw.Flush()
}
