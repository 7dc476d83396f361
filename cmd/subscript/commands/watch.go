package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/subscript/internal/build"
	"git.home.luguber.info/inful/subscript/internal/logfields"
	"git.home.luguber.info/inful/subscript/internal/server"
	"git.home.luguber.info/inful/subscript/internal/watch"
)

// WatchCmd builds the project and rebuilds it when sources change.
type WatchCmd struct {
	Serve bool   `help:"Also serve the output directory."`
	Addr  string `help:"Listen address when serving (defaults to server.addr from the manifest)."`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := openProject(root.Manifest, w.Serve)
	if err != nil {
		return err
	}
	defer p.Close()

	if report, err := p.builder.Build(ctx, ""); err != nil {
		return err
	} else if err := reportError(report); err != nil {
		slog.Warn("initial build incomplete", logfields.Error(err))
	}

	watcher := watch.New(p.cfg.Root, p.builder,
		watch.WithLogger(slog.Default()),
		watch.WithExclude(p.cfg.OutputDir),
		watch.WithRebuildInterval(p.cfg.Build.RebuildInterval),
		watch.OnBuild(func(r *build.Report, err error) {
			if err == nil {
				err = reportError(r)
			}
			if err != nil {
				slog.Warn("rebuild incomplete", logfields.Error(err))
			}
		}))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	if w.Serve {
		srv := server.New(server.Options{
			Addr:     firstNonEmpty(w.Addr, p.cfg.Server.Addr),
			Root:     p.cfg.OutputDir,
			Registry: p.registry,
			Logger:   slog.Default(),
		})
		if err := srv.Start(gctx); err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		if p.cfg.OpenBrowser {
			openBrowser(srv.URL())
		}
		g.Go(func() error {
			<-gctx.Done()
			return stopServer(srv)
		})
	}
	return g.Wait()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
