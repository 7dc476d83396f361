package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/subscript/internal/config"
	"git.home.luguber.info/inful/subscript/internal/server"
)

// ServeCmd serves the output directory of the manifest.
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to server.addr from the manifest)."`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(root.Manifest)
	if err != nil {
		return err
	}
	opts := server.Options{
		Addr:   firstNonEmpty(s.Addr, cfg.Server.Addr),
		Root:   cfg.OutputDir,
		Logger: slog.Default(),
	}
	if cfg.Server.Metrics {
		opts.Registry = newRegistry()
	}
	srv := server.New(opts)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	if cfg.OpenBrowser {
		openBrowser(srv.URL())
	}
	<-ctx.Done()
	return stopServer(srv)
}

func stopServer(srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
