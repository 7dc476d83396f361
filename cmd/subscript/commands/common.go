// Package commands implements the subscript CLI commands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/subscript/internal/build"
	"git.home.luguber.info/inful/subscript/internal/config"
	"git.home.luguber.info/inful/subscript/internal/journal"
	"git.home.luguber.info/inful/subscript/internal/logfields"
	"git.home.luguber.info/inful/subscript/internal/metrics"
)

// Global is state shared by every command.
type Global struct {
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Manifest  string           `short:"m" help:"Manifest file path" default:"subscript.toml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (text or json)" enum:"text,json" default:"text"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Compile CompileCmd `cmd:"" help:"Compile every page of the manifest"`
	Watch   WatchCmd   `cmd:"" help:"Compile, then recompile on change"`
	Serve   ServeCmd   `cmd:"" help:"Serve the output directory"`
	Render  RenderCmd  `cmd:"" help:"Compile one file to stdout"`
	History HistoryCmd `cmd:"" help:"Show recorded builds from the journal"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, c.Verbose, c.LogFormat))
	return nil
}

func newLogger(w io.Writer, verbose bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// project bundles a loaded manifest with its builder and optional journal.
type project struct {
	cfg      *config.Config
	builder  *build.Builder
	journal  *journal.Store
	registry *prometheus.Registry
}

// openProject loads the manifest and wires the build pipeline. Metrics are
// collected when withMetrics is set and the manifest enables them.
func openProject(manifest string, withMetrics bool) (*project, error) {
	cfg, err := config.Load(manifest)
	if err != nil {
		return nil, err
	}
	p := &project{cfg: cfg}

	opts := []build.Option{build.WithLogger(slog.Default())}
	if withMetrics && cfg.Server.Metrics {
		p.registry = newRegistry()
		opts = append(opts, build.WithRecorder(metrics.NewPrometheusRecorder(p.registry)))
	}
	if cfg.Build.Journal != "" {
		j, err := journal.Open(cfg.Build.Journal)
		if err != nil {
			slog.Warn("build journal unavailable", logfields.Path(cfg.Build.Journal), logfields.Error(err))
		} else {
			p.journal = j
			opts = append(opts, build.WithJournal(j))
		}
	}
	p.builder = build.New(cfg, opts...)
	return p, nil
}

func (p *project) Close() {
	if err := p.builder.Close(); err != nil {
		slog.Warn("sass compiler shutdown error", logfields.Error(err))
	}
	if p.journal != nil {
		_ = p.journal.Close()
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}
