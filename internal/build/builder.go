package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/subscript/internal/cache"
	"git.home.luguber.info/inful/subscript/internal/config"
	"git.home.luguber.info/inful/subscript/internal/dom"
	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/journal"
	"git.home.luguber.info/inful/subscript/internal/logfields"
	"git.home.luguber.info/inful/subscript/internal/macro"
	"git.home.luguber.info/inful/subscript/internal/markdown"
	"git.home.luguber.info/inful/subscript/internal/metrics"
	"git.home.luguber.info/inful/subscript/internal/observability"
	"git.home.luguber.info/inful/subscript/internal/sass"
	"git.home.luguber.info/inful/subscript/internal/script"
)

// Builder compiles the pages of one project. The cache, the script bridge
// and the converters live as long as the Builder, so watch-mode rebuilds
// reuse them.
type Builder struct {
	cfg      *config.Config
	cache    *cache.Cache
	bridge   *script.Bridge
	engine   *macro.Engine
	markdown markdown.Converter
	sass     sass.Compiler
	recorder metrics.Recorder
	journal  *journal.Store
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option { return func(b *Builder) { b.logger = l } }

// WithCache shares an existing cache.
func WithCache(c *cache.Cache) Option { return func(b *Builder) { b.cache = c } }

// WithBridge uses an already loaded script bridge instead of loading the
// manifest's plugins.
func WithBridge(br *script.Bridge) Option { return func(b *Builder) { b.bridge = br } }

// WithMarkdown overrides the Markdown converter.
func WithMarkdown(m markdown.Converter) Option { return func(b *Builder) { b.markdown = m } }

// WithSass overrides the SASS compiler.
func WithSass(s sass.Compiler) Option { return func(b *Builder) { b.sass = s } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(b *Builder) { b.recorder = r } }

// WithJournal records each page outcome in j.
func WithJournal(j *journal.Store) Option { return func(b *Builder) { b.journal = j } }

// New creates a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.recorder = metrics.OrNoop(b.recorder)
	if b.cache == nil {
		b.cache = cache.New(cache.WithLogger(b.logger), cache.WithRecorder(b.recorder))
	}
	if b.markdown == nil {
		b.markdown = markdown.NewGoldmark()
	}
	if b.sass == nil {
		b.sass = sass.NewDartSass("", b.logger)
	}
	if b.bridge == nil {
		b.bridge = script.Load(cfg.Plugins, script.WithLogger(b.logger))
	}
	b.engine = macro.NewEngine(b.bridge, macro.Natives{})
	return b
}

// Cache returns the shared asset cache.
func (b *Builder) Cache() *cache.Cache { return b.cache }

// Invalidate drops cache entries derived from path, or every file-derived
// entry when path is empty.
func (b *Builder) Invalidate(path string) int {
	if path == "" {
		return b.cache.Reset()
	}
	return b.cache.Invalidate(path)
}

// Config returns the project configuration.
func (b *Builder) Config() *config.Config { return b.cfg }

// Env returns a document environment for a file at path that is not one of
// the manifest pages (used by the render command).
func (b *Builder) Env(path string) *macro.Env {
	abs, _ := filepath.Abs(path)
	page := macro.Page{Input: abs}
	return &macro.Env{
		CurrentDir: filepath.Dir(abs),
		OutputDir:  b.cfg.OutputDir,
		BaseURL:    b.cfg.BaseURL,
		Cache:      b.cache,
		Engine:     b.engine,
		Markdown:   b.markdown,
		Sass:       b.sass,
		Page:       page,
		Logger:     b.logger,
		Recorder:   b.recorder,
	}
}

// Close releases the SASS transpiler, if one was started.
func (b *Builder) Close() error {
	if c, ok := b.sass.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Build compiles every page. changed names the file that triggered a
// watch-mode rebuild ("" for a full build); its cache entries are dropped
// first. Page failures are reported in the Report, not returned.
func (b *Builder) Build(ctx context.Context, changed string) (*Report, error) {
	report := &Report{
		BuildID:   uuid.NewString(),
		Changed:   changed,
		StartTime: time.Now(),
	}
	ctx = observability.WithBuildID(ctx, report.BuildID)
	logger := observability.Logger(ctx, b.logger)

	if changed != "" {
		n := b.cache.Invalidate(changed)
		logger.Debug("cache entries invalidated", logfields.Path(changed), logfields.Count(n))
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0o750); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot create output directory").
			Fatal().
			WithContext("path", b.cfg.OutputDir).
			Build()
	}

	pages := make([]macro.Page, len(b.cfg.Pages))
	for i, p := range b.cfg.Pages {
		pages[i] = macro.Page{Input: p.Input, Output: p.Output, Route: b.cfg.Route(p)}
	}

	report.Pages = make([]PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.cfg.Build.Parallelism, 1))
	for i := range pages {
		g.Go(func() error {
			if gctx.Err() != nil {
				report.Pages[i] = PageResult{Page: b.cfg.Pages[i], Route: pages[i].Route, Status: metrics.ResultSkipped}
				return nil
			}
			report.Pages[i] = b.buildPage(gctx, pages, i, changed)
			return nil
		})
	}
	_ = g.Wait()

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	switch {
	case ctx.Err() != nil:
		report.Status = BuildStatusCancelled
	case len(report.Failed()) > 0:
		report.Status = BuildStatusFailed
	default:
		report.Status = BuildStatusSuccess
	}

	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.IncBuildOutcome(report.outcome())
	b.record(ctx, logger, report)

	logger.Info("build finished",
		slog.String("status", string(report.Status)),
		logfields.Count(len(report.Pages)),
		slog.Int("failed", len(report.Failed())),
		slog.Int("warnings", report.Warnings()),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	if report.Status == BuildStatusCancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// buildPage compiles one page. Every warning logged while it runs, including
// cache and macro warnings, carries the build id and page route and is
// counted against the page.
func (b *Builder) buildPage(ctx context.Context, pages []macro.Page, i int, changed string) PageResult {
	page := pages[i]
	start := time.Now()
	result := PageResult{Page: b.cfg.Pages[i], Route: page.Route}

	ctx = observability.WithPage(ctx, page.Route)
	logger, warnings := newCountingLogger(observability.Logger(ctx, b.logger))
	finish := func(status metrics.ResultLabel, err error) PageResult {
		result.Duration = time.Since(start)
		result.Warnings = int(warnings.Load())
		result.Status = status
		result.Err = err
		if status == metrics.ResultSuccess && result.Warnings > 0 {
			result.Status = metrics.ResultWarning
		}
		b.recorder.ObserveDocumentDuration(result.Duration)
		b.recorder.IncDocumentResult(result.Status)
		return result
	}

	data, err := os.ReadFile(page.Input)
	if err != nil {
		err = ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot read page").
			WithContext("path", page.Input).
			Build()
		logger.Error("page failed", logfields.Path(page.Input), logfields.Error(err))
		return finish(metrics.ResultFailed, err)
	}

	env := &macro.Env{
		CurrentDir: filepath.Dir(page.Input),
		OutputDir:  b.cfg.OutputDir,
		BaseURL:    b.cfg.BaseURL,
		Cache:      b.cache,
		Engine:     b.engine,
		Markdown:   b.markdown,
		Sass:       b.sass,
		Pages:      pages,
		Page:       page,
		Changed:    changed,
		Logger:     logger,
		Recorder:   b.recorder,
	}
	out := CompileString(ctx, env, string(data))

	if err := os.MkdirAll(filepath.Dir(page.Output), 0o750); err != nil {
		return finish(metrics.ResultFailed, b.writeError(logger, page, err))
	}
	if err := os.WriteFile(page.Output, []byte(out+"\n"), 0o644); err != nil { // #nosec G306 -- site output is public
		return finish(metrics.ResultFailed, b.writeError(logger, page, err))
	}
	logger.Debug("page written", logfields.Output(page.Output))
	return finish(metrics.ResultSuccess, nil)
}

func (b *Builder) writeError(logger *slog.Logger, page macro.Page, err error) error {
	err = ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write page").
		WithContext("path", page.Output).
		Build()
	logger.Error("page failed", logfields.Output(page.Output), logfields.Error(err))
	return err
}

func (b *Builder) record(ctx context.Context, logger *slog.Logger, report *Report) {
	if b.journal == nil {
		return
	}
	entries := make([]journal.Entry, 0, len(report.Pages))
	for _, p := range report.Pages {
		entries = append(entries, journal.Entry{
			BuildID:    report.BuildID,
			Input:      p.Page.Input,
			Output:     p.Page.Output,
			Status:     string(p.Status),
			DurationMS: float64(p.Duration.Microseconds()) / 1000,
			Warnings:   p.Warnings,
			CreatedAt:  report.EndTime,
		})
	}
	if err := b.journal.Record(context.WithoutCancel(ctx), entries...); err != nil {
		logger.Warn("cannot record build in journal", logfields.Error(err))
	}
}

// CompileString runs the document passes over text and renders the result.
// Without an engine in env only the native macros run.
func CompileString(ctx context.Context, env *macro.Env, text string) string {
	engine := env.Engine
	if engine == nil {
		engine = macro.NewEngine(macro.Natives{})
	}
	tree := dom.Parse(text)
	engine.Apply(ctx, env, tree)
	macro.Postprocess(ctx, env, tree)
	tree.Normalize()
	return dom.RenderDocument(tree)
}
