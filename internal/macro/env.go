package macro

import (
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/subscript/internal/cache"
	"git.home.luguber.info/inful/subscript/internal/markdown"
	"git.home.luguber.info/inful/subscript/internal/metrics"
	"git.home.luguber.info/inful/subscript/internal/sass"
)

// Page is one input document and where its output goes. Route is the
// site-absolute URL of the output, e.g. "/guide/index.html".
type Page struct {
	Input  string
	Output string
	Route  string
}

// Env is the per-document context macros run in. The cache, engine and
// converters are shared by every document of a build; CurrentDir changes
// when include recurses into another file.
type Env struct {
	CurrentDir string
	OutputDir  string
	BaseURL    string

	Cache    *cache.Cache
	Engine   *Engine
	Markdown markdown.Converter
	Sass     sass.Compiler

	// Pages lists every document of the build; Page is the one being compiled.
	Pages []Page
	Page  Page
	// Changed is the file that triggered a watch-mode rebuild, if any.
	Changed string

	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// WithDir returns a copy of env whose relative paths resolve against dir.
func (env *Env) WithDir(dir string) *Env {
	cp := *env
	cp.CurrentDir = dir
	return &cp
}

// Location is the cache request context for this env.
func (env *Env) Location() cache.Location {
	return cache.Location{
		CurrentDir: env.CurrentDir,
		OutputDir:  env.OutputDir,
		BaseURL:    env.BaseURL,
		Logger:     env.Logger,
	}
}

// Resolve joins a document-relative path onto CurrentDir.
func (env *Env) Resolve(src string) string {
	if filepath.IsAbs(src) {
		return filepath.Clean(src)
	}
	return filepath.Join(env.CurrentDir, src)
}

func (env *Env) logger() *slog.Logger {
	if env.Logger == nil {
		return slog.Default()
	}
	return env.Logger
}

func (env *Env) recorder() metrics.Recorder {
	return metrics.OrNoop(env.Recorder)
}

func (env *Env) cache() *cache.Cache {
	if env.Cache == nil {
		env.Cache = cache.New(cache.WithLogger(env.Logger))
	}
	return env.Cache
}
