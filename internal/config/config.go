// Package config loads the subscript project manifest.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
)

// DefaultManifest is looked up in the working directory when no path is given.
const DefaultManifest = "subscript.toml"

const (
	defaultOutputDir = "output"
	defaultAddr      = "127.0.0.1:8080"
	journalFile      = ".subscript/journal.db"
)

// manifest mirrors the file layout. Both decoders read the same tags.
type manifest struct {
	Project struct {
		Root      string   `toml:"root" yaml:"root"`
		OutputDir string   `toml:"output_dir" yaml:"output_dir"`
		Pages     []string `toml:"pages" yaml:"pages"`
		BaseURL   string   `toml:"base_url" yaml:"base_url"`
		Plugins   []string `toml:"plugins" yaml:"plugins"`
	} `toml:"project" yaml:"project"`
	Build struct {
		Parallelism     int    `toml:"parallelism" yaml:"parallelism"`
		Journal         bool   `toml:"journal" yaml:"journal"`
		RebuildInterval string `toml:"rebuild_interval" yaml:"rebuild_interval"`
	} `toml:"build" yaml:"build"`
	Server struct {
		Addr    string `toml:"addr" yaml:"addr"`
		Metrics bool   `toml:"metrics" yaml:"metrics"`
	} `toml:"server" yaml:"server"`
	On struct {
		Startup struct {
			OpenBrowser bool `toml:"open_browser" yaml:"open_browser"`
		} `toml:"startup" yaml:"startup"`
	} `toml:"on" yaml:"on"`
}

// Page is one input document and its output location.
type Page struct {
	Input  string
	Output string
}

// BuildConfig holds build tuning.
type BuildConfig struct {
	Parallelism int
	// Journal is the sqlite path for build history; empty when disabled.
	Journal         string
	RebuildInterval time.Duration
}

// ServerConfig holds the preview server settings.
type ServerConfig struct {
	Addr    string
	Metrics bool
}

// Config is the normalized manifest. All paths are absolute.
type Config struct {
	Manifest    string
	Root        string
	OutputDir   string
	BaseURL     string
	Pages       []Page
	Plugins     []string
	Build       BuildConfig
	Server      ServerConfig
	OpenBrowser bool
}

// Load reads and normalizes the manifest at path. A .env file next to the
// manifest is loaded first (without overriding the environment) and
// ${VAR} references in the manifest are expanded.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultManifest
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid manifest path").Fatal().Build()
	}

	data, err := os.ReadFile(abs) // #nosec G304 -- manifest path comes from the command line
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NewError(ferrors.CategoryNotFound, "manifest not found").
				Fatal().
				WithContext("path", abs).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read manifest").
			Fatal().
			WithContext("path", abs).
			Build()
	}

	envFile := filepath.Join(filepath.Dir(abs), ".env")
	if _, statErr := os.Stat(envFile); statErr == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load .env").
				WithContext("path", envFile).
				Build()
		}
	}

	m, err := decode(abs, []byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	return normalize(abs, m)
}

func decode(path string, data []byte) (*manifest, error) {
	var m manifest
	m.Server.Metrics = true
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = toml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse manifest").
			WithContext("path", path).
			Build()
	}
	return &m, nil
}

func normalize(path string, m *manifest) (*Config, error) {
	root := filepath.Join(filepath.Dir(path), m.Project.Root)
	outputDir := m.Project.OutputDir
	if outputDir == "" {
		outputDir = defaultOutputDir
	}
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	cfg := &Config{
		Manifest:    path,
		Root:        root,
		OutputDir:   filepath.Clean(outputDir),
		BaseURL:     m.Project.BaseURL,
		OpenBrowser: m.On.Startup.OpenBrowser,
		Server: ServerConfig{
			Addr:    m.Server.Addr,
			Metrics: m.Server.Metrics,
		},
		Build: BuildConfig{Parallelism: m.Build.Parallelism},
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.Build.Parallelism <= 0 {
		cfg.Build.Parallelism = runtime.GOMAXPROCS(0)
	}
	if m.Build.Journal {
		cfg.Build.Journal = filepath.Join(cfg.OutputDir, filepath.FromSlash(journalFile))
	}
	if m.Build.RebuildInterval != "" {
		d, err := time.ParseDuration(m.Build.RebuildInterval)
		if err != nil || d <= 0 {
			return nil, ferrors.ValidationError("build.rebuild_interval must be a positive duration").
				WithContext("value", m.Build.RebuildInterval).
				Build()
		}
		cfg.Build.RebuildInterval = d
	}

	inputs, err := expandAll(root, m.Project.Pages)
	if err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if isWithin(cfg.OutputDir, in) {
			continue
		}
		rel, err := filepath.Rel(root, in)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "page outside project root").
				WithContext("path", in).
				Build()
		}
		cfg.Pages = append(cfg.Pages, Page{Input: in, Output: filepath.Join(cfg.OutputDir, rel)})
	}
	if len(cfg.Pages) == 0 {
		return nil, ferrors.ConfigError("manifest matches no pages").
			WithContext("path", path).
			WithContext("patterns", strings.Join(m.Project.Pages, ",")).
			Build()
	}

	if cfg.Plugins, err = expandAll(root, m.Project.Plugins); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Route is the site-absolute URL of a page output, e.g. "/guide/index.html".
func (c *Config) Route(p Page) string {
	rel, err := filepath.Rel(c.OutputDir, p.Output)
	if err != nil {
		return ""
	}
	return "/" + filepath.ToSlash(rel)
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
