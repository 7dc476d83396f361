// Package cache relocates referenced files and generated text into the
// content-addressed <output>/ss-data directory and memoizes the results for
// the lifetime of the process.
//
// One Cache is shared by every document of a build. A single mutex guards
// the whole map, so two documents asking for the same asset never race on
// the output file or receive different references.
package cache

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"

	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/logfields"
	"git.home.luguber.info/inful/subscript/internal/metrics"
)

// Location says where a request comes from: relative sources resolve
// against CurrentDir, assets land in OutputDir, and references get BaseURL.
// Warnings for the request go to Logger when set.
type Location struct {
	CurrentDir string
	OutputDir  string
	BaseURL    string
	Logger     *slog.Logger
}

// Ref is the outcome of relocating one file. Resolved is false when Path is
// the original, unrelocated source string.
type Ref struct {
	Path     string
	Resolved bool
}

// Kind identifies what a memoized entry holds.
type Kind uint8

const (
	FilePath Kind = iota
	InlineText
	FileGlob
	Value
	HashFile
)

// Item is one memoized entry.
type Item struct {
	Kind   Kind
	Ref    Ref
	Text   string
	Found  bool
	Refs   []string
	Source string
}

// Cache is the process-wide asset cache.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]Item
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for asset warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Cache) { c.recorder = metrics.OrNoop(r) }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]Item),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// File relocates src into ss-data/<hash>.<ext> and returns its reference.
//
// Remote URLs pass through unresolved. A missing source is logged, and the
// original path is returned and memoized. Any other read error is logged and
// returned with the passthrough reference, but not memoized, so a later
// rebuild retries.
func (c *Cache) File(loc Location, src string) (Ref, error) {
	if src == "" || IsRemote(src) {
		return Ref{Path: src}, nil
	}
	abs := resolve(loc.CurrentDir, src)
	key := "file:" + abs

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.entries[key]; ok {
		c.recorder.IncCacheLookup("file", true)
		return item.Ref, nil
	}
	c.recorder.IncCacheLookup("file", false)

	ref, err := c.relocate(loc, src, abs)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ref, err
	}
	c.entries[key] = Item{Kind: FilePath, Ref: ref, Source: abs}
	return ref, nil
}

func (c *Cache) log(loc Location) *slog.Logger {
	if loc.Logger != nil {
		return loc.Logger
	}
	return c.logger
}

// relocate must be called with c.mu held.
func (c *Cache) relocate(loc Location, src, abs string) (Ref, error) {
	data, err := os.ReadFile(abs) // #nosec G304 -- document-referenced asset
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.log(loc).Warn("ignoring asset", logfields.Source(src), logfields.Path(abs))
			return Ref{Path: src}, err
		}
		c.log(loc).Warn("cannot read asset", logfields.Source(src), logfields.Error(err))
		return Ref{Path: src}, ferrors.WrapError(err, ferrors.CategoryCache, "read asset").
			Warning().
			WithContext("path", abs).
			Build()
	}
	name, err := assetStore{outputDir: loc.OutputDir}.put(data, filepath.Ext(abs))
	if err != nil {
		c.log(loc).Warn("cannot write asset", logfields.Source(src), logfields.Error(err))
		return Ref{Path: src}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write asset").
			WithContext("path", abs).
			Build()
	}
	return Ref{Path: reference(loc.BaseURL, name), Resolved: true}, nil
}

// InlineText loads a file's text for embedding. ok is false when the file
// cannot be read; that outcome is memoized too.
func (c *Cache) InlineText(loc Location, src string) (string, bool) {
	abs := resolve(loc.CurrentDir, src)
	key := "text:" + abs

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.entries[key]; ok {
		c.recorder.IncCacheLookup("text", true)
		return item.Text, item.Found
	}
	c.recorder.IncCacheLookup("text", false)

	data, err := os.ReadFile(abs) // #nosec G304 -- document-referenced source
	if err != nil {
		c.log(loc).Warn("ignoring inline source", logfields.Source(src), logfields.Error(err))
		c.entries[key] = Item{Kind: InlineText, Source: abs}
		return "", false
	}
	text := string(data)
	c.entries[key] = Item{Kind: InlineText, Text: text, Found: true, Source: abs}
	return text, true
}

// Glob expands pattern relative to the current directory and relocates each
// matching file. "**" matches across directories. The list is memoized under the pattern.
func (c *Cache) Glob(loc Location, pattern string) []string {
	absPattern := resolve(loc.CurrentDir, pattern)
	key := "glob:" + absPattern

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.entries[key]; ok {
		c.recorder.IncCacheLookup("glob", true)
		return item.Refs
	}
	c.recorder.IncCacheLookup("glob", false)

	matches, err := doublestar.FilepathGlob(absPattern, doublestar.WithFilesOnly())
	if err != nil {
		c.log(loc).Warn("invalid asset glob", logfields.Source(pattern), logfields.Error(err))
		return nil
	}
	sort.Strings(matches)

	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		fileKey := "file:" + normalizeKey(m)
		item, ok := c.entries[fileKey]
		if !ok {
			ref, err := c.relocate(loc, m, m)
			if err != nil {
				continue
			}
			item = Item{Kind: FilePath, Ref: ref, Source: m}
			c.entries[fileKey] = item
		}
		refs = append(refs, item.Ref.Path)
	}
	c.entries[key] = Item{Kind: FileGlob, Refs: refs, Source: absPattern}
	return refs
}

// SetValue stores raw text under key.
func (c *Cache) SetValue(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries["value:"+key] = Item{Kind: Value, Text: text, Found: true}
}

// Value returns text stored with SetValue.
func (c *Cache) Value(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.entries["value:"+key]
	c.recorder.IncCacheLookup("value", ok)
	return item.Text, ok
}

// HashFile writes generated text to ss-data/<hash> and memoizes the
// reference under the logical key.
func (c *Cache) HashFile(loc Location, key, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name, err := assetStore{outputDir: loc.OutputDir}.put([]byte(text), "")
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "write generated asset").
			WithContext("key", key).
			Build()
	}
	ref := reference(loc.BaseURL, name)
	c.entries["hash:"+key] = Item{Kind: HashFile, Ref: Ref{Path: ref, Resolved: true}, Source: key}
	return ref, nil
}

// LookupHashFile returns the reference stored by HashFile.
func (c *Cache) LookupHashFile(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.entries["hash:"+key]
	c.recorder.IncCacheLookup("hash", ok)
	return item.Ref.Path, ok
}

// Invalidate drops entries derived from a changed source file, plus every
// glob listing since the set of matches may have changed.
func (c *Cache) Invalidate(changed string) int {
	abs := normalizeKey(changed)

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, item := range c.entries {
		if item.Kind == FileGlob || ((item.Kind == FilePath || item.Kind == InlineText) && item.Source == abs) {
			delete(c.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		c.logger.Debug("cache entries invalidated", logfields.Path(changed), logfields.Count(dropped))
	}
	return dropped
}

// Reset drops every entry derived from source files. Stored values and
// generated files stay.
func (c *Cache) Reset() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, item := range c.entries {
		switch item.Kind {
		case FilePath, InlineText, FileGlob:
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// IsRemote reports whether src points outside the local filesystem.
func IsRemote(src string) bool {
	for _, p := range []string{"http://", "https://", "//", "data:", "mailto:"} {
		if strings.HasPrefix(src, p) {
			return true
		}
	}
	return false
}

func resolve(dir, src string) string {
	p := src
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	return normalizeKey(p)
}

// normalizeKey makes equivalent spellings of a path share one entry.
func normalizeKey(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return norm.NFC.String(filepath.Clean(p))
}
