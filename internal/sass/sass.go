// Package sass compiles .sass and .scss stylesheets referenced by <link>.
package sass

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"

	ferrors "git.home.luguber.info/inful/subscript/internal/foundation/errors"
	"git.home.luguber.info/inful/subscript/internal/logfields"
)

// Compiler turns a stylesheet file into CSS text.
type Compiler interface {
	Compile(path string) (string, error)
}

// IsSassFile reports whether p has a .sass or .scss extension.
func IsSassFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".sass", ".scss":
		return true
	}
	return false
}

// DartSass compiles through the Dart Sass embedded protocol. The transpiler
// process is started on first use and shared until Close.
type DartSass struct {
	binary string
	logger *slog.Logger

	once       sync.Once
	mu         sync.Mutex
	transpiler *godartsass.Transpiler
	startErr   error
}

// NewDartSass returns a compiler that runs binary ("sass" on PATH when empty).
func NewDartSass(binary string, logger *slog.Logger) *DartSass {
	if logger == nil {
		logger = slog.Default()
	}
	return &DartSass{binary: binary, logger: logger}
}

func (d *DartSass) start() error {
	d.once.Do(func() {
		opts := godartsass.Options{
			DartSassEmbeddedFilename: d.binary,
			LogEventHandler: func(e godartsass.LogEvent) {
				d.logger.Warn("sass: "+e.Message, logfields.Stage("sass"))
			},
		}
		d.transpiler, d.startErr = godartsass.Start(opts)
	})
	return d.startErr
}

// Compile reads path and returns compressed CSS.
func (d *DartSass) Compile(path string) (string, error) {
	if err := d.start(); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryStyle, "start sass compiler").
			Warning().
			Build()
	}
	src, err := os.ReadFile(path) // #nosec G304 -- stylesheet referenced by a document
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryStyle, "read stylesheet").
			Warning().
			WithContext("path", path).
			Build()
	}

	syntax := godartsass.SourceSyntaxSCSS
	if strings.EqualFold(filepath.Ext(path), ".sass") {
		syntax = godartsass.SourceSyntaxSASS
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	res, err := d.transpiler.Execute(godartsass.Args{
		Source:       string(src),
		URL:          "file://" + filepath.ToSlash(path),
		SourceSyntax: syntax,
		OutputStyle:  godartsass.OutputStyleCompressed,
		IncludePaths: []string{filepath.Dir(path)},
	})
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryStyle, "sass compiler failed").
			Warning().
			WithContext("path", path).
			Build()
	}
	return res.CSS, nil
}

// Close stops the transpiler process if it was started.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.transpiler == nil {
		return nil
	}
	if err := d.transpiler.Close(); err != nil {
		return fmt.Errorf("close sass transpiler: %w", err)
	}
	d.transpiler = nil
	return nil
}

// Func adapts a function to Compiler.
type Func func(path string) (string, error)

// Compile calls f.
func (f Func) Compile(path string) (string, error) { return f(path) }
