package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyPage       = "page"
	KeyTag        = "tag"
	KeyMacro      = "macro"
	KeySource     = "source"
	KeyPlugin     = "plugin"
	KeyCacheKey   = "cache_key"
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyError      = "error"
)

func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Macro(name string) slog.Attr     { return slog.String(KeyMacro, name) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Plugin(file string) slog.Attr    { return slog.String(KeyPlugin, file) }
func CacheKey(k string) slog.Attr     { return slog.String(KeyCacheKey, k) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
