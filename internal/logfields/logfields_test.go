package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Output", KeyOutput, "out/index.html", Output("out/index.html")},
		{"Page", KeyPage, "index.html", Page("index.html")},
		{"Tag", KeyTag, "img", Tag("img")},
		{"Macro", KeyMacro, "native", Macro("native")},
		{"Source", KeySource, "logo.png", Source("logo.png")},
		{"Plugin", KeyPlugin, "card.star", Plugin("card.star")},
		{"CacheKey", KeyCacheKey, "file:/a", CacheKey("file:/a")},
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Stage", KeyStage, "render", Stage("render")},
		{"Addr", KeyAddr, ":8080", Addr(":8080")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if v := Count(3).Value.Int64(); v != 3 {
		t.Fatalf("expected 3, got %d", v)
	}
	if v := DurationMS(1.5).Value.Float64(); v != 1.5 {
		t.Fatalf("expected 1.5, got %v", v)
	}
	if a := Status(404); a.Key != KeyStatus || a.Value.Int64() != 404 {
		t.Fatalf("unexpected status attr %v", a)
	}
}
