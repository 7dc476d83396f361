package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerAnnotatesRecords(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithPage(WithBuildID(context.Background(), "b-1"), "a.html")
	Logger(ctx, base).Warn("ignoring asset")

	out := buf.String()
	for _, want := range []string{"build.id=b-1", "page=a.html", "ignoring asset"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestWithPageKeepsBuildID(t *testing.T) {
	build := WithBuildID(context.Background(), "b-2")
	first := WithPage(build, "/a.html")
	second := WithPage(build, "/b.html")

	if lc := extractLogContext(first); lc.BuildID != "b-2" || lc.Page != "/a.html" {
		t.Fatalf("unexpected log context %+v", lc)
	}
	if lc := extractLogContext(second); lc.Page != "/b.html" {
		t.Fatalf("sibling page leaked: %+v", lc)
	}
	if lc := extractLogContext(build); lc.Page != "" {
		t.Fatalf("parent context changed: %+v", lc)
	}
}

func TestLoggerWithoutFieldsReturnsBase(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if Logger(context.Background(), base) != base {
		t.Fatal("expected the base logger back")
	}
}
