package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/logging/console"
)

func TestConsoleLoggerEntryFormat(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})

	logger := logging.WithFields(provider.GetLogger("cms.apps"), map[string]any{"module": "cms.apps"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger = logger.WithContext(ctx)

	logger.Info("apps.urlconf.built", "key", "urlconf_1", "routes", 3, "err", errors.New("a b"))

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z INFO apps.urlconf.built err="a b" key=urlconf_1 logger=cms.apps module=cms.apps request_id=req-1 routes=3`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.ParseLevel("info")
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("cms.test")
	logger.Debug("ignored.debug")
	logger.Info("included.info")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected only the info entry, got %q", buf.String())
	}
}

func TestConsoleLoggerPositionalArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("cms.test").Warn("odd.args", 42, "value", "dangling")

	out := buf.String()
	if !strings.Contains(out, "field_0=value") || !strings.Contains(out, "field_1=dangling") {
		t.Fatalf("expected positional fields, got %q", out)
	}
}
