package di

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/goliatone/go-feincms/internal/logging/gologger"
	"github.com/goliatone/go-feincms/internal/runtimeconfig"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

type recordingProvider struct {
	next  interfaces.LoggerProvider
	mu    sync.Mutex
	names []string
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	p.mu.Lock()
	p.names = append(p.names, name)
	p.mu.Unlock()
	return p.next.GetLogger(name)
}

func (p *recordingProvider) requested(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.names, name)
}

func goLoggerConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	cfg.Logging.Focus = []string{"cms.pages", "cms.apps"}
	return cfg
}

func TestConfigSelectsGoLoggerForModules(t *testing.T) {
	container, err := NewContainer(goLoggerConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if container.Logger("cms.pages") == nil {
		t.Fatal("expected a pages module logger")
	}
}

func TestContainerRequestsModuleLoggers(t *testing.T) {
	base, err := gologger.NewProvider(gologger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	recorder := &recordingProvider{next: base}

	container, err := NewContainer(goLoggerConfig(), WithLoggerProvider(recorder))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	if container.LoggerProvider() != recorder {
		t.Fatalf("expected the supplied provider to win over config, got %T", container.LoggerProvider())
	}
	for _, module := range []string{"cms", "cms.pages", "cms.content", "cms.apps"} {
		if !recorder.requested(module) {
			t.Fatalf("expected a %s logger to be requested, got %v", module, recorder.names)
		}
	}
}

func TestContainerRejectsUnknownGoLoggerFormat(t *testing.T) {
	cfg := goLoggerConfig()
	cfg.Logging.Format = "xml"

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
