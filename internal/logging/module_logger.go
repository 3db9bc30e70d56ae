package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-feincms/pkg/interfaces"
)

const (
	rootModule     = "cms"
	pagesModule    = "cms.pages"
	appsModule     = "cms.apps"
	regionsModule  = "cms.regions"
	rendererModule = "cms.renderer"
	contentModule  = "cms.content"
	httpModule     = "cms.http"
	fixturesModule = "cms.fixtures"
)

const (
	fieldPagePath  = "page_path"
	fieldLanguage  = "language"
	fieldNamespace = "namespace"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered per module.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PagesLogger returns the logger used by the page tree service.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// AppsLogger returns the logger used by the application routing builder.
func AppsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, appsModule)
}

// RegionsLogger returns the logger used by the region pipeline.
func RegionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, regionsModule)
}

// RendererLogger returns the logger used by plugin renderers.
func RendererLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rendererModule)
}

// ContentLogger returns the logger used by the content item service.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// HTTPLogger returns the logger used by HTTP handlers.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// FixturesLogger returns the logger used by the fixture importer.
func FixturesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, fixturesModule)
}

// WithPageContext enriches the logger with page routing fields. Empty values
// are skipped.
func WithPageContext(logger interfaces.Logger, path, language, namespace string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPagePath] = trimmed
	}
	if trimmed := strings.TrimSpace(language); trimmed != "" {
		fields[fieldLanguage] = trimmed
	}
	if trimmed := strings.TrimSpace(namespace); trimmed != "" {
		fields[fieldNamespace] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
