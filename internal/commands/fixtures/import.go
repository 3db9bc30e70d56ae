package fixturescmd

import (
	"context"
	"io/fs"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-feincms/internal/commands"
	"github.com/goliatone/go-feincms/internal/fixtures"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

const importFixturesMessageType = "cms.fixtures.import"

var _ command.Commander[ImportFixturesCommand] = (*ImportFixturesHandler)(nil)

// Importer loads a fixture tree into the page and content services.
type Importer interface {
	Import(ctx context.Context, fsys fs.FS, opts fixtures.Options) (fixtures.Result, error)
}

// ImportFixturesCommand imports the Markdown documents below Dir.
type ImportFixturesCommand struct {
	Dir    string `json:"dir"`
	DryRun bool   `json:"dry_run"`
}

// Type implements command.Message.
func (ImportFixturesCommand) Type() string { return importFixturesMessageType }

// Validate ensures a directory was given.
func (m ImportFixturesCommand) Validate() error {
	if strings.TrimSpace(m.Dir) == "" {
		return validation.Errors{
			"dir": validation.NewError("cms.fixtures.import.dir_required", "dir is required"),
		}
	}
	return nil
}

// ImportFixturesHandler runs ImportFixturesCommand.
type ImportFixturesHandler struct {
	inner *commands.Handler[ImportFixturesCommand]
}

// HandlerOption customises the fixture import handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	open    func(dir string) fs.FS
	results func(fixtures.Result)
}

// WithFS overrides how the command directory is opened.
func WithFS(open func(dir string) fs.FS) HandlerOption {
	return func(cfg *handlerConfig) {
		if open != nil {
			cfg.open = open
		}
	}
}

// WithResultHook receives the result of every successful import.
func WithResultHook(hook func(fixtures.Result)) HandlerOption {
	return func(cfg *handlerConfig) {
		cfg.results = hook
	}
}

// NewImportFixturesHandler constructs a handler wired to importer.
func NewImportFixturesHandler(importer Importer, logger interfaces.Logger, opts ...HandlerOption) *ImportFixturesHandler {
	cfg := handlerConfig{open: os.DirFS}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	exec := func(ctx context.Context, msg ImportFixturesCommand) error {
		result, err := importer.Import(ctx, cfg.open(strings.TrimSpace(msg.Dir)), fixtures.Options{DryRun: msg.DryRun})
		if err != nil {
			return err
		}
		if cfg.results != nil {
			cfg.results(result)
		}
		return nil
	}

	return &ImportFixturesHandler{inner: commands.NewHandler(exec,
		commands.WithLogger[ImportFixturesCommand](logger),
		commands.WithOperation[ImportFixturesCommand]("fixtures.import"),
		commands.WithMessageFields(func(msg ImportFixturesCommand) map[string]any {
			return map[string]any{"dir": msg.Dir, "dry_run": msg.DryRun}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportFixturesCommand](logger)),
	)}
}

// Execute satisfies command.Commander[ImportFixturesCommand].
func (h *ImportFixturesHandler) Execute(ctx context.Context, msg ImportFixturesCommand) error {
	return h.inner.Execute(ctx, msg)
}
