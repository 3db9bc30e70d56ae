package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	feincms "github.com/goliatone/go-feincms"
	fixturescmd "github.com/goliatone/go-feincms/internal/commands/fixtures"
	"github.com/goliatone/go-feincms/internal/fixtures"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("feincms: %v", err)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("feincms", flag.ExitOnError)
	configPath := flags.String("config", "", "Path to a YAML configuration file")
	addr := flags.String("addr", ":8080", "Address the HTTP server listens on")
	fixtureDir := flags.String("fixtures", "", "Directory of Markdown documents imported on start")
	dryRun := flags.Bool("dry-run", false, "Plan the fixture import without writing")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := feincms.DefaultConfig()
	if *configPath != "" {
		loaded, err := feincms.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	module, err := buildSite(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *fixtureDir != "" {
		if err := importFixtures(ctx, module, *fixtureDir, *dryRun); err != nil {
			return err
		}
		if *dryRun {
			return nil
		}
	}

	router, err := newRouter(module)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger := module.Container().Logger("cms.http")
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", *addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRouter mounts the admin API next to the public site.
func newRouter(module *feincms.Module) (http.Handler, error) {
	admin := http.NewServeMux()
	if err := module.AdminAPI().Register(admin); err != nil {
		return nil, fmt.Errorf("register admin api: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Handle("/admin/api/*", admin)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/*", module.Handler())
	return r, nil
}

func importFixtures(ctx context.Context, module *feincms.Module, dir string, dryRun bool) error {
	logger := module.Container().Logger("cms.fixtures")
	handler := fixturescmd.NewImportFixturesHandler(module.Container().Importer(), logger,
		fixturescmd.WithResultHook(func(result fixtures.Result) {
			for _, page := range result.Pages {
				fmt.Printf("%-40s %s\n", page.Path, page.Title)
			}
			fmt.Printf("pages=%d items=%d dry_run=%t\n", len(result.Pages), result.Items, dryRun)
		}),
	)
	return handler.Execute(ctx, fixturescmd.ImportFixturesCommand{Dir: dir, DryRun: dryRun})
}
