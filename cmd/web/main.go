package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sahasand/talia-colors-website/internal/booking"
	"github.com/sahasand/talia-colors-website/internal/cms"
	"github.com/sahasand/talia-colors-website/internal/config"
	"github.com/sahasand/talia-colors-website/internal/i18n"
	"github.com/sahasand/talia-colors-website/internal/intake"
	"github.com/sahasand/talia-colors-website/internal/observability"
	"github.com/sahasand/talia-colors-website/internal/recommend"
	"github.com/sahasand/talia-colors-website/internal/richtext"
	"github.com/sahasand/talia-colors-website/internal/secrets"
	"github.com/sahasand/talia-colors-website/internal/status"
	"github.com/sahasand/talia-colors-website/internal/workflow"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "dotenv file with configuration overrides")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, envFile); err != nil {
		fmt.Fprintf(os.Stderr, "talia-colors web: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string) error {
	resolver := secrets.NewResolver(secrets.WithProject(os.Getenv("GOOGLE_CLOUD_PROJECT")))
	defer func() { _ = resolver.Close() }()

	cfg, err := config.Load(ctx, config.WithEnvFile(envFile), config.WithSecretResolver(resolver))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Server.LogLevel, cfg.Server.Dev)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	handler, janitor, err := build(cfg, logger)
	if err != nil {
		return err
	}

	bg, cancel := context.WithCancel(ctx)
	defer cancel()
	go janitor.Run(bg, cfg.Session.SweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverLogger := logger.Named("http").With(zap.String("addr", srv.Addr))
	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info("talia colors web listening", zap.Bool("dev", cfg.Server.Dev), zap.Strings("locales", cfg.Site.Locales))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	cancel()
	return nil
}

// build assembles the application graph and returns the router plus the session store whose
// janitor the caller runs.
func build(cfg config.Config, logger *zap.Logger) (http.Handler, *workflow.Store, error) {
	bundle, err := i18n.Load(cfg.Paths.Locales, cfg.Site.DefaultLocale, cfg.Site.Locales)
	if err != nil {
		return nil, nil, fmt.Errorf("load locales: %w", err)
	}

	catalog := recommend.DefaultCatalog()
	if cfg.Paths.CatalogFile != "" {
		catalog, err = recommend.LoadCatalogFile(cfg.Paths.CatalogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load catalog: %w", err)
		}
		logger.Info("color catalog loaded", zap.String("path", cfg.Paths.CatalogFile), zap.Int("presets", catalog.Len()))
	}

	links, err := booking.New(cfg.Booking.WhatsAppNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("booking: %w", err)
	}

	photos := intake.NewStore(
		intake.WithLogger(logger.Named("intake")),
		intake.WithLiveObserver(func(n int) { observability.LivePhotos.Set(float64(n)) }),
	)
	sim := workflow.NewSimulation(cfg.Workflow.ProcessingSpeed)
	sessions := workflow.NewStore(
		workflow.WithIdleTTL(cfg.Session.IdleTTL),
		workflow.WithStoreLogger(logger.Named("workflow")),
		workflow.WithSessionOptions(workflow.WithReleaser(photos), workflow.WithSimulation(sim)),
		workflow.WithActiveObserver(func(n int) { observability.ActiveSessions.Set(float64(n)) }),
	)
	picker, err := workflow.NewService(workflow.ServiceDeps{
		Sessions:   sessions,
		Photos:     photos,
		Engine:     recommend.NewEngine(),
		Catalog:    catalog,
		Translator: bundle,
		Logger:     logger.Named("workflow"),
	})
	if err != nil {
		return nil, nil, err
	}

	rich := richtext.New()
	pages := cms.NewLibrary(cfg.Paths.Content, bundle.Fallback(), rich)

	board := status.NewBoard()
	board.Register("sessions", func(context.Context) (string, error) {
		return fmt.Sprintf("%d active", sessions.Len()), nil
	})
	board.Register("photos", func(context.Context) (string, error) {
		return fmt.Sprintf("%d live", photos.Live()), nil
	})
	board.Register("locales", func(context.Context) (string, error) {
		return fmt.Sprintf("%v", bundle.Supported()), nil
	})
	board.Register("content", func(context.Context) (string, error) {
		if _, err := os.Stat(cfg.Paths.Content); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d footer pages", len(pages.Footer(bundle.Fallback()))), nil
	})

	srv, err := newServer(serverDeps{
		Config:     cfg,
		Logger:     logger,
		Bundle:     bundle,
		Picker:     picker,
		Photos:     photos,
		Simulation: sim,
		Catalog:    catalog,
		Booking:    links,
		Pages:      pages,
		Renderer:   rich,
		Status:     board,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init server: %w", err)
	}
	return srv.routes(), sessions, nil
}
