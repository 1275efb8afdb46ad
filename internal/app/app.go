package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/zregistry/internal/ctxlog"
	"github.com/vk/zregistry/internal/hcl"
	"github.com/vk/zregistry/internal/publish"
	"github.com/vk/zregistry/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	loader    *hcl.Loader
	publisher *publish.Publisher
}

// NewApp is the constructor for the main application. The plan is written
// to outW and logs to logW, each App getting its own logger.
func NewApp(outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	loader := hcl.NewLoader(
		hcl.WithPattern(cfg.Pattern),
		hcl.WithChecker(registry.OSChecker{Root: cfg.Root}),
	)

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
	}

	if cfg.PublishURL != "" {
		pub, err := publish.New(publish.Config{
			URL:       cfg.PublishURL,
			Namespace: cfg.PublishNamespace,
			Event:     cfg.PublishEvent,
			AckEvent:  cfg.PublishAckEvent,
			Timeout:   cfg.PublishTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure plan publisher: %w", err)
		}
		a.publisher = pub
		logger.Debug("Plan publisher configured.", "url", cfg.PublishURL, "event", cfg.PublishEvent)
	}

	return a, nil
}

// Discover runs one discovery pass under the configured root and returns
// the frozen registry.
func (a *App) Discover(ctx context.Context) (*registry.Registry, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	info, err := os.Stat(a.config.Root)
	if err != nil {
		return nil, fmt.Errorf("error accessing root %s: %w", a.config.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", a.config.Root)
	}

	return a.loader.Discover(ctx, os.DirFS(a.config.Root))
}
