package app

import (
	"context"
	"fmt"

	"github.com/vk/zregistry/internal/ctxlog"
	"github.com/vk/zregistry/internal/plan"
	"go.uber.org/multierr"
)

// Run discovers every registered test, builds the run plan, writes it out
// and, when configured, publishes it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "root", a.config.Root, "pattern", a.config.Pattern)

	reg, err := a.Discover(ctx)
	if err != nil {
		errs := multierr.Errors(err)
		for _, e := range errs {
			a.logger.Error("Discovery failed.", "error", e)
		}
		return fmt.Errorf("discovery failed with %d error(s): %w", len(errs), err)
	}

	p, err := plan.Build(reg, a.config.filter())
	if err != nil {
		return fmt.Errorf("failed to build run plan: %w", err)
	}
	a.logger.Info("Run plan built.", "registered", reg.Len(), "selected", len(p.Tests))
	if len(p.Tests) == 0 {
		a.logger.Warn("No tests selected, nothing to run.")
	}

	if err := plan.Render(a.outW, p, a.config.Output); err != nil {
		return fmt.Errorf("failed to write run plan: %w", err)
	}

	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, p.Payload()); err != nil {
			return fmt.Errorf("failed to publish run plan: %w", err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
