package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ScanMode runs a single scan of the feed and exits.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")
	return deps.Reconciler.Run(ctx)
}

// MonitorMode runs scans on the configured interval until cancelled.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Reconciler.RunLoop(ctx, a.cfg.Engine.ScanInterval.Duration)
	})

	return g.Wait()
}
