package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

// stopGrace bounds the time fx gets to run OnStop hooks once the process is
// asked to exit. The HTTP server applies its own SHUTDOWN_TIMEOUT inside it.
const stopGrace = 30 * time.Second

// run starts app, blocks until ctx is cancelled or fx requests a shutdown,
// then stops it.
func run(ctx context.Context, app *fx.App) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start storefront: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopGrace)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop storefront: %w", err)
	}
	return nil
}
