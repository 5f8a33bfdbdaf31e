package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/config"
	"github.com/dokzlo13/colorname/internal/resolve"
	"github.com/dokzlo13/colorname/internal/smarthome"
)

// App is the main application container that manages all services and their lifecycle.
type App struct {
	cfg      *config.Config
	services *Services
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// New creates a new App with catalogs built and published but no
// background services running.
func New(cfg *config.Config) (*App, error) {
	services, err := NewServices(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		services: services,
	}, nil
}

// Start starts background services. The provided context is used for cancellation.
func (a *App) Start(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.services.Start(a.ctx)
}

// Stop cancels background services and releases their resources.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		a.services.Close()
	})
}

// Reload rebuilds both catalogs from the configured files and publishes them.
func (a *App) Reload() error {
	return a.services.Catalogs.Reload()
}

// Catalogs returns the registry holding the current catalogs.
func (a *App) Catalogs() *catalog.Registry {
	return a.services.Catalogs.Registry
}

// Resolver returns the resolver configured with the matching weights.
func (a *App) Resolver() *resolve.Resolver {
	return a.services.Resolver
}

// Resolve runs a batch of action requests against the current catalogs.
func (a *App) Resolve(ctx context.Context, reqs []smarthome.ActionRequest) []smarthome.ActionResult {
	return a.services.Invoker.Resolve(ctx, reqs)
}

// RunScript runs a Lua script on the worker. Start must have been called.
func (a *App) RunScript(ctx context.Context, path string) error {
	return a.services.Lua.RunScript(ctx, path)
}

// SignalContext creates a context that is cancelled when SIGINT or SIGTERM is received.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}
