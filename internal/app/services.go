package app

import (
	"context"

	"github.com/dokzlo13/colorname/internal/config"
	luart "github.com/dokzlo13/colorname/internal/lua"
	"github.com/dokzlo13/colorname/internal/resolve"
	"github.com/dokzlo13/colorname/internal/smarthome"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	Catalogs *CatalogService
	Resolver *resolve.Resolver

	// Action system
	Actions *smarthome.Registry
	Invoker *smarthome.Invoker

	Lua *LuaService
}

// NewServices creates all services and publishes the initial catalogs.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	s.Catalogs = NewCatalogService(cfg)
	if err := s.Catalogs.Reload(); err != nil {
		return nil, err
	}

	s.Resolver = resolve.New(cfg.Matching.Weights)

	s.Actions = smarthome.NewDefaultRegistry()
	s.Invoker = smarthome.NewInvoker(s.Actions, s.Catalogs.Registry, s.Resolver,
		smarthome.WithWorkers(cfg.Batch.GetWorkers()))

	s.Lua = NewLuaService(luart.RuntimeDeps{
		Catalogs: s.Catalogs.Registry,
		Resolver: s.Resolver,
		Invoker:  s.Invoker,
		Reload:   s.Catalogs.Reload,
	})

	return s, nil
}

// Start starts background services.
func (s *Services) Start(ctx context.Context) {
	s.Lua.Start(ctx)
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Lua != nil {
		s.Lua.Close()
	}
}
