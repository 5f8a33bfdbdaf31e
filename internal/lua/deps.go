package lua

import (
	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/resolve"
	"github.com/dokzlo13/colorname/internal/smarthome"
)

// RuntimeDeps groups all dependencies needed by Lua runtime.
type RuntimeDeps struct {
	Catalogs *catalog.Registry
	Resolver *resolve.Resolver
	Invoker  *smarthome.Invoker
	// Reload rebuilds and republishes the catalogs; nil disables colors.reload
	Reload func() error
}
