package catalog

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Registry publishes the current colour and temperature catalogs.
// Each slot is swapped atomically, so readers always see a complete catalog:
// either the previous snapshot or the new one.
type Registry struct {
	colors       atomic.Pointer[Catalog]
	temperatures atomic.Pointer[Catalog]
}

// NewRegistry creates a registry holding empty catalogs.
func NewRegistry() *Registry {
	r := &Registry{}
	r.colors.Store(Empty(KindColor))
	r.temperatures.Store(Empty(KindTemperature))
	return r
}

// Colors returns the current colour catalog.
func (r *Registry) Colors() *Catalog {
	return r.colors.Load()
}

// Temperatures returns the current colour temperature catalog.
func (r *Registry) Temperatures() *Catalog {
	return r.temperatures.Load()
}

// PublishColors replaces the colour catalog and returns the one it replaced.
func (r *Registry) PublishColors(c *Catalog) *Catalog {
	if c == nil {
		c = Empty(KindColor)
	}
	prev := r.colors.Swap(c)
	logPublish(c, prev)
	return prev
}

// PublishTemperatures replaces the temperature catalog and returns the one it replaced.
func (r *Registry) PublishTemperatures(c *Catalog) *Catalog {
	if c == nil {
		c = Empty(KindTemperature)
	}
	prev := r.temperatures.Swap(c)
	logPublish(c, prev)
	return prev
}

func logPublish(next, prev *Catalog) {
	event := log.Info().
		Str("kind", string(next.Kind())).
		Str("catalog", next.ID()).
		Int("options", next.Len()).
		Int("known", len(next.known))
	if prev != nil {
		event = event.Str("replaced", prev.ID())
	}
	event.Msg("Catalog published")
}
