// Package smarthome turns batches of device action requests into vendor
// parameters, resolving free-form colour and temperature values against the
// published catalogs.
package smarthome

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/resolve"
)

var (
	// ErrUnsupportedAction is returned for action names with no registered handler.
	ErrUnsupportedAction = errors.New("unsupported action")
	// ErrNoMatch is returned when a colour or temperature value resolves to nothing.
	ErrNoMatch = errors.New("no matching option")
	// ErrInvalidValue is returned when a request value has the wrong shape.
	ErrInvalidValue = errors.New("invalid action value")
)

// ActionRequest asks for one action on one entity.
type ActionRequest struct {
	Entity string `yaml:"entity"`
	Action string `yaml:"action"`
	Value  any    `yaml:"value,omitempty"`
	Scale  string `yaml:"scale,omitempty"` // setTargetTemperature only
}

// ActionResult is the outcome for one request. Parameters is nil when Err is set.
type ActionResult struct {
	Entity     string         `yaml:"entity"`
	Action     string         `yaml:"action"`
	Parameters map[string]any `yaml:"parameters,omitempty"`
	Err        error          `yaml:"-"`
}

// Catalogs supplies the catalogs a batch resolves against.
type Catalogs interface {
	Colors() *catalog.Catalog
	Temperatures() *catalog.Catalog
}

// Context is handed to actions. It pins one catalog snapshot per kind, so
// every request in a batch sees the same catalogs.
type Context struct {
	ctx          context.Context
	colors       *catalog.Catalog
	temperatures *catalog.Catalog
	resolver     *resolve.Resolver
}

// NewContext snapshots the current catalogs.
func NewContext(ctx context.Context, catalogs Catalogs, resolver *resolve.Resolver) *Context {
	return &Context{
		ctx:          ctx,
		colors:       catalogs.Colors(),
		temperatures: catalogs.Temperatures(),
		resolver:     resolver,
	}
}

// Ctx returns the Go context for cancellation
func (c *Context) Ctx() context.Context { return c.ctx }

// ColorName resolves a colour value to a catalog identifier.
func (c *Context) ColorName(value string) (string, error) {
	id, ok, err := c.resolver.ResolveColorName(c.colors, value)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: colour %q", ErrNoMatch, value)
	}
	return id, nil
}

// ColorTemperatureName resolves a temperature name, hex code or Kelvin number.
func (c *Context) ColorTemperatureName(value any) (string, error) {
	var (
		id  string
		ok  bool
		err error
	)
	switch v := value.(type) {
	case string:
		id, ok, err = c.resolver.ResolveTemperatureName(c.temperatures, v)
	default:
		kelvin, nerr := toNumber(value)
		if nerr != nil {
			return "", nerr
		}
		id, ok, err = c.resolver.ResolveTemperatureKelvin(c.temperatures, kelvin)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: colour temperature %v", ErrNoMatch, value)
	}
	return id, nil
}

// Action converts one request into vendor parameters.
type Action interface {
	Name() string
	Execute(ctx *Context, req ActionRequest) (map[string]any, error)
}

// SimpleAction is the standard action implementation
type SimpleAction struct {
	name string
	fn   func(ctx *Context, req ActionRequest) (map[string]any, error)
}

func (a *SimpleAction) Name() string { return a.name }

func (a *SimpleAction) Execute(ctx *Context, req ActionRequest) (map[string]any, error) {
	return a.fn(ctx, req)
}

// Registry holds all registered actions
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry creates an empty action registry
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]Action),
	}
}

// Register adds an action to the registry
func (r *Registry) Register(action Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[action.Name()]; exists {
		return fmt.Errorf("action %q already registered", action.Name())
	}

	r.actions[action.Name()] = action
	return nil
}

// RegisterSimple adds a simple action (convenience method)
func (r *Registry) RegisterSimple(name string, fn func(ctx *Context, req ActionRequest) (map[string]any, error)) error {
	return r.Register(&SimpleAction{name: name, fn: fn})
}

// Get retrieves an action by name
func (r *Registry) Get(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, exists := r.actions[name]
	return action, exists
}

// Names returns all registered action names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
