package smarthome

import (
	"context"
	"fmt"

	"github.com/alitto/pond"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/colorname/internal/resolve"
)

// Invoker runs batches of action requests against the registry.
type Invoker struct {
	registry *Registry
	catalogs Catalogs
	resolver *resolve.Resolver
	workers  int
}

// InvokerOption customizes an Invoker.
type InvokerOption func(*Invoker)

// WithWorkers resolves batches on up to n goroutines. n <= 1 resolves in the
// calling goroutine.
func WithWorkers(n int) InvokerOption {
	return func(i *Invoker) {
		i.workers = n
	}
}

// NewInvoker creates a new action invoker
func NewInvoker(registry *Registry, catalogs Catalogs, resolver *resolve.Resolver, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		registry: registry,
		catalogs: catalogs,
		resolver: resolver,
		workers:  1,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// HasAction checks if an action is registered
func (i *Invoker) HasAction(actionName string) bool {
	_, exists := i.registry.Get(actionName)
	return exists
}

// Resolve converts every request into vendor parameters. A failing request
// records its error in its own result and does not stop the batch. Results
// are in request order. The "action" parameter always carries the action name.
func (i *Invoker) Resolve(ctx context.Context, reqs []ActionRequest) []ActionResult {
	actx := NewContext(ctx, i.catalogs, i.resolver)
	results := make([]ActionResult, len(reqs))

	if i.workers <= 1 || len(reqs) < 2 {
		for idx, req := range reqs {
			results[idx] = i.resolveOne(actx, req)
		}
	} else {
		pool := pond.New(min(i.workers, len(reqs)), len(reqs))
		for idx, req := range reqs {
			idx, req := idx, req
			pool.Submit(func() {
				results[idx] = i.resolveOne(actx, req)
			})
		}
		pool.StopAndWait()
	}

	log.Debug().
		Int("requests", len(reqs)).
		Str("colors", actx.colors.ID()).
		Str("temperatures", actx.temperatures.ID()).
		Msg("Action batch resolved")

	return results
}

// resolveOne never panics out: a panicking action becomes the request's error.
func (i *Invoker) resolveOne(actx *Context, req ActionRequest) (res ActionResult) {
	res = ActionResult{Entity: req.Entity, Action: req.Action}
	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("%s %s: action panicked: %v", req.Action, req.Entity, rec)
		}
		if res.Err != nil {
			res.Parameters = nil
			log.Warn().
				Err(res.Err).
				Str("entity", req.Entity).
				Str("action", req.Action).
				Msg("Action request failed")
		}
	}()

	if err := actx.ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Parameters, res.Err = i.execute(actx, req)
	return res
}

func (i *Invoker) execute(actx *Context, req ActionRequest) (map[string]any, error) {
	if req.Entity == "" {
		return nil, fmt.Errorf("%w: entity is empty", ErrInvalidValue)
	}
	action, exists := i.registry.Get(req.Action)
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAction, req.Action)
	}

	params, err := action.Execute(actx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Action, req.Entity, err)
	}
	if params == nil {
		params = make(map[string]any, 1)
	}
	params["action"] = req.Action
	return params, nil
}

var defaultRegistry = NewDefaultRegistry()

// Resolve runs reqs through the built-in actions.
func Resolve(ctx context.Context, catalogs Catalogs, resolver *resolve.Resolver, reqs []ActionRequest) []ActionResult {
	return NewInvoker(defaultRegistry, catalogs, resolver).Resolve(ctx, reqs)
}
