package lua

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/colorname/internal/lua/modules"
)

// ErrRuntimeClosed is returned when the Lua runtime is closed
var ErrRuntimeClosed = fmt.Errorf("lua runtime closed")

// LuaWork represents work to be executed on the Lua VM
// All Lua execution MUST go through this to ensure thread safety
type LuaWork func(ctx context.Context)

// Runtime manages the Lua VM with single-threaded execution
type Runtime struct {
	L    *lua.LState
	deps RuntimeDeps

	// Work queue for thread-safe Lua execution
	workQueue chan LuaWork

	// Closing this channel signals senders to stop
	closing   chan struct{}
	closeOnce sync.Once
}

// NewRuntime creates a new Lua runtime with the log and colors modules preloaded
func NewRuntime(deps RuntimeDeps) *Runtime {
	r := &Runtime{
		L:         lua.NewState(),
		deps:      deps,
		workQueue: make(chan LuaWork, 100),
		closing:   make(chan struct{}),
	}

	r.registerModules()

	return r
}

// Close signals the runtime to stop accepting new work and closes the Lua state.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		close(r.closing)
	})
	// workQueue stays open; closing it would panic concurrent senders.
	r.L.Close()
}

// Do queues work to be executed on the Lua VM (thread-safe, non-blocking)
// Returns false if the runtime is closing, queue is full, or context is cancelled.
func (r *Runtime) Do(ctx context.Context, work LuaWork) bool {
	if r.isClosing() {
		log.Warn().Msg("Lua runtime closing, dropping work")
		return false
	}
	select {
	case <-r.closing:
		log.Warn().Msg("Lua runtime closing, dropping work")
		return false
	case <-ctx.Done():
		log.Warn().Msg("Context cancelled, dropping Lua work")
		return false
	case r.workQueue <- work:
		return true
	default:
		log.Warn().Msg("Lua work queue full, dropping work")
		return false
	}
}

// DoSyncWithResult queues work, waits for space, and waits for the result.
func (r *Runtime) DoSyncWithResult(ctx context.Context, work func(context.Context) error) error {
	done := make(chan error, 1)
	wrappedWork := LuaWork(func(c context.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("lua work panicked: %v", rec)
			}
		}()
		done <- work(c)
	})

	if r.isClosing() {
		return ErrRuntimeClosed
	}

	select {
	case <-r.closing:
		return ErrRuntimeClosed
	case <-ctx.Done():
		return ctx.Err()
	case r.workQueue <- wrappedWork:
	}

	select {
	case <-r.closing:
		return ErrRuntimeClosed
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (r *Runtime) isClosing() bool {
	select {
	case <-r.closing:
		return true
	default:
		return false
	}
}

// registerModules registers all Lua modules
func (r *Runtime) registerModules() {
	r.L.PreloadModule("log", modules.NewLogModule().Loader)

	colors := modules.NewColorsModule(r.deps.Catalogs, r.deps.Resolver, r.deps.Invoker, r.deps.Reload)
	r.L.PreloadModule("colors", colors.Loader)
}

// Run starts the Lua worker goroutine - this is the ONLY goroutine that touches Lua.
// Exits when context is cancelled or runtime is closed.
func (r *Runtime) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drainQueue(ctx)
			return
		case <-r.closing:
			return
		case work := <-r.workQueue:
			r.executeWork(ctx, work)
		}
	}
}

// drainQueue processes any remaining work in the queue before exiting
func (r *Runtime) drainQueue(ctx context.Context) {
	for {
		select {
		case work := <-r.workQueue:
			r.executeWork(ctx, work)
		default:
			return
		}
	}
}

// executeWork runs a single work item with panic recovery
func (r *Runtime) executeWork(ctx context.Context, work LuaWork) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Msg("Lua work panicked - worker continuing")
		}
	}()
	// Modules read the context through L.Context()
	r.L.SetContext(ctx)
	work(ctx)
}

// RunScript executes a Lua file on the worker and waits for it to finish.
func (r *Runtime) RunScript(ctx context.Context, path string) error {
	log.Info().Str("path", path).Msg("Running Lua script")

	err := r.DoSyncWithResult(ctx, func(context.Context) error {
		if err := r.L.DoFile(path); err != nil {
			return fmt.Errorf("failed to execute Lua script: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("Lua script finished")
	return nil
}

// RunString executes a Lua chunk on the worker and waits for it to finish.
func (r *Runtime) RunString(ctx context.Context, source string) error {
	return r.DoSyncWithResult(ctx, func(context.Context) error {
		return r.L.DoString(source)
	})
}
