package app

import (
	"context"

	luart "github.com/dokzlo13/colorname/internal/lua"
)

// LuaService wraps the Lua runtime and provides thread-safe execution.
type LuaService struct {
	Runtime *luart.Runtime
	done    chan struct{}
}

// NewLuaService creates a new LuaService.
func NewLuaService(deps luart.RuntimeDeps) *LuaService {
	return &LuaService{
		Runtime: luart.NewRuntime(deps),
	}
}

// Start begins the Lua worker goroutine.
func (s *LuaService) Start(ctx context.Context) {
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		// This is the ONLY goroutine that touches Lua
		s.Runtime.Run(ctx)
	}()
}

// RunScript executes a script file on the worker and waits for it.
func (s *LuaService) RunScript(ctx context.Context, path string) error {
	return s.Runtime.RunScript(ctx, path)
}

// Close closes the Lua runtime once the worker has exited.
func (s *LuaService) Close() {
	if s.done != nil {
		<-s.done
	}
	s.Runtime.Close()
}
