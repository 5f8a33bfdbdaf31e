package smarthome

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NewDefaultRegistry returns a registry with the built-in device actions.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	mustRegister(r, "setColor", setColor)
	mustRegister(r, "setColorTemperature", setColorTemperature)
	mustRegister(r, "setBrightness", numberParam("brightness"))
	mustRegister(r, "setPercentage", numberParam("percentage"))
	mustRegister(r, "setLockState", lockState)
	mustRegister(r, "lockAction", lockState)
	mustRegister(r, "setTargetTemperature", targetTemperature)
	for _, name := range []string{"turnOn", "turnOff"} {
		mustRegister(r, name, noParams)
	}
	return r
}

func mustRegister(r *Registry, name string, fn func(*Context, ActionRequest) (map[string]any, error)) {
	if err := r.RegisterSimple(name, fn); err != nil {
		panic(err)
	}
}

func noParams(_ *Context, _ ActionRequest) (map[string]any, error) {
	return map[string]any{}, nil
}

func setColor(ctx *Context, req ActionRequest) (map[string]any, error) {
	value, ok := req.Value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: colour must be a string, got %T", ErrInvalidValue, req.Value)
	}
	name, err := ctx.ColorName(value)
	if err != nil {
		return nil, err
	}
	return map[string]any{"colorName": name}, nil
}

func setColorTemperature(ctx *Context, req ActionRequest) (map[string]any, error) {
	name, err := ctx.ColorTemperatureName(req.Value)
	if err != nil {
		return nil, err
	}
	return map[string]any{"colorTemperatureName": name}, nil
}

func numberParam(param string) func(*Context, ActionRequest) (map[string]any, error) {
	return func(_ *Context, req ActionRequest) (map[string]any, error) {
		n, err := toNumber(req.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{param: n}, nil
	}
}

func lockState(_ *Context, req ActionRequest) (map[string]any, error) {
	value := strings.ToUpper(strings.TrimSpace(fmt.Sprint(req.Value)))
	if req.Value == nil || value == "" {
		return nil, fmt.Errorf("%w: lock state is empty", ErrInvalidValue)
	}
	return map[string]any{"targetLockState.value": value}, nil
}

func targetTemperature(_ *Context, req ActionRequest) (map[string]any, error) {
	n, err := toNumber(req.Value)
	if err != nil {
		return nil, err
	}
	scale := strings.ToUpper(strings.TrimSpace(req.Scale))
	if scale == "" {
		scale = "CELSIUS"
	}
	return map[string]any{
		"targetTemperature.value": n,
		"targetTemperature.scale": scale,
	}, nil
}

// toNumber accepts any Go numeric type or numeric text.
func toNumber(v any) (float64, error) {
	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case float32:
		n = float64(val)
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case uint64:
		n = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, val)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%w: expected a number, got %T", ErrInvalidValue, v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %v is not a finite number", ErrInvalidValue, n)
	}
	return n, nil
}
