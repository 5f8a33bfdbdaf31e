package smarthome

import (
	"context"
	"errors"
	"testing"

	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/colorspace"
	"github.com/dokzlo13/colorname/internal/deltae"
	"github.com/dokzlo13/colorname/internal/resolve"
)

func testRegistry() *catalog.Registry {
	reg := catalog.NewRegistry()
	reg.PublishColors(catalog.BuildColorCatalog(
		[]catalog.RawOption{{ID: "red"}, {ID: "blue"}},
		map[string]string{"red": "#ff0000", "blue": "#0000ff"},
	))
	reg.PublishTemperatures(catalog.BuildTemperatureCatalog(
		[]catalog.RawOption{{ID: "warm"}, {ID: "white"}, {ID: "cool"}, {ID: "candle"}},
		map[string]float64{"warm": 2700, "white": 4000, "cool": 6500, "candle": 1900},
	))
	return reg
}

func TestResolve_Parameters(t *testing.T) {
	reqs := []ActionRequest{
		{Entity: "lamp", Action: "setColor", Value: "#FE0101"},
		{Entity: "lamp", Action: "setColor", Value: "BLUE"},
		{Entity: "lamp", Action: "setColorTemperature", Value: 2800},
		{Entity: "lamp", Action: "setColorTemperature", Value: 2800.0},
		{Entity: "lamp", Action: "setColorTemperature", Value: "Cool"},
		{Entity: "lamp", Action: "setColorTemperature", Value: "2000K"},
		{Entity: "lamp", Action: "setBrightness", Value: "40"},
		{Entity: "fan", Action: "setPercentage", Value: 75},
		{Entity: "door", Action: "setLockState", Value: " locked "},
		{Entity: "thermostat", Action: "setTargetTemperature", Value: 21.5},
		{Entity: "thermostat", Action: "setTargetTemperature", Value: 70, Scale: "fahrenheit"},
		{Entity: "lamp", Action: "turnOn"},
	}
	want := []map[string]any{
		{"action": "setColor", "colorName": "red"},
		{"action": "setColor", "colorName": "blue"},
		{"action": "setColorTemperature", "colorTemperatureName": "warm"},
		{"action": "setColorTemperature", "colorTemperatureName": "warm"},
		{"action": "setColorTemperature", "colorTemperatureName": "cool"},
		{"action": "setColorTemperature", "colorTemperatureName": "candle"},
		{"action": "setBrightness", "brightness": 40.0},
		{"action": "setPercentage", "percentage": 75.0},
		{"action": "setLockState", "targetLockState.value": "LOCKED"},
		{"action": "setTargetTemperature", "targetTemperature.value": 21.5, "targetTemperature.scale": "CELSIUS"},
		{"action": "setTargetTemperature", "targetTemperature.value": 70.0, "targetTemperature.scale": "FAHRENHEIT"},
		{"action": "turnOn"},
	}

	results := Resolve(context.Background(), testRegistry(), resolve.New(deltae.DefaultWeights), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("got %d results, want %d", len(results), len(reqs))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("request %d (%s): %v", i, reqs[i].Action, res.Err)
			continue
		}
		if res.Entity != reqs[i].Entity || res.Action != reqs[i].Action {
			t.Errorf("result %d = %s/%s, want %s/%s", i, res.Entity, res.Action, reqs[i].Entity, reqs[i].Action)
		}
		if len(res.Parameters) != len(want[i]) {
			t.Errorf("request %d parameters = %v, want %v", i, res.Parameters, want[i])
			continue
		}
		for k, v := range want[i] {
			if res.Parameters[k] != v {
				t.Errorf("request %d parameter %s = %v, want %v", i, k, res.Parameters[k], v)
			}
		}
	}
}

func TestResolve_PerRequestErrors(t *testing.T) {
	reqs := []ActionRequest{
		{Entity: "lamp", Action: "setColor", Value: "mystery-color"},
		{Entity: "lamp", Action: "setColor", Value: "#12345z"},
		{Entity: "lamp", Action: "setColor", Value: 12},
		{Entity: "lamp", Action: "setColorTemperature", Value: "sunset"},
		{Entity: "lamp", Action: "setBrightness", Value: "bright"},
		{Entity: "lamp", Action: "setBrightness", Value: []any{1}},
		{Entity: "lamp", Action: "dance"},
		{Entity: "", Action: "turnOn"},
		{Entity: "lamp", Action: "setColor", Value: "red"},
	}
	checks := []func(error) bool{
		func(err error) bool { return errors.Is(err, ErrNoMatch) },
		func(err error) bool { var fe *colorspace.FormatError; return errors.As(err, &fe) },
		func(err error) bool { return errors.Is(err, ErrInvalidValue) },
		func(err error) bool { return errors.Is(err, ErrNoMatch) },
		func(err error) bool { return errors.Is(err, ErrInvalidValue) },
		func(err error) bool { return errors.Is(err, ErrInvalidValue) },
		func(err error) bool { return errors.Is(err, ErrUnsupportedAction) },
		func(err error) bool { return errors.Is(err, ErrInvalidValue) },
		func(err error) bool { return err == nil },
	}

	results := Resolve(context.Background(), testRegistry(), resolve.New(deltae.DefaultWeights), reqs)
	for i, res := range results {
		if !checks[i](res.Err) {
			t.Errorf("request %d (%s %v): unexpected error %v", i, reqs[i].Action, reqs[i].Value, res.Err)
		}
		if res.Err != nil && res.Parameters != nil {
			t.Errorf("request %d: failed result carries parameters %v", i, res.Parameters)
		}
	}
	if got := results[len(results)-1].Parameters["colorName"]; got != "red" {
		t.Errorf("request after failures resolved to %v, want red", got)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Resolve(ctx, testRegistry(), resolve.New(deltae.DefaultWeights), []ActionRequest{
		{Entity: "lamp", Action: "turnOn"},
	})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", results[0].Err)
	}
}

func TestResolve_EmptyCatalogs(t *testing.T) {
	results := Resolve(context.Background(), catalog.NewRegistry(), resolve.New(deltae.DefaultWeights), []ActionRequest{
		{Entity: "lamp", Action: "setColor", Value: "#ff0000"},
		{Entity: "lamp", Action: "setColorTemperature", Value: 2700},
	})
	for i, res := range results {
		if !errors.Is(res.Err, ErrNoMatch) {
			t.Errorf("request %d err = %v, want ErrNoMatch", i, res.Err)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	fn := func(*Context, ActionRequest) (map[string]any, error) { return nil, nil }

	if err := r.RegisterSimple("b", fn); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.RegisterSimple("a", fn); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.RegisterSimple("a", fn); err == nil {
		t.Error("duplicate registration should fail")
	}
	if names := r.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
}

func TestInvoker_CustomAction(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterSimple("setMood", func(ctx *Context, req ActionRequest) (map[string]any, error) {
		name, err := ctx.ColorName(req.Value.(string))
		if err != nil {
			return nil, err
		}
		return map[string]any{"colorName": name, "mood": true}, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	inv := NewInvoker(r, testRegistry(), resolve.New(deltae.DefaultWeights))
	if !inv.HasAction("setMood") || inv.HasAction("setColor") {
		t.Error("HasAction should reflect the invoker's registry only")
	}

	res := inv.Resolve(context.Background(), []ActionRequest{{Entity: "lamp", Action: "setMood", Value: "#0101fe"}})
	if res[0].Err != nil || res[0].Parameters["colorName"] != "blue" || res[0].Parameters["action"] != "setMood" {
		t.Errorf("custom action result = %+v", res[0])
	}
}

func TestInvoker_Workers(t *testing.T) {
	reqs := make([]ActionRequest, 0, 64)
	for i := 0; i < 32; i++ {
		reqs = append(reqs,
			ActionRequest{Entity: "lamp", Action: "setColor", Value: "#fe0101"},
			ActionRequest{Entity: "lamp", Action: "setColorTemperature", Value: float64(6000 + i)},
		)
	}

	inv := NewInvoker(NewDefaultRegistry(), testRegistry(), resolve.New(deltae.DefaultWeights), WithWorkers(8))
	results := inv.Resolve(context.Background(), reqs)

	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("request %d: %v", i, res.Err)
		}
		want := map[string]any{"colorName": "red"}
		if i%2 == 1 {
			want = map[string]any{"colorTemperatureName": "cool"}
		}
		for k, v := range want {
			if res.Parameters[k] != v {
				t.Errorf("request %d %s = %v, want %v", i, k, res.Parameters[k], v)
			}
		}
	}
}

func TestInvoker_PanickingAction(t *testing.T) {
	r := NewDefaultRegistry()
	if err := r.RegisterSimple("explode", func(*Context, ActionRequest) (map[string]any, error) {
		panic("boom")
	}); err != nil {
		t.Fatal(err)
	}

	for _, workers := range []int{1, 4} {
		inv := NewInvoker(r, testRegistry(), resolve.New(deltae.DefaultWeights), WithWorkers(workers))
		results := inv.Resolve(context.Background(), []ActionRequest{
			{Entity: "lamp", Action: "explode"},
			{Entity: "lamp", Action: "turnOff"},
		})
		if results[0].Err == nil || results[0].Parameters != nil {
			t.Errorf("workers=%d: panicking action result = %+v", workers, results[0])
		}
		if results[1].Err != nil {
			t.Errorf("workers=%d: request after panic failed: %v", workers, results[1].Err)
		}
	}
}
