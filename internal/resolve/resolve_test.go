package resolve

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/colorspace"
	"github.com/dokzlo13/colorname/internal/deltae"
)

func redBlue() *catalog.Catalog {
	return catalog.BuildColorCatalog(
		[]catalog.RawOption{{ID: "red", Label: "Red"}, {ID: "blue", Label: "Blue"}},
		map[string]string{"red": "#FF0000", "blue": "#0000FF"},
	)
}

func palette() *catalog.Catalog {
	raw := []catalog.RawOption{
		{ID: "red"}, {ID: "orange"}, {ID: "green"}, {ID: "blue"},
		{ID: "white"}, {ID: "black"}, {ID: "unlisted_shade"},
	}
	hex := map[string]string{
		"red": "#ff0000", "orange": "#ffa500", "green": "#008000",
		"blue": "#0000ff", "white": "#ffffff", "black": "#000000",
	}
	return catalog.BuildColorCatalog(raw, hex)
}

func temperatures() *catalog.Catalog {
	raw := []catalog.RawOption{
		{ID: "warm", Label: "Warm"}, {ID: "cool", Label: "Cool"},
		{ID: "white", Label: "White"}, {ID: "candle", Label: "Candle"},
		{ID: "mood", Label: "Mood"},
	}
	kelvin := map[string]float64{"warm": 2700, "cool": 6500, "white": 4000, "candle": 1900}
	return catalog.BuildTemperatureCatalog(raw, kelvin)
}

func TestResolveColorName(t *testing.T) {
	c := redBlue()

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"nearest_hex", "#FE0101", "red", true},
		{"exact_uppercase", "RED", "red", true},
		{"exact_punctuated", "b-l-u-e", "blue", true},
		{"unknown_name", "mystery-color", "", false},
		{"empty", "", "", false},
		{"bare_hex_falls_through", "0202f0", "blue", true},
		{"hash_hex_blue", "#1010ee", "blue", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ResolveColorName(c, tt.input)
			if err != nil {
				t.Fatalf("ResolveColorName(%q) error: %v", tt.input, err)
			}
			if got != tt.want || ok != tt.ok {
				t.Errorf("ResolveColorName(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveColorName_Palette(t *testing.T) {
	c := palette()
	tests := map[string]string{
		"#ff8800": "orange",
		"#00aa00": "green",
		"#eeeeee": "white",
		"#111111": "black",
		"#3030ff": "blue",
		"ffd27f":  "orange",
	}
	for input, want := range tests {
		got, ok, err := ResolveColorName(c, input)
		if err != nil || !ok || got != want {
			t.Errorf("ResolveColorName(%q) = %q, %v, %v; want %q", input, got, ok, err, want)
		}
	}

	// Exact match works for entries without a known hex
	if got, ok, _ := ResolveColorName(c, "Unlisted Shade"); !ok || got != "unlisted_shade" {
		t.Errorf("exact match on unknown-valued entry = %q, %v", got, ok)
	}
}

func TestResolveColorName_ExactBeatsNearest(t *testing.T) {
	// An identifier that happens to look like hex is an exact match.
	c := catalog.BuildColorCatalog(
		[]catalog.RawOption{{ID: "red"}, {ID: "0000ff"}},
		map[string]string{"red": "#ff0000"},
	)
	got, ok, err := ResolveColorName(c, "0000FF")
	if err != nil || !ok || got != "0000ff" {
		t.Errorf("ResolveColorName = %q, %v, %v; want exact 0000ff", got, ok, err)
	}

	// With a '#' prefix the input is always treated as a colour.
	got, _, _ = ResolveColorName(c, "#0000FF")
	if got != "red" {
		t.Errorf("'#'-prefixed input should use nearest match, got %q", got)
	}
}

func TestResolveColorName_FormatError(t *testing.T) {
	c := redBlue()
	for _, input := range []string{"#", "#fff", "#ff00zz", "#ff000000"} {
		_, ok, err := ResolveColorName(c, input)
		var fe *colorspace.FormatError
		if !errors.As(err, &fe) {
			t.Errorf("ResolveColorName(%q) error = %v, want *FormatError", input, err)
		}
		if ok {
			t.Errorf("ResolveColorName(%q) should not report a match", input)
		}
	}
}

func TestResolveColorName_NoKnownValues(t *testing.T) {
	c := catalog.BuildColorCatalog([]catalog.RawOption{{ID: "red"}}, nil)

	got, ok, err := ResolveColorName(c, "#ff0000")
	if err != nil || ok || got != "" {
		t.Errorf("ResolveColorName on valueless catalog = %q, %v, %v", got, ok, err)
	}

	got, ok, err = ResolveColorName(catalog.Empty(catalog.KindColor), "#ff0000")
	if err != nil || ok || got != "" {
		t.Errorf("ResolveColorName on empty catalog = %q, %v, %v", got, ok, err)
	}
}

func TestResolveColorName_TieKeepsCatalogOrder(t *testing.T) {
	c := catalog.BuildColorCatalog(
		[]catalog.RawOption{{ID: "scarlet"}, {ID: "red"}},
		map[string]string{"scarlet": "#ff0000", "red": "#ff0000"},
	)
	got, ok, _ := ResolveColorName(c, "#fe0000")
	if !ok || got != "scarlet" {
		t.Errorf("tie resolved to %q, want first in catalog order", got)
	}
}

func TestResolveTemperatureKelvin(t *testing.T) {
	c := temperatures()
	tests := []struct {
		kelvin float64
		want   string
	}{
		{2800, "warm"},
		{1000, "candle"},
		{2200, "candle"},
		{5000, "white"},
		{10000, "cool"},
		{6500, "cool"},
	}
	for _, tt := range tests {
		got, ok, err := ResolveTemperatureKelvin(c, tt.kelvin)
		if err != nil || !ok || got != tt.want {
			t.Errorf("ResolveTemperatureKelvin(%v) = %q, %v, %v; want %q", tt.kelvin, got, ok, err, tt.want)
		}
	}
}

func TestResolveTemperatureKelvin_Invalid(t *testing.T) {
	c := temperatures()
	for _, k := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, ok, err := ResolveTemperatureKelvin(c, k)
		var fe *colorspace.FormatError
		if !errors.As(err, &fe) || ok {
			t.Errorf("ResolveTemperatureKelvin(%v) = %v, %v; want FormatError", k, ok, err)
		}
	}
}

func TestResolveTemperatureName(t *testing.T) {
	c := temperatures()
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"exact", "Warm", "warm", true},
		{"exact_without_value", "MOOD", "mood", true},
		{"numeric_text", "2800", "warm", true},
		{"numeric_with_unit", "2800K", "warm", true},
		{"numeric_with_spaced_unit", " 2800 k ", "warm", true},
		{"zero_kelvin", "0", "", false},
		{"negative_kelvin", "-1", "", false},
		{"hex_float", "0x1p12", "", false},
		{"exponent", "27e2", "", false},
		{"hex_color", "#ffd27f", "white", true},
		{"unknown_name", "sunset", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ResolveTemperatureName(c, tt.input)
			if err != nil {
				t.Fatalf("ResolveTemperatureName(%q) error: %v", tt.input, err)
			}
			if got != tt.want || ok != tt.ok {
				t.Errorf("ResolveTemperatureName(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveTemperatureName_FormatError(t *testing.T) {
	_, _, err := ResolveTemperatureName(temperatures(), "#warm")
	var fe *colorspace.FormatError
	if !errors.As(err, &fe) {
		t.Errorf("error = %v, want *FormatError", err)
	}
}

func TestNearest(t *testing.T) {
	c := redBlue()
	lab, _ := colorspace.HexToLab("#FE0101")

	id, d, ok := Nearest(c, lab)
	if !ok || id != "red" {
		t.Fatalf("Nearest = %q, %v", id, ok)
	}
	if math.Abs(d-0.2097) > 1e-3 {
		t.Errorf("distance = %v, want ~0.2097", d)
	}

	_, d, ok = Nearest(catalog.Empty(catalog.KindColor), lab)
	if ok || !math.IsInf(d, 1) {
		t.Errorf("Nearest on empty catalog = %v, %v", d, ok)
	}
}

func TestResolver_Weights(t *testing.T) {
	// "dark" differs from red in lightness, "shifted" in hue. Relaxing the
	// lightness weight flips the winner.
	c := catalog.BuildColorCatalog(
		[]catalog.RawOption{{ID: "dark"}, {ID: "shifted"}},
		map[string]string{"dark": "#e60000", "shifted": "#ff3d00"},
	)

	tests := []struct {
		name    string
		weights deltae.Weights
		want    string
	}{
		{"default", deltae.DefaultWeights, "shifted"},
		{"relaxed_lightness", deltae.Weights{L: 4, C: 1, H: 1}, "dark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := New(tt.weights).ResolveColorName(c, "#ff0000")
			if err != nil || !ok || got != tt.want {
				t.Errorf("ResolveColorName = %q, %v, %v; want %q", got, ok, err, tt.want)
			}
		})
	}
}

func TestResolve_ConcurrentReaders(t *testing.T) {
	c := palette()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got, _, _ := ResolveColorName(c, "#ff8800"); got != "orange" {
					t.Errorf("concurrent resolve = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
