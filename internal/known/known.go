// Package known holds the reference table of physical values behind
// well-known vendor identifiers: hex codes for colour names and Kelvin for
// colour temperature names.
package known

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dokzlo13/colorname/internal/colorspace"
)

//go:embed values.yaml
var defaultValues []byte

// ErrInvalidValue is returned when a table entry cannot be used for matching.
var ErrInvalidValue = errors.New("invalid known value")

// Table maps vendor identifiers to physical values. Not every vendor
// identifier has an entry.
type Table struct {
	Colors       map[string]string  `yaml:"colors"`
	Temperatures map[string]float64 `yaml:"temperatures"`
}

// Default returns a fresh copy of the built-in table.
func Default() *Table {
	t, err := Parse(defaultValues)
	if err != nil {
		panic(fmt.Sprintf("embedded known values: %v", err))
	}
	return t
}

// Load reads a table from a YAML (or JSON) file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a table. Hex values are normalized to
// lowercase "#rrggbb".
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse known values: %w", err)
	}

	colors := make(map[string]string, len(t.Colors))
	for id, hex := range t.Colors {
		if !colorspace.IsHex(hex) {
			return nil, fmt.Errorf("%w: colour %q has hex %q", ErrInvalidValue, id, hex)
		}
		colors[id] = "#" + strings.ToLower(strings.TrimPrefix(hex, "#"))
	}

	temps := make(map[string]float64, len(t.Temperatures))
	for id, k := range t.Temperatures {
		if math.IsNaN(k) || math.IsInf(k, 0) || k <= 0 {
			return nil, fmt.Errorf("%w: temperature %q has kelvin %v", ErrInvalidValue, id, k)
		}
		temps[id] = k
	}

	return &Table{Colors: colors, Temperatures: temps}, nil
}

// Merge returns a new table holding t's entries overridden by other's.
func (t *Table) Merge(other *Table) *Table {
	out := &Table{
		Colors:       make(map[string]string, len(t.Colors)),
		Temperatures: make(map[string]float64, len(t.Temperatures)),
	}
	for _, src := range []*Table{t, other} {
		if src == nil {
			continue
		}
		for id, hex := range src.Colors {
			out.Colors[id] = hex
		}
		for id, k := range src.Temperatures {
			out.Temperatures[id] = k
		}
	}
	return out
}
