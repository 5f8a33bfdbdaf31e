// Package catalog builds the ordered, indexed set of vendor-supported named
// options a device accepts for colour or colour temperature.
//
// A Catalog is an immutable snapshot: it is built once per capability
// refresh and replaced wholesale, never edited. Readers may share it freely.
package catalog

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/colorname/internal/colorspace"
)

// Kind tells colour catalogs from colour temperature catalogs.
type Kind string

const (
	KindColor       Kind = "color"
	KindTemperature Kind = "temperature"
)

// DefaultAchromaticOffset is added to the brightness of grayscale entries so
// they sort after every hue (hues live in [0,1)).
const DefaultAchromaticOffset = 42.0

// RawOption is a vendor-supported option as delivered by the device
// capability definitions.
type RawOption struct {
	ID    string `yaml:"identifier" json:"identifier"`
	Label string `yaml:"label" json:"label"`
}

// Value is the physical value behind an identifier. Hex is set in colour
// catalogs, Kelvin in temperature catalogs.
type Value struct {
	Hex    string
	Kelvin float64
}

// Option is a catalog entry.
type Option struct {
	ID    string
	Label string
	// Known is nil when no physical value is known for ID.
	Known   *Value
	SortKey float64
}

// Catalog is an immutable, ordered set of options with an exact-match index
// and a Lab index for entries with a known physical value.
type Catalog struct {
	id      string
	kind    Kind
	builtAt time.Time

	options []Option
	byName  map[string]int // normalized identifier -> index into options
	byID    map[string]int // identifier -> index into options
	labs    map[string]colorspace.Lab
	known   []string // identifiers with a Lab, in catalog order
}

type buildConfig struct {
	achromaticOffset float64
}

// BuildOption customizes catalog construction.
type BuildOption func(*buildConfig)

// WithAchromaticOffset overrides DefaultAchromaticOffset.
func WithAchromaticOffset(offset float64) BuildOption {
	return func(c *buildConfig) {
		c.achromaticOffset = offset
	}
}

func newBuildConfig(opts []BuildOption) buildConfig {
	cfg := buildConfig{achromaticOffset: DefaultAchromaticOffset}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type entry struct {
	option Option
	lab    colorspace.Lab
	hasLab bool
}

// BuildColorCatalog builds a colour catalog. Options are ordered by hue, with
// grayscale entries after all hues (ordered by brightness) and entries with
// no known hex last.
func BuildColorCatalog(raw []RawOption, knownHex map[string]string, opts ...BuildOption) *Catalog {
	cfg := newBuildConfig(opts)

	entries := make([]entry, 0, len(raw))
	for _, r := range dedupe(raw) {
		e := entry{option: Option{ID: r.ID, Label: r.Label, SortKey: math.Inf(1)}}

		if hex, ok := knownHex[r.ID]; ok {
			rgb, err := colorspace.HexToRGB(hex)
			if err != nil {
				log.Warn().Err(err).Str("identifier", r.ID).Msg("Ignoring unparsable known colour")
			} else {
				e.option.Known = &Value{Hex: colorspace.RGBToHex(rgb)}
				e.option.SortKey = colorSortKey(colorspace.RGBToHSV(rgb), cfg.achromaticOffset)
				e.lab = colorspace.RGBToLab(rgb)
				e.hasLab = true
			}
		}
		entries = append(entries, e)
	}

	return newCatalog(KindColor, entries)
}

// BuildTemperatureCatalog builds a colour temperature catalog ordered by
// ascending Kelvin, entries with no known Kelvin last.
func BuildTemperatureCatalog(raw []RawOption, knownKelvin map[string]float64) *Catalog {
	entries := make([]entry, 0, len(raw))
	for _, r := range dedupe(raw) {
		e := entry{option: Option{ID: r.ID, Label: r.Label, SortKey: math.Inf(1)}}

		if k, ok := knownKelvin[r.ID]; ok {
			if math.IsNaN(k) || math.IsInf(k, 0) || k <= 0 {
				log.Warn().Float64("kelvin", k).Str("identifier", r.ID).Msg("Ignoring unusable known temperature")
			} else {
				e.option.Known = &Value{Kelvin: k}
				e.option.SortKey = k
				e.lab = colorspace.KelvinToLab(k)
				e.hasLab = true
			}
		}
		entries = append(entries, e)
	}

	return newCatalog(KindTemperature, entries)
}

// colorSortKey places chromatic colours by hue and grayscale colours after
// them by brightness.
func colorSortKey(hsv colorspace.HSV, achromaticOffset float64) float64 {
	if hsv.S == 0 {
		return hsv.V + achromaticOffset
	}
	return hsv.H
}

// dedupe drops repeated identifiers, keeping the first occurrence.
func dedupe(raw []RawOption) []RawOption {
	seen := make(map[string]struct{}, len(raw))
	out := make([]RawOption, 0, len(raw))
	for _, r := range raw {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func newCatalog(kind Kind, entries []entry) *Catalog {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].option.SortKey < entries[j].option.SortKey
	})

	c := &Catalog{
		id:      uuid.NewString(),
		kind:    kind,
		builtAt: time.Now(),
		options: make([]Option, len(entries)),
		byName:  make(map[string]int, len(entries)),
		byID:    make(map[string]int, len(entries)),
		labs:    make(map[string]colorspace.Lab),
	}

	for i, e := range entries {
		c.options[i] = e.option
		c.byID[e.option.ID] = i

		key := Normalize(e.option.ID)
		if key == "" {
			log.Debug().Str("identifier", e.option.ID).Msg("Identifier has no matchable characters, skipping exact index")
		} else if prev, ok := c.byName[key]; ok {
			log.Debug().
				Str("identifier", e.option.ID).
				Str("kept", c.options[prev].ID).
				Msg("Normalized identifier collision")
		} else {
			c.byName[key] = i
		}

		if e.hasLab {
			c.labs[e.option.ID] = e.lab
			c.known = append(c.known, e.option.ID)
		}
	}

	log.Debug().
		Str("catalog", c.id).
		Str("kind", string(kind)).
		Int("options", len(c.options)).
		Int("known", len(c.known)).
		Msg("Catalog built")

	return c
}

// Empty returns a catalog with no options.
func Empty(kind Kind) *Catalog {
	return newCatalog(kind, nil)
}

// ID returns the snapshot identifier assigned at build time.
func (c *Catalog) ID() string { return c.id }

// Kind returns the catalog kind.
func (c *Catalog) Kind() Kind { return c.kind }

// BuiltAt returns when the catalog was built.
func (c *Catalog) BuiltAt() time.Time { return c.builtAt }

// Len returns the number of options.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.options)
}

// Options returns the options in catalog order.
func (c *Catalog) Options() []Option {
	if c == nil {
		return nil
	}
	// Return a copy to prevent external mutation
	out := make([]Option, len(c.options))
	copy(out, c.options)
	for i := range out {
		if out[i].Known != nil {
			v := *out[i].Known
			out[i].Known = &v
		}
	}
	return out
}

// Has reports whether id is one of the catalog's identifiers.
func (c *Catalog) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byID[id]
	return ok
}

// Lookup finds the identifier whose normalized form equals the normalized input.
func (c *Catalog) Lookup(input string) (string, bool) {
	if c == nil {
		return "", false
	}
	key := Normalize(input)
	if key == "" {
		return "", false
	}
	idx, ok := c.byName[key]
	if !ok {
		return "", false
	}
	return c.options[idx].ID, true
}

// Label returns the display label of id.
func (c *Catalog) Label(id string) (string, bool) {
	if c == nil {
		return "", false
	}
	idx, ok := c.byID[id]
	if !ok {
		return "", false
	}
	return c.options[idx].Label, true
}

// Lab returns the Lab colour of id when its physical value is known.
func (c *Catalog) Lab(id string) (colorspace.Lab, bool) {
	if c == nil {
		return colorspace.Lab{}, false
	}
	lab, ok := c.labs[id]
	return lab, ok
}

// ForEachKnown calls fn for every identifier with a Lab colour, in catalog order.
func (c *Catalog) ForEachKnown(fn func(id string, lab colorspace.Lab)) {
	if c == nil {
		return
	}
	for _, id := range c.known {
		fn(id, c.labs[id])
	}
}

// Known returns the identifiers that have a Lab colour, in catalog order.
func (c *Catalog) Known() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.known))
	copy(out, c.known)
	return out
}
