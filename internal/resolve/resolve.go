// Package resolve maps free-form user input onto catalog identifiers.
//
// Resolution is two-tier: an exact match on the normalized identifier, then
// the perceptually nearest entry (CIEDE2000) among entries with a known
// physical value. Not finding a match is a normal outcome reported through
// the boolean result, never through the error; errors are reserved for
// malformed literals such as "#12345z".
package resolve

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/colorspace"
	"github.com/dokzlo13/colorname/internal/deltae"
)

// Resolver resolves names using the given CIEDE2000 weights.
type Resolver struct {
	Weights deltae.Weights
}

// New returns a Resolver with the given weights.
func New(w deltae.Weights) *Resolver {
	return &Resolver{Weights: w}
}

var std = New(deltae.DefaultWeights)

// ResolveColorName resolves input against a colour catalog with default weights.
func ResolveColorName(c *catalog.Catalog, input string) (string, bool, error) {
	return std.ResolveColorName(c, input)
}

// ResolveTemperatureName resolves input against a temperature catalog with default weights.
func ResolveTemperatureName(c *catalog.Catalog, input string) (string, bool, error) {
	return std.ResolveTemperatureName(c, input)
}

// ResolveTemperatureKelvin resolves a Kelvin value against a temperature catalog with default weights.
func ResolveTemperatureKelvin(c *catalog.Catalog, kelvin float64) (string, bool, error) {
	return std.ResolveTemperatureKelvin(c, kelvin)
}

// Nearest returns the known entry closest to lab with default weights.
func Nearest(c *catalog.Catalog, lab colorspace.Lab) (string, float64, bool) {
	return std.Nearest(c, lab)
}

// ResolveColorName resolves a colour name or hex code.
//
// Input without a leading '#' is looked up by normalized name first. A miss
// only falls through to nearest matching when the input is a bare 6-digit
// hex code; any other unmatched name is not found. Input with a leading '#'
// must be a valid hex code.
func (r *Resolver) ResolveColorName(c *catalog.Catalog, input string) (string, bool, error) {
	if !strings.HasPrefix(input, "#") {
		if id, ok := c.Lookup(input); ok {
			return id, true, nil
		}
		if !colorspace.IsHex(input) {
			return "", false, nil
		}
	}

	lab, err := colorspace.HexToLab(input)
	if err != nil {
		return "", false, err
	}
	id, _, ok := r.Nearest(c, lab)
	return id, ok, nil
}

// ResolveTemperatureName resolves a temperature name, a Kelvin number given
// as text, or a hex code.
//
// Names are matched exactly first. On a miss, numeric text is treated as
// Kelvin and a bare hex code as a colour; anything else is not found. Input
// with a leading '#' must be a valid hex code.
func (r *Resolver) ResolveTemperatureName(c *catalog.Catalog, input string) (string, bool, error) {
	if !strings.HasPrefix(input, "#") {
		if id, ok := c.Lookup(input); ok {
			return id, true, nil
		}
		if kelvin, ok := parseKelvin(input); ok {
			return r.ResolveTemperatureKelvin(c, kelvin)
		}
		if !colorspace.IsHex(input) {
			return "", false, nil
		}
	}

	lab, err := colorspace.HexToLab(input)
	if err != nil {
		return "", false, err
	}
	id, _, ok := r.Nearest(c, lab)
	return id, ok, nil
}

// ResolveTemperatureKelvin resolves a colour temperature to the nearest
// known entry. NaN and infinite values are rejected.
func (r *Resolver) ResolveTemperatureKelvin(c *catalog.Catalog, kelvin float64) (string, bool, error) {
	if math.IsNaN(kelvin) || math.IsInf(kelvin, 0) {
		return "", false, &colorspace.FormatError{
			Input:  strconv.FormatFloat(kelvin, 'g', -1, 64),
			Reason: "kelvin must be a finite number",
		}
	}
	id, _, ok := r.Nearest(c, colorspace.KelvinToLab(kelvin))
	return id, ok, nil
}

// Nearest scans the catalog's known entries and returns the one with the
// smallest CIEDE2000 distance to lab, together with that distance. On ties
// the entry earlier in catalog order wins. ok is false when the catalog has
// no known entries.
func (r *Resolver) Nearest(c *catalog.Catalog, lab colorspace.Lab) (id string, distance float64, ok bool) {
	distance = math.Inf(1)
	c.ForEachKnown(func(candidate string, candidateLab colorspace.Lab) {
		d := deltae.CIEDE2000Weighted(lab, candidateLab, r.Weights)
		if !ok || d < distance {
			id, distance, ok = candidate, d, true
		}
	})
	return id, distance, ok
}

// kelvinText matches plain decimal Kelvin text with an optional unit.
var kelvinText = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?\s*[Kk]?$`)

// parseKelvin accepts positive decimal text such as "2700", "2700.5" or "2700K".
// Text that is both numeric and hex-shaped, like "123456", reads as Kelvin.
func parseKelvin(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !kelvinText.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimRight(s, "Kk")), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
