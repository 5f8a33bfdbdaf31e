// Package colorspace converts between the colour representations users type
// (hex codes, Kelvin numbers) and CIE Lab, the space colour matching runs in.
//
// All functions are pure and safe for concurrent use.
package colorspace

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an sRGB colour with channels in [0,1].
type RGB struct {
	R, G, B float64
}

// HSV holds hue as a fraction of a full turn in [0,1), saturation and value in [0,1].
type HSV struct {
	H, S, V float64
}

// XYZ holds CIE tristimulus values scaled so that Y of the reference white is 100.
type XYZ struct {
	X, Y, Z float64
}

// Lab is a CIE L*a*b* colour.
type Lab struct {
	L, A, B float64
}

// D65 is the reference white for the 2° observer, on the same x100 scale as RGBToXYZ.
var D65 = XYZ{X: 95.047, Y: 100.000, Z: 108.883}

// FormatError reports a malformed literal passed to a conversion.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid colour value %q: %s", e.Input, e.Reason)
}

// IsHex reports whether s is exactly 6 hex digits, optionally prefixed with '#'.
func IsHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// HexToRGB parses "#rrggbb" or "rrggbb".
func HexToRGB(hex string) (RGB, error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 {
		return RGB{}, &FormatError{Input: hex, Reason: "expected 6 hex digits"}
	}
	if !IsHex(digits) {
		return RGB{}, &FormatError{Input: hex, Reason: "non-hex character"}
	}

	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return RGB{}, &FormatError{Input: hex, Reason: err.Error()}
	}
	return RGB{R: c.R, G: c.G, B: c.B}, nil
}

// RGBToHex formats rgb as lowercase "#rrggbb", clamping out-of-range channels.
func RGBToHex(rgb RGB) string {
	return colorful.Color{R: rgb.R, G: rgb.G, B: rgb.B}.Clamped().Hex()
}

// RGBToHSV converts to HSV. Achromatic colours (zero chroma) get hue 0 and
// saturation 0; black gets saturation 0.
func RGBToHSV(rgb RGB) HSV {
	hi := math.Max(rgb.R, math.Max(rgb.G, rgb.B))
	lo := math.Min(rgb.R, math.Min(rgb.G, rgb.B))
	chroma := hi - lo

	hsv := HSV{V: hi}
	if hi > 0 {
		hsv.S = chroma / hi
	}
	if chroma == 0 {
		return hsv
	}

	var h float64
	switch hi {
	case rgb.R:
		h = (rgb.G - rgb.B) / chroma
		if h < 0 {
			h += 6
		}
	case rgb.G:
		h = (rgb.B-rgb.R)/chroma + 2
	default:
		h = (rgb.R-rgb.G)/chroma + 4
	}
	hsv.H = h / 6
	if hsv.H >= 1 {
		hsv.H -= 1
	}
	return hsv
}

// HSVToRGB converts HSV back to RGB. Hue wraps, so 1.25 and 0.25 are the same colour.
func HSVToRGB(hsv HSV) RGB {
	h := hsv.H - math.Floor(hsv.H)
	x := h * 6
	i := int(math.Floor(x))
	f := x - float64(i)

	v, s := hsv.V, hsv.S
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch i % 6 {
	case 0:
		return RGB{v, t, p}
	case 1:
		return RGB{q, v, p}
	case 2:
		return RGB{p, v, t}
	case 3:
		return RGB{p, q, v}
	case 4:
		return RGB{t, p, v}
	default:
		return RGB{v, p, q}
	}
}

func linearize(c float64) float64 {
	if c > 0.04045 {
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

// RGBToXYZ linearizes sRGB and applies the D65 sRGB->XYZ matrix, scaled x100.
func RGBToXYZ(rgb RGB) XYZ {
	r := linearize(rgb.R) * 100
	g := linearize(rgb.G) * 100
	b := linearize(rgb.B) * 100

	return XYZ{
		X: r*0.4124 + g*0.3576 + b*0.1805,
		Y: r*0.2126 + g*0.7152 + b*0.0722,
		Z: r*0.0193 + g*0.1192 + b*0.9505,
	}
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

// XYZToLab converts to Lab relative to D65.
func XYZToLab(xyz XYZ) Lab {
	return XYZToLabWhite(xyz, D65)
}

// XYZToLabWhite converts to Lab relative to the given reference white.
func XYZToLabWhite(xyz, white XYZ) Lab {
	fx := labF(xyz.X / white.X)
	fy := labF(xyz.Y / white.Y)
	fz := labF(xyz.Z / white.Z)

	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// RGBToLab chains RGBToXYZ and XYZToLab.
func RGBToLab(rgb RGB) Lab {
	return XYZToLab(RGBToXYZ(rgb))
}

// HexToLab parses hex and converts it to Lab.
func HexToLab(hex string) (Lab, error) {
	rgb, err := HexToRGB(hex)
	if err != nil {
		return Lab{}, err
	}
	return RGBToLab(rgb), nil
}

// HexToHSV parses hex and converts it to HSV.
func HexToHSV(hex string) (HSV, error) {
	rgb, err := HexToRGB(hex)
	if err != nil {
		return HSV{}, err
	}
	return RGBToHSV(rgb), nil
}

// HSVToHex formats an HSV colour as "#rrggbb".
func HSVToHex(hsv HSV) string {
	return RGBToHex(HSVToRGB(hsv))
}

// HSVToLab converts an HSV colour to Lab.
func HSVToLab(hsv HSV) Lab {
	return RGBToLab(HSVToRGB(hsv))
}
