package colorspace

import "math"

// Kelvin range the black-body approximation is fitted for. Inputs outside
// are clamped.
const (
	MinKelvin = 1000.0
	MaxKelvin = 40000.0
)

// KelvinBranchEpsilon bounds the per-channel jump of KelvinToRGB where its
// two fitted branches meet at 6600K.
const KelvinBranchEpsilon = 0.02

// KelvinToRGB approximates the colour of a black-body radiator using Tanner
// Helland's curve fit. It is not physically exact; it tracks the Planckian
// locus closely enough for matching in roughly 1000K..40000K.
func KelvinToRGB(kelvin float64) RGB {
	t := math.Min(math.Max(kelvin, MinKelvin), MaxKelvin) / 100

	var r, g, b float64
	if t <= 66 {
		r = 255
		g = clampU8(99.4708025861*math.Log(t) - 161.1195681661)
		if t <= 19 {
			b = 0
		} else {
			b = clampU8(138.5177312231*math.Log(t-10) - 305.0447927307)
		}
	} else {
		r = clampU8(329.698727446 * math.Pow(t-60, -0.1332047592))
		g = clampU8(288.1221695283 * math.Pow(t-60, -0.0755148492))
		b = 255
	}

	return RGB{R: r / 255, G: g / 255, B: b / 255}
}

// KelvinToLab converts a colour temperature to Lab.
func KelvinToLab(kelvin float64) Lab {
	return RGBToLab(KelvinToRGB(kelvin))
}

// KelvinToHSV converts a colour temperature to HSV.
func KelvinToHSV(kelvin float64) HSV {
	return RGBToHSV(KelvinToRGB(kelvin))
}

func clampU8(v float64) float64 {
	return math.Min(math.Max(v, 0), 255)
}
