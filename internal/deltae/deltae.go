// Package deltae implements the CIEDE2000 colour difference formula.
package deltae

import (
	"fmt"
	"math"

	"github.com/dokzlo13/colorname/internal/colorspace"
)

// Weights are the parametric factors kL, kC and kH of CIEDE2000.
type Weights struct {
	L float64 `yaml:"l"`
	C float64 `yaml:"c"`
	H float64 `yaml:"h"`
}

// DefaultWeights is the reference viewing condition (kL = kC = kH = 1).
var DefaultWeights = Weights{L: 1, C: 1, H: 1}

// Validate checks that every weight is a positive finite number.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{"l": w.L, "c": w.C, "h": w.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("weight %s must be positive, got %v", name, v)
		}
	}
	return nil
}

// pow25_7 is 25^7, the chroma pivot shared by the G factor and R_C.
const pow25_7 = 6103515625.0

// CIEDE2000 returns the perceptual difference between two Lab colours under
// default weights.
func CIEDE2000(lab1, lab2 colorspace.Lab) float64 {
	return CIEDE2000Weighted(lab1, lab2, DefaultWeights)
}

// CIEDE2000Weighted returns the CIEDE2000 difference with custom weights.
// The result is >= 0 and zero for identical inputs. Achromatic inputs are
// handled without NaN: their hue angle is 0 and they contribute no hue
// difference.
func CIEDE2000Weighted(lab1, lab2 colorspace.Lab, w Weights) float64 {
	c1 := math.Hypot(lab1.A, lab1.B)
	c2 := math.Hypot(lab2.A, lab2.B)
	cBar7 := math.Pow((c1+c2)/2, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25_7)))

	a1 := lab1.A * (1 + g)
	a2 := lab2.A * (1 + g)
	cp1 := math.Hypot(a1, lab1.B)
	cp2 := math.Hypot(a2, lab2.B)
	hp1 := hueAngle(lab1.B, a1)
	hp2 := hueAngle(lab2.B, a2)

	dL := lab2.L - lab1.L
	dC := cp2 - cp1

	achromatic := cp1*cp2 == 0

	var dh float64
	if !achromatic {
		dh = hp2 - hp1
		switch {
		case dh > 180:
			dh -= 360
		case dh < -180:
			dh += 360
		}
	}
	dH := 2 * math.Sqrt(cp1*cp2) * math.Sin(radians(dh)/2)

	lBar := (lab1.L + lab2.L) / 2
	cpBar := (cp1 + cp2) / 2
	hBar := meanHue(hp1, hp2, achromatic)

	t := 1 -
		0.17*math.Cos(radians(hBar-30)) +
		0.24*math.Cos(radians(2*hBar)) +
		0.32*math.Cos(radians(3*hBar+6)) -
		0.20*math.Cos(radians(4*hBar-63))

	lBar50 := (lBar - 50) * (lBar - 50)
	sL := 1 + 0.015*lBar50/math.Sqrt(20+lBar50)
	sC := 1 + 0.045*cpBar
	sH := 1 + 0.015*cpBar*t

	dTheta := 30 * math.Exp(-math.Pow((hBar-275)/25, 2))
	cpBar7 := math.Pow(cpBar, 7)
	rC := 2 * math.Sqrt(cpBar7/(cpBar7+pow25_7))
	rT := -math.Sin(radians(2*dTheta)) * rC

	lTerm := dL / (w.L * sL)
	cTerm := dC / (w.C * sC)
	hTerm := dH / (w.H * sH)

	sum := lTerm*lTerm + cTerm*cTerm + hTerm*hTerm + rT*cTerm*hTerm
	if sum <= 0 {
		return 0
	}
	return math.Sqrt(sum)
}

// hueAngle returns atan2(b, a) in degrees within [0, 360), 0 when a = b = 0.
func hueAngle(b, a float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

// meanHue averages two hue angles along the shorter arc.
func meanHue(h1, h2 float64, achromatic bool) float64 {
	if achromatic {
		return h1 + h2
	}
	if math.Abs(h1-h2) <= 180 {
		return (h1 + h2) / 2
	}
	if h1+h2 < 360 {
		return (h1 + h2 + 360) / 2
	}
	return (h1 + h2 - 360) / 2
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
