package domain

import (
	"fmt"
	"image/color"
	"math"
)

// Formula names a severity blending calibration.
type Formula string

const (
	// FormulaMultiplicative scales the distance from 255 by the normalized
	// severity: 255 - (255-ref) * round(index/len, 2).
	FormulaMultiplicative Formula = "multiplicative"

	// FormulaLinear subtracts a fixed offset reduced by severity, in integer
	// arithmetic: ref - (75 - (ref/len)*index).
	FormulaLinear Formula = "linear"
)

// linearOffset is the darkening applied at severity 0 by FormulaLinear.
const linearOffset = 75

// ParseFormula validates a formula name.
func ParseFormula(s string) (Formula, error) {
	switch f := Formula(s); f {
	case FormulaMultiplicative, FormulaLinear:
		return f, nil
	case "":
		return FormulaMultiplicative, nil
	default:
		return "", fmt.Errorf("unknown blend formula %q", s)
	}
}

// Channel blends one reference channel value with a severity index taken
// from a palette of length paletteLen. A reference of 0 always yields 0.
// Results above 255 clamp to 255; results below 0 fall back to ref.
func (f Formula) Channel(ref, index, paletteLen int) int {
	if ref <= 0 || paletteLen <= 0 {
		return 0
	}

	var v int
	switch f {
	case FormulaLinear:
		minValue := (ref / paletteLen) * index
		v = ref - (linearOffset - minValue)
	default:
		severity := roundHalfEven(float64(index)/float64(paletteLen), 2)
		inverted := float64(255 - ref)
		v = int(math.RoundToEven(255 - inverted*severity))
	}

	switch {
	case v < 0:
		return ref
	case v > 255:
		return 255
	}
	return v
}

// BlendChannel applies the canonical multiplicative formula.
func BlendChannel(ref, index, paletteLen int) int {
	return FormulaMultiplicative.Channel(ref, index, paletteLen)
}

// Blender turns a category reference colour and a severity index into the
// output pixel colour.
type Blender struct {
	formula    Formula
	paletteLen int
}

// NewBlender creates a Blender for an intensity palette of paletteLen entries.
func NewBlender(formula Formula, paletteLen int) (Blender, error) {
	if paletteLen <= 0 {
		return Blender{}, fmt.Errorf("palette length must be positive, got %d", paletteLen)
	}
	f, err := ParseFormula(string(formula))
	if err != nil {
		return Blender{}, err
	}
	return Blender{formula: f, paletteLen: paletteLen}, nil
}

// Formula returns the configured calibration.
func (b Blender) Formula() Formula { return b.formula }

// Blend applies the formula to each of R, G and B. The result is opaque.
func (b Blender) Blend(ref color.NRGBA, index int) color.NRGBA {
	return color.NRGBA{
		R: uint8(b.formula.Channel(int(ref.R), index, b.paletteLen)),
		G: uint8(b.formula.Channel(int(ref.G), index, b.paletteLen)),
		B: uint8(b.formula.Channel(int(ref.B), index, b.paletteLen)),
		A: 255,
	}
}

// roundHalfEven rounds v to the given number of decimal places, ties to even.
func roundHalfEven(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
