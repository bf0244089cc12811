package domain

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when the two charts of a pair differ in size.
var ErrDimensionMismatch = errors.New("image dimensions differ")

// MergeStats summarises one merged pair.
type MergeStats struct {
	Width   int
	Height  int
	Blended int // intensity pixels rewritten
}

// Merge recolours every intensity pixel of intensity in place using the
// categories found in types. Pixels that are not in the intensity palette are
// left untouched. The scan is column-major so the carried category follows
// the downward fallback search.
func Merge(table *PaletteTable, blender Blender, intensity, types *Grid) (MergeStats, error) {
	w, h := intensity.Width(), intensity.Height()
	if types.Width() != w || types.Height() != h {
		return MergeStats{}, fmt.Errorf("%w: intensity %dx%d, type %dx%d",
			ErrDimensionMismatch, w, h, types.Width(), types.Height())
	}

	resolver := NewCategoryResolver(table)
	state := table.NewMergeState()
	stats := MergeStats{Width: w, Height: h}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			px := intensity.At(x, y)
			if !table.IsIntensityPixel(px) {
				continue
			}
			ref := resolver.Resolve(types, x, y, &state)
			intensity.Set(x, y, blender.Blend(ref, table.ClassifyIntensity(px)))
			stats.Blended++
		}
	}

	return stats, nil
}
