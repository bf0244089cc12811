package domain

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_TypedPixel(t *testing.T) {
	table := newTestTable(t)
	blender := newTestBlender(t, table)

	intensity := gridOf(
		[]color.NRGBA{testIntensity[3], background},
		[]color.NRGBA{background, background},
	)
	types := gridOf(
		[]color.NRGBA{RGB(94, 167, 220), White},
		[]color.NRGBA{White, White},
	)

	stats, err := Merge(table, blender, intensity, types)
	require.NoError(t, err)

	want := [][]color.NRGBA{
		{blender.Blend(rainRef, 3), background},
		{background, background},
	}
	if diff := cmp.Diff(want, rows(intensity)); diff != "" {
		t.Fatalf("merged grid mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, MergeStats{Width: 2, Height: 2, Blended: 1}, stats)
}

func TestMerge_FallbackFindsRowBelow(t *testing.T) {
	table := newTestTable(t)
	blender := newTestBlender(t, table)

	intensity := gridOf(
		[]color.NRGBA{testIntensity[5], background},
		[]color.NRGBA{background, background},
	)
	types := gridOf(
		[]color.NRGBA{White, White},
		[]color.NRGBA{RGB(240, 223, 233), White},
	)

	_, err := Merge(table, blender, intensity, types)
	require.NoError(t, err)

	assert.Equal(t, blender.Blend(snowRef, 5), intensity.At(0, 0))
	assert.Equal(t, background, intensity.At(0, 1))
	assert.Equal(t, background, intensity.At(1, 0))
	assert.Equal(t, background, intensity.At(1, 1))
}

func TestMerge_CarriesCategoryAcrossColumns(t *testing.T) {
	table := newTestTable(t)
	blender := newTestBlender(t, table)

	// Column 0 resolves to sleet; column 1 has no type information at all,
	// so the carried sleet colour is used there too.
	intensity := gridOf(
		[]color.NRGBA{testIntensity[1], testIntensity[2]},
		[]color.NRGBA{testIntensity[4], testIntensity[7]},
	)
	types := gridOf(
		[]color.NRGBA{RGB(255, 253, 235), White},
		[]color.NRGBA{White, White},
	)

	stats, err := Merge(table, blender, intensity, types)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Blended)
	assert.Equal(t, blender.Blend(sleetRef, 1), intensity.At(0, 0))
	assert.Equal(t, blender.Blend(sleetRef, 4), intensity.At(0, 1))
	assert.Equal(t, blender.Blend(sleetRef, 2), intensity.At(1, 0))
	assert.Equal(t, blender.Blend(sleetRef, 7), intensity.At(1, 1))
}

func TestMerge_NoTypeInformationLeavesWhite(t *testing.T) {
	table := newTestTable(t)
	blender := newTestBlender(t, table)

	intensity := gridOf([]color.NRGBA{testIntensity[6]})
	types := gridOf([]color.NRGBA{White})

	_, err := Merge(table, blender, intensity, types)
	require.NoError(t, err)

	assert.Equal(t, White, intensity.At(0, 0))
}

func TestMerge_DimensionMismatch(t *testing.T) {
	table := newTestTable(t)
	blender := newTestBlender(t, table)

	_, err := Merge(table, blender, NewGrid(2, 2), NewGrid(2, 3))
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "2x3")
}

func TestGrid_OffsetBounds(t *testing.T) {
	g := NewGrid(3, 2)
	g.Fill(background)
	g.Set(2, 1, rainRef)

	assert.Equal(t, 3, g.Width())
	assert.Equal(t, 2, g.Height())
	assert.Equal(t, rainRef, g.At(2, 1))
	assert.Equal(t, rainRef, g.Image().NRGBAAt(2, 1))
}

func rows(g *Grid) [][]color.NRGBA {
	out := make([][]color.NRGBA, g.Height())
	for y := range out {
		out[y] = make([]color.NRGBA, g.Width())
		for x := range out[y] {
			out[y][x] = g.At(x, y)
		}
	}
	return out
}
