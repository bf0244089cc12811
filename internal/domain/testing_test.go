package domain

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

// Small fixture palettes; the production tables live in the calibration package.

var (
	testIntensity = Palette{
		RGB(211, 211, 211),
		RGB(181, 191, 185),
		RGB(152, 171, 159),
		RGB(122, 151, 133),
		RGB(93, 130, 106),
		RGB(63, 110, 80),
		RGB(34, 90, 54),
		RGB(4, 70, 28),
	}

	rainRef  = RGB(0, 87, 138)
	sleetRef = RGB(255, 232, 0)
	snowRef  = RGB(206, 87, 161)

	testCategories = []CategoryPalette{
		{Category: CategoryRain, Colors: Palette{RGB(17, 148, 211), RGB(94, 167, 220), rainRef}, Reference: rainRef},
		{Category: CategorySleet, Colors: Palette{RGB(255, 253, 235), sleetRef}, Reference: sleetRef},
		{Category: CategorySnow, Colors: Palette{RGB(240, 223, 233), snowRef}, Reference: snowRef},
	}

	background = RGB(30, 30, 30)
)

func newTestTable(t *testing.T) *PaletteTable {
	t.Helper()
	table, err := NewPaletteTable(testIntensity, OrderNatural, testCategories, White)
	require.NoError(t, err)
	return table
}

func newTestBlender(t *testing.T, table *PaletteTable) Blender {
	t.Helper()
	b, err := NewBlender(FormulaMultiplicative, table.Len())
	require.NoError(t, err)
	return b
}

// gridOf builds a grid from rows of colours (rows[y][x]).
func gridOf(rows ...[]color.NRGBA) *Grid {
	g := NewGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			g.Set(x, y, c)
		}
	}
	return g
}

// column builds a 1-pixel-wide grid from top to bottom.
func column(cs ...color.NRGBA) *Grid {
	rows := make([][]color.NRGBA, len(cs))
	for i, c := range cs {
		rows[i] = []color.NRGBA{c}
	}
	return gridOf(rows...)
}
