package domain

import (
	"image"
	"image/color"
)

// Grid is a mutable pixel raster addressed from (0, 0) regardless of the
// underlying image's bounds.
type Grid struct {
	img *image.NRGBA
}

// NewGrid allocates a transparent width×height grid.
func NewGrid(width, height int) *Grid {
	return &Grid{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// GridFromImage wraps img without copying; writes to the grid mutate img.
func GridFromImage(img *image.NRGBA) *Grid {
	return &Grid{img: img}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.img.Rect.Dx() }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.img.Rect.Dy() }

// At returns the colour at column x, row y.
func (g *Grid) At(x, y int) color.NRGBA {
	return g.img.NRGBAAt(g.img.Rect.Min.X+x, g.img.Rect.Min.Y+y)
}

// Set overwrites the colour at column x, row y.
func (g *Grid) Set(x, y int, c color.NRGBA) {
	g.img.SetNRGBA(g.img.Rect.Min.X+x, g.img.Rect.Min.Y+y, c)
}

// Fill paints every pixel with c.
func (g *Grid) Fill(c color.NRGBA) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			g.Set(x, y, c)
		}
	}
}

// Image exposes the backing image for encoding.
func (g *Grid) Image() *image.NRGBA { return g.img }
