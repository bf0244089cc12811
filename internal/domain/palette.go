package domain

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
)

var (
	// ErrPaletteOverlap is returned when a colour belongs to more than one
	// category palette.
	ErrPaletteOverlap = errors.New("category palettes overlap")

	// ErrDuplicateColor is returned when a palette lists the same colour twice.
	ErrDuplicateColor = errors.New("duplicate palette color")

	// ErrEmptyPalette is returned for a palette with no colours.
	ErrEmptyPalette = errors.New("empty palette")
)

// Category is a precipitation type.
type Category string

const (
	CategoryRain  Category = "rain"
	CategorySleet Category = "sleet"
	CategorySnow  Category = "snow"
)

// SearchOrder selects the direction in which the intensity palette is indexed.
type SearchOrder string

const (
	OrderNatural  SearchOrder = "natural"
	OrderReversed SearchOrder = "reversed"
)

// White is the unclassified sentinel used by the published type charts.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Palette is an ordered list of exact colours.
type Palette []color.NRGBA

// Index returns the position of the first entry equal to c.
func (p Palette) Index(c color.NRGBA) (int, bool) {
	i := slices.Index(p, c)
	return i, i >= 0
}

// Contains reports whether c is a member of the palette.
func (p Palette) Contains(c color.NRGBA) bool {
	return slices.Contains(p, c)
}

func (p Palette) validate(name string) error {
	if len(p) == 0 {
		return fmt.Errorf("%s: %w", name, ErrEmptyPalette)
	}
	seen := make(map[color.NRGBA]struct{}, len(p))
	for _, c := range p {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("%s: %w: %s", name, ErrDuplicateColor, FormatHex(c))
		}
		seen[c] = struct{}{}
	}
	return nil
}

// CategoryPalette is one precipitation type's legend together with the colour
// used to render that type.
type CategoryPalette struct {
	Category  Category
	Colors    Palette
	Reference color.NRGBA
}

// PaletteTable holds the immutable colour tables for a merge run. It is safe
// for concurrent use.
type PaletteTable struct {
	intensity  Palette
	severity   map[color.NRGBA]int
	categories []CategoryPalette
	members    map[color.NRGBA]int // colour -> index into categories
	sentinel   color.NRGBA
}

// NewPaletteTable validates and indexes the colour tables. Categories are
// matched in the order given; the first palette containing a colour wins. The
// palettes are required to be pairwise disjoint, so the precedence never
// decides anything for a valid table.
func NewPaletteTable(intensity Palette, order SearchOrder, categories []CategoryPalette, sentinel color.NRGBA) (*PaletteTable, error) {
	if err := intensity.validate("intensity palette"); err != nil {
		return nil, err
	}

	searched := slices.Clone(intensity)
	switch order {
	case OrderNatural, "":
	case OrderReversed:
		slices.Reverse(searched)
	default:
		return nil, fmt.Errorf("unknown intensity search order %q", order)
	}

	if len(categories) == 0 {
		return nil, errors.New("at least one category palette is required")
	}

	t := &PaletteTable{
		intensity:  searched,
		severity:   make(map[color.NRGBA]int, len(searched)),
		categories: slices.Clone(categories),
		members:    make(map[color.NRGBA]int),
		sentinel:   sentinel,
	}
	for i, c := range searched {
		t.severity[c] = i
	}

	for i, cat := range t.categories {
		if err := cat.Colors.validate(string(cat.Category) + " palette"); err != nil {
			return nil, err
		}
		for _, c := range cat.Colors {
			if c == sentinel {
				return nil, fmt.Errorf("%s palette contains the unclassified sentinel %s", cat.Category, FormatHex(c))
			}
			if prev, ok := t.members[c]; ok {
				return nil, fmt.Errorf("%w: %s is in both %s and %s",
					ErrPaletteOverlap, FormatHex(c), t.categories[prev].Category, cat.Category)
			}
			t.members[c] = i
		}
	}

	return t, nil
}

// Len returns the number of intensity palette entries.
func (t *PaletteTable) Len() int { return len(t.intensity) }

// Sentinel returns the unclassified type colour.
func (t *PaletteTable) Sentinel() color.NRGBA { return t.sentinel }

// Intensity returns a copy of the intensity palette in search order.
func (t *PaletteTable) Intensity() Palette { return slices.Clone(t.intensity) }

// Categories returns a copy of the category palettes in precedence order.
func (t *PaletteTable) Categories() []CategoryPalette { return slices.Clone(t.categories) }

// IsIntensityPixel reports whether c is a member of the intensity palette.
func (t *PaletteTable) IsIntensityPixel(c color.NRGBA) bool {
	_, ok := t.severity[c]
	return ok
}

// ClassifyIntensity returns the severity index of c, or 0 when c is not an
// intensity colour.
func (t *PaletteTable) ClassifyIntensity(c color.NRGBA) int {
	return t.severity[c]
}

// Categorize returns the category palette that contains c.
func (t *PaletteTable) Categorize(c color.NRGBA) (CategoryPalette, bool) {
	i, ok := t.members[c]
	if !ok {
		return CategoryPalette{}, false
	}
	return t.categories[i], true
}

// FormatHex renders c as #rrggbb.
func FormatHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
