package domain

import "image/color"

// TypeGrid is the read-only view of a precipitation-type chart needed to
// resolve categories.
type TypeGrid interface {
	Height() int
	At(x, y int) color.NRGBA
}

// MergeState is the forward-filled category colour carried through a scan.
// A fresh state is created for every image pair.
type MergeState struct {
	LastCategoryColor color.NRGBA
}

// NewMergeState returns the state at the start of a scan, carrying the
// unclassified sentinel.
func (t *PaletteTable) NewMergeState() MergeState {
	return MergeState{LastCategoryColor: t.sentinel}
}

// CategoryResolver decides which category reference colour applies at a
// type-map position.
type CategoryResolver struct {
	table *PaletteTable
}

// NewCategoryResolver creates a resolver over the given palette table.
func NewCategoryResolver(table *PaletteTable) CategoryResolver {
	return CategoryResolver{table: table}
}

// Resolve returns the reference colour for (x, y) and records it in state.
//
// A typed pixel resolves to its own category. A sentinel pixel takes the
// category of the first typed pixel below it in column x. When nothing below
// is typed, or the typed pixel belongs to no category, the colour already
// carried in state is returned unchanged.
func (r CategoryResolver) Resolve(types TypeGrid, x, y int, state *MergeState) color.NRGBA {
	sentinel := r.table.sentinel

	for y2 := y; y2 < types.Height(); y2++ {
		px := types.At(x, y2)
		if px == sentinel {
			continue
		}
		if cat, ok := r.table.Categorize(px); ok {
			state.LastCategoryColor = cat.Reference
		}
		break
	}

	return state.LastCategoryColor
}
