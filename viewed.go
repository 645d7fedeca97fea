package smwrender

import "fmt"

// ViewedPalettes selects which palette rows the PaletteRenderer maps into
// its grid. The 16 rows split in half between the two semantic groups:
// rows 0-7 belong to background layers, rows 8-15 to sprites.
type ViewedPalettes uint32

const (
	// AllPalettes shows the full 16x16 grid.
	AllPalettes ViewedPalettes = iota

	// BackgroundPalettes shows rows 0-7.
	BackgroundPalettes

	// SpritePalettes shows rows 8-15.
	SpritePalettes
)

// String returns the string representation of ViewedPalettes.
func (v ViewedPalettes) String() string {
	switch v {
	case AllPalettes:
		return "All"
	case BackgroundPalettes:
		return "Background"
	case SpritePalettes:
		return "Sprite"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(v))
	}
}

// Window returns the vertical texture-space window the selector maps onto
// the color table: a fragment at normalized grid coordinate y samples row
// floor((base + y*extent) * 16). The selector is resolved here, once per
// draw, so the per-fragment stage stays branch-free.
func (v ViewedPalettes) Window() (base, extent float64) {
	switch v {
	case BackgroundPalettes:
		return 0, 0.5
	case SpritePalettes:
		return 0.5, 0.5
	default:
		return 0, 1
	}
}
