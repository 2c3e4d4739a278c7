package domain

import (
	"strconv"
	"strings"
)

// Palette holds visually distinct colors from https://sashamaps.net/docs/resources/20-colors/.
// Part labels index into it modulo its length.
var Palette = []string{
	"#e6194B",
	"#3cb44b",
	"#ffe119",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#42d4f4",
	"#f032e6",
	"#bfef45",
	"#fabed4",
	"#469990",
	"#dcbeff",
	"#9A6324",
	"#fffac8",
	"#800000",
	"#aaffc3",
	"#808000",
	"#ffd8b1",
	"#000075",
	"#a9a9a9",
	"#ffffff",
	"#000000",
}

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// RGBA returns the color with full alpha.
func (c RGB) RGBA() [4]uint8 {
	return [4]uint8{c.R, c.G, c.B, 255}
}

// HexToRGB parses "#rrggbb" or "rrggbb".
func HexToRGB(hex string) (RGB, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return RGB{}, ErrInvalidColor
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, ErrInvalidColor
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// LabelColor returns the palette entry for a semantic label or legend index.
func LabelColor(label int) string {
	n := len(Palette)
	idx := label % n
	if idx < 0 {
		idx += n
	}
	return Palette[idx]
}

// LabelRGBA is LabelColor resolved to a face color. Palette entries are
// valid by construction.
func LabelRGBA(label int) [4]uint8 {
	c, _ := HexToRGB(LabelColor(label))
	return c.RGBA()
}
