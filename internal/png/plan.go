package png

import "strings"

// Transform is a set of libpng read transformations.
type Transform uint16

const (
	ExpandPalette       Transform = 1 << iota // png_set_palette_to_rgb
	ExpandGray                                // png_set_expand_gray_1_2_4_to_8
	TransparencyToAlpha                       // png_set_tRNS_to_alpha
	Strip16                                   // png_set_strip_16
	Pack                                      // png_set_packing
	GrayToRGB                                 // png_set_gray_to_rgb
	AddFiller                                 // png_set_filler(0xff, PNG_FILLER_AFTER)
)

var transformNames = []struct {
	t    Transform
	name string
}{
	{ExpandPalette, "expand-palette"},
	{ExpandGray, "expand-gray"},
	{TransparencyToAlpha, "trns-to-alpha"},
	{Strip16, "strip-16"},
	{Pack, "pack"},
	{GrayToRGB, "gray-to-rgb"},
	{AddFiller, "add-filler"},
}

// Has reports whether every transform in o is part of t.
func (t Transform) Has(o Transform) bool {
	return t&o == o
}

func (t Transform) String() string {
	if t == 0 {
		return "none"
	}
	var names []string
	for _, n := range transformNames {
		if t.Has(n.t) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Plan selects the transformations that turn an image with header h into
// 8-bit RGBA rows. Checks are independent and cumulative; the filler is
// only requested when no alpha channel exists or will be synthesized.
func Plan(h Header) Transform {
	var t Transform
	if h.ColorType == ColorPalette {
		t |= ExpandPalette
	}
	if h.ColorType == ColorGray && h.BitDepth < 8 {
		t |= ExpandGray
	}
	if h.HasTransparency {
		t |= TransparencyToAlpha
	}
	if h.BitDepth == 16 {
		t |= Strip16
	}
	if h.BitDepth < 8 && h.ColorType != ColorGray {
		t |= Pack
	}
	if h.ColorType == ColorGray || h.ColorType == ColorGrayAlpha {
		t |= GrayToRGB
	}
	if !h.ColorType.HasAlpha() && !h.HasTransparency {
		t |= AddFiller
	}
	return t
}
