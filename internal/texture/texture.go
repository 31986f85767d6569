// Package texture adapts decoded RGBA images for upload to graphics APIs.
package texture

import (
	"fmt"
	"image"

	"github.com/chaohung/png-decoder/internal/ir"
	"golang.org/x/image/draw"
)

// Filter selects the resampling kernel used by Resize.
type Filter int

const (
	CatmullRom Filter = iota
	Bilinear
	Nearest
)

// ParseFilter converts a filter name to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "catmullrom":
		return CatmullRom, nil
	case "bilinear":
		return Bilinear, nil
	case "nearest":
		return Nearest, nil
	default:
		return 0, fmt.Errorf("unknown resize filter: %q", s)
	}
}

func (f Filter) scaler() draw.Scaler {
	switch f {
	case Bilinear:
		return draw.BiLinear
	case Nearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// NRGBA returns an image.NRGBA sharing m's pixel buffer.
func NRGBA(m *ir.RGBAImage) *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.Pixels,
		Stride: m.Stride(),
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// FlipVertical returns a copy of m with row order reversed, for APIs whose
// origin is the bottom-left corner.
func FlipVertical(m *ir.RGBAImage) *ir.RGBAImage {
	out := &ir.RGBAImage{
		Width:  m.Width,
		Height: m.Height,
		Pixels: make([]byte, len(m.Pixels)),
	}
	for y := 0; y < m.Height; y++ {
		copy(out.Row(m.Height-1-y), m.Row(y))
	}
	return out
}

// Resize resamples m to width x height into a new image. m is never shared
// with the result, even when the size is unchanged.
func Resize(m *ir.RGBAImage, width, height int, f Filter) (*ir.RGBAImage, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	if width == m.Width && height == m.Height {
		return &ir.RGBAImage{
			Width:  m.Width,
			Height: m.Height,
			Pixels: append([]byte(nil), m.Pixels...),
		}, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	src := NRGBA(m)
	f.scaler().Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &ir.RGBAImage{
		Width:  width,
		Height: height,
		Pixels: dst.Pix,
	}, nil
}
