package pipeline

import (
	"fmt"

	"github.com/chaohung/png-decoder/internal/ir"
	"github.com/chaohung/png-decoder/internal/png"
	"github.com/chaohung/png-decoder/internal/texture"
)

// Options controls the PNG→RGBA pipeline after decoding.
type Options struct {
	FlipVertical bool           // reverse row order (bottom-left origin)
	Width        int            // optional: resize target width, 0 keeps source
	Height       int            // optional: resize target height, 0 keeps source
	Filter       texture.Filter // resampling kernel when resizing
}

// Result holds the output of a pipeline run.
type Result struct {
	Image      *ir.RGBAImage
	Source     png.Header
	Transforms png.Transform
}

// Run decodes an in-memory PNG and applies opts.
func Run(pngData []byte, opts Options) (*Result, error) {
	decoded, err := png.DecodeRGBA(pngData)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return finish(decoded, opts)
}

// RunFile decodes the PNG file at path and applies opts.
func RunFile(path string, opts Options) (*Result, error) {
	decoded, err := png.DecodeRGBAFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return finish(decoded, opts)
}

func finish(decoded *png.DecodedRGBA, opts Options) (*Result, error) {
	img := &decoded.RGBAImage

	// 1. Resize, keeping the source size on any axis left at 0
	if opts.Width != 0 || opts.Height != 0 {
		w, h := opts.Width, opts.Height
		if w == 0 {
			w = img.Width
		}
		if h == 0 {
			h = img.Height
		}
		resized, err := texture.Resize(img, w, h, opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("resize: %w", err)
		}
		img = resized
	}

	// 2. Flip for bottom-left origin consumers
	if opts.FlipVertical {
		img = texture.FlipVertical(img)
	}

	return &Result{
		Image:      img,
		Source:     decoded.Source,
		Transforms: decoded.Transforms,
	}, nil
}
