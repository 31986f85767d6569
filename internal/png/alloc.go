package png

import "fmt"

// MaxImageBytes caps the normalized pixel buffer so that its length fits
// in a signed 32-bit count.
const MaxImageBytes = 1<<31 - 1

// checkSize rejects headers whose normalized RGBA buffer would exceed
// MaxImageBytes. It runs before libpng sizes its own row buffers.
func checkSize(h Header) error {
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrFormat, h.Width, h.Height)
	}
	size := uint64(h.Width) * uint64(h.Height) * 4
	if size > MaxImageBytes {
		return fmt.Errorf("%w: %dx%d RGBA needs %d bytes (max %d)",
			ErrAllocation, h.Width, h.Height, size, MaxImageBytes)
	}
	return nil
}

// rowLayout is the geometry libpng reports after the transforms are applied.
type rowLayout struct {
	RowBytes int
	Width    int
	Height   int
	Channels int
	BitDepth int
	Passes   int
}

// rowOffset returns where row y starts in a buffer laid out by l.
func (l rowLayout) rowOffset(y int) int {
	return y * l.RowBytes
}

// allocate returns a zeroed buffer of exactly RowBytes*Height bytes.
func (l rowLayout) allocate() ([]byte, error) {
	if l.Channels != 4 || l.BitDepth != 8 || l.RowBytes != l.Width*4 {
		return nil, fmt.Errorf("%w: normalized rows are %d bytes of %d channels at %d bits for width %d",
			ErrFormat, l.RowBytes, l.Channels, l.BitDepth, l.Width)
	}
	if l.RowBytes <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrFormat, l.Width, l.Height)
	}
	size := uint64(l.RowBytes) * uint64(l.Height)
	if size > MaxImageBytes {
		return nil, fmt.Errorf("%w: %dx%d RGBA needs %d bytes (max %d)",
			ErrAllocation, l.Width, l.Height, size, MaxImageBytes)
	}
	return make([]byte, size), nil
}
