package png

import "fmt"

// ColorType is the IHDR color type. Values match the PNG specification.
type ColorType uint8

const (
	ColorGray      ColorType = 0
	ColorRGB       ColorType = 2
	ColorPalette   ColorType = 3
	ColorGrayAlpha ColorType = 4
	ColorRGBA      ColorType = 6
)

func (c ColorType) String() string {
	switch c {
	case ColorGray:
		return "Grayscale"
	case ColorRGB:
		return "RGB"
	case ColorPalette:
		return "Indexed"
	case ColorGrayAlpha:
		return "GrayscaleAlpha"
	case ColorRGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("ColorType(%d)", uint8(c))
	}
}

// HasAlpha reports whether the color type carries a native alpha sample.
func (c ColorType) HasAlpha() bool {
	return c == ColorGrayAlpha || c == ColorRGBA
}

// InterlaceMethod is the IHDR interlace method.
type InterlaceMethod uint8

const (
	InterlaceNone  InterlaceMethod = 0
	InterlaceAdam7 InterlaceMethod = 1
)

func (m InterlaceMethod) String() string {
	switch m {
	case InterlaceNone:
		return "none"
	case InterlaceAdam7:
		return "Adam7"
	default:
		return fmt.Sprintf("InterlaceMethod(%d)", uint8(m))
	}
}

// Header is the image metadata as stored in the file, before any
// normalization. Compression, Filter and Interlace are informational.
type Header struct {
	Width       int
	Height      int
	BitDepth    int
	ColorType   ColorType
	Interlace   InterlaceMethod
	Compression int
	Filter      int
	Channels    int

	// HasTransparency is set when a tRNS chunk precedes the image data.
	HasTransparency bool
}
