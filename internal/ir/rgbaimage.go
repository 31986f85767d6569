package ir

// RGBAImage is the normalized decode result handed between stages. Pixels
// are stored as interleaved R,G,B,A bytes, not premultiplied (4 bytes per
// pixel, row-major order, no padding between rows).
type RGBAImage struct {
	Width  int
	Height int
	Pixels []byte // len = Width * Height * 4
}

// Stride is the byte length of one row.
func (m *RGBAImage) Stride() int {
	return m.Width * 4
}

// Row returns the bytes of row y.
func (m *RGBAImage) Row(y int) []byte {
	s := m.Stride()
	return m.Pixels[y*s : (y+1)*s]
}
