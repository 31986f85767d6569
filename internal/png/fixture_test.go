package png

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	stdpng "image/png"
	"os"
	"path/filepath"
	"testing"
)

// fixture describes a PNG written chunk by chunk, for layouts the stdlib
// encoder never produces.
type fixture struct {
	width, height int
	depth         int
	colorType     ColorType
	interlace     bool
	plte          []byte
	trns          []byte
	rows          [][]byte // packed samples, no filter byte
}

// adam7 passes as (x0, y0, dx, dy).
var adam7 = [7][4]int{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

func samplesPerPixel(ct ColorType) int {
	switch ct {
	case ColorRGB:
		return 3
	case ColorGrayAlpha:
		return 2
	case ColorRGBA:
		return 4
	default:
		return 1
	}
}

func (f fixture) encode(t *testing.T) []byte {
	t.Helper()

	var raw bytes.Buffer
	if f.interlace {
		if f.depth < 8 {
			t.Fatalf("interlaced fixture needs byte-aligned pixels, got depth %d", f.depth)
		}
		bpp := samplesPerPixel(f.colorType) * f.depth / 8
		for _, p := range adam7 {
			for y := p[1]; y < f.height; y += p[3] {
				var line []byte
				for x := p[0]; x < f.width; x += p[2] {
					line = append(line, f.rows[y][x*bpp:(x+1)*bpp]...)
				}
				if len(line) == 0 {
					break
				}
				raw.WriteByte(0)
				raw.Write(line)
			}
		}
	} else {
		for _, r := range f.rows {
			raw.WriteByte(0)
			raw.Write(r)
		}
	}

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(f.width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(f.height))
	ihdr[8] = byte(f.depth)
	ihdr[9] = byte(f.colorType)
	if f.interlace {
		ihdr[12] = 1
	}

	var out bytes.Buffer
	out.Write(signature[:])
	writeChunk(&out, "IHDR", ihdr)
	if f.plte != nil {
		writeChunk(&out, "PLTE", f.plte)
	}
	if f.trns != nil {
		writeChunk(&out, "tRNS", f.trns)
	}
	writeChunk(&out, "IDAT", z.Bytes())
	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

func writeChunk(b *bytes.Buffer, typ string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	b.Write(n[:])
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	b.WriteString(typ)
	b.Write(data)
	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	b.Write(n[:])
}

// packBits packs one sample per byte into depth-bit samples, MSB first.
func packBits(samples []byte, depth int) []byte {
	perByte := 8 / depth
	out := make([]byte, (len(samples)+perByte-1)/perByte)
	for i, s := range samples {
		shift := 8 - depth*(i%perByte+1)
		out[i/perByte] |= s << shift
	}
	return out
}

func encodeStd(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, m); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// expectedNRGBA flattens m into non-premultiplied 8-bit RGBA, truncating
// 16-bit samples the way strip-16 does.
func expectedNRGBA(m image.Image) []byte {
	b := m.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			out = append(out, c.R, c.G, c.B, c.A)
		}
	}
	return out
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// checkSessions fails the test at cleanup if any session opened during the
// test was not closed exactly once.
func checkSessions(t *testing.T) {
	t.Helper()
	opened, closed := sessionsOpened.Load(), sessionsClosed.Load()
	t.Cleanup(func() {
		o := sessionsOpened.Load() - opened
		c := sessionsClosed.Load() - closed
		if o != c {
			t.Errorf("sessions opened %d, closed %d", o, c)
		}
	})
}
