package png

import (
	"fmt"
	"io"
	"os"

	"github.com/chaohung/png-decoder/internal/ir"
	log "github.com/sirupsen/logrus"
)

// DecodedRGBA holds the result of decoding a PNG into 8-bit RGBA.
type DecodedRGBA struct {
	ir.RGBAImage
	Source     Header    // header as stored in the file
	Transforms Transform // transforms applied to reach RGBA
}

// DecodeRGBA decodes a complete PNG held in memory.
func DecodeRGBA(data []byte) (*DecodedRGBA, error) {
	if !HasSignature(data) {
		return nil, fmt.Errorf("%w: missing PNG signature", ErrFormat)
	}
	s, err := openMemorySession(data)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return decode(s)
}

// DecodeRGBAFile decodes the PNG file at path. The file is closed before
// returning on every path.
func DecodeRGBAFile(path string) (*DecodedRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	var sig [SignatureSize]byte
	if _, err := io.ReadFull(f, sig[:]); err != nil {
		return nil, fmt.Errorf("%w: reading signature of %s: %w", ErrIO, path, err)
	}
	if !HasSignature(sig[:]) {
		return nil, fmt.Errorf("%w: %s has no PNG signature", ErrFormat, path)
	}

	s, err := openFileSession(f)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return decode(s)
}

// ReadHeader returns the header of a PNG held in memory without decoding
// any image data.
func ReadHeader(data []byte) (Header, error) {
	if !HasSignature(data) {
		return Header{}, fmt.Errorf("%w: missing PNG signature", ErrFormat)
	}
	s, err := openMemorySession(data)
	if err != nil {
		return Header{}, err
	}
	defer s.Close()
	return s.readHeader()
}

func decode(s *session) (*DecodedRGBA, error) {
	h, err := s.readHeader()
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"width":       h.Width,
		"height":      h.Height,
		"bitDepth":    h.BitDepth,
		"colorType":   h.ColorType,
		"interlace":   h.Interlace,
		"compression": h.Compression,
		"filter":      h.Filter,
		"channels":    h.Channels,
		"tRNS":        h.HasTransparency,
	}).Debug("png header")

	t := Plan(h)
	log.WithField("transforms", t).Debug("png normalization plan")

	if err := checkSize(h); err != nil {
		return nil, err
	}
	l, err := s.apply(t)
	if err != nil {
		return nil, err
	}
	pix, err := l.allocate()
	if err != nil {
		return nil, err
	}
	if err := materialize(s, l, pix); err != nil {
		return nil, err
	}

	return &DecodedRGBA{
		RGBAImage: ir.RGBAImage{
			Width:  l.Width,
			Height: l.Height,
			Pixels: pix,
		},
		Source:     h,
		Transforms: t,
	}, nil
}

// materialize fills pix row by row, once per interlace pass, then reads
// the trailing chunks. Rows are addressed by offset so nothing refers into
// pix after it returns.
func materialize(s *session, l rowLayout, pix []byte) error {
	for pass := 0; pass < l.Passes; pass++ {
		for y := 0; y < l.Height; y++ {
			off := l.rowOffset(y)
			if err := s.readRow(pix[off : off+l.RowBytes]); err != nil {
				return fmt.Errorf("row %d pass %d: %w", y, pass, err)
			}
		}
	}
	return s.finish()
}
