package png

import "errors"

var (
	// ErrFormat is returned when the input is not a PNG or its dimensions
	// cannot be represented.
	ErrFormat = errors.New("png: invalid format")

	// ErrTruncatedInput is returned when the codec asks for more bytes than
	// the in-memory source holds.
	ErrTruncatedInput = errors.New("png: truncated input")

	// ErrIO is returned when the file source cannot be opened or read.
	ErrIO = errors.New("png: i/o error")

	// ErrCodecInit is returned when libpng cannot allocate its read state.
	ErrCodecInit = errors.New("png: codec init failed")

	// ErrHeaderParse is returned when the chunk stream up to the first IDAT
	// is malformed.
	ErrHeaderParse = errors.New("png: header parse failed")

	// ErrAllocation is returned when the normalized pixel buffer would
	// exceed MaxImageBytes.
	ErrAllocation = errors.New("png: pixel buffer allocation failed")

	// ErrDecode is returned when the codec aborts while reading image rows.
	ErrDecode = errors.New("png: decode failed")
)
