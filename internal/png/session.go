package png

/*
#cgo pkg-config: libpng
#include <errno.h>
#include <setjmp.h>
#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <unistd.h>
#include <png.h>

#define SESSION_OK            0
#define SESSION_ERR_TRUNCATED 1
#define SESSION_ERR_IO        2
#define SESSION_ERR_CODEC     3
#define SESSION_ERR_INIT      4

#define XF_EXPAND_PALETTE  0x01
#define XF_EXPAND_GRAY     0x02
#define XF_TRNS_TO_ALPHA   0x04
#define XF_STRIP_16        0x08
#define XF_PACKING         0x10
#define XF_GRAY_TO_RGB     0x20
#define XF_FILLER          0x40

typedef struct {
    png_structp          png;
    png_infop            info;
    const unsigned char *data;     // memory source, pinned by the Go side
    size_t               size;
    size_t               offset;
    FILE                *fp;       // file source, dup of the caller's descriptor
    int                  io_status;
    int                  warnings;
    char                 msg[256];
    char                 warning[256];
} dec_session;

typedef struct {
    unsigned int width;
    unsigned int height;
    int          bit_depth;
    int          color_type;
    int          interlace;
    int          compression;
    int          filter;
    int          channels;
    int          has_trns;
} dec_header;

typedef struct {
    size_t       rowbytes;
    unsigned int width;
    unsigned int height;
    int          channels;
    int          bit_depth;
    int          passes;
} dec_layout;

static void session_error(png_structp png, png_const_charp msg) {
    dec_session *s = (dec_session *)png_get_error_ptr(png);
    strncpy(s->msg, msg, sizeof(s->msg)-1);
    png_longjmp(png, 1);
}

static void session_warning(png_structp png, png_const_charp msg) {
    dec_session *s = (dec_session *)png_get_error_ptr(png);
    strncpy(s->warning, msg, sizeof(s->warning)-1);
    s->warnings++;
}

static void session_read_memory(png_structp png, png_bytep out, png_size_t n) {
    dec_session *s = (dec_session *)png_get_io_ptr(png);
    if (n > s->size - s->offset) {
        s->io_status = SESSION_ERR_TRUNCATED;
        png_error(png, "unexpected end of input buffer");
    }
    memcpy(out, s->data + s->offset, n);
    s->offset += n;
}

static void session_read_file(png_structp png, png_bytep out, png_size_t n) {
    dec_session *s = (dec_session *)png_get_io_ptr(png);
    if (fread(out, 1, n, s->fp) != n) {
        s->io_status = SESSION_ERR_IO;
        png_error(png, ferror(s->fp) ? "file read failed" : "unexpected end of file");
    }
}

static int session_fail(dec_session *s) {
    return s->io_status != SESSION_OK ? s->io_status : SESSION_ERR_CODEC;
}

static dec_session *session_new(void) {
    return (dec_session *)calloc(1, sizeof(dec_session));
}

static int session_create(dec_session *s, size_t sig_bytes, png_rw_ptr read_fn) {
    s->png = png_create_read_struct(PNG_LIBPNG_VER_STRING, s, session_error, session_warning);
    if (s->png == NULL) {
        strncpy(s->msg, "png_create_read_struct failed", sizeof(s->msg)-1);
        return SESSION_ERR_INIT;
    }
    if (setjmp(png_jmpbuf(s->png))) {
        return SESSION_ERR_INIT;
    }
    s->info = png_create_info_struct(s->png);
    if (s->info == NULL) {
        strncpy(s->msg, "png_create_info_struct failed", sizeof(s->msg)-1);
        return SESSION_ERR_INIT;
    }
    png_set_user_limits(s->png, PNG_UINT_31_MAX, PNG_UINT_31_MAX);
    png_set_read_fn(s->png, s, read_fn);
    png_set_sig_bytes(s->png, (int)sig_bytes);
    return SESSION_OK;
}

static int session_open_memory(dec_session *s, const unsigned char *data, size_t size, size_t sig_bytes) {
    s->data = data;
    s->size = size;
    s->offset = sig_bytes;
    return session_create(s, sig_bytes, session_read_memory);
}

static int session_open_fd(dec_session *s, int fd, size_t sig_bytes) {
    int dupfd = dup(fd);
    if (dupfd < 0) {
        snprintf(s->msg, sizeof(s->msg), "dup: %s", strerror(errno));
        return SESSION_ERR_IO;
    }
    s->fp = fdopen(dupfd, "rb");
    if (s->fp == NULL) {
        snprintf(s->msg, sizeof(s->msg), "fdopen: %s", strerror(errno));
        close(dupfd);
        return SESSION_ERR_IO;
    }
    return session_create(s, sig_bytes, session_read_file);
}

static int session_read_info(dec_session *s, dec_header *h) {
    png_uint_32 width, height;
    int bit_depth, color_type, interlace, compression, filter;

    if (setjmp(png_jmpbuf(s->png))) {
        return session_fail(s);
    }
    png_read_info(s->png, s->info);
    png_get_IHDR(s->png, s->info, &width, &height, &bit_depth, &color_type,
                 &interlace, &compression, &filter);

    h->width = width;
    h->height = height;
    h->bit_depth = bit_depth;
    h->color_type = color_type;
    h->interlace = interlace;
    h->compression = compression;
    h->filter = filter;
    h->channels = png_get_channels(s->png, s->info);
    h->has_trns = png_get_valid(s->png, s->info, PNG_INFO_tRNS) != 0;
    return SESSION_OK;
}

// session_apply requests the transforms in xf, then re-reads the row layout
// libpng will produce.
static int session_apply(dec_session *s, unsigned int xf, dec_layout *l) {
    if (setjmp(png_jmpbuf(s->png))) {
        return session_fail(s);
    }
    if (xf & XF_EXPAND_PALETTE)
        png_set_palette_to_rgb(s->png);
    if (xf & XF_EXPAND_GRAY)
        png_set_expand_gray_1_2_4_to_8(s->png);
    if (xf & XF_TRNS_TO_ALPHA)
        png_set_tRNS_to_alpha(s->png);
    if (xf & XF_STRIP_16)
        png_set_strip_16(s->png);
    if (xf & XF_PACKING)
        png_set_packing(s->png);
    if (xf & XF_GRAY_TO_RGB)
        png_set_gray_to_rgb(s->png);
    if (xf & XF_FILLER)
        png_set_filler(s->png, 0xff, PNG_FILLER_AFTER);
    l->passes = png_set_interlace_handling(s->png);
    png_read_update_info(s->png, s->info);

    l->rowbytes = png_get_rowbytes(s->png, s->info);
    l->width = png_get_image_width(s->png, s->info);
    l->height = png_get_image_height(s->png, s->info);
    l->channels = png_get_channels(s->png, s->info);
    l->bit_depth = png_get_bit_depth(s->png, s->info);
    return SESSION_OK;
}

static int session_read_row(dec_session *s, unsigned char *row) {
    if (setjmp(png_jmpbuf(s->png))) {
        return session_fail(s);
    }
    png_read_row(s->png, row, NULL);
    return SESSION_OK;
}

static int session_finish(dec_session *s) {
    if (setjmp(png_jmpbuf(s->png))) {
        return session_fail(s);
    }
    png_read_end(s->png, s->info);
    return SESSION_OK;
}

static void session_free(dec_session *s) {
    if (s == NULL)
        return;
    if (s->png != NULL)
        png_destroy_read_struct(&s->png, &s->info, NULL);
    if (s->fp != NULL)
        fclose(s->fp);
    free(s);
}
*/
import "C"

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"unsafe"

	log "github.com/sirupsen/logrus"
)

// LibpngVersion returns the version string of the linked libpng.
func LibpngVersion() string {
	return C.GoString(C.png_get_libpng_ver(nil))
}

var transformFlags = []struct {
	t    Transform
	flag C.uint
}{
	{ExpandPalette, C.XF_EXPAND_PALETTE},
	{ExpandGray, C.XF_EXPAND_GRAY},
	{TransparencyToAlpha, C.XF_TRNS_TO_ALPHA},
	{Strip16, C.XF_STRIP_16},
	{Pack, C.XF_PACKING},
	{GrayToRGB, C.XF_GRAY_TO_RGB},
	{AddFiller, C.XF_FILLER},
}

// Counters for sessions handed out and torn down.
var (
	sessionsOpened atomic.Int64
	sessionsClosed atomic.Int64
)

// session is one libpng read struct bound to a byte source. Every step
// re-arms libpng's longjmp target inside C and reports a status code, so
// a codec abort surfaces here as an ordinary error.
type session struct {
	c      *C.dec_session
	pinner runtime.Pinner
	warned int
}

func newSession() (*session, error) {
	c := C.session_new()
	if c == nil {
		return nil, fmt.Errorf("%w: cannot allocate session", ErrCodecInit)
	}
	sessionsOpened.Add(1)
	return &session{c: c}, nil
}

// openMemorySession reads from data, which must hold at least the signature.
// data stays pinned until Close.
func openMemorySession(data []byte) (*session, error) {
	s, err := newSession()
	if err != nil {
		return nil, err
	}
	s.pinner.Pin(&data[0])
	rc := C.session_open_memory(s.c, (*C.uchar)(unsafe.Pointer(&data[0])), C.size_t(len(data)), C.size_t(SignatureSize))
	if err := s.err(rc, nil); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// openFileSession reads from f, which must be positioned just past the
// signature. The session owns a duplicate descriptor; f is still the
// caller's to close.
func openFileSession(f *os.File) (*session, error) {
	s, err := newSession()
	if err != nil {
		return nil, err
	}
	rc := C.session_open_fd(s.c, C.int(f.Fd()), C.size_t(SignatureSize))
	runtime.KeepAlive(f)
	if err := s.err(rc, nil); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// err converts a C status into an error. stage is the taxonomy entry for
// codec failures in the current step; source exhaustion wraps it together
// with the cause.
func (s *session) err(rc C.int, stage error) error {
	msg := C.GoString(&s.c.msg[0])
	switch rc {
	case C.SESSION_OK:
		return nil
	case C.SESSION_ERR_INIT:
		return fmt.Errorf("%w: %s", ErrCodecInit, msg)
	case C.SESSION_ERR_TRUNCATED, C.SESSION_ERR_IO:
		cause := ErrIO
		if rc == C.SESSION_ERR_TRUNCATED {
			cause = ErrTruncatedInput
		}
		if stage == nil {
			return fmt.Errorf("%w: %s", cause, msg)
		}
		return fmt.Errorf("%w: %w: %s", stage, cause, msg)
	default:
		if stage == nil {
			stage = ErrCodecInit
		}
		return fmt.Errorf("%w: libpng: %s", stage, msg)
	}
}

func (s *session) logWarnings() {
	n := int(s.c.warnings)
	if n == s.warned {
		return
	}
	log.WithFields(log.Fields{
		"count": n - s.warned,
		"last":  C.GoString(&s.c.warning[0]),
	}).Debug("libpng warning")
	s.warned = n
}

func (s *session) readHeader() (Header, error) {
	var h C.dec_header
	rc := C.session_read_info(s.c, &h)
	s.logWarnings()
	if err := s.err(rc, ErrHeaderParse); err != nil {
		return Header{}, err
	}
	return Header{
		Width:           int(h.width),
		Height:          int(h.height),
		BitDepth:        int(h.bit_depth),
		ColorType:       ColorType(h.color_type),
		Interlace:       InterlaceMethod(h.interlace),
		Compression:     int(h.compression),
		Filter:          int(h.filter),
		Channels:        int(h.channels),
		HasTransparency: h.has_trns != 0,
	}, nil
}

// apply requests t from libpng and returns the resulting row layout.
func (s *session) apply(t Transform) (rowLayout, error) {
	var xf C.uint
	for _, f := range transformFlags {
		if t.Has(f.t) {
			xf |= f.flag
		}
	}
	var l C.dec_layout
	rc := C.session_apply(s.c, xf, &l)
	s.logWarnings()
	if err := s.err(rc, ErrHeaderParse); err != nil {
		return rowLayout{}, err
	}
	return rowLayout{
		RowBytes: int(l.rowbytes),
		Width:    int(l.width),
		Height:   int(l.height),
		Channels: int(l.channels),
		BitDepth: int(l.bit_depth),
		Passes:   int(l.passes),
	}, nil
}

// readRow decodes the next row of the current pass into row, which must
// be at least one row stride long.
func (s *session) readRow(row []byte) error {
	if len(row) == 0 {
		return fmt.Errorf("%w: empty row buffer", ErrDecode)
	}
	rc := C.session_read_row(s.c, (*C.uchar)(unsafe.Pointer(&row[0])))
	s.logWarnings()
	return s.err(rc, ErrDecode)
}

// finish consumes the chunks after the image data and checks their CRCs.
func (s *session) finish() error {
	rc := C.session_finish(s.c)
	s.logWarnings()
	return s.err(rc, ErrDecode)
}

// Close releases the libpng state and the session's descriptor. It is safe
// to call more than once.
func (s *session) Close() {
	if s.c == nil {
		return
	}
	C.session_free(s.c)
	s.c = nil
	s.pinner.Unpin()
	sessionsClosed.Add(1)
}
