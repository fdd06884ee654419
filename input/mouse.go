// Package input decodes raw pointer events from a Plan 9 style mouse
// device.
//
// The device delivers fixed-size records: a type byte followed by four
// 12-byte, space-padded decimal fields.
//
//	'm' x[12] y[12] buttons[12] msec[12]	pointer moved or buttons changed
//	'r' x[12] y[12] buttons[12] msec[12]	window resized
package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/elizafairlady/go-ptrbridge/geom"
)

// RecordSize is the size of one mouse device record.
const RecordSize = 1 + 4*12

// Decode errors.
var (
	ErrUnknownRecord = errors.New("unknown mouse record")
	ErrBadField      = errors.New("bad mouse field")
)

// Mouse is one decoded record. Point is in device pixels.
type Mouse struct {
	Point   geom.Point
	Buttons int
	Msec    uint32
	Resize  bool
}

// Reader decodes records from a mouse device.
type Reader struct {
	r   io.Reader
	buf [RecordSize]byte
	log *zap.Logger
}

// NewReader returns a Reader decoding from r.
func NewReader(r io.Reader, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{r: r, log: log}
}

// Next reads and decodes one record. It returns io.EOF at a clean end
// of input and io.ErrUnexpectedEOF for a truncated record.
func (r *Reader) Next() (Mouse, error) {
	if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
		return Mouse{}, err
	}
	return Parse(r.buf[:])
}

// Run decodes records until EOF, an error, or ctx is done. Moves are
// passed to fn and resizes to onResize, which may be nil. A clean EOF
// returns nil.
func (r *Reader) Run(ctx context.Context, fn func(Mouse), onResize func()) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := r.Next()
		if errors.Is(err, io.EOF) {
			r.log.Debug("mouse input closed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read mouse: %w", err)
		}
		if m.Resize {
			r.log.Debug("resize")
			if onResize != nil {
				onResize()
			}
			continue
		}
		fn(m)
	}
}

// Parse decodes a single record.
func Parse(b []byte) (Mouse, error) {
	if len(b) < RecordSize {
		return Mouse{}, io.ErrUnexpectedEOF
	}
	var m Mouse
	switch b[0] {
	case 'm':
	case 'r':
		m.Resize = true
	default:
		return Mouse{}, fmt.Errorf("%w %q", ErrUnknownRecord, b[0])
	}
	var f [4]int
	for i := range f {
		n, err := atoiField(b[1+i*12 : 1+(i+1)*12])
		if err != nil {
			return Mouse{}, err
		}
		f[i] = n
	}
	m.Point = geom.Pt(float32(f[0]), float32(f[1]))
	m.Buttons = f[2]
	m.Msec = uint32(f[3])
	return m, nil
}

// Format encodes m as a record, the inverse of Parse.
func Format(m Mouse) []byte {
	t := byte('m')
	if m.Resize {
		t = 'r'
	}
	return []byte(fmt.Sprintf("%c%11d %11d %11d %11d ", t,
		int(m.Point.X), int(m.Point.Y), m.Buttons, m.Msec))
}

// atoiField parses a space-padded decimal field.
func atoiField(b []byte) (int, error) {
	s := strings.TrimSpace(string(b))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrBadField, s)
	}
	return n, nil
}
