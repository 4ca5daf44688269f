// Package stream is the primitive little-endian read/write stream used by
// the document codecs. Both sides carry a format version that gates
// conditionally present fields. Errors are sticky: after the first
// failure every call is a no-op and Err reports it.
package stream

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

type Version uint16

// MaxStringLen bounds a length-prefixed string so a corrupt count does
// not allocate unbounded memory.
const MaxStringLen = 1 << 20

var ErrStringTooLong = errors.New("stream: string length out of range")

type Writer struct {
	w       io.Writer
	version Version
	err     error
	buf     [8]byte
}

func NewWriter(w io.Writer, v Version) *Writer {
	return &Writer{w: w, version: v}
}

func (w *Writer) Version() Version { return w.version }
func (w *Writer) Err() error       { return w.err }

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

func (w *Writer) WriteInt8(v int8) { w.WriteUint8(uint8(v)) }

func (w *Writer) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

func (w *Writer) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

func (w *Writer) WriteFloat64(v float64) {
	binary.LittleEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	w.write(w.buf[:8])
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

// WriteString writes a uint32 length followed by the raw bytes.
func (w *Writer) WriteString(s string) {
	if len(s) > MaxStringLen {
		if w.err == nil {
			w.err = ErrStringTooLong
		}
		return
	}
	w.WriteUint32(uint32(len(s)))
	w.write([]byte(s))
}

// WriteCount prefixes a nested collection.
func (w *Writer) WriteCount(n int) { w.WriteUint32(uint32(n)) }

type Reader struct {
	r       io.Reader
	version Version
	err     error
	buf     [8]byte
}

func NewReader(r io.Reader, v Version) *Reader {
	return &Reader{r: r, version: v}
}

func (r *Reader) Version() Version { return r.version }
func (r *Reader) Err() error       { return r.err }

// AtLeast reports whether fields introduced in v are present.
func (r *Reader) AtLeast(v Version) bool { return r.version >= v }

func (r *Reader) read(n int) []byte {
	if r.err != nil {
		return r.buf[:0]
	}
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		r.err = err
		for i := range r.buf {
			r.buf[i] = 0
		}
	}
	return r.buf[:n]
}

func (r *Reader) ReadUint8() uint8 {
	b := r.read(1)
	if len(b) < 1 {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadInt8() int8 { return int8(r.ReadUint8()) }

func (r *Reader) ReadUint16() uint16 {
	b := r.read(2)
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadInt16() int16 { return int16(r.ReadUint16()) }

func (r *Reader) ReadUint32() uint32 {
	b := r.read(4)
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadInt32() int32 { return int32(r.ReadUint32()) }

func (r *Reader) ReadFloat32() float32 { return math.Float32frombits(r.ReadUint32()) }

func (r *Reader) ReadFloat64() float64 {
	b := r.read(8)
	if len(b) < 8 {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (r *Reader) ReadBool() bool { return r.ReadUint8() != 0 }

func (r *Reader) ReadString() string {
	n := r.ReadUint32()
	if r.err != nil {
		return ""
	}
	if n > MaxStringLen {
		r.err = ErrStringTooLong
		return ""
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.err = err
		return ""
	}
	return string(b)
}

// ReadCount reads a collection prefix, failing when it exceeds limit.
func (r *Reader) ReadCount(limit int) int {
	n := r.ReadUint32()
	if r.err != nil {
		return 0
	}
	if int64(n) > int64(limit) {
		r.err = errors.New("stream: collection count out of range")
		return 0
	}
	return int(n)
}

// Fail records err unless an earlier error is already stored.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}
