package amf

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
)

// Writer provides methods for writing envelope data.
// Uses Big-Endian byte order for all multi-byte values.
type Writer struct {
	buf *bytes.Buffer
}

// writerPool reduces allocations by reusing Writers across Encode calls.
var writerPool = sync.Pool{
	New: func() any {
		return &Writer{
			buf: bytes.NewBuffer(make([]byte, 0, 512)),
		}
	},
}

// GetWriter returns a Writer from the pool (already Reset).
func GetWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// Put returns the Writer to the pool for reuse.
// Do not use the Writer after calling Put.
func (w *Writer) Put() {
	writerPool.Put(w)
}

// NewWriter creates a new envelope writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{
		buf: bytes.NewBuffer(make([]byte, 0, capacity)),
	}
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// WriteUint16 writes a uint16 (2 bytes, BE).
func (w *Writer) WriteUint16(val uint16) {
	w.buf.WriteByte(byte(val >> 8))
	w.buf.WriteByte(byte(val))
}

// WriteUint32 writes a uint32 (4 bytes, BE).
func (w *Writer) WriteUint32(val uint32) {
	w.buf.WriteByte(byte(val >> 24))
	w.buf.WriteByte(byte(val >> 16))
	w.buf.WriteByte(byte(val >> 8))
	w.buf.WriteByte(byte(val))
}

// WriteDouble writes a float64 (8 bytes, BE, IEEE-754).
func (w *Writer) WriteDouble(val float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(val))
	w.buf.Write(tmp[:])
}

// WriteU29 writes a variable-width unsigned integer (1-4 bytes, 7 payload
// bits per byte with high-bit continuation, 8 bits in the 4th byte).
// val must not exceed 0x1FFFFFFF; higher bits are discarded.
func (w *Writer) WriteU29(val uint32) {
	val &= 0x1FFFFFFF
	switch {
	case val < 0x80:
		w.buf.WriteByte(byte(val))
	case val < 0x4000:
		w.buf.WriteByte(byte(val>>7) | 0x80)
		w.buf.WriteByte(byte(val & 0x7F))
	case val < 0x200000:
		w.buf.WriteByte(byte(val>>14) | 0x80)
		w.buf.WriteByte(byte(val>>7)&0x7F | 0x80)
		w.buf.WriteByte(byte(val & 0x7F))
	default:
		w.buf.WriteByte(byte(val>>22) | 0x80)
		w.buf.WriteByte(byte(val>>15)&0x7F | 0x80)
		w.buf.WriteByte(byte(val>>8)&0x7F | 0x80)
		w.buf.WriteByte(byte(val))
	}
}

// WriteShortString writes a 2-byte BE length-prefixed UTF-8 string
// (the envelope header framing for target and response route).
func (w *Writer) WriteShortString(s string) {
	w.WriteUint16(uint16(len(s)))
	w.buf.WriteString(s)
}

// WriteUTF8 writes a body string: U29 prefix of (byteLength<<1)|1, then raw
// UTF-8 bytes. Back-references are never emitted.
func (w *Writer) WriteUTF8(s string) {
	w.WriteU29(uint32(len(s))<<1 | 1)
	w.buf.WriteString(s)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	_, _ = w.buf.Write(data)
}

// Bytes returns the accumulated data.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the current length of the accumulated data.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
}
