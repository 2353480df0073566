package amf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader provides methods for reading envelope data.
// Uses Big-Endian byte order for all multi-byte values.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new envelope reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{
		data: data,
		pos:  0,
	}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformedEnvelope)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads a uint16 (2 bytes, BE).
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadUint16: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformedEnvelope)
	}
	val := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return val, nil
}

// ReadUint32 reads a uint32 (4 bytes, BE).
func (r *Reader) ReadUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadUint32: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformedEnvelope)
	}
	val := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return val, nil
}

// ReadDouble reads a float64 (8 bytes, BE, IEEE-754).
func (r *Reader) ReadDouble() (float64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("ReadDouble: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformedEnvelope)
	}
	bits := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

// ReadU29 reads a variable-width unsigned integer: 1-4 bytes, 7 payload bits
// per byte with high-bit continuation, the 4th byte carrying all 8 bits.
// Maximum value is 0x1FFFFFFF.
func (r *Reader) ReadU29() (uint32, error) {
	var val uint32
	for i := 0; i < 4; i++ {
		if r.pos >= len(r.data) {
			return 0, fmt.Errorf("ReadU29: not enough data (pos=%d, len=%d): %w", r.pos, len(r.data), ErrMalformedEnvelope)
		}
		b := r.data[r.pos]
		r.pos++

		if i == 3 {
			// Final byte carries 8 bits, no continuation flag.
			return val<<8 | uint32(b), nil
		}
		val = val<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return val, nil
		}
	}
	return val, nil
}

// ReadShortString reads a 2-byte BE length-prefixed UTF-8 string
// (the envelope header framing for target and response route).
func (r *Reader) ReadShortString() (string, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadUTF8 reads a body string: a U29 prefix of (byteLength<<1)|1 followed by
// raw UTF-8 bytes. A cleared low bit marks a back-reference, which this codec
// does not emit and cannot resolve.
func (r *Reader) ReadUTF8() (string, error) {
	prefix, err := r.ReadU29()
	if err != nil {
		return "", err
	}
	if prefix&1 == 0 {
		return "", fmt.Errorf("ReadUTF8: string reference %d at pos=%d: %w", prefix>>1, r.pos, ErrMalformedEnvelope)
	}
	data, err := r.ReadBytes(int(prefix >> 1))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBytes reads n bytes (zero-copy subslice of the underlying data).
// Callers must not modify the returned slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d: %w", n, ErrMalformedEnvelope)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: not enough data (pos=%d, need=%d, len=%d): %w", r.pos, n, len(r.data), ErrMalformedEnvelope)
	}
	data := r.data[r.pos : r.pos+n]
	r.pos += n
	return data, nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return fmt.Errorf("Skip: invalid count %d (pos=%d, len=%d): %w", n, r.pos, len(r.data), ErrMalformedEnvelope)
	}
	r.pos += n
	return nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}
