package amf

import (
	"errors"
	"testing"
)

func TestReadU29(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected uint32
	}{
		{
			name:     "single byte zero",
			input:    []byte{0x00},
			expected: 0,
		},
		{
			name:     "single byte max",
			input:    []byte{0x7F},
			expected: 0x7F,
		},
		{
			name:     "two bytes min",
			input:    []byte{0x81, 0x00},
			expected: 0x80,
		},
		{
			name:     "two bytes max",
			input:    []byte{0xFF, 0x7F},
			expected: 0x3FFF,
		},
		{
			name:     "three bytes min",
			input:    []byte{0x81, 0x80, 0x00},
			expected: 0x4000,
		},
		{
			name:     "three bytes max",
			input:    []byte{0xFF, 0xFF, 0x7F},
			expected: 0x1FFFFF,
		},
		{
			name:     "four bytes min",
			input:    []byte{0x80, 0xC0, 0x80, 0x00},
			expected: 0x200000,
		},
		{
			name:     "four bytes max",
			input:    []byte{0xFF, 0xFF, 0xFF, 0xFF},
			expected: 0x1FFFFFFF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.input)
			val, err := r.ReadU29()
			if err != nil {
				t.Fatalf("ReadU29 failed: %v", err)
			}
			if val != tt.expected {
				t.Errorf("expected 0x%X, got 0x%X", tt.expected, val)
			}
			if r.Remaining() != 0 {
				t.Errorf("expected 0 remaining bytes, got %d", r.Remaining())
			}
		})
	}
}

func TestReadU29_Truncated(t *testing.T) {
	r := NewReader([]byte{0x81}) // continuation bit set, nothing follows
	if _, err := r.ReadU29(); !errors.Is(err, ErrMalformedEnvelope) {
		t.Fatalf("expected ErrMalformedEnvelope, got %v", err)
	}
}

func TestWriteU29_RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, 0xABCDEF, 0x1FFFFFFF}
	for _, val := range values {
		w := NewWriter(8)
		w.WriteU29(val)

		r := NewReader(w.Bytes())
		got, err := r.ReadU29()
		if err != nil {
			t.Fatalf("ReadU29(0x%X) failed: %v", val, err)
		}
		if got != val {
			t.Errorf("round trip 0x%X: got 0x%X (bytes % X)", val, got, w.Bytes())
		}
	}
}

func TestReadUTF8(t *testing.T) {
	w := NewWriter(32)
	w.WriteUTF8("castle.getCastleInfo")

	r := NewReader(w.Bytes())
	s, err := r.ReadUTF8()
	if err != nil {
		t.Fatalf("ReadUTF8 failed: %v", err)
	}
	if s != "castle.getCastleInfo" {
		t.Errorf("expected %q, got %q", "castle.getCastleInfo", s)
	}
}

func TestReadUTF8_Reference(t *testing.T) {
	// Low bit cleared marks a back-reference, which the codec never emits.
	r := NewReader([]byte{0x04})
	if _, err := r.ReadUTF8(); !errors.Is(err, ErrMalformedEnvelope) {
		t.Fatalf("expected ErrMalformedEnvelope, got %v", err)
	}
}

func TestReadShortString(t *testing.T) {
	w := NewWriter(16)
	w.WriteShortString("/1")

	r := NewReader(w.Bytes())
	s, err := r.ReadShortString()
	if err != nil {
		t.Fatalf("ReadShortString failed: %v", err)
	}
	if s != "/1" {
		t.Errorf("expected %q, got %q", "/1", s)
	}
}

func TestReadDouble_BigEndian(t *testing.T) {
	w := NewWriter(8)
	w.WriteDouble(1.5)

	// 1.5 = 0x3FF8000000000000 in IEEE-754, network byte order.
	expected := []byte{0x3F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	got := w.Bytes()
	if len(got) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("byte %d: expected 0x%02X, got 0x%02X", i, expected[i], got[i])
		}
	}

	r := NewReader(got)
	f, err := r.ReadDouble()
	if err != nil {
		t.Fatalf("ReadDouble failed: %v", err)
	}
	if f != 1.5 {
		t.Errorf("expected 1.5, got %v", f)
	}
}
