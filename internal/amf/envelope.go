// Package amf implements the binary wire format of the game's RPC gateway:
// an AMF envelope (header, target action name, response route, length-prefixed
// body) carrying an AMF3-encoded dynamic object. The format was recovered
// from observed traffic; Decode is the left inverse of Encode for every
// representable Value.
package amf

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedEnvelope is wrapped by every decode error caused by truncated
// buffers, bad length prefixes or unresolvable reference markers. It is
// distinct from "well-formed but unknown shape", which decodes fine.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// Envelope framing constants, recovered from captures. The version, header
// count and message count have never been observed with other values.
const (
	envelopeVersion = 0x0003
	headerCount     = 0x0000
	messageCount    = 0x0001

	// responseRoute is the client-side route the gateway echoes responses to.
	responseRoute = "/1"

	// unknownLength is the wire encoding of an unspecified body length.
	unknownLength = 0xFFFFFFFF
)

// AMF3 type markers used by the body encoding.
const (
	markerAVMPlus = 0x11 // body encoding scheme selector (AMF0 -> AMF3 escape)

	markerNull   = 0x01
	markerFalse  = 0x02
	markerTrue   = 0x03
	markerInt    = 0x04
	markerDouble = 0x05
	markerString = 0x06
	markerArray  = 0x09
	markerObject = 0x0A

	// dynamicTraits is the U29O-traits word the encoder always emits:
	// inline object, inline traits, dynamic, zero sealed members.
	dynamicTraits = 0x0B

	// emptyString terminates dynamic property lists and the associative
	// part of arrays ((0<<1)|1).
	emptyString = 0x01
)

// Envelope is one complete decoded wire message. Immutable once decoded.
type Envelope struct {
	ActionName    string
	ResponseRoute string
	Payload       Value
	Raw           []byte
	// Trailing holds unrecognized bytes past the declared body. They are
	// preserved opaquely rather than rejected.
	Trailing  []byte
	Timestamp time.Time
}

// Encode serializes an action invocation into a complete wire envelope.
// params must be an object or null (the protocol body is always a dynamic
// object; null encodes as an empty one).
func Encode(actionName string, params Value) ([]byte, error) {
	if params.Kind() != KindObject && params.Kind() != KindNull {
		return nil, fmt.Errorf("encoding %q: params must be object or null, got %s", actionName, params.Kind())
	}

	body := GetWriter()
	defer body.Put()
	body.WriteByte(markerAVMPlus)
	encodeObject(body, params)

	w := GetWriter()
	defer w.Put()
	w.WriteUint16(envelopeVersion)
	w.WriteUint16(headerCount)
	w.WriteUint16(messageCount)
	w.WriteShortString(actionName)
	w.WriteShortString(responseRoute)
	w.WriteUint32(uint32(body.Len()))
	w.WriteBytes(body.Bytes())

	out := make([]byte, w.Len())
	copy(out, w.Bytes())
	return out, nil
}

// Decode parses a complete wire envelope. Unknown header values and extra
// trailing bytes are tolerated; structural damage (truncation, bad length
// prefixes, reference markers) yields an error wrapping ErrMalformedEnvelope.
func Decode(data []byte) (*Envelope, error) {
	r := NewReader(data)

	if _, err := r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	headers, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading header count: %w", err)
	}
	for i := 0; i < int(headers); i++ {
		if err := skipHeader(r); err != nil {
			return nil, fmt.Errorf("skipping header %d: %w", i, err)
		}
	}
	messages, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading message count: %w", err)
	}
	if messages == 0 {
		return nil, fmt.Errorf("envelope carries no messages: %w", ErrMalformedEnvelope)
	}

	target, err := r.ReadShortString()
	if err != nil {
		return nil, fmt.Errorf("reading target: %w", err)
	}
	route, err := r.ReadShortString()
	if err != nil {
		return nil, fmt.Errorf("reading response route: %w", err)
	}
	bodyLen, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading body length: %w", err)
	}

	bodyEnd := len(data)
	if bodyLen != unknownLength {
		bodyEnd = r.Position() + int(bodyLen)
		if bodyEnd > len(data) {
			return nil, fmt.Errorf("body length %d exceeds buffer (pos=%d, len=%d): %w",
				bodyLen, r.Position(), len(data), ErrMalformedEnvelope)
		}
	}

	br := NewReader(data[r.Position():bodyEnd])
	marker, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading body marker: %w", err)
	}
	if marker != markerAVMPlus {
		return nil, fmt.Errorf("unsupported body encoding scheme 0x%02X: %w", marker, ErrMalformedEnvelope)
	}
	payload, err := decodeValue(br)
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}

	env := &Envelope{
		ActionName:    target,
		ResponseRoute: route,
		Payload:       payload,
		Raw:           data,
		Timestamp:     time.Now(),
	}
	if bodyEnd < len(data) {
		env.Trailing = data[bodyEnd:]
	}
	return env, nil
}

// skipHeader consumes one AMF packet header (name, must-understand flag,
// length-prefixed value) without interpreting it.
func skipHeader(r *Reader) error {
	if _, err := r.ReadShortString(); err != nil {
		return err
	}
	if _, err := r.ReadByte(); err != nil {
		return err
	}
	length, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if length == unknownLength {
		return fmt.Errorf("header with unknown length: %w", ErrMalformedEnvelope)
	}
	return r.Skip(int(length))
}

func encodeValue(w *Writer, v Value) {
	switch v.Kind() {
	case KindNull:
		w.WriteByte(markerNull)
	case KindBool:
		if v.BoolValue() {
			w.WriteByte(markerTrue)
		} else {
			w.WriteByte(markerFalse)
		}
	case KindInt:
		n := v.i
		if n < IntMin || n > IntMax {
			// Out of 29-bit range: the wire falls back to double.
			w.WriteByte(markerDouble)
			w.WriteDouble(float64(n))
			return
		}
		w.WriteByte(markerInt)
		w.WriteU29(uint32(n) & 0x1FFFFFFF)
	case KindDouble:
		w.WriteByte(markerDouble)
		w.WriteDouble(v.d)
	case KindString:
		w.WriteByte(markerString)
		w.WriteUTF8(v.s)
	case KindArray:
		w.WriteByte(markerArray)
		w.WriteU29(uint32(len(v.arr))<<1 | 1)
		w.WriteByte(emptyString) // no associative part
		for _, el := range v.arr {
			encodeValue(w, el)
		}
	case KindObject:
		encodeObject(w, v)
	}
}

// encodeObject writes v as an inline dynamic object with no sealed members.
// Null encodes as an empty object (the gateway treats them the same).
// Keys are emitted in sorted order so encoding is deterministic.
func encodeObject(w *Writer, v Value) {
	w.WriteByte(markerObject)
	w.WriteU29(dynamicTraits)
	w.WriteByte(emptyString) // anonymous class
	for _, k := range v.Keys() {
		p, _ := v.Get(k)
		w.WriteUTF8(k)
		encodeValue(w, p)
	}
	w.WriteByte(emptyString)
}

func decodeValue(r *Reader) (Value, error) {
	marker, err := r.ReadByte()
	if err != nil {
		return Value{}, err
	}
	switch marker {
	case markerNull, 0x00: // undefined decodes as null
		return Null(), nil
	case markerFalse:
		return Bool(false), nil
	case markerTrue:
		return Bool(true), nil
	case markerInt:
		raw, err := r.ReadU29()
		if err != nil {
			return Value{}, err
		}
		n := int32(raw)
		if raw >= 1<<28 {
			n = int32(raw) - (1 << 29) // sign extend 29-bit two's complement
		}
		return Int(n), nil
	case markerDouble:
		f, err := r.ReadDouble()
		if err != nil {
			return Value{}, err
		}
		return Double(f), nil
	case markerString:
		s, err := r.ReadUTF8()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case markerArray:
		return decodeArray(r)
	case markerObject:
		return decodeObject(r)
	default:
		return Value{}, fmt.Errorf("unknown type marker 0x%02X at pos=%d: %w", marker, r.Position(), ErrMalformedEnvelope)
	}
}

func decodeArray(r *Reader) (Value, error) {
	prefix, err := r.ReadU29()
	if err != nil {
		return Value{}, err
	}
	if prefix&1 == 0 {
		return Value{}, fmt.Errorf("array reference %d not supported: %w", prefix>>1, ErrMalformedEnvelope)
	}
	count := int(prefix >> 1)

	// Associative part: (key, value) pairs until the empty key. The engine
	// has no use for mixed arrays, so named entries are decoded and dropped.
	for {
		key, err := r.ReadUTF8()
		if err != nil {
			return Value{}, err
		}
		if key == "" {
			break
		}
		if _, err := decodeValue(r); err != nil {
			return Value{}, err
		}
	}

	elems := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		el, err := decodeValue(r)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, el)
	}
	return Array(elems...), nil
}

func decodeObject(r *Reader) (Value, error) {
	traits, err := r.ReadU29()
	if err != nil {
		return Value{}, err
	}
	if traits&1 == 0 {
		return Value{}, fmt.Errorf("object reference %d not supported: %w", traits>>1, ErrMalformedEnvelope)
	}
	if traits&2 == 0 {
		return Value{}, fmt.Errorf("traits reference not supported: %w", ErrMalformedEnvelope)
	}
	if traits&4 != 0 {
		return Value{}, fmt.Errorf("externalizable object not supported: %w", ErrMalformedEnvelope)
	}
	dynamic := traits&8 != 0
	sealedCount := int(traits >> 4)

	// Class name is carried but unused; the protocol only sends anonymous
	// dynamic objects, sealed members appear in a few login responses.
	if _, err := r.ReadUTF8(); err != nil {
		return Value{}, err
	}

	sealedNames := make([]string, 0, sealedCount)
	for i := 0; i < sealedCount; i++ {
		name, err := r.ReadUTF8()
		if err != nil {
			return Value{}, err
		}
		sealedNames = append(sealedNames, name)
	}

	props := make(map[string]Value)
	for _, name := range sealedNames {
		p, err := decodeValue(r)
		if err != nil {
			return Value{}, err
		}
		props[name] = p
	}

	if dynamic {
		for {
			key, err := r.ReadUTF8()
			if err != nil {
				return Value{}, err
			}
			if key == "" {
				break
			}
			p, err := decodeValue(r)
			if err != nil {
				return Value{}, err
			}
			props[key] = p
		}
	}
	return Object(props), nil
}

// Validate reports whether data parses as a complete envelope. Used by the
// exploration engine's structural response check.
func Validate(data []byte) bool {
	_, err := Decode(data)
	return err == nil
}

// IsEncodable reports whether v survives a round trip: NaN and infinite
// doubles have no wire representation.
func IsEncodable(v Value) bool {
	switch v.Kind() {
	case KindDouble:
		f, _ := v.FloatValue()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case KindArray:
		for _, el := range v.Elems() {
			if !IsEncodable(el) {
				return false
			}
		}
	case KindObject:
		for _, k := range v.Keys() {
			p, _ := v.Get(k)
			if !IsEncodable(p) {
				return false
			}
		}
	}
	return true
}
