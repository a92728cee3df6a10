// Copyright 2026 SEQSENSE, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webmrepair

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

const maxVintLength = 8

// vintMax returns the reserved all-ones payload of a length byte vint.
func vintMax(length int) uint64 {
	return 1<<(7*uint(length)) - 1
}

// ReadVint reads an EBML variable length integer starting at offset.
// In ID mode (asSize == false) the length marker bit is kept as part of the
// value. In size mode it is stripped, and an all-ones payload is reported as
// unknown size.
func ReadVint(buf []byte, offset int, asSize bool) (value uint64, length int, unknown bool, err error) {
	if offset < 0 || offset >= len(buf) {
		return 0, 0, false, fmt.Errorf("%w: offset %d out of range", ErrMalformedVint, offset)
	}
	first := buf[offset]
	if first == 0 {
		return 0, 0, false, fmt.Errorf("%w: no length marker at offset %d", ErrMalformedVint, offset)
	}
	length = bits.LeadingZeros8(first) + 1
	if offset+length > len(buf) {
		return 0, 0, false, fmt.Errorf(
			"%w: %d byte vint at offset %d runs past end of buffer", ErrMalformedVint, length, offset,
		)
	}
	if asSize {
		value = uint64(first & (0xFF >> uint(length)))
	} else {
		value = uint64(first)
	}
	for _, b := range buf[offset+1 : offset+length] {
		value = value<<8 | uint64(b)
	}
	if asSize && value == vintMax(length) {
		unknown = true
	}
	return value, length, unknown, nil
}

// EncodeVint encodes value as a size vint of at least minLength bytes.
// The all-ones payload is reserved for unknown sizes, so a value equal to the
// capacity of a length is moved to the next length.
func EncodeVint(value uint64, minLength int) ([]byte, error) {
	if minLength < 1 {
		minLength = 1
	}
	for length := minLength; length <= maxVintLength; length++ {
		if value >= vintMax(length) {
			continue
		}
		b := make([]byte, length)
		v := value
		for i := length - 1; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
		b[0] |= 0x80 >> uint(length-1)
		return b, nil
	}
	return nil, fmt.Errorf("%w: %d doesn't fit in a %d+ byte vint", ErrValueTooLarge, value, minLength)
}

// EncodeUnknownSize returns the reserved unknown size marker of the given length.
func EncodeUnknownSize(length int) ([]byte, error) {
	if length < 1 || length > maxVintLength {
		return nil, fmt.Errorf("%w: vint length %d", ErrValueTooLarge, length)
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = 0xFF
	}
	b[0] = 0xFF >> uint(length-1)
	return b, nil
}

// ReadUint decodes a big-endian unsigned integer payload.
func ReadUint(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: %d byte unsigned integer", ErrValueTooLarge, len(b))
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// EncodeUint encodes v in the minimal number of big-endian bytes.
func EncodeUint(v uint64) []byte {
	n := (bits.Len64(v) + 7) / 8
	if n == 0 {
		n = 1
	}
	return encodeUintWidth(v, n)
}

// encodeUintWidth encodes v in width bytes, or more if v doesn't fit.
func encodeUintWidth(v uint64, width int) []byte {
	if n := (bits.Len64(v) + 7) / 8; n > width {
		width = n
	}
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// ReadFloat decodes a 4 or 8 byte big-endian IEEE 754 payload.
func ReadFloat(b []byte) (float64, error) {
	switch len(b) {
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	default:
		return 0, fmt.Errorf("%w: %d bytes", ErrUnsupportedFloatWidth, len(b))
	}
}

// EncodeFloat64 encodes v as an 8 byte big-endian double.
func EncodeFloat64(v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b
}

// ElementIDBytes returns the canonical byte form of an element ID.
// IDs keep their length marker, so the significant bytes are the encoding.
func ElementIDBytes(id uint32) []byte {
	n := (bits.Len32(id) + 7) / 8
	if n == 0 {
		n = 1
	}
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(id)
		id >>= 8
	}
	return b
}

// EncodeElement wraps payload with an element header.
func EncodeElement(id uint32, payload []byte) ([]byte, error) {
	size, err := EncodeVint(uint64(len(payload)), 1)
	if err != nil {
		return nil, err
	}
	idb := ElementIDBytes(id)
	out := make([]byte, 0, len(idb)+len(size)+len(payload))
	out = append(out, idb...)
	out = append(out, size...)
	return append(out, payload...), nil
}

func encodeUintElement(id uint32, v uint64) ([]byte, error) {
	return EncodeElement(id, EncodeUint(v))
}

func encodeFloatElement(id uint32, v float64) ([]byte, error) {
	return EncodeElement(id, EncodeFloat64(v))
}

func encodeStringElement(id uint32, s string) ([]byte, error) {
	return EncodeElement(id, []byte(s))
}

// encodeMaster wraps already encoded children into a master element.
func encodeMaster(id uint32, children ...[]byte) ([]byte, error) {
	var n int
	for _, c := range children {
		n += len(c)
	}
	payload := make([]byte, 0, n)
	for _, c := range children {
		payload = append(payload, c...)
	}
	return EncodeElement(id, payload)
}
