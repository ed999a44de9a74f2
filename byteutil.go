// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package spacepackets

import "fmt"

// ByteFieldLen enumerates the legal widths of an UnsignedByteField. CFDP
// entity IDs, transaction sequence numbers and PUS request-id companions
// are all constrained to one of these four widths; modeling the width as
// its own enum keeps constructors from admitting an arbitrary int.
type ByteFieldLen int

// Legal UnsignedByteField widths, in octets.
const (
	Len1 ByteFieldLen = 1
	Len2 ByteFieldLen = 2
	Len4 ByteFieldLen = 4
	Len8 ByteFieldLen = 8
)

// UnsignedByteField is an unsigned integer value field whose wire width is
// not fixed by the Go type system but chosen per instance, matching the
// variable-width entity-id/transaction-sequence-number fields of the CFDP
// common header.
type UnsignedByteField struct {
	val uint64
	len ByteFieldLen
}

// NewUnsignedByteField builds an UnsignedByteField of the given width,
// rejecting values that don't fit in len octets.
func NewUnsignedByteField(width ByteFieldLen, val uint64) (UnsignedByteField, error) {
	switch width {
	case Len1, Len2, Len4, Len8:
	default:
		return UnsignedByteField{}, fmt.Errorf("%w: unsupported byte field length %d", ErrInvalidFieldValue, width)
	}
	if width < Len8 && val >= uint64(1)<<(8*uint(width)) {
		return UnsignedByteField{}, fmt.Errorf("%w: value %d does not fit in %d octets", ErrInvalidFieldValue, val, width)
	}
	return UnsignedByteField{val: val, len: width}, nil
}

// U8 builds a one octet wide UnsignedByteField.
func U8(val uint8) UnsignedByteField {
	return UnsignedByteField{val: uint64(val), len: Len1}
}

// U16 builds a two octet wide UnsignedByteField.
func U16(val uint16) UnsignedByteField {
	return UnsignedByteField{val: uint64(val), len: Len2}
}

// U32 builds a four octet wide UnsignedByteField.
func U32(val uint32) UnsignedByteField {
	return UnsignedByteField{val: uint64(val), len: Len4}
}

// U64 builds an eight octet wide UnsignedByteField.
func U64(val uint64) UnsignedByteField {
	return UnsignedByteField{val: val, len: Len8}
}

// Len returns the field width in octets.
func (sf UnsignedByteField) Len() int {
	return int(sf.len)
}

// Value returns the field's numerical value.
func (sf UnsignedByteField) Value() uint64 {
	return sf.val
}

// Pack serializes the field big-endian in Len() octets.
func (sf UnsignedByteField) Pack() []byte {
	out := make([]byte, sf.len)
	for i := int(sf.len) - 1; i >= 0; i-- {
		out[i] = byte(sf.val)
		sf.val >>= 8
	}
	return out
}

// Equal reports whether both the width and the value match.
func (sf UnsignedByteField) Equal(other UnsignedByteField) bool {
	return sf.len == other.len && sf.val == other.val
}

// UnpackUnsignedByteField parses an UnsignedByteField of the given width
// from the start of data.
func UnpackUnsignedByteField(data []byte, width ByteFieldLen) (UnsignedByteField, error) {
	switch width {
	case Len1, Len2, Len4, Len8:
	default:
		return UnsignedByteField{}, fmt.Errorf("%w: unsupported byte field length %d", ErrInvalidFieldValue, width)
	}
	if len(data) < int(width) {
		return UnsignedByteField{}, fmt.Errorf("%w: need %d bytes, got %d", ErrBytesTooShort, width, len(data))
	}
	var val uint64
	for i := 0; i < int(width); i++ {
		val = val<<8 | uint64(data[i])
	}
	return UnsignedByteField{val: val, len: width}, nil
}
