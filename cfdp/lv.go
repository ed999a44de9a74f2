// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cfdp

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
)

// Lv is a CFDP Length-Value field: a 1 octet length followed by that many
// value octets. See 727.0-B-5, 5.1.8.
type Lv struct {
	value []byte
}

// NewLv builds an Lv, rejecting a value longer than 255 octets.
func NewLv(value []byte) (Lv, error) {
	if len(value) > 255 {
		return Lv{}, fmt.Errorf("%w: lv value length %d exceeds maximum 255", sp.ErrInvalidFieldValue, len(value))
	}
	return Lv{value: value}, nil
}

// LvFromString builds an Lv from an ASCII/UTF-8 string.
func LvFromString(s string) (Lv, error) {
	return NewLv([]byte(s))
}

// Value returns the value octets.
func (sf Lv) Value() []byte {
	return sf.value
}

// Len returns the number of octets the packed Lv occupies (1 + len(value)).
func (sf Lv) Len() int {
	return 1 + len(sf.value)
}

// Pack serializes the Lv as [len, value...].
func (sf Lv) Pack() []byte {
	out := make([]byte, 0, sf.Len())
	out = append(out, byte(len(sf.value)))
	out = append(out, sf.value...)
	return out
}

// UnpackLv parses an Lv at the start of data.
func UnpackLv(data []byte) (Lv, error) {
	if len(data) < 1 {
		return Lv{}, fmt.Errorf("%w: need at least 1 byte for lv length, got 0", sp.ErrBytesTooShort)
	}
	n := int(data[0])
	if 1+n > len(data) {
		return Lv{}, fmt.Errorf("%w: lv declares %d value bytes, only %d available", sp.ErrBytesTooShort, n, len(data)-1)
	}
	if n == 0 {
		return Lv{value: nil}, nil
	}
	value := make([]byte, n)
	copy(value, data[1:1+n])
	return Lv{value: value}, nil
}
