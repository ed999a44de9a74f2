// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cfdp

import (
	"testing"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLvRoundTrip(t *testing.T) {
	lv, err := LvFromString("/tmp/file.dat")
	require.NoError(t, err)

	packed := lv.Pack()
	require.Len(t, packed, lv.Len())
	assert.Equal(t, byte(len("/tmp/file.dat")), packed[0])

	unpacked, err := UnpackLv(packed)
	require.NoError(t, err)
	assert.Equal(t, lv.Value(), unpacked.Value())
}

func TestNewLvRejectsOversizedValue(t *testing.T) {
	_, err := NewLv(make([]byte, 256))
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidFieldValue)
}

func TestUnpackLvEmptyValue(t *testing.T) {
	lv, err := UnpackLv([]byte{0x00, 0xAA})
	require.NoError(t, err)
	assert.Empty(t, lv.Value())
	assert.Equal(t, 1, lv.Len())
}

func TestUnpackLvTruncated(t *testing.T) {
	_, err := UnpackLv([]byte{0x05, 0x01, 0x02})
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrBytesTooShort)
}

func TestUnpackLvNoData(t *testing.T) {
	_, err := UnpackLv(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrBytesTooShort)
}
