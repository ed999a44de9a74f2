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

func TestPduConfigValid(t *testing.T) {
	cfg := PduConfig{SourceEntityId: sp.U16(1), DestEntityId: sp.U16(2), TransactionSeqNum: sp.U8(1)}
	require.NoError(t, cfg.Valid())
}

func TestPduConfigValidRejectsMismatchedEntityIdWidths(t *testing.T) {
	cfg := PduConfig{SourceEntityId: sp.U8(1), DestEntityId: sp.U16(2), TransactionSeqNum: sp.U8(1)}
	err := cfg.Valid()
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidFieldValue)
}

func TestPduConfigValidRejectsNil(t *testing.T) {
	var cfg *PduConfig
	err := cfg.Valid()
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidFieldValue)
}

func TestFssWidthToggledByLargeFile(t *testing.T) {
	small := PduConfig{LargeFile: false}
	large := PduConfig{LargeFile: true}
	assert.Equal(t, 4, FssLen(small))
	assert.Equal(t, 8, FssLen(large))

	packed := PackFss(large, 0x0102030405060708)
	require.Len(t, packed, 8)

	val, err := UnpackFss(packed, large)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), val)
}

func TestEmptyPduConfig(t *testing.T) {
	cfg := Empty()
	require.NoError(t, cfg.Valid())
	assert.Equal(t, uint64(0), cfg.SourceEntityId.Value())
}
