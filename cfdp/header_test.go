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

func testPduConf(t *testing.T, crc bool) PduConfig {
	cfg := PduConfig{
		SourceEntityId:    sp.U16(1),
		DestEntityId:      sp.U16(2),
		TransactionSeqNum: sp.U32(100),
		TransmissionMode:  Acknowledged,
		CrcFlag:           crc,
		Direction:         TowardReceiver,
	}
	require.NoError(t, cfg.Valid())
	return cfg
}

func TestPduHeaderRoundTrip(t *testing.T) {
	cfg := testPduConf(t, false)
	hdr := NewPduHeader(FileData, SegmentMetadataNotPresent, cfg, 10)

	packed := hdr.Pack()
	require.Len(t, packed, hdr.HeaderLen())

	unpacked, err := UnpackPduHeader(packed)
	require.NoError(t, err)
	assert.Equal(t, hdr, unpacked)
}

func TestPduHeaderLenVariesWithEntityIdWidth(t *testing.T) {
	cfg := PduConfig{SourceEntityId: sp.U64(1), DestEntityId: sp.U64(2), TransactionSeqNum: sp.U8(1)}
	hdr := NewPduHeader(FileDirective, SegmentMetadataNotPresent, cfg, 0)
	assert.Equal(t, 4+2*8+1, hdr.HeaderLen())
}

func TestUnpackPduHeaderWrongVersion(t *testing.T) {
	cfg := testPduConf(t, false)
	hdr := NewPduHeader(FileDirective, SegmentMetadataNotPresent, cfg, 0)
	packed := hdr.Pack()
	packed[0] = packed[0]&0x1F | (0b010 << 5)

	_, err := UnpackPduHeader(packed)
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrUnsupportedVersion)
}

func TestUnpackPduHeaderTooShort(t *testing.T) {
	_, err := UnpackPduHeader([]byte{0x20, 0, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrBytesTooShort)
}

func TestVerifyLengthAndChecksum(t *testing.T) {
	cfg := testPduConf(t, true)
	hdr := NewPduHeader(FileData, SegmentMetadataNotPresent, cfg, 0)
	body := hdr.Pack()
	crc := sp.Crc16Ccitt(body)
	full := append(body, byte(crc>>8), byte(crc))

	hdrWithLen := hdr
	hdrWithLen.PduDataFieldLen = 2
	require.NoError(t, hdrWithLen.VerifyLengthAndChecksum(full))
}

func TestVerifyLengthAndChecksumDetectsCorruption(t *testing.T) {
	cfg := testPduConf(t, true)
	hdr := NewPduHeader(FileData, SegmentMetadataNotPresent, cfg, 2)
	body := hdr.Pack()
	crc := sp.Crc16Ccitt(body)
	full := append(body, byte(crc>>8), byte(crc)^0xFF)

	err := hdr.VerifyLengthAndChecksum(full)
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidCrc16)
}
