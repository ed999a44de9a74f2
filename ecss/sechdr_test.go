// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package ecss

import (
	"testing"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPusTcSecHeaderCRoundTrip(t *testing.T) {
	hdr := PusTcSecHeaderC{AckFlags: 0b1111, Service: 17, Subservice: 1, SourceId: 0x4242}
	packed := hdr.Pack()
	require.Len(t, packed, PusTcSecHeaderCLen)
	assert.Equal(t, byte(PusC)<<4|0b1111, packed[0])

	unpacked, err := UnpackPusTcSecHeaderC(packed)
	require.NoError(t, err)
	assert.Equal(t, hdr, unpacked)
}

func TestPusTcSecHeaderCTooShort(t *testing.T) {
	_, err := UnpackPusTcSecHeaderC([]byte{0x20, 0x11})
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrBytesTooShort)
}

func TestPusTcSecHeaderCWrongVersion(t *testing.T) {
	data := PusTcSecHeaderA{AckFlags: 0, Service: 1, Subservice: 1}.Pack()
	data = append(data, 0, 0)
	_, err := UnpackPusTcSecHeaderC(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrUnsupportedVersion)
}

func TestPusTmSecHeaderCRoundTrip(t *testing.T) {
	hdr := PusTmSecHeaderC{
		SpacecraftTimeRef: 0,
		Service:           17,
		Subservice:        2,
		MsgCounter:        7,
		DestId:            0,
		Timestamp:         []byte{0x40, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
	}
	packed := hdr.Pack()
	require.Len(t, packed, PusTmSecHeaderCMinLen+len(hdr.Timestamp))

	unpacked, err := UnpackPusTmSecHeaderC(packed, len(hdr.Timestamp))
	require.NoError(t, err)
	assert.Equal(t, hdr, unpacked)
}

func TestPusTcSecHeaderARoundTrip(t *testing.T) {
	sourceId := uint16(0x1234)
	hdr := PusTcSecHeaderA{AckFlags: 0b0101, Service: 5, Subservice: 1, SourceId: &sourceId, SpareBytes: 2}
	packed := hdr.Pack()
	require.Len(t, packed, hdr.HeaderLen())

	unpacked, err := UnpackPusTcSecHeaderA(packed, true, 2)
	require.NoError(t, err)
	require.NotNil(t, unpacked.SourceId)
	assert.Equal(t, sourceId, *unpacked.SourceId)
	assert.Equal(t, hdr.AckFlags, unpacked.AckFlags)
	assert.Equal(t, hdr.Service, unpacked.Service)
	assert.Equal(t, hdr.Subservice, unpacked.Subservice)
}

func TestPusTcSecHeaderAWithoutSourceId(t *testing.T) {
	hdr := PusTcSecHeaderA{AckFlags: 0, Service: 5, Subservice: 1}
	packed := hdr.Pack()
	require.Len(t, packed, 3)

	unpacked, err := UnpackPusTcSecHeaderA(packed, false, 0)
	require.NoError(t, err)
	assert.Nil(t, unpacked.SourceId)
}

func TestPusTmSecHeaderARoundTrip(t *testing.T) {
	msgCounter := uint8(9)
	destId := sp.U16(0xABCD)
	hdr := PusTmSecHeaderA{
		Service:    17,
		Subservice: 2,
		MsgCounter: &msgCounter,
		DestId:     &destId,
		Timestamp:  []byte{1, 2, 3},
	}
	packed := hdr.Pack()
	require.Len(t, packed, hdr.HeaderLen())

	unpacked, err := UnpackPusTmSecHeaderA(packed, true, sp.Len2, 0, 3)
	require.NoError(t, err)
	require.NotNil(t, unpacked.MsgCounter)
	assert.Equal(t, msgCounter, *unpacked.MsgCounter)
	require.NotNil(t, unpacked.DestId)
	assert.True(t, destId.Equal(*unpacked.DestId))
	assert.Equal(t, hdr.Timestamp, unpacked.Timestamp)
}
