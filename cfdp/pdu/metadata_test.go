// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"testing"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataPduRoundTrip(t *testing.T) {
	cfg := testCfg(t, false)
	opts := []cfdp.GenericTlv{{Type: cfdp.TlvFlowLabel, Value: []byte{0x01}}}
	m := NewMetadataPdu(cfg, true, cfdp.ChecksumCrc32C, 2048, "/src/a.dat", "/dst/a.dat", opts)
	assert.Equal(t, cfdp.TowardReceiver, m.Header().PduConf.Direction)

	packed := m.Pack()
	require.Len(t, packed, m.PacketLen())
	unpacked, err := UnpackMetadataPdu(packed)
	require.NoError(t, err)
	assert.Equal(t, m, unpacked)
}

func TestMetadataPduRoundTripEmptyFileNamesWithCrc(t *testing.T) {
	cfg := testCfg(t, true)
	m := NewMetadataPdu(cfg, false, cfdp.ChecksumNull, 0, "", "", nil)

	packed := m.Pack()
	require.Len(t, packed, m.PacketLen())
	unpacked, err := UnpackMetadataPdu(packed)
	require.NoError(t, err)
	assert.Equal(t, m, unpacked)
	assert.Empty(t, unpacked.SourceFileName)
}

func TestUnpackMetadataPduWrongDirective(t *testing.T) {
	cfg := testCfg(t, false)
	k := NewKeepAlivePdu(cfg, 1)
	_, err := UnpackMetadataPdu(k.Pack())
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidDirectiveCode)
}
