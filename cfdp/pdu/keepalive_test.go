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

func TestKeepAlivePduRoundTrip(t *testing.T) {
	cfg := testCfg(t, true)
	k := NewKeepAlivePdu(cfg, 123456)
	assert.Equal(t, cfdp.TowardSender, k.Header().PduConf.Direction)

	packed := k.Pack()
	require.Len(t, packed, k.PacketLen())
	unpacked, err := UnpackKeepAlivePdu(packed)
	require.NoError(t, err)
	assert.Equal(t, k, unpacked)
}

// KeepAlivePdu with a 1 octet entity ID and 1 octet sequence number
// packs to header (4+1+1+1=7) + directive (1) + progress fss (4) = 12
// octets: PacketLen must count the directive code.
func TestKeepAlivePduPacketLenCountsDirectiveCode(t *testing.T) {
	cfg := cfdp.PduConfig{SourceEntityId: sp.U8(1), DestEntityId: sp.U8(2), TransactionSeqNum: sp.U8(3)}
	require.NoError(t, cfg.Valid())
	k := NewKeepAlivePdu(cfg, 1)

	assert.Equal(t, 12, k.PacketLen())
	assert.Len(t, k.Pack(), 12)
}

func TestUnpackKeepAlivePduWrongDirective(t *testing.T) {
	cfg := testCfg(t, false)
	p := NewPromptPdu(cfg, cfdp.PromptKeepAlive)
	_, err := UnpackKeepAlivePdu(p.Pack())
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidDirectiveCode)
}
