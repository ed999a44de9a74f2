// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package ccsds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPacket(t *testing.T, apid uint16, appDataLen int) []byte {
	sph, err := New(TM, apid, 1, 0, true, Unsegmented)
	require.NoError(t, err)
	require.NoError(t, sph.SetDataLenFromTotal(HeaderLen+appDataLen))
	hdr := sph.Pack()
	out := append([]byte{}, hdr[:]...)
	out = append(out, make([]byte, appDataLen)...)
	return out
}

func TestParseSpacePacketsSinglePacket(t *testing.T) {
	pkt := buildPacket(t, 0x10, 4)
	id, err := NewPacketId(TM, true, 0x10)
	require.NoError(t, err)
	queue := [][]byte{pkt}

	packets, skipped := ParseSpacePackets(&queue, []PacketId{id}, nil)
	require.Len(t, packets, 1)
	assert.Equal(t, pkt, packets[0])
	assert.Equal(t, 0, skipped)
	assert.Empty(t, queue)
}

func TestParseSpacePacketsSkipsNoise(t *testing.T) {
	pkt := buildPacket(t, 0x20, 2)
	id, err := NewPacketId(TM, true, 0x20)
	require.NoError(t, err)
	noisy := append([]byte{0xFF, 0xFF, 0xFF}, pkt...)
	queue := [][]byte{noisy}

	packets, skipped := ParseSpacePackets(&queue, []PacketId{id}, nil)
	require.Len(t, packets, 1)
	assert.Equal(t, pkt, packets[0])
	assert.Equal(t, 3, skipped)
}

func TestParseSpacePacketsRequeuesPartialTail(t *testing.T) {
	pkt := buildPacket(t, 0x30, 6)
	id, err := NewPacketId(TM, true, 0x30)
	require.NoError(t, err)
	partial := pkt[:len(pkt)-2]
	queue := [][]byte{partial}

	packets, _ := ParseSpacePackets(&queue, []PacketId{id}, nil)
	assert.Empty(t, packets)
	require.Len(t, queue, 1)
	assert.Equal(t, partial, queue[0])
}

func TestParseSpacePacketsMultipleConcatenated(t *testing.T) {
	id, err := NewPacketId(TM, true, 0x40)
	require.NoError(t, err)
	p1 := buildPacket(t, 0x40, 2)
	p2 := buildPacket(t, 0x40, 3)
	queue := [][]byte{p1, p2}

	packets, skipped := ParseSpacePackets(&queue, []PacketId{id}, nil)
	require.Len(t, packets, 2)
	assert.Equal(t, p1, packets[0])
	assert.Equal(t, p2, packets[1])
	assert.Equal(t, 0, skipped)
}
