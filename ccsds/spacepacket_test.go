// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package ccsds

import (
	"testing"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketIdRawRoundTrip(t *testing.T) {
	pid, err := NewPacketId(TC, true, 0x123)
	require.NoError(t, err)
	back := PacketIdFromRaw(pid.Raw())
	assert.Equal(t, pid, back)
}

func TestNewPacketIdRejectsOutOfRangeApid(t *testing.T) {
	_, err := NewPacketId(TM, false, MaxApid+1)
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidFieldValue)
}

func TestPacketSeqCtrlRawRoundTrip(t *testing.T) {
	psc, err := NewPacketSeqCtrl(Unsegmented, 0x1FFF)
	require.NoError(t, err)
	back := PacketSeqCtrlFromRaw(psc.Raw())
	assert.Equal(t, psc, back)
}

func TestNewPacketSeqCtrlRejectsOutOfRangeSeqCount(t *testing.T) {
	_, err := NewPacketSeqCtrl(Continuation, MaxSeqCount+1)
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidFieldValue)
}

func TestSpHeaderPackRoundTrip(t *testing.T) {
	sph, err := New(TC, 0x42, 10, 7, true, First)
	require.NoError(t, err)

	packed := sph.Pack()
	unpacked, err := UnpackSpHeader(packed[:])
	require.NoError(t, err)
	assert.Equal(t, sph, unpacked)
}

func TestSpHeaderSetDataLenFromTotal(t *testing.T) {
	sph, err := New(TM, 1, 1, 0, false, Unsegmented)
	require.NoError(t, err)

	require.NoError(t, sph.SetDataLenFromTotal(13))
	assert.Equal(t, uint16(6), sph.DataLen)
	assert.Equal(t, 13, sph.PacketLen())
}

func TestSpHeaderSetDataLenFromTotalTooShort(t *testing.T) {
	sph, err := New(TM, 1, 1, 0, false, Unsegmented)
	require.NoError(t, err)
	err = sph.SetDataLenFromTotal(HeaderLen)
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidFieldValue)
}

func TestUnpackSpHeaderTooShort(t *testing.T) {
	_, err := UnpackSpHeader([]byte{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrBytesTooShort)
}

func TestTcTmConvenienceConstructors(t *testing.T) {
	tc, err := Tc(5, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, TC, tc.PacketId.Type)
	assert.Equal(t, Unsegmented, tc.Psc.SeqFlags)

	tm, err := Tm(5, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, TM, tm.PacketId.Type)
}
