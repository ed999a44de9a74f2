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

func TestGenericTlvRoundTrip(t *testing.T) {
	tlv := GenericTlv{Type: TlvFlowLabel, Value: []byte{1, 2, 3}}
	packed := tlv.Pack()
	require.Len(t, packed, tlv.Len())

	unpacked, err := UnpackGenericTlv(packed)
	require.NoError(t, err)
	assert.Equal(t, tlv, unpacked)
}

func TestUnpackGenericTlvRejectsUnknownType(t *testing.T) {
	_, err := UnpackGenericTlv([]byte{0x7F, 0x00})
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidTlvType)
}

func TestUnpackGenericTlvTruncated(t *testing.T) {
	_, err := UnpackGenericTlv([]byte{byte(TlvFlowLabel), 0x05, 0x01})
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrBytesTooShort)
}

func TestEntityIdTlvRoundTrip(t *testing.T) {
	tlv := EntityIdTlv{EntityId: []byte{0x01, 0x02}}
	unpacked, err := UnpackEntityIdTlv(tlv.Pack())
	require.NoError(t, err)
	assert.Equal(t, tlv, unpacked)
}

func TestUnpackEntityIdTlvWrongType(t *testing.T) {
	tlv := FlowLabelTlv{FlowLabel: []byte{0x01}}
	_, err := UnpackEntityIdTlv(tlv.Pack())
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidTlvType)
}

func TestFaultHandlerOverrideTlvRoundTrip(t *testing.T) {
	tlv := FaultHandlerOverrideTlv{ConditionCode: FileChecksumFailure, HandlerCode: FaultHandlerNoticeOfCancellation}
	unpacked, err := UnpackFaultHandlerOverrideTlv(tlv.Pack())
	require.NoError(t, err)
	assert.Equal(t, tlv, unpacked)
}

func TestFilestoreRequestTlvRoundTripSimpleAction(t *testing.T) {
	tlv := FilestoreRequestTlv{ActionCode: ActionDeleteFile, FirstFileName: "/tmp/a.dat"}
	unpacked, err := UnpackFilestoreRequestTlv(tlv.Pack())
	require.NoError(t, err)
	assert.Equal(t, tlv, unpacked)
}

func TestFilestoreRequestTlvRoundTripSecondNameAction(t *testing.T) {
	tlv := FilestoreRequestTlv{ActionCode: ActionRenameFile, FirstFileName: "/tmp/a.dat", SecondFileName: "/tmp/b.dat"}
	unpacked, err := UnpackFilestoreRequestTlv(tlv.Pack())
	require.NoError(t, err)
	assert.Equal(t, tlv, unpacked)
}

func TestFilestoreResponseTlvRoundTrip(t *testing.T) {
	tlv := FilestoreResponseTlv{
		ActionCode:    ActionCreateFile,
		StatusCode:    0,
		FirstFileName: "/tmp/a.dat",
		FilestoreMsg:  []byte("created"),
	}
	unpacked, err := UnpackFilestoreResponseTlv(tlv.Pack())
	require.NoError(t, err)
	assert.Equal(t, tlv, unpacked)
}

func TestMessageToUserTlvRoundTrip(t *testing.T) {
	tlv := MessageToUserTlv{Value: []byte("cfdp")}
	unpacked, err := UnpackMessageToUserTlv(tlv.Pack())
	require.NoError(t, err)
	assert.Equal(t, tlv, unpacked)
}
