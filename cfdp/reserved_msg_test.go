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

func TestReservedCfdpMessageRoundTrip(t *testing.T) {
	msg := NewReservedCfdpMessage(uint8(ProxyPutRequest), []byte{0x01, 0x02})
	tlv := msg.ToMessageToUserTlv()

	assert.True(t, IsReservedCfdpMessage(tlv))
	back, ok := ReservedFromMessageToUser(tlv)
	require.True(t, ok)
	assert.Equal(t, msg, back)
}

func TestIsReservedCfdpMessageRejectsOrdinaryTlv(t *testing.T) {
	tlv := MessageToUserTlv{Value: []byte("not-cfdp-magic")}
	assert.False(t, IsReservedCfdpMessage(tlv))
	_, ok := ReservedFromMessageToUser(tlv)
	assert.False(t, ok)
}

func TestProxyPutRequestRoundTrip(t *testing.T) {
	destId, _ := NewLv([]byte{0x02})
	source, _ := LvFromString("/src/file")
	dest, _ := LvFromString("/dst/file")
	value := append(append(append([]byte{}, destId.Pack()...), source.Pack()...), dest.Pack()...)

	msg := NewReservedCfdpMessage(uint8(ProxyPutRequest), value)
	params, ok := msg.AsProxyPutRequest()
	require.True(t, ok)
	assert.Equal(t, []byte{0x02}, params.DestEntityId)
	assert.Equal(t, "/src/file", params.SourceFileName)
	assert.Equal(t, "/dst/file", params.DestFileName)
}

func TestProxyPutResponseRoundTrip(t *testing.T) {
	b := byte(FileChecksumFailure)<<4 | byte(DataIncomplete)<<2 | byte(FileStatusDiscarded)
	msg := NewReservedCfdpMessage(uint8(ProxyPutResponse), []byte{b})

	params, ok := msg.AsProxyPutResponse()
	require.True(t, ok)
	assert.Equal(t, FileChecksumFailure, params.ConditionCode)
	assert.Equal(t, DataIncomplete, params.DeliveryCode)
	assert.Equal(t, FileStatusDiscarded, params.FileStatus)
}

func TestAsProxyClosureRequested(t *testing.T) {
	msg := NewReservedCfdpMessage(uint8(ProxyClosureRequest), []byte{0x01})
	requested, ok := msg.AsProxyClosureRequested()
	require.True(t, ok)
	assert.True(t, requested)
}

func TestAsProxyTransmissionMode(t *testing.T) {
	msg := NewReservedCfdpMessage(uint8(ProxyTransmissionMode), []byte{byte(Unacknowledged)})
	mode, ok := msg.AsProxyTransmissionMode()
	require.True(t, ok)
	assert.Equal(t, Unacknowledged, mode)
}

func TestOriginatingTransactionIdRoundTrip(t *testing.T) {
	msg, err := NewOriginatingTransactionIdMessage(sp.U16(0x1234), sp.U32(0xCAFEBABE))
	require.NoError(t, err)
	assert.True(t, msg.IsOriginatingTransactionId())

	originId, ok := msg.AsOriginatingTransactionId()
	require.True(t, ok)
	assert.Equal(t, uint64(0x1234), originId.SourceEntityId.Value())
	assert.Equal(t, uint64(0xCAFEBABE), originId.TransactionSeqNum.Value())
}

func TestDirectoryListingRequestRoundTrip(t *testing.T) {
	pathLv, _ := LvFromString("/data")
	nameLv, _ := LvFromString("listing.txt")
	value := append(append([]byte{}, pathLv.Pack()...), nameLv.Pack()...)
	msg := NewReservedCfdpMessage(uint8(DirListingRequest), value)

	params, ok := msg.AsDirectoryListingRequest()
	require.True(t, ok)
	assert.Equal(t, "/data", params.DirPath)
	assert.Equal(t, "listing.txt", params.DirFileName)
}

func TestDirectoryListingResponseRoundTrip(t *testing.T) {
	pathLv, _ := LvFromString("/data")
	nameLv, _ := LvFromString("listing.txt")
	value := append([]byte{0x80}, pathLv.Pack()...)
	value = append(value, nameLv.Pack()...)
	msg := NewReservedCfdpMessage(uint8(DirListingResponse), value)

	success, params, ok := msg.AsDirectoryListingResponse()
	require.True(t, ok)
	assert.True(t, success)
	assert.Equal(t, "/data", params.DirPath)
}

func TestDirectoryListingOptionsRoundTrip(t *testing.T) {
	msg := NewReservedCfdpMessage(uint8(DirCustomListingParameters), []byte{0b11})
	opts, ok := msg.AsDirectoryListingOptions()
	require.True(t, ok)
	assert.True(t, opts.Recursive)
	assert.True(t, opts.All)
}
