// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package ecss

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/ccsds"
)

// RequestId uniquely identifies a telecommand for Service 1 verification
// tracking: the primary header's packet ID and packet sequence control,
// plus the 3 bit CCSDS version field that sits above them in the first
// two octets. It is a plain comparable struct so it can be used directly
// as a map key, per §5.
type RequestId struct {
	PacketId     ccsds.PacketId
	Psc          ccsds.PacketSeqCtrl
	CcsdsVersion uint8
}

// RequestIdLen is the packed length of a RequestId in octets.
const RequestIdLen = 4

// RequestIdFromTc derives the RequestId of a telecommand from its
// primary header.
func RequestIdFromTc(header ccsds.SpHeader) RequestId {
	return RequestId{PacketId: header.PacketId, Psc: header.Psc, CcsdsVersion: header.Version}
}

// Pack serializes the RequestId into its 32 bit wire form: the CCSDS
// version and packet ID packed into the first 16 bits, the packet
// sequence control in the last 16.
func (sf RequestId) Pack() uint32 {
	packetIdWithVersion := uint16(sf.CcsdsVersion)<<13 | sf.PacketId.Raw()
	return uint32(packetIdWithVersion)<<16 | uint32(sf.Psc.Raw())
}

// RequestIdFromRaw unpacks a RequestId from its 32 bit wire form.
func RequestIdFromRaw(raw uint32) RequestId {
	packetIdWithVersion := uint16(raw >> 16)
	pscRaw := uint16(raw)
	return RequestId{
		PacketId:     ccsds.PacketIdFromRaw(packetIdWithVersion & 0x1FFF),
		Psc:          ccsds.PacketSeqCtrlFromRaw(pscRaw),
		CcsdsVersion: uint8(packetIdWithVersion >> 13),
	}
}

// UnpackRequestId parses a RequestId from the first 4 octets of data, the
// layout a Service 1 TM's source data carries it in.
func UnpackRequestId(data []byte) (RequestId, error) {
	if len(data) < RequestIdLen {
		return RequestId{}, fmt.Errorf("%w: need %d bytes for request id, got %d", sp.ErrBytesTooShort, RequestIdLen, len(data))
	}
	raw := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	return RequestIdFromRaw(raw), nil
}

// PackInto appends the packed RequestId to buf.
func (sf RequestId) PackInto(buf []byte) []byte {
	raw := sf.Pack()
	return append(buf, byte(raw>>24), byte(raw>>16), byte(raw>>8), byte(raw))
}
