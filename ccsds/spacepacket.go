// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package ccsds implements the CCSDS space packet primary header
// (Blue Book 133.0-B-2) and a stream demultiplexer for locating packets
// with known packet IDs inside an octet stream.
package ccsds

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
)

// HeaderLen is the fixed length of the CCSDS space packet primary header.
const HeaderLen = 6

// MaxApid is the largest value the 11 bit APID field can hold.
const MaxApid = 1<<11 - 1

// MaxSeqCount is the largest value the 14 bit sequence count field can hold.
const MaxSeqCount = 1<<14 - 1

// PacketType distinguishes telemetry from telecommand packets.
// See CCSDS 133.0-B-2, 4.1.2.3.
type PacketType uint8

// The two packet types.
const (
	TM PacketType = 0
	TC PacketType = 1
)

func (sf PacketType) String() string {
	if sf == TC {
		return "TC"
	}
	return "TM"
}

// SequenceFlag describes a packet's position within a sequence of
// segmented packets. See CCSDS 133.0-B-2, 4.1.2.4.2.
type SequenceFlag uint8

// The four sequence flag values.
const (
	Continuation SequenceFlag = 0b00
	First        SequenceFlag = 0b01
	Last         SequenceFlag = 0b10
	Unsegmented  SequenceFlag = 0b11
)

func (sf SequenceFlag) String() string {
	switch sf {
	case Continuation:
		return "CONT"
	case First:
		return "FIRST"
	case Last:
		return "LAST"
	case Unsegmented:
		return "UNSEG"
	default:
		return "INVALID"
	}
}

// PacketId is the last 13 bits of the first two octets of the primary
// header: packet type, secondary header flag and APID.
type PacketId struct {
	Type          PacketType
	SecHeaderFlag bool
	Apid          uint16
}

// NewPacketId builds a PacketId, rejecting an out of range APID.
func NewPacketId(ptype PacketType, secHeaderFlag bool, apid uint16) (PacketId, error) {
	if apid > MaxApid {
		return PacketId{}, fmt.Errorf("%w: apid %d exceeds maximum %d", sp.ErrInvalidFieldValue, apid, MaxApid)
	}
	return PacketId{Type: ptype, SecHeaderFlag: secHeaderFlag, Apid: apid}, nil
}

// Raw packs the PacketId into its 13 bit wire representation.
func (sf PacketId) Raw() uint16 {
	var sec uint16
	if sf.SecHeaderFlag {
		sec = 1
	}
	return uint16(sf.Type)<<12 | sec<<11 | sf.Apid
}

// PacketIdFromRaw unpacks a PacketId from its 13 bit wire representation
// (the low 13 bits of raw are used; the version bits, if present in the
// caller's raw value, are ignored).
func PacketIdFromRaw(raw uint16) PacketId {
	return PacketId{
		Type:          PacketType((raw >> 12) & 0b1),
		SecHeaderFlag: (raw>>11)&0b1 == 1,
		Apid:          raw & 0x7FF,
	}
}

// PacketSeqCtrl is the third and fourth octet of the primary header: the
// sequence flags and the 14 bit sequence count.
type PacketSeqCtrl struct {
	SeqFlags SequenceFlag
	SeqCount uint16
}

// NewPacketSeqCtrl builds a PacketSeqCtrl, rejecting an out of range
// sequence count.
func NewPacketSeqCtrl(seqFlags SequenceFlag, seqCount uint16) (PacketSeqCtrl, error) {
	if seqCount > MaxSeqCount {
		return PacketSeqCtrl{}, fmt.Errorf("%w: seq_count %d exceeds maximum %d", sp.ErrInvalidFieldValue, seqCount, MaxSeqCount)
	}
	return PacketSeqCtrl{SeqFlags: seqFlags, SeqCount: seqCount}, nil
}

// Raw packs the PacketSeqCtrl into its 16 bit wire representation.
func (sf PacketSeqCtrl) Raw() uint16 {
	return uint16(sf.SeqFlags)<<14 | sf.SeqCount
}

// PacketSeqCtrlFromRaw unpacks a PacketSeqCtrl from its 16 bit wire
// representation.
func PacketSeqCtrlFromRaw(raw uint16) PacketSeqCtrl {
	return PacketSeqCtrl{
		SeqFlags: SequenceFlag((raw >> 14) & 0b11),
		SeqCount: raw & 0x3FFF,
	}
}

// SpHeader is the CCSDS space packet primary header.
type SpHeader struct {
	Version  uint8
	PacketId PacketId
	Psc      PacketSeqCtrl
	// DataLen is one fewer than the length of the packet data field, per
	// CCSDS 133.0-B-2, 4.1.3.5.3.
	DataLen uint16
}

// New builds an SpHeader with the version field defaulted to 0b000,
// rejecting a data_len, apid or seq_count that doesn't fit its field.
func New(ptype PacketType, apid uint16, seqCount uint16, dataLen uint16, secHeaderFlag bool, seqFlags SequenceFlag) (SpHeader, error) {
	pid, err := NewPacketId(ptype, secHeaderFlag, apid)
	if err != nil {
		return SpHeader{}, err
	}
	psc, err := NewPacketSeqCtrl(seqFlags, seqCount)
	if err != nil {
		return SpHeader{}, err
	}
	return SpHeader{PacketId: pid, Psc: psc, DataLen: dataLen}, nil
}

// Tc is a convenience constructor for a telecommand SpHeader.
func Tc(apid uint16, seqCount uint16, dataLen uint16) (SpHeader, error) {
	return New(TC, apid, seqCount, dataLen, false, Unsegmented)
}

// Tm is a convenience constructor for a telemetry SpHeader.
func Tm(apid uint16, seqCount uint16, dataLen uint16) (SpHeader, error) {
	return New(TM, apid, seqCount, dataLen, false, Unsegmented)
}

// SetDataLenFromTotal sets DataLen from the total packet length (header
// plus data field), rejecting a length shorter than the minimum 7 octets.
func (sf *SpHeader) SetDataLenFromTotal(total int) error {
	if total < HeaderLen+1 {
		return fmt.Errorf("%w: total packet length %d shorter than minimum %d", sp.ErrInvalidFieldValue, total, HeaderLen+1)
	}
	sf.DataLen = uint16(total - HeaderLen - 1)
	return nil
}

// PacketLen returns the total packet length: the 6 octet header plus the
// data field, which is DataLen+1 octets long.
func (sf SpHeader) PacketLen() int {
	return HeaderLen + int(sf.DataLen) + 1
}

// Pack serializes the primary header into its 6 octet wire form.
func (sf SpHeader) Pack() [HeaderLen]byte {
	var out [HeaderLen]byte
	packetIDWithVersion := uint16(sf.Version)<<13 | sf.PacketId.Raw()
	out[0] = byte(packetIDWithVersion >> 8)
	out[1] = byte(packetIDWithVersion)
	pscRaw := sf.Psc.Raw()
	out[2] = byte(pscRaw >> 8)
	out[3] = byte(pscRaw)
	out[4] = byte(sf.DataLen >> 8)
	out[5] = byte(sf.DataLen)
	return out
}

// UnpackSpHeader parses a 6 octet CCSDS primary header from the start of
// data.
func UnpackSpHeader(data []byte) (SpHeader, error) {
	if len(data) < HeaderLen {
		return SpHeader{}, fmt.Errorf("%w: need %d bytes for space packet header, got %d", sp.ErrBytesTooShort, HeaderLen, len(data))
	}
	packetIDWithVersion := uint16(data[0])<<8 | uint16(data[1])
	pscRaw := uint16(data[2])<<8 | uint16(data[3])
	dataLen := uint16(data[4])<<8 | uint16(data[5])
	return SpHeader{
		Version:  uint8(packetIDWithVersion >> 13),
		PacketId: PacketIdFromRaw(packetIDWithVersion & 0x1FFF),
		Psc:      PacketSeqCtrlFromRaw(pscRaw),
		DataLen:  dataLen,
	}, nil
}
