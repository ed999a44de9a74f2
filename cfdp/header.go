// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cfdp

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
)

// PduHeader is the CFDP common PDU header (727.0-B-5, 5.1). Its packed
// length varies from 7 to 28 octets depending on the entity ID and
// transaction sequence number widths carried in PduConfig.
type PduHeader struct {
	PduType             PduType
	SegmentMetadataFlag SegmentMetadataFlag
	PduDataFieldLen     uint16
	PduConf             PduConfig
}

// NewPduHeader builds a PduHeader; pduDataFieldLen is filled in by the
// owning PDU once its parameter block length is known.
func NewPduHeader(pduType PduType, segMetaFlag SegmentMetadataFlag, pduConf PduConfig, pduDataFieldLen uint16) PduHeader {
	return PduHeader{
		PduType:             pduType,
		SegmentMetadataFlag: segMetaFlag,
		PduDataFieldLen:     pduDataFieldLen,
		PduConf:             pduConf,
	}
}

// HeaderLen returns the packed length of the header: the fixed 4 octets
// plus twice the entity ID width plus the transaction sequence number
// width.
func (sf PduHeader) HeaderLen() int {
	return 4 + 2*sf.PduConf.SourceEntityId.Len() + sf.PduConf.TransactionSeqNum.Len()
}

// LargeFileFlagSet reports whether the large-file flag is set.
func (sf PduHeader) LargeFileFlagSet() bool {
	return sf.PduConf.LargeFile
}

// CrcFlag reports whether a trailing CRC-16 is present.
func (sf PduHeader) CrcFlag() bool {
	return sf.PduConf.CrcFlag
}

// PacketLen returns the total PDU length: header length plus data field
// length.
func (sf PduHeader) PacketLen() int {
	return sf.HeaderLen() + int(sf.PduDataFieldLen)
}

// Pack serializes the common header into its 7-28 octet wire form.
func (sf PduHeader) Pack() []byte {
	out := make([]byte, 0, sf.HeaderLen())
	octet0 := Version<<5 | uint8(sf.PduType)<<4 | uint8(sf.PduConf.Direction)<<3 |
		uint8(sf.PduConf.TransmissionMode)<<2 | boolBit(sf.PduConf.CrcFlag)<<1 | boolBit(sf.PduConf.LargeFile)
	out = append(out, octet0)
	out = append(out, byte(sf.PduDataFieldLen>>8), byte(sf.PduDataFieldLen))
	octet3 := uint8(sf.PduConf.SegmentationControl)<<7 |
		uint8(entityIdLenMinus1(sf.PduConf.SourceEntityId.Len()))<<4 |
		uint8(sf.SegmentMetadataFlag)<<3 |
		uint8(sf.PduConf.TransactionSeqNum.Len()-1)
	out = append(out, octet3)
	out = append(out, sf.PduConf.SourceEntityId.Pack()...)
	out = append(out, sf.PduConf.TransactionSeqNum.Pack()...)
	out = append(out, sf.PduConf.DestEntityId.Pack()...)
	return out
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func entityIdLenMinus1(n int) int {
	return n - 1
}

// headerLenFromRaw computes the packed header length from octet 3 of a
// raw buffer without fully unpacking it: entity_id_len and seq_num_len
// are each stored minus 1 in 3 bits.
func headerLenFromRaw(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes to read header length fields, got %d", sp.ErrBytesTooShort, len(data))
	}
	entityIdLen := int((data[3]>>4)&0b111) + 1
	seqNumLen := int(data[3]&0b111) + 1
	return 4 + 2*entityIdLen + seqNumLen, nil
}

// UnpackPduHeader parses a common header from the start of data,
// rejecting a version nibble other than Version.
func UnpackPduHeader(data []byte) (PduHeader, error) {
	if len(data) < 4 {
		return PduHeader{}, fmt.Errorf("%w: need 4 bytes for common header prefix, got %d", sp.ErrBytesTooShort, len(data))
	}
	version := data[0] >> 5
	if version != Version {
		return PduHeader{}, fmt.Errorf("%w: cfdp version %#03b, expected %#03b", sp.ErrUnsupportedVersion, version, Version)
	}
	pduType := PduType((data[0] >> 4) & 0b1)
	direction := Direction((data[0] >> 3) & 0b1)
	transmissionMode := TransmissionMode((data[0] >> 2) & 0b1)
	crcFlag := (data[0]>>1)&0b1 == 1
	largeFile := data[0]&0b1 == 1
	pduDataFieldLen := uint16(data[1])<<8 | uint16(data[2])
	segCtrl := SegmentationControl((data[3] >> 7) & 0b1)
	entityIdLen := sp.ByteFieldLen(((data[3]>>4)&0b111)+1)
	segMetaFlag := SegmentMetadataFlag((data[3] >> 3) & 0b1)
	seqNumLen := sp.ByteFieldLen((data[3]&0b111)+1)

	headerLen := 4 + 2*int(entityIdLen) + int(seqNumLen)
	if len(data) < headerLen {
		return PduHeader{}, fmt.Errorf("%w: need %d bytes for common header, got %d", sp.ErrBytesTooShort, headerLen, len(data))
	}
	idx := 4
	source, err := sp.UnpackUnsignedByteField(data[idx:], entityIdLen)
	if err != nil {
		return PduHeader{}, err
	}
	idx += int(entityIdLen)
	seqNum, err := sp.UnpackUnsignedByteField(data[idx:], seqNumLen)
	if err != nil {
		return PduHeader{}, err
	}
	idx += int(seqNumLen)
	dest, err := sp.UnpackUnsignedByteField(data[idx:], entityIdLen)
	if err != nil {
		return PduHeader{}, err
	}

	return PduHeader{
		PduType:             pduType,
		SegmentMetadataFlag: segMetaFlag,
		PduDataFieldLen:     pduDataFieldLen,
		PduConf: PduConfig{
			SourceEntityId:      source,
			DestEntityId:        dest,
			TransactionSeqNum:   seqNum,
			TransmissionMode:    transmissionMode,
			CrcFlag:             crcFlag,
			LargeFile:           largeFile,
			Direction:           direction,
			SegmentationControl: segCtrl,
		},
	}, nil
}

// VerifyLengthAndChecksum checks that data is at least header_len +
// pdu_data_field_len long and, if the CRC flag is set, that the CRC-16
// over the whole PDU verifies to zero.
func (sf PduHeader) VerifyLengthAndChecksum(data []byte) error {
	total := sf.PacketLen()
	if len(data) < total {
		return fmt.Errorf("%w: need %d bytes for full pdu, got %d", sp.ErrBytesTooShort, total, len(data))
	}
	if sf.PduConf.CrcFlag {
		if !sp.VerifyCrc16(data[:total]) {
			return fmt.Errorf("%w: crc residual nonzero over %d byte pdu", sp.ErrInvalidCrc16, total)
		}
	}
	return nil
}
