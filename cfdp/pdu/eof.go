// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// EOFPdu signals the end of a file transfer: a condition code, the whole
// file's checksum, its size, and an optional fault-location TLV. See
// 727.0-B-5, 5.2.2.
type EOFPdu struct {
	header        cfdp.PduHeader
	ConditionCode cfdp.ConditionCode
	FileChecksum  [4]byte
	FileSize      uint64
	FaultLocation *cfdp.EntityIdTlv
}

// NewEOFPdu builds an EOF PDU; direction is forced to TowardReceiver,
// per 727.0-B-5.
func NewEOFPdu(cfg cfdp.PduConfig, checksum [4]byte, fileSize uint64, faultLocation *cfdp.EntityIdTlv, condCode cfdp.ConditionCode) EOFPdu {
	cfg.Direction = cfdp.TowardReceiver
	e := EOFPdu{ConditionCode: condCode, FileChecksum: checksum, FileSize: fileSize, FaultLocation: faultLocation}
	e.header = cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 0)
	e.header.PduDataFieldLen = e.dataFieldLen()
	return e
}

func (sf EOFPdu) dataFieldLen() uint16 {
	base := 1 + 4 + cfdp.FssLen(sf.header.PduConf)
	if sf.FaultLocation != nil {
		base += sf.FaultLocation.Len()
	}
	return directiveParamLen(base, sf.header.PduConf.CrcFlag)
}

// Header returns the PDU's common header.
func (sf EOFPdu) Header() cfdp.PduHeader { return sf.header }

// PacketLen returns the total packed length.
func (sf EOFPdu) PacketLen() int { return sf.header.PacketLen() }

// Pack serializes the EOF PDU.
func (sf EOFPdu) Pack() []byte {
	out := packDirective(sf.header, cfdp.DirEOF)
	out = append(out, byte(sf.ConditionCode)<<4)
	out = append(out, sf.FileChecksum[:]...)
	out = append(out, cfdp.PackFss(sf.header.PduConf, sf.FileSize)...)
	if sf.FaultLocation != nil {
		out = append(out, sf.FaultLocation.Pack()...)
	}
	return appendCrcIfSet(out, sf.header.PduConf.CrcFlag)
}

// UnpackEOFPdu parses an EOF PDU from data.
func UnpackEOFPdu(data []byte) (EOFPdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return EOFPdu{}, err
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return EOFPdu{}, err
	}
	code, err := directiveCodeAt(data, header.HeaderLen())
	if err != nil {
		return EOFPdu{}, err
	}
	if code != cfdp.DirEOF {
		return EOFPdu{}, fmt.Errorf("%w: directive code %#02x is not EOF", sp.ErrInvalidDirectiveCode, code)
	}
	idx := header.HeaderLen() + 1
	minLen := idx + 4 + 1 + cfdp.FssLen(header.PduConf)
	if minLen > len(data) {
		return EOFPdu{}, fmt.Errorf("%w: need %d bytes for eof pdu, got %d", sp.ErrBytesTooShort, minLen, len(data))
	}
	condCode := cfdp.ConditionCode(data[idx] >> 4)
	idx++
	var checksum [4]byte
	copy(checksum[:], data[idx:idx+4])
	idx += 4
	fileSize, err := cfdp.UnpackFss(data[idx:], header.PduConf)
	if err != nil {
		return EOFPdu{}, err
	}
	idx += cfdp.FssLen(header.PduConf)

	body := stripCrcIfSet(data[:header.PacketLen()], header.PduConf.CrcFlag)
	var fault *cfdp.EntityIdTlv
	if len(body) > idx {
		f, err := cfdp.UnpackEntityIdTlv(body[idx:])
		if err != nil {
			return EOFPdu{}, err
		}
		fault = &f
	}
	return EOFPdu{header: header, ConditionCode: condCode, FileChecksum: checksum, FileSize: fileSize, FaultLocation: fault}, nil
}
