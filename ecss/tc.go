// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package ecss

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/ccsds"
)

// PusTc is a PUS-C telecommand: a CCSDS primary header, a PUS-C
// secondary header, application data, and an optional trailing CRC-16.
// See §3.2, §3.3.
type PusTc struct {
	SpHeader  ccsds.SpHeader
	SecHeader PusTcSecHeaderC
	AppData   []byte
	HasCrc    bool
}

// NewPusTc builds a PusTc, deriving the primary header's data length
// field from the secondary header and application data lengths plus,
// if present, the trailing CRC.
func NewPusTc(apid uint16, seqCount uint16, service, subservice uint8, ackFlags uint8, sourceId uint16, appData []byte, hasCrc bool) (PusTc, error) {
	sph, err := ccsds.New(ccsds.TC, apid, seqCount, 0, true, ccsds.Unsegmented)
	if err != nil {
		return PusTc{}, err
	}
	secHdr := PusTcSecHeaderC{AckFlags: ackFlags, Service: service, Subservice: subservice, SourceId: sourceId}
	tc := PusTc{SpHeader: sph, SecHeader: secHdr, AppData: appData, HasCrc: hasCrc}
	if err := tc.SpHeader.SetDataLenFromTotal(tc.PacketLen()); err != nil {
		return PusTc{}, err
	}
	return tc, nil
}

func (sf PusTc) dataFieldLen() int {
	n := PusTcSecHeaderCLen + len(sf.AppData)
	if sf.HasCrc {
		n += 2
	}
	return n
}

// DataLen returns the length of the PUS data field: secondary header,
// application data and, if present, the CRC.
func (sf PusTc) DataLen() int {
	return sf.dataFieldLen()
}

// PacketLen returns the total packed length including the 6 octet
// primary header.
func (sf PusTc) PacketLen() int {
	return ccsds.HeaderLen + sf.dataFieldLen()
}

// RequestId derives the RequestId used to track this telecommand's
// Service 1 verification progress.
func (sf PusTc) RequestId() RequestId {
	return RequestIdFromTc(sf.SpHeader)
}

// Pack serializes the telecommand. When HasCrc is set the trailing
// CRC-16 is computed over the primary header, secondary header and
// application data. No earlier CRC value is stored, so the CRC is
// computed whether or not recalcCrc is set.
func (sf PusTc) Pack(recalcCrc bool) []byte {
	out := make([]byte, 0, sf.PacketLen())
	hdr := sf.SpHeader.Pack()
	out = append(out, hdr[:]...)
	out = append(out, sf.SecHeader.Pack()...)
	out = append(out, sf.AppData...)
	if sf.HasCrc {
		crc := sp.Crc16Ccitt(out)
		out = append(out, byte(crc>>8), byte(crc))
	}
	return out
}

// UnpackPusTc parses a PUS-C telecommand from data. If verifyCrc is true
// and the packet carries a trailing CRC, it is checked.
func UnpackPusTc(data []byte, verifyCrc bool) (PusTc, error) {
	sph, err := ccsds.UnpackSpHeader(data)
	if err != nil {
		return PusTc{}, err
	}
	total := sph.PacketLen()
	if len(data) < total {
		return PusTc{}, fmt.Errorf("%w: need %d bytes for telecommand, got %d", sp.ErrBytesTooShort, total, len(data))
	}
	secHdr, err := UnpackPusTcSecHeaderC(data[ccsds.HeaderLen:])
	if err != nil {
		return PusTc{}, err
	}
	appDataStart := ccsds.HeaderLen + PusTcSecHeaderCLen
	if appDataStart > total {
		return PusTc{}, fmt.Errorf("%w: data field too short for pus-c tc secondary header", sp.ErrSrcDataTooShort)
	}
	hasCrc := total-appDataStart >= 2
	appDataEnd := total
	if hasCrc {
		appDataEnd = total - 2
	}
	appData := make([]byte, appDataEnd-appDataStart)
	copy(appData, data[appDataStart:appDataEnd])
	if hasCrc && verifyCrc {
		if !sp.VerifyCrc16(data[:total]) {
			return PusTc{}, fmt.Errorf("%w: crc residual nonzero over %d byte telecommand", sp.ErrInvalidCrc16, total)
		}
	}
	return PusTc{SpHeader: sph, SecHeader: secHdr, AppData: appData, HasCrc: hasCrc}, nil
}

// PusTcPusA is a PUS-A telecommand: the older sibling of PusTc, with an
// optional source ID and optional spare octets in its secondary header.
type PusTcPusA struct {
	SpHeader  ccsds.SpHeader
	SecHeader PusTcSecHeaderA
	AppData   []byte
	HasCrc    bool
}

// NewPusTcPusA builds a PusTcPusA, deriving the primary header's data
// length field from the secondary header and application data lengths.
func NewPusTcPusA(apid uint16, seqCount uint16, service, subservice uint8, ackFlags uint8, sourceId *uint16, spareBytes int, appData []byte, hasCrc bool) (PusTcPusA, error) {
	sph, err := ccsds.New(ccsds.TC, apid, seqCount, 0, true, ccsds.Unsegmented)
	if err != nil {
		return PusTcPusA{}, err
	}
	secHdr := PusTcSecHeaderA{AckFlags: ackFlags, Service: service, Subservice: subservice, SourceId: sourceId, SpareBytes: spareBytes}
	tc := PusTcPusA{SpHeader: sph, SecHeader: secHdr, AppData: appData, HasCrc: hasCrc}
	if err := tc.SpHeader.SetDataLenFromTotal(tc.PacketLen()); err != nil {
		return PusTcPusA{}, err
	}
	return tc, nil
}

// RequestId derives the RequestId used to track this telecommand's
// Service 1 verification progress.
func (sf PusTcPusA) RequestId() RequestId {
	return RequestIdFromTc(sf.SpHeader)
}

func (sf PusTcPusA) dataFieldLen() int {
	n := sf.SecHeader.HeaderLen() + len(sf.AppData)
	if sf.HasCrc {
		n += 2
	}
	return n
}

// DataLen returns the length of the PUS data field.
func (sf PusTcPusA) DataLen() int {
	return sf.dataFieldLen()
}

// PacketLen returns the total packed length including the primary
// header.
func (sf PusTcPusA) PacketLen() int {
	return ccsds.HeaderLen + sf.dataFieldLen()
}

// Pack serializes the telecommand, computing the trailing CRC-16 when
// HasCrc is set. No earlier CRC value is stored, so recalcCrc does not
// change the output.
func (sf PusTcPusA) Pack(recalcCrc bool) []byte {
	out := make([]byte, 0, sf.PacketLen())
	hdr := sf.SpHeader.Pack()
	out = append(out, hdr[:]...)
	out = append(out, sf.SecHeader.Pack()...)
	out = append(out, sf.AppData...)
	if sf.HasCrc {
		crc := sp.Crc16Ccitt(out)
		out = append(out, byte(crc>>8), byte(crc))
	}
	return out
}

// UnpackPusTcPusA parses a PUS-A telecommand from data. hasSourceId and
// spareBytes describe the secondary header layout this mission uses, as
// PUS-A cannot otherwise signal their presence on the wire.
func UnpackPusTcPusA(data []byte, hasSourceId bool, spareBytes int, verifyCrc bool) (PusTcPusA, error) {
	sph, err := ccsds.UnpackSpHeader(data)
	if err != nil {
		return PusTcPusA{}, err
	}
	total := sph.PacketLen()
	if len(data) < total {
		return PusTcPusA{}, fmt.Errorf("%w: need %d bytes for telecommand, got %d", sp.ErrBytesTooShort, total, len(data))
	}
	secHdr, err := UnpackPusTcSecHeaderA(data[ccsds.HeaderLen:], hasSourceId, spareBytes)
	if err != nil {
		return PusTcPusA{}, err
	}
	appDataStart := ccsds.HeaderLen + secHdr.HeaderLen()
	if appDataStart > total {
		return PusTcPusA{}, fmt.Errorf("%w: data field too short for pus-a tc secondary header", sp.ErrSrcDataTooShort)
	}
	hasCrc := total-appDataStart >= 2
	appDataEnd := total
	if hasCrc {
		appDataEnd = total - 2
	}
	appData := make([]byte, appDataEnd-appDataStart)
	copy(appData, data[appDataStart:appDataEnd])
	if hasCrc && verifyCrc {
		if !sp.VerifyCrc16(data[:total]) {
			return PusTcPusA{}, fmt.Errorf("%w: crc residual nonzero over %d byte telecommand", sp.ErrInvalidCrc16, total)
		}
	}
	return PusTcPusA{SpHeader: sph, SecHeader: secHdr, AppData: appData, HasCrc: hasCrc}, nil
}
