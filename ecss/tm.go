// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package ecss

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/ccsds"
)

// PusTm is a PUS-C telemetry packet: a CCSDS primary header, a PUS-C
// telemetry secondary header and source data, with the CRC-16 always
// present per ECSS-E-ST-70-41C. See §3.2, §3.3.
type PusTm struct {
	SpHeader   ccsds.SpHeader
	SecHeader  PusTmSecHeaderC
	SourceData []byte
}

// NewPusTm builds a PusTm, deriving the primary header's data length
// field from the secondary header, source data and trailing CRC.
func NewPusTm(apid uint16, seqCount uint16, service, subservice uint8, timeRef uint8, msgCounter, destId uint16, timestamp, sourceData []byte) (PusTm, error) {
	sph, err := ccsds.New(ccsds.TM, apid, seqCount, 0, true, ccsds.Unsegmented)
	if err != nil {
		return PusTm{}, err
	}
	secHdr := PusTmSecHeaderC{
		SpacecraftTimeRef: timeRef,
		Service:           service,
		Subservice:        subservice,
		MsgCounter:        msgCounter,
		DestId:            destId,
		Timestamp:         timestamp,
	}
	tm := PusTm{SpHeader: sph, SecHeader: secHdr, SourceData: sourceData}
	if err := tm.SpHeader.SetDataLenFromTotal(tm.PacketLen()); err != nil {
		return PusTm{}, err
	}
	return tm, nil
}

func (sf PusTm) dataFieldLen() int {
	return sf.SecHeader.HeaderLen() + len(sf.SourceData) + 2
}

// DataLen returns the length of the PUS data field: secondary header,
// source data and the trailing CRC.
func (sf PusTm) DataLen() int {
	return sf.dataFieldLen()
}

// PacketLen returns the total packed length including the primary
// header.
func (sf PusTm) PacketLen() int {
	return ccsds.HeaderLen + sf.dataFieldLen()
}

// Pack serializes the telemetry packet, computing the trailing CRC-16
// over the primary header, secondary header and source data. No earlier
// CRC value is stored, so recalcCrc does not change the output.
func (sf PusTm) Pack(recalcCrc bool) []byte {
	out := make([]byte, 0, sf.PacketLen())
	hdr := sf.SpHeader.Pack()
	out = append(out, hdr[:]...)
	out = append(out, sf.SecHeader.Pack()...)
	out = append(out, sf.SourceData...)
	crc := sp.Crc16Ccitt(out)
	out = append(out, byte(crc>>8), byte(crc))
	return out
}

// UnpackPusTm parses a PUS-C telemetry packet from data. timestampLen is
// a managed parameter, per §3.3. If verifyCrc is true the trailing
// CRC-16 is checked.
func UnpackPusTm(data []byte, timestampLen int, verifyCrc bool) (PusTm, error) {
	sph, err := ccsds.UnpackSpHeader(data)
	if err != nil {
		return PusTm{}, err
	}
	total := sph.PacketLen()
	if len(data) < total {
		return PusTm{}, fmt.Errorf("%w: need %d bytes for telemetry packet, got %d", sp.ErrBytesTooShort, total, len(data))
	}
	secHdr, err := UnpackPusTmSecHeaderC(data[ccsds.HeaderLen:], timestampLen)
	if err != nil {
		return PusTm{}, err
	}
	sourceDataStart := ccsds.HeaderLen + secHdr.HeaderLen()
	sourceDataEnd := total - 2
	if sourceDataEnd < sourceDataStart {
		return PusTm{}, fmt.Errorf("%w: data field too short for pus-c tm secondary header and crc", sp.ErrSrcDataTooShort)
	}
	if verifyCrc {
		if !sp.VerifyCrc16(data[:total]) {
			return PusTm{}, fmt.Errorf("%w: crc residual nonzero over %d byte telemetry packet", sp.ErrInvalidCrc16, total)
		}
	}
	sourceData := make([]byte, sourceDataEnd-sourceDataStart)
	copy(sourceData, data[sourceDataStart:sourceDataEnd])
	return PusTm{SpHeader: sph, SecHeader: secHdr, SourceData: sourceData}, nil
}

// PusTmPusA is a PUS-A telemetry packet: the older sibling of PusTm,
// with optional message counter and destination ID fields.
type PusTmPusA struct {
	SpHeader   ccsds.SpHeader
	SecHeader  PusTmSecHeaderA
	SourceData []byte
}

// NewPusTmPusA builds a PusTmPusA, deriving the primary header's data
// length field from the secondary header, source data and trailing CRC.
func NewPusTmPusA(apid uint16, seqCount uint16, service, subservice uint8, msgCounter *uint8, destId *sp.UnsignedByteField, spareBytes int, timestamp, sourceData []byte) (PusTmPusA, error) {
	sph, err := ccsds.New(ccsds.TM, apid, seqCount, 0, true, ccsds.Unsegmented)
	if err != nil {
		return PusTmPusA{}, err
	}
	secHdr := PusTmSecHeaderA{
		Service:    service,
		Subservice: subservice,
		MsgCounter: msgCounter,
		DestId:     destId,
		SpareBytes: spareBytes,
		Timestamp:  timestamp,
	}
	tm := PusTmPusA{SpHeader: sph, SecHeader: secHdr, SourceData: sourceData}
	if err := tm.SpHeader.SetDataLenFromTotal(tm.PacketLen()); err != nil {
		return PusTmPusA{}, err
	}
	return tm, nil
}

func (sf PusTmPusA) dataFieldLen() int {
	return sf.SecHeader.HeaderLen() + len(sf.SourceData) + 2
}

// DataLen returns the length of the PUS data field.
func (sf PusTmPusA) DataLen() int {
	return sf.dataFieldLen()
}

// PacketLen returns the total packed length including the primary
// header.
func (sf PusTmPusA) PacketLen() int {
	return ccsds.HeaderLen + sf.dataFieldLen()
}

// Pack serializes the telemetry packet, computing the trailing CRC-16.
// No earlier CRC value is stored, so recalcCrc does not change the
// output.
func (sf PusTmPusA) Pack(recalcCrc bool) []byte {
	out := make([]byte, 0, sf.PacketLen())
	hdr := sf.SpHeader.Pack()
	out = append(out, hdr[:]...)
	out = append(out, sf.SecHeader.Pack()...)
	out = append(out, sf.SourceData...)
	crc := sp.Crc16Ccitt(out)
	out = append(out, byte(crc>>8), byte(crc))
	return out
}

// UnpackPusTmPusA parses a PUS-A telemetry packet from data, using
// hasMsgCounter, destIdLen and spareBytes as managed parameters
// describing the secondary header layout, and timestampLen as the
// opaque timestamp length.
func UnpackPusTmPusA(data []byte, hasMsgCounter bool, destIdLen sp.ByteFieldLen, spareBytes, timestampLen int, verifyCrc bool) (PusTmPusA, error) {
	sph, err := ccsds.UnpackSpHeader(data)
	if err != nil {
		return PusTmPusA{}, err
	}
	total := sph.PacketLen()
	if len(data) < total {
		return PusTmPusA{}, fmt.Errorf("%w: need %d bytes for telemetry packet, got %d", sp.ErrBytesTooShort, total, len(data))
	}
	secHdr, err := UnpackPusTmSecHeaderA(data[ccsds.HeaderLen:], hasMsgCounter, destIdLen, spareBytes, timestampLen)
	if err != nil {
		return PusTmPusA{}, err
	}
	sourceDataStart := ccsds.HeaderLen + secHdr.HeaderLen()
	sourceDataEnd := total - 2
	if sourceDataEnd < sourceDataStart {
		return PusTmPusA{}, fmt.Errorf("%w: data field too short for pus-a tm secondary header and crc", sp.ErrSrcDataTooShort)
	}
	if verifyCrc {
		if !sp.VerifyCrc16(data[:total]) {
			return PusTmPusA{}, fmt.Errorf("%w: crc residual nonzero over %d byte telemetry packet", sp.ErrInvalidCrc16, total)
		}
	}
	sourceData := make([]byte, sourceDataEnd-sourceDataStart)
	copy(sourceData, data[sourceDataStart:sourceDataEnd])
	return PusTmPusA{SpHeader: sph, SecHeader: secHdr, SourceData: sourceData}, nil
}
