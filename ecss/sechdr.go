// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package ecss

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
)

// PusTcSecHeaderCLen is the fixed packed length of a PUS-C TC secondary
// header.
const PusTcSecHeaderCLen = 5

// PusTcSecHeaderC is the PUS-C (ECSS-E-ST-70-41C) telecommand secondary
// header: a fixed version nibble, 4 bit ack flags, service, subservice
// and a 16 bit source ID. See §3.3.
type PusTcSecHeaderC struct {
	AckFlags   uint8
	Service    uint8
	Subservice uint8
	SourceId   uint16
}

// Pack serializes the secondary header into its 5 octet wire form.
func (sf PusTcSecHeaderC) Pack() []byte {
	out := make([]byte, 0, PusTcSecHeaderCLen)
	out = append(out, byte(PusC)<<4|sf.AckFlags&0x0F, sf.Service, sf.Subservice)
	out = append(out, byte(sf.SourceId>>8), byte(sf.SourceId))
	return out
}

// UnpackPusTcSecHeaderC parses a PUS-C TC secondary header from the start
// of data, rejecting a version nibble other than PusC.
func UnpackPusTcSecHeaderC(data []byte) (PusTcSecHeaderC, error) {
	if len(data) < PusTcSecHeaderCLen {
		return PusTcSecHeaderC{}, fmt.Errorf("%w: need %d bytes for pus-c tc secondary header, got %d", sp.ErrBytesTooShort, PusTcSecHeaderCLen, len(data))
	}
	version := PusVersion(data[0] >> 4)
	if version != PusC {
		return PusTcSecHeaderC{}, fmt.Errorf("%w: pus version %s, expected %s", sp.ErrUnsupportedVersion, version, PusC)
	}
	return PusTcSecHeaderC{
		AckFlags:   data[0] & 0x0F,
		Service:    data[1],
		Subservice: data[2],
		SourceId:   uint16(data[3])<<8 | uint16(data[4]),
	}, nil
}

// PusTmSecHeaderCMinLen is the packed length of a PUS-C TM secondary
// header excluding its timestamp.
const PusTmSecHeaderCMinLen = 7

// PusTmSecHeaderC is the PUS-C telemetry secondary header: version
// nibble, 4 bit spacecraft time reference, service, subservice, 16 bit
// message counter, 16 bit destination ID, and an opaque timestamp of
// caller-supplied length. See §3.3.
type PusTmSecHeaderC struct {
	SpacecraftTimeRef uint8
	Service           uint8
	Subservice        uint8
	MsgCounter        uint16
	DestId            uint16
	Timestamp         []byte
}

// HeaderLen returns the packed length of this secondary header including
// its timestamp.
func (sf PusTmSecHeaderC) HeaderLen() int {
	return PusTmSecHeaderCMinLen + len(sf.Timestamp)
}

// Pack serializes the secondary header into its wire form.
func (sf PusTmSecHeaderC) Pack() []byte {
	out := make([]byte, 0, sf.HeaderLen())
	out = append(out, byte(PusC)<<4|sf.SpacecraftTimeRef&0x0F, sf.Service, sf.Subservice)
	out = append(out, byte(sf.MsgCounter>>8), byte(sf.MsgCounter))
	out = append(out, byte(sf.DestId>>8), byte(sf.DestId))
	out = append(out, sf.Timestamp...)
	return out
}

// UnpackPusTmSecHeaderC parses a PUS-C TM secondary header from the start
// of data. timestampLen is a managed parameter: the library never
// interprets the timestamp field, so its length cannot be derived from
// the bytes alone.
func UnpackPusTmSecHeaderC(data []byte, timestampLen int) (PusTmSecHeaderC, error) {
	if len(data) < PusTmSecHeaderCMinLen {
		return PusTmSecHeaderC{}, fmt.Errorf("%w: need %d bytes for pus-c tm secondary header, got %d", sp.ErrBytesTooShort, PusTmSecHeaderCMinLen, len(data))
	}
	version := PusVersion(data[0] >> 4)
	if version != PusC {
		return PusTmSecHeaderC{}, fmt.Errorf("%w: pus version %s, expected %s", sp.ErrUnsupportedVersion, version, PusC)
	}
	total := PusTmSecHeaderCMinLen + timestampLen
	if len(data) < total {
		return PusTmSecHeaderC{}, fmt.Errorf("%w: need %d bytes for pus-c tm secondary header with timestamp, got %d", sp.ErrBytesTooShort, total, len(data))
	}
	timestamp := make([]byte, timestampLen)
	copy(timestamp, data[PusTmSecHeaderCMinLen:total])
	return PusTmSecHeaderC{
		SpacecraftTimeRef: data[0] & 0x0F,
		Service:           data[1],
		Subservice:        data[2],
		MsgCounter:        uint16(data[3])<<8 | uint16(data[4]),
		DestId:            uint16(data[5])<<8 | uint16(data[6]),
		Timestamp:         timestamp,
	}, nil
}

// PusTcSecHeaderA is the PUS-A (ECSS-E-70-41A) telecommand secondary
// header. Unlike PUS-C, the 16 bit source ID is optional, and the
// standard permits trailing spare octets before the application data;
// both are construction-time managed parameters because the wire form
// cannot otherwise indicate their presence. See §3.3, §9 open question
// (c).
type PusTcSecHeaderA struct {
	AckFlags   uint8
	Service    uint8
	Subservice uint8
	SourceId   *uint16
	SpareBytes int
}

// HeaderLen returns the packed length of this secondary header.
func (sf PusTcSecHeaderA) HeaderLen() int {
	n := 3
	if sf.SourceId != nil {
		n += 2
	}
	return n + sf.SpareBytes
}

// Pack serializes the secondary header into its wire form.
func (sf PusTcSecHeaderA) Pack() []byte {
	out := make([]byte, 0, sf.HeaderLen())
	out = append(out, byte(PusA)<<4|sf.AckFlags&0x0F, sf.Service, sf.Subservice)
	if sf.SourceId != nil {
		out = append(out, byte(*sf.SourceId>>8), byte(*sf.SourceId))
	}
	if sf.SpareBytes > 0 {
		out = append(out, make([]byte, sf.SpareBytes)...)
	}
	return out
}

// UnpackPusTcSecHeaderA parses a PUS-A TC secondary header, using
// hasSourceId and spareBytes as managed parameters describing the wire
// layout this mission uses.
func UnpackPusTcSecHeaderA(data []byte, hasSourceId bool, spareBytes int) (PusTcSecHeaderA, error) {
	minLen := 3
	if hasSourceId {
		minLen += 2
	}
	minLen += spareBytes
	if len(data) < minLen {
		return PusTcSecHeaderA{}, fmt.Errorf("%w: need %d bytes for pus-a tc secondary header, got %d", sp.ErrBytesTooShort, minLen, len(data))
	}
	version := PusVersion(data[0] >> 4)
	if version != PusA {
		return PusTcSecHeaderA{}, fmt.Errorf("%w: pus version %s, expected %s", sp.ErrUnsupportedVersion, version, PusA)
	}
	h := PusTcSecHeaderA{AckFlags: data[0] & 0x0F, Service: data[1], Subservice: data[2], SpareBytes: spareBytes}
	if hasSourceId {
		sourceId := uint16(data[3])<<8 | uint16(data[4])
		h.SourceId = &sourceId
	}
	return h, nil
}

// PusTmSecHeaderA is the PUS-A telemetry secondary header: version
// nibble, service, subservice, an optional 8 bit message counter, an
// optional destination ID of caller-chosen width, optional spare octets
// and the opaque timestamp. See §3.3.
type PusTmSecHeaderA struct {
	Service    uint8
	Subservice uint8
	MsgCounter *uint8
	DestId     *sp.UnsignedByteField
	SpareBytes int
	Timestamp  []byte
}

// HeaderLen returns the packed length of this secondary header including
// its timestamp.
func (sf PusTmSecHeaderA) HeaderLen() int {
	n := 3
	if sf.MsgCounter != nil {
		n++
	}
	if sf.DestId != nil {
		n += sf.DestId.Len()
	}
	return n + sf.SpareBytes + len(sf.Timestamp)
}

// Pack serializes the secondary header into its wire form.
func (sf PusTmSecHeaderA) Pack() []byte {
	out := make([]byte, 0, sf.HeaderLen())
	out = append(out, byte(PusA)<<4, sf.Service, sf.Subservice)
	if sf.MsgCounter != nil {
		out = append(out, *sf.MsgCounter)
	}
	if sf.DestId != nil {
		out = append(out, sf.DestId.Pack()...)
	}
	if sf.SpareBytes > 0 {
		out = append(out, make([]byte, sf.SpareBytes)...)
	}
	out = append(out, sf.Timestamp...)
	return out
}

// UnpackPusTmSecHeaderA parses a PUS-A TM secondary header, using
// hasMsgCounter, destIdLen (0 for absent) and spareBytes as managed
// parameters, and timestampLen as the expected opaque timestamp length.
func UnpackPusTmSecHeaderA(data []byte, hasMsgCounter bool, destIdLen sp.ByteFieldLen, spareBytes, timestampLen int) (PusTmSecHeaderA, error) {
	if len(data) < 3 {
		return PusTmSecHeaderA{}, fmt.Errorf("%w: need 3 bytes for pus-a tm secondary header prefix, got %d", sp.ErrBytesTooShort, len(data))
	}
	version := PusVersion(data[0] >> 4)
	if version != PusA {
		return PusTmSecHeaderA{}, fmt.Errorf("%w: pus version %s, expected %s", sp.ErrUnsupportedVersion, version, PusA)
	}
	h := PusTmSecHeaderA{Service: data[1], Subservice: data[2], SpareBytes: spareBytes}
	idx := 3
	if hasMsgCounter {
		if idx >= len(data) {
			return PusTmSecHeaderA{}, fmt.Errorf("%w: need byte for message counter, got %d total", sp.ErrBytesTooShort, len(data))
		}
		counter := data[idx]
		h.MsgCounter = &counter
		idx++
	}
	if destIdLen != 0 {
		destId, err := sp.UnpackUnsignedByteField(data[idx:], destIdLen)
		if err != nil {
			return PusTmSecHeaderA{}, err
		}
		h.DestId = &destId
		idx += int(destIdLen)
	}
	idx += spareBytes
	total := idx + timestampLen
	if len(data) < total {
		return PusTmSecHeaderA{}, fmt.Errorf("%w: need %d bytes for pus-a tm secondary header with timestamp, got %d", sp.ErrBytesTooShort, total, len(data))
	}
	timestamp := make([]byte, timestampLen)
	copy(timestamp, data[idx:total])
	h.Timestamp = timestamp
	return h, nil
}
