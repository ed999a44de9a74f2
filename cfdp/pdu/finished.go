// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// FinishedPdu closes out a transaction: delivery outcome, destination
// file status, any filestore responses, and (only for an abnormal
// condition code) the entity where a fault was detected. See
// 727.0-B-5, 5.2.3.
type FinishedPdu struct {
	header              cfdp.PduHeader
	ConditionCode       cfdp.ConditionCode
	DeliveryCode        cfdp.DeliveryCode
	FileStatus          cfdp.FileStatus
	FilestoreResponses  []cfdp.FilestoreResponseTlv
	FaultLocation       *cfdp.EntityIdTlv
}

// MightHaveFaultLocation reports whether this condition code is one
// that admits a fault-location TLV: every code except NoError and
// UnsupportedChecksumType.
func MightHaveFaultLocation(code cfdp.ConditionCode) bool {
	return code != cfdp.NoError && code != cfdp.UnsupportedChecksumType
}

// NewFinishedPdu builds a Finished PDU; direction is forced to
// TowardSender.
func NewFinishedPdu(cfg cfdp.PduConfig, condCode cfdp.ConditionCode, delivery cfdp.DeliveryCode, status cfdp.FileStatus, responses []cfdp.FilestoreResponseTlv, faultLocation *cfdp.EntityIdTlv) FinishedPdu {
	cfg.Direction = cfdp.TowardSender
	f := FinishedPdu{
		ConditionCode:      condCode,
		DeliveryCode:       delivery,
		FileStatus:         status,
		FilestoreResponses: responses,
		FaultLocation:      faultLocation,
	}
	f.header = cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 0)
	f.header.PduDataFieldLen = f.dataFieldLen()
	return f
}

// NewSuccessFinishedPdu builds the common "everything went fine" case:
// NoError, DataComplete, file retained.
func NewSuccessFinishedPdu(cfg cfdp.PduConfig) FinishedPdu {
	return NewFinishedPdu(cfg, cfdp.NoError, cfdp.DataComplete, cfdp.FileStatusRetainedSuccessful, nil, nil)
}

func (sf FinishedPdu) dataFieldLen() uint16 {
	base := 1
	for _, r := range sf.FilestoreResponses {
		base += r.Len()
	}
	if sf.FaultLocation != nil && MightHaveFaultLocation(sf.ConditionCode) {
		base += sf.FaultLocation.Len()
	}
	return directiveParamLen(base, sf.header.PduConf.CrcFlag)
}

// Header returns the PDU's common header.
func (sf FinishedPdu) Header() cfdp.PduHeader { return sf.header }

// PacketLen returns the total packed length.
func (sf FinishedPdu) PacketLen() int { return sf.header.PacketLen() }

// Pack serializes the Finished PDU.
func (sf FinishedPdu) Pack() []byte {
	out := packDirective(sf.header, cfdp.DirFinished)
	out = append(out, byte(sf.ConditionCode)<<4|byte(sf.DeliveryCode)<<2|byte(sf.FileStatus))
	for _, r := range sf.FilestoreResponses {
		out = append(out, r.Pack()...)
	}
	if sf.FaultLocation != nil && MightHaveFaultLocation(sf.ConditionCode) {
		out = append(out, sf.FaultLocation.Pack()...)
	}
	return appendCrcIfSet(out, sf.header.PduConf.CrcFlag)
}

// UnpackFinishedPdu parses a Finished PDU from data.
func UnpackFinishedPdu(data []byte) (FinishedPdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return FinishedPdu{}, err
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return FinishedPdu{}, err
	}
	code, err := directiveCodeAt(data, header.HeaderLen())
	if err != nil {
		return FinishedPdu{}, err
	}
	if code != cfdp.DirFinished {
		return FinishedPdu{}, fmt.Errorf("%w: directive code %#02x is not Finished", sp.ErrInvalidDirectiveCode, code)
	}
	idx := header.HeaderLen() + 1
	if idx >= len(data) {
		return FinishedPdu{}, fmt.Errorf("%w: need %d bytes for finished pdu params byte, got %d", sp.ErrBytesTooShort, idx+1, len(data))
	}
	first := data[idx]
	condCode := cfdp.ConditionCode(first >> 4)
	delivery := cfdp.DeliveryCode((first >> 2) & 0b1)
	status := cfdp.FileStatus(first & 0b11)
	idx++

	body := stripCrcIfSet(data[:header.PacketLen()], header.PduConf.CrcFlag)
	var responses []cfdp.FilestoreResponseTlv
	var fault *cfdp.EntityIdTlv
	for idx < len(body) {
		tlvType := cfdp.TlvType(body[idx])
		switch tlvType {
		case cfdp.TlvFilestoreResponse:
			r, err := cfdp.UnpackFilestoreResponseTlv(body[idx:])
			if err != nil {
				return FinishedPdu{}, err
			}
			responses = append(responses, r)
			idx += r.Len()
		case cfdp.TlvEntityId:
			if !MightHaveFaultLocation(condCode) {
				return FinishedPdu{}, fmt.Errorf("%w: entity id tlv present but condition code %s admits no fault location", sp.ErrInvalidTlvType, condCode)
			}
			f, err := cfdp.UnpackEntityIdTlv(body[idx:])
			if err != nil {
				return FinishedPdu{}, err
			}
			fault = &f
			idx += f.Len()
		default:
			return FinishedPdu{}, fmt.Errorf("%w: tlv type %s not valid in finished pdu", sp.ErrInvalidTlvType, tlvType)
		}
	}
	return FinishedPdu{
		header:             header,
		ConditionCode:      condCode,
		DeliveryCode:       delivery,
		FileStatus:         status,
		FilestoreResponses: responses,
		FaultLocation:      fault,
	}, nil
}
