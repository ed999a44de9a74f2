// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// AckPdu acknowledges receipt of an EOF or Finished PDU. See
// 727.0-B-5, 5.2.4.
type AckPdu struct {
	header               cfdp.PduHeader
	DirectiveCodeOfAcked cfdp.DirectiveCode
	DirectiveSubtypeCode uint8
	ConditionCodeOfAcked cfdp.ConditionCode
	TransactionStatus    cfdp.TransactionStatus
}

// NewAckPdu builds an ACK PDU. Only EOF and Finished may be acked;
// direction and the subtype code are derived from which one it is.
func NewAckPdu(cfg cfdp.PduConfig, ackedDirective cfdp.DirectiveCode, ackedCondCode cfdp.ConditionCode, status cfdp.TransactionStatus) (AckPdu, error) {
	var subtype uint8
	switch ackedDirective {
	case cfdp.DirFinished:
		cfg.Direction = cfdp.TowardReceiver
		subtype = 0b0001
	case cfdp.DirEOF:
		cfg.Direction = cfdp.TowardSender
		subtype = 0b0000
	default:
		return AckPdu{}, fmt.Errorf("%w: directive code %s cannot be acked, only EOF and Finished", sp.ErrInvalidDirectiveCode, ackedDirective)
	}
	a := AckPdu{
		DirectiveCodeOfAcked: ackedDirective,
		DirectiveSubtypeCode: subtype,
		ConditionCodeOfAcked: ackedCondCode,
		TransactionStatus:    status,
	}
	a.header = cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 0)
	a.header.PduDataFieldLen = directiveParamLen(2, a.header.PduConf.CrcFlag)
	return a, nil
}

// Header returns the PDU's common header.
func (sf AckPdu) Header() cfdp.PduHeader { return sf.header }

// PacketLen returns the total packed length.
func (sf AckPdu) PacketLen() int { return sf.header.PacketLen() }

// Pack serializes the ACK PDU.
func (sf AckPdu) Pack() []byte {
	out := packDirective(sf.header, cfdp.DirAck)
	out = append(out, byte(sf.DirectiveCodeOfAcked)<<4|sf.DirectiveSubtypeCode&0x0F)
	out = append(out, byte(sf.ConditionCodeOfAcked)<<4|byte(sf.TransactionStatus)&0b11)
	return appendCrcIfSet(out, sf.header.PduConf.CrcFlag)
}

// UnpackAckPdu parses an ACK PDU from data.
func UnpackAckPdu(data []byte) (AckPdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return AckPdu{}, err
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return AckPdu{}, err
	}
	code, err := directiveCodeAt(data, header.HeaderLen())
	if err != nil {
		return AckPdu{}, err
	}
	if code != cfdp.DirAck {
		return AckPdu{}, fmt.Errorf("%w: directive code %#02x is not ACK", sp.ErrInvalidDirectiveCode, code)
	}
	idx := header.HeaderLen() + 1
	if idx+2 > len(data) {
		return AckPdu{}, fmt.Errorf("%w: need %d bytes for ack pdu params, got %d", sp.ErrBytesTooShort, idx+2, len(data))
	}
	ackedDirective := cfdp.DirectiveCode(data[idx] >> 4)
	subtype := data[idx] & 0x0F
	idx++
	ackedCond := cfdp.ConditionCode(data[idx] >> 4)
	status := cfdp.TransactionStatus(data[idx] & 0b11)
	return AckPdu{
		header:               header,
		DirectiveCodeOfAcked: ackedDirective,
		DirectiveSubtypeCode: subtype,
		ConditionCodeOfAcked: ackedCond,
		TransactionStatus:    status,
	}, nil
}
