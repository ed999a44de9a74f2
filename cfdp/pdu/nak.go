// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// SegmentRequest is one (start offset, end offset) pair of a NAK PDU's
// segment-request list. A (0, 0) pair re-requests the Metadata PDU.
type SegmentRequest struct {
	StartOffset uint64
	EndOffset   uint64
}

// NakPdu re-requests file segments (and/or the Metadata PDU) that a
// receiver has not yet seen. A NAK sequence spanning [StartOfScope,
// EndOfScope) may be split across several NakPdus if the segment
// request list would otherwise exceed a transport's maximum packet
// size; see MaxSegReqsForMaxPacketSize. See 727.0-B-5, 5.2.6.
type NakPdu struct {
	header          cfdp.PduHeader
	StartOfScope    uint64
	EndOfScope      uint64
	SegmentRequests []SegmentRequest
}

// NewNakPdu builds a NAK PDU; direction is forced to TowardSender.
func NewNakPdu(cfg cfdp.PduConfig, startOfScope, endOfScope uint64, segmentRequests []SegmentRequest) NakPdu {
	cfg.Direction = cfdp.TowardSender
	n := NakPdu{StartOfScope: startOfScope, EndOfScope: endOfScope, SegmentRequests: segmentRequests}
	n.header = cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 0)
	n.header.PduDataFieldLen = n.dataFieldLen()
	return n
}

func (sf NakPdu) dataFieldLen() uint16 {
	fss := cfdp.FssLen(sf.header.PduConf)
	base := 2*fss + len(sf.SegmentRequests)*2*fss
	return directiveParamLen(base, sf.header.PduConf.CrcFlag)
}

// Header returns the PDU's common header.
func (sf NakPdu) Header() cfdp.PduHeader { return sf.header }

// PacketLen returns the total packed length.
func (sf NakPdu) PacketLen() int { return sf.header.PacketLen() }

// Pack serializes the NAK PDU.
func (sf NakPdu) Pack() []byte {
	out := packDirective(sf.header, cfdp.DirNak)
	out = append(out, cfdp.PackFss(sf.header.PduConf, sf.StartOfScope)...)
	out = append(out, cfdp.PackFss(sf.header.PduConf, sf.EndOfScope)...)
	for _, r := range sf.SegmentRequests {
		out = append(out, cfdp.PackFss(sf.header.PduConf, r.StartOffset)...)
		out = append(out, cfdp.PackFss(sf.header.PduConf, r.EndOffset)...)
	}
	return appendCrcIfSet(out, sf.header.PduConf.CrcFlag)
}

// MaxSegReqsForMaxPacketSize computes how many segment-request pairs
// fit in a NAK PDU built from cfg while staying at or below
// maxPacketSize octets total.
func MaxSegReqsForMaxPacketSize(maxPacketSize int, cfg cfdp.PduConfig) (int, error) {
	header := cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 0)
	fss := cfdp.FssLen(cfg)
	baseDecrement := header.HeaderLen() + 1 + 2*fss
	if cfg.CrcFlag {
		baseDecrement += 2
	}
	if maxPacketSize < baseDecrement {
		return 0, fmt.Errorf("%w: maximum packet size %d too small to hold base nak pdu of %d bytes", sp.ErrInvalidFieldValue, maxPacketSize, baseDecrement)
	}
	return (maxPacketSize - baseDecrement) / (2 * fss), nil
}

// UnpackNakPdu parses a NAK PDU from data.
func UnpackNakPdu(data []byte) (NakPdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return NakPdu{}, err
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return NakPdu{}, err
	}
	code, err := directiveCodeAt(data, header.HeaderLen())
	if err != nil {
		return NakPdu{}, err
	}
	if code != cfdp.DirNak {
		return NakPdu{}, fmt.Errorf("%w: directive code %#02x is not NAK", sp.ErrInvalidDirectiveCode, code)
	}
	fss := cfdp.FssLen(header.PduConf)
	idx := header.HeaderLen() + 1
	if idx+2*fss > len(data) {
		return NakPdu{}, fmt.Errorf("%w: need %d bytes for nak pdu scope fields, got %d", sp.ErrBytesTooShort, idx+2*fss, len(data))
	}
	startOfScope, err := cfdp.UnpackFss(data[idx:], header.PduConf)
	if err != nil {
		return NakPdu{}, err
	}
	idx += fss
	endOfScope, err := cfdp.UnpackFss(data[idx:], header.PduConf)
	if err != nil {
		return NakPdu{}, err
	}
	idx += fss

	body := stripCrcIfSet(data[:header.PacketLen()], header.PduConf.CrcFlag)
	if (len(body)-idx)%(2*fss) != 0 {
		return NakPdu{}, fmt.Errorf("%w: remaining %d bytes of nak pdu not a multiple of %d", sp.ErrInvalidFieldLength, len(body)-idx, 2*fss)
	}
	var reqs []SegmentRequest
	for idx < len(body) {
		start, err := cfdp.UnpackFss(body[idx:], header.PduConf)
		if err != nil {
			return NakPdu{}, err
		}
		idx += fss
		end, err := cfdp.UnpackFss(body[idx:], header.PduConf)
		if err != nil {
			return NakPdu{}, err
		}
		idx += fss
		reqs = append(reqs, SegmentRequest{StartOffset: start, EndOffset: end})
	}
	return NakPdu{header: header, StartOfScope: startOfScope, EndOfScope: endOfScope, SegmentRequests: reqs}, nil
}
