// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// PromptPdu asks the other entity to issue a NAK or a KeepAlive PDU
// out of its normal schedule. See 727.0-B-5, 5.2.7.
type PromptPdu struct {
	header           cfdp.PduHeader
	ResponseRequired cfdp.ResponseRequired
}

// NewPromptPdu builds a Prompt PDU; direction is forced to
// TowardReceiver.
func NewPromptPdu(cfg cfdp.PduConfig, responseRequired cfdp.ResponseRequired) PromptPdu {
	cfg.Direction = cfdp.TowardReceiver
	p := PromptPdu{ResponseRequired: responseRequired}
	p.header = cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 0)
	p.header.PduDataFieldLen = directiveParamLen(1, p.header.PduConf.CrcFlag)
	return p
}

// Header returns the PDU's common header.
func (sf PromptPdu) Header() cfdp.PduHeader { return sf.header }

// PacketLen returns the total packed length.
func (sf PromptPdu) PacketLen() int { return sf.header.PacketLen() }

// Pack serializes the Prompt PDU.
func (sf PromptPdu) Pack() []byte {
	out := packDirective(sf.header, cfdp.DirPrompt)
	out = append(out, byte(sf.ResponseRequired)<<7)
	return appendCrcIfSet(out, sf.header.PduConf.CrcFlag)
}

// UnpackPromptPdu parses a Prompt PDU from data.
func UnpackPromptPdu(data []byte) (PromptPdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return PromptPdu{}, err
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return PromptPdu{}, err
	}
	code, err := directiveCodeAt(data, header.HeaderLen())
	if err != nil {
		return PromptPdu{}, err
	}
	if code != cfdp.DirPrompt {
		return PromptPdu{}, fmt.Errorf("%w: directive code %#02x is not Prompt", sp.ErrInvalidDirectiveCode, code)
	}
	idx := header.HeaderLen() + 1
	if idx >= len(data) {
		return PromptPdu{}, fmt.Errorf("%w: need %d bytes for prompt pdu response byte, got %d", sp.ErrBytesTooShort, idx+1, len(data))
	}
	responseRequired := cfdp.ResponseRequired((data[idx] & 0x80) >> 7)
	return PromptPdu{header: header, ResponseRequired: responseRequired}, nil
}
