// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// KeepAlivePdu reports the sender's current file-reception progress so
// the other entity can detect a stalled transaction. See 727.0-B-5,
// 5.2.8.
type KeepAlivePdu struct {
	header   cfdp.PduHeader
	Progress uint64
}

// NewKeepAlivePdu builds a KeepAlive PDU; direction is forced to
// TowardSender.
func NewKeepAlivePdu(cfg cfdp.PduConfig, progress uint64) KeepAlivePdu {
	cfg.Direction = cfdp.TowardSender
	k := KeepAlivePdu{Progress: progress}
	k.header = cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 0)
	k.header.PduDataFieldLen = directiveParamLen(cfdp.FssLen(k.header.PduConf), k.header.PduConf.CrcFlag)
	return k
}

// Header returns the PDU's common header.
func (sf KeepAlivePdu) Header() cfdp.PduHeader { return sf.header }

// PacketLen returns the total packed length.
func (sf KeepAlivePdu) PacketLen() int { return sf.header.PacketLen() }

// Pack serializes the KeepAlive PDU.
func (sf KeepAlivePdu) Pack() []byte {
	out := packDirective(sf.header, cfdp.DirKeepAlive)
	out = append(out, cfdp.PackFss(sf.header.PduConf, sf.Progress)...)
	return appendCrcIfSet(out, sf.header.PduConf.CrcFlag)
}

// UnpackKeepAlivePdu parses a KeepAlive PDU from data.
func UnpackKeepAlivePdu(data []byte) (KeepAlivePdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return KeepAlivePdu{}, err
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return KeepAlivePdu{}, err
	}
	code, err := directiveCodeAt(data, header.HeaderLen())
	if err != nil {
		return KeepAlivePdu{}, err
	}
	if code != cfdp.DirKeepAlive {
		return KeepAlivePdu{}, fmt.Errorf("%w: directive code %#02x is not KeepAlive", sp.ErrInvalidDirectiveCode, code)
	}
	idx := header.HeaderLen() + 1
	fss := cfdp.FssLen(header.PduConf)
	if idx+fss > len(data) {
		return KeepAlivePdu{}, fmt.Errorf("%w: need %d bytes for keep alive pdu progress field, got %d", sp.ErrBytesTooShort, idx+fss, len(data))
	}
	progress, err := cfdp.UnpackFss(data[idx:], header.PduConf)
	if err != nil {
		return KeepAlivePdu{}, err
	}
	return KeepAlivePdu{header: header, Progress: progress}, nil
}
