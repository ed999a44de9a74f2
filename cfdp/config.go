// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cfdp

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
)

// PduConfig carries every per-PDU parameter that is not derivable from
// the bytes of the PDU itself: the entity IDs, the transaction sequence
// number, and the mode/flag bits of the common header. It is the sole
// channel CFDP PDU construction parameters travel through — there is no
// global default, mirroring the teacher's Config/Config.Valid() pattern.
type PduConfig struct {
	SourceEntityId      sp.UnsignedByteField
	DestEntityId        sp.UnsignedByteField
	TransactionSeqNum   sp.UnsignedByteField
	TransmissionMode    TransmissionMode
	CrcFlag             bool
	LargeFile           bool
	Direction           Direction
	SegmentationControl SegmentationControl
}

// Valid checks the cross-field invariants the common header requires:
// the source and destination entity ID widths must match, and all three
// UnsignedByteField widths must be one of the four legal widths.
func (sf *PduConfig) Valid() error {
	if sf == nil {
		return fmt.Errorf("%w: nil PduConfig", sp.ErrInvalidFieldValue)
	}
	if !validByteFieldLen(sf.SourceEntityId.Len()) {
		return fmt.Errorf("%w: source entity id length %d not in {1,2,4,8}", sp.ErrInvalidFieldValue, sf.SourceEntityId.Len())
	}
	if !validByteFieldLen(sf.DestEntityId.Len()) {
		return fmt.Errorf("%w: dest entity id length %d not in {1,2,4,8}", sp.ErrInvalidFieldValue, sf.DestEntityId.Len())
	}
	if !validByteFieldLen(sf.TransactionSeqNum.Len()) {
		return fmt.Errorf("%w: transaction seq num length %d not in {1,2,4,8}", sp.ErrInvalidFieldValue, sf.TransactionSeqNum.Len())
	}
	if sf.SourceEntityId.Len() != sf.DestEntityId.Len() {
		return fmt.Errorf("%w: source entity id length %d != dest entity id length %d", sp.ErrInvalidFieldValue, sf.SourceEntityId.Len(), sf.DestEntityId.Len())
	}
	return nil
}

// Empty returns a zero-value PduConfig suitable only as a placeholder
// before a concrete PDU's fields are filled in.
func Empty() PduConfig {
	return PduConfig{
		SourceEntityId:    sp.U8(0),
		DestEntityId:      sp.U8(0),
		TransactionSeqNum: sp.U8(0),
	}
}

// Fss ("File Size Sensitive") fields toggle between 4 and 8 octets
// depending on PduConfig.LargeFile.
func fssWidth(largeFile bool) sp.ByteFieldLen {
	if largeFile {
		return sp.Len8
	}
	return sp.Len4
}

// PackFss serializes a file-size-sensitive value using the width implied
// by cfg.LargeFile.
func PackFss(cfg PduConfig, value uint64) []byte {
	field, _ := sp.NewUnsignedByteField(fssWidth(cfg.LargeFile), value)
	return field.Pack()
}

// UnpackFss parses a file-size-sensitive value from the start of data
// using the width implied by cfg.LargeFile.
func UnpackFss(data []byte, cfg PduConfig) (uint64, error) {
	field, err := sp.UnpackUnsignedByteField(data, fssWidth(cfg.LargeFile))
	if err != nil {
		return 0, err
	}
	return field.Value(), nil
}

// FssLen returns the width in octets of a file-size-sensitive field given
// cfg.LargeFile.
func FssLen(cfg PduConfig) int {
	return int(fssWidth(cfg.LargeFile))
}
