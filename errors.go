// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package spacepackets implements byte-level building blocks shared by the
// CCSDS space packet, CFDP and ECSS PUS codecs: unsigned byte fields, the
// CRC-16/CCITT-FALSE check and the CDS-short timestamp adjunct.
package spacepackets

import (
	"errors"
	"fmt"
)

// ErrSpacePackets is the umbrella sentinel. Every other sentinel in this
// module wraps it, so errors.Is(err, ErrSpacePackets) catches any decode
// failure from any package without enumerating the individual kinds.
var ErrSpacePackets = errors.New("spacepackets")

// Sentinel errors, one per error kind. Callers wrap these with
// fmt.Errorf("%w: ...", Err..., ctx...) to carry the offending field and
// its value; errors.Is against the sentinel (or against ErrSpacePackets)
// is the public contract.
var (
	ErrBytesTooShort        = compose("bytes too short")
	ErrInvalidFieldValue    = compose("invalid field value")
	ErrUnsupportedVersion   = compose("unsupported version")
	ErrInvalidCrc16         = compose("invalid crc16")
	ErrInvalidTlvType       = compose("invalid tlv type")
	ErrInvalidDirectiveCode = compose("invalid directive code")
	ErrInvalidFieldLength   = compose("invalid field length")
	ErrInvalidVerifParams   = compose("invalid verification params")
	ErrSrcDataTooShort      = compose("source data too short")
)

func compose(msg string) error {
	return fmt.Errorf("%w: %w", ErrSpacePackets, errors.New(msg))
}
