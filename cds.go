// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package spacepackets

import "fmt"

// cdsShortPField is the fixed P-field octet of a CDS-short timestamp:
// no extension, TAI epoch selection left at the CCSDS default, 16 bit day
// segment, no sub-millisecond resolution.
const cdsShortPField = 0x40

// CdsShortTimestampLen is the packed length of a CdsShortTimestamp in
// octets.
const CdsShortTimestampLen = 7

// CdsShortTimestamp is the CCSDS Day Segmented time code in its "short"
// variant (CCSDS 301.0-B-4): a P-field octet, a 16 bit day count since the
// agency epoch and a 32 bit millisecond-of-day count. This library treats
// it as an opaque wire adjunct for timestamp fields embedded in PUS
// telemetry and CFDP PDUs: it is never validated against wall-clock time.
type CdsShortTimestamp struct {
	Days    uint16
	MsOfDay uint32
}

// Pack serializes the timestamp into its 7 octet wire form: the P-field
// followed by the big-endian day count and millisecond-of-day count.
func (sf CdsShortTimestamp) Pack() [CdsShortTimestampLen]byte {
	var out [CdsShortTimestampLen]byte
	out[0] = cdsShortPField
	out[1] = byte(sf.Days >> 8)
	out[2] = byte(sf.Days)
	out[3] = byte(sf.MsOfDay >> 24)
	out[4] = byte(sf.MsOfDay >> 16)
	out[5] = byte(sf.MsOfDay >> 8)
	out[6] = byte(sf.MsOfDay)
	return out
}

// UnpackCdsShortTimestamp parses a 7 octet CDS-short timestamp from the
// start of data. The P-field octet is not interpreted beyond the length
// check; callers that need the epoch/resolution bits should inspect
// data[0] themselves.
func UnpackCdsShortTimestamp(data []byte) (CdsShortTimestamp, error) {
	if len(data) < CdsShortTimestampLen {
		return CdsShortTimestamp{}, fmt.Errorf("%w: need %d bytes for CDS short timestamp, got %d", ErrBytesTooShort, CdsShortTimestampLen, len(data))
	}
	return CdsShortTimestamp{
		Days:    uint16(data[1])<<8 | uint16(data[2]),
		MsOfDay: uint32(data[3])<<24 | uint32(data[4])<<16 | uint32(data[5])<<8 | uint32(data[6]),
	}, nil
}
