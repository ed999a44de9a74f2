// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package pdu implements the eight CCSDS File Delivery Protocol PDU
// bodies (727.0-B-5): the seven file-directive PDUs and the file-data
// PDU, plus a factory that dispatches a raw buffer to the right concrete
// type.
package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// Pdu is satisfied by every concrete PDU type in this package.
type Pdu interface {
	Pack() []byte
	PacketLen() int
	Header() cfdp.PduHeader
}

// appendCrcIfSet appends a big-endian CRC-16/CCITT-FALSE trailer over
// buf if crcFlag is set.
func appendCrcIfSet(buf []byte, crcFlag bool) []byte {
	if !crcFlag {
		return buf
	}
	crc := sp.Crc16Ccitt(buf)
	return append(buf, byte(crc>>8), byte(crc))
}

// stripCrcIfSet returns data with its trailing 2 octet CRC removed if
// crcFlag is set, after verifying the header's VerifyLengthAndChecksum
// has already been called by the caller.
func stripCrcIfSet(data []byte, crcFlag bool) []byte {
	if !crcFlag {
		return data
	}
	return data[:len(data)-2]
}

// directiveParamLen returns the packed pdu_data_field_len for a
// file-directive PDU: the 1 octet directive code that packDirective
// always prepends, plus base octets of directive parameters, plus a
// trailing CRC-16 if crcFlag is set.
func directiveParamLen(base int, crcFlag bool) uint16 {
	n := 1 + base
	if crcFlag {
		n += 2
	}
	return uint16(n)
}

// packDirective builds the common header + directive-code prefix shared
// by every file-directive PDU.
func packDirective(header cfdp.PduHeader, code cfdp.DirectiveCode) []byte {
	out := header.Pack()
	return append(out, byte(code))
}

func directiveCodeAt(data []byte, headerLen int) (cfdp.DirectiveCode, error) {
	if len(data) < headerLen+1 {
		return 0, fmt.Errorf("%w: need %d bytes to read directive code, got %d", sp.ErrBytesTooShort, headerLen+1, len(data))
	}
	return cfdp.DirectiveCode(data[headerLen]), nil
}
