// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// PduHolder wraps a raw PDU buffer together with its parsed common
// header, letting a caller decide whether it is a file-directive or
// file-data PDU, and which directive, before committing to a full
// concrete parse.
type PduHolder struct {
	raw    []byte
	header cfdp.PduHeader
}

// NewPduHolder parses just the common header from data, leaving the
// body unparsed.
func NewPduHolder(data []byte) (PduHolder, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return PduHolder{}, err
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return PduHolder{}, err
	}
	return PduHolder{raw: data[:header.PacketLen()], header: header}, nil
}

// Header returns the parsed common header.
func (sf PduHolder) Header() cfdp.PduHeader { return sf.header }

// IsFileDirective reports whether the wrapped PDU is a file-directive
// PDU (as opposed to file data).
func (sf PduHolder) IsFileDirective() bool {
	return sf.header.PduType == cfdp.FileDirective
}

// DirectiveType returns the directive code of a file-directive PDU.
// Calling it on a file-data PDU is a programming error.
func (sf PduHolder) DirectiveType() (cfdp.DirectiveCode, error) {
	return directiveCodeAt(sf.raw, sf.header.HeaderLen())
}

// Unpack dispatches to the concrete PDU type's unpack function and
// returns it as the shared Pdu interface.
func (sf PduHolder) Unpack() (Pdu, error) {
	return FromRaw(sf.raw)
}

// FromRaw parses data into whichever concrete PDU type its common
// header and (for file directives) directive code indicate.
func FromRaw(data []byte) (Pdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return nil, err
	}
	if header.PduType == cfdp.FileData {
		return UnpackFileDataPdu(data)
	}
	code, err := directiveCodeAt(data, header.HeaderLen())
	if err != nil {
		return nil, err
	}
	switch code {
	case cfdp.DirEOF:
		return UnpackEOFPdu(data)
	case cfdp.DirFinished:
		return UnpackFinishedPdu(data)
	case cfdp.DirAck:
		return UnpackAckPdu(data)
	case cfdp.DirMetadata:
		return UnpackMetadataPdu(data)
	case cfdp.DirNak:
		return UnpackNakPdu(data)
	case cfdp.DirPrompt:
		return UnpackPromptPdu(data)
	case cfdp.DirKeepAlive:
		return UnpackKeepAlivePdu(data)
	default:
		return nil, fmt.Errorf("%w: unrecognized directive code %#02x", sp.ErrInvalidDirectiveCode, code)
	}
}
