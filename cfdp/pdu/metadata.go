// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// MetadataPdu opens a transaction: the overall file size, checksum
// algorithm, source/destination file names, and any filestore-request
// or message-to-user option TLVs. A blank source/dest file name pair
// signals a metadata-only transaction (e.g. a proxy operation message
// with no associated file). See 727.0-B-5, 5.2.5.
type MetadataPdu struct {
	header            cfdp.PduHeader
	ClosureRequested  bool
	ChecksumType      cfdp.ChecksumType
	FileSize          uint64
	SourceFileName    string
	DestFileName      string
	Options           []cfdp.GenericTlv
}

// NewMetadataPdu builds a Metadata PDU; direction is forced to
// TowardReceiver, the only valid direction for this PDU type.
func NewMetadataPdu(cfg cfdp.PduConfig, closureRequested bool, checksumType cfdp.ChecksumType, fileSize uint64, sourceFileName, destFileName string, options []cfdp.GenericTlv) MetadataPdu {
	cfg.Direction = cfdp.TowardReceiver
	m := MetadataPdu{
		ClosureRequested: closureRequested,
		ChecksumType:     checksumType,
		FileSize:         fileSize,
		SourceFileName:   sourceFileName,
		DestFileName:     destFileName,
		Options:          options,
	}
	m.header = cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 0)
	m.header.PduDataFieldLen = m.dataFieldLen()
	return m
}

func (sf MetadataPdu) dataFieldLen() uint16 {
	sourceLv, _ := cfdp.LvFromString(sf.SourceFileName)
	destLv, _ := cfdp.LvFromString(sf.DestFileName)
	base := 1 + cfdp.FssLen(sf.header.PduConf) + sourceLv.Len() + destLv.Len()
	for _, o := range sf.Options {
		base += o.Len()
	}
	return directiveParamLen(base, sf.header.PduConf.CrcFlag)
}

// Header returns the PDU's common header.
func (sf MetadataPdu) Header() cfdp.PduHeader { return sf.header }

// PacketLen returns the total packed length.
func (sf MetadataPdu) PacketLen() int { return sf.header.PacketLen() }

// Pack serializes the Metadata PDU.
func (sf MetadataPdu) Pack() []byte {
	out := packDirective(sf.header, cfdp.DirMetadata)
	closureBit := byte(0)
	if sf.ClosureRequested {
		closureBit = 1 << 6
	}
	out = append(out, closureBit|byte(sf.ChecksumType)&0x0F)
	out = append(out, cfdp.PackFss(sf.header.PduConf, sf.FileSize)...)
	sourceLv, _ := cfdp.LvFromString(sf.SourceFileName)
	destLv, _ := cfdp.LvFromString(sf.DestFileName)
	out = append(out, sourceLv.Pack()...)
	out = append(out, destLv.Pack()...)
	for _, o := range sf.Options {
		out = append(out, o.Pack()...)
	}
	return appendCrcIfSet(out, sf.header.PduConf.CrcFlag)
}

// UnpackMetadataPdu parses a Metadata PDU from data.
func UnpackMetadataPdu(data []byte) (MetadataPdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return MetadataPdu{}, err
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return MetadataPdu{}, err
	}
	code, err := directiveCodeAt(data, header.HeaderLen())
	if err != nil {
		return MetadataPdu{}, err
	}
	if code != cfdp.DirMetadata {
		return MetadataPdu{}, fmt.Errorf("%w: directive code %#02x is not Metadata", sp.ErrInvalidDirectiveCode, code)
	}
	idx := header.HeaderLen() + 1
	minLen := idx + 1 + cfdp.FssLen(header.PduConf) + 2
	if minLen > len(data) {
		return MetadataPdu{}, fmt.Errorf("%w: need %d bytes for metadata pdu, got %d", sp.ErrBytesTooShort, minLen, len(data))
	}
	closureRequested := data[idx]&0x40 != 0
	checksumType := cfdp.ChecksumType(data[idx] & 0x0F)
	idx++
	fileSize, err := cfdp.UnpackFss(data[idx:], header.PduConf)
	if err != nil {
		return MetadataPdu{}, err
	}
	idx += cfdp.FssLen(header.PduConf)

	sourceLv, err := cfdp.UnpackLv(data[idx:])
	if err != nil {
		return MetadataPdu{}, err
	}
	idx += sourceLv.Len()
	destLv, err := cfdp.UnpackLv(data[idx:])
	if err != nil {
		return MetadataPdu{}, err
	}
	idx += destLv.Len()

	body := stripCrcIfSet(data[:header.PacketLen()], header.PduConf.CrcFlag)
	var options []cfdp.GenericTlv
	for idx < len(body) {
		opt, err := cfdp.UnpackGenericTlv(body[idx:])
		if err != nil {
			return MetadataPdu{}, err
		}
		options = append(options, opt)
		idx += opt.Len()
	}
	return MetadataPdu{
		header:           header,
		ClosureRequested: closureRequested,
		ChecksumType:     checksumType,
		FileSize:         fileSize,
		SourceFileName:   string(sourceLv.Value()),
		DestFileName:     string(destLv.Value()),
		Options:          options,
	}, nil
}
