// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
)

// SegmentMetadata is the optional record-boundary annotation a
// FileDataPdu may carry ahead of its offset field. Metadata is limited
// to 63 octets by the 6 bit length field it is packed with.
type SegmentMetadata struct {
	RecordContState cfdp.RecordContinuationState
	Metadata        []byte
}

// FileDataPdu carries one contiguous slice of file content. See
// 727.0-B-5, 5.3.
type FileDataPdu struct {
	header          cfdp.PduHeader
	SegmentMetadata *SegmentMetadata
	Offset          uint64
	FileData        []byte
}

// NewFileDataPdu builds a FileData PDU; direction is forced to
// TowardReceiver. Segment metadata is limited to 63 octets by the 6
// bit length field it is packed with.
func NewFileDataPdu(cfg cfdp.PduConfig, offset uint64, fileData []byte, segmentMetadata *SegmentMetadata) (FileDataPdu, error) {
	if segmentMetadata != nil && len(segmentMetadata.Metadata) > 63 {
		return FileDataPdu{}, fmt.Errorf("%w: segment metadata length %d exceeds 63 bytes", sp.ErrInvalidFieldValue, len(segmentMetadata.Metadata))
	}
	cfg.Direction = cfdp.TowardReceiver
	f := FileDataPdu{Offset: offset, FileData: fileData, SegmentMetadata: segmentMetadata}
	segFlag := cfdp.SegmentMetadataNotPresent
	if segmentMetadata != nil {
		segFlag = cfdp.SegmentMetadataPresent
	}
	f.header = cfdp.NewPduHeader(cfdp.FileData, segFlag, cfg, 0)
	f.header.PduDataFieldLen = uint16(f.dataFieldLen())
	return f, nil
}

func (sf FileDataPdu) dataFieldLen() int {
	n := 0
	if sf.SegmentMetadata != nil {
		n += 1 + len(sf.SegmentMetadata.Metadata)
	}
	n += cfdp.FssLen(sf.header.PduConf)
	n += len(sf.FileData)
	if sf.header.PduConf.CrcFlag {
		n += 2
	}
	return n
}

// Header returns the PDU's common header.
func (sf FileDataPdu) Header() cfdp.PduHeader { return sf.header }

// PacketLen returns the total packed length.
func (sf FileDataPdu) PacketLen() int { return sf.header.PacketLen() }

// MaxFileSegLenForMaxPacketLen computes how large a file-data chunk
// may be so the resulting FileDataPdu (with this offset/segment
// metadata shape) stays at or below maxPacketLen octets.
func MaxFileSegLenForMaxPacketLen(cfg cfdp.PduConfig, maxPacketLen int, segmentMetadata *SegmentMetadata) (int, error) {
	header := cfdp.NewPduHeader(cfdp.FileData, cfdp.SegmentMetadataNotPresent, cfg, 0)
	subtract := header.HeaderLen()
	if segmentMetadata != nil {
		subtract += 1 + len(segmentMetadata.Metadata)
	}
	subtract += cfdp.FssLen(cfg)
	if cfg.CrcFlag {
		subtract += 2
	}
	if maxPacketLen < subtract {
		return 0, fmt.Errorf("%w: max packet length %d cannot even hold base file data pdu of %d bytes", sp.ErrInvalidFieldValue, maxPacketLen, subtract)
	}
	return maxPacketLen - subtract, nil
}

// Pack serializes the FileData PDU. The caller is responsible for
// having built it through NewFileDataPdu, which validates segment
// metadata length.
func (sf FileDataPdu) Pack() []byte {
	out := sf.header.Pack()
	if sf.SegmentMetadata != nil {
		n := len(sf.SegmentMetadata.Metadata)
		out = append(out, byte(sf.SegmentMetadata.RecordContState)<<6|byte(n))
		out = append(out, sf.SegmentMetadata.Metadata...)
	}
	out = append(out, cfdp.PackFss(sf.header.PduConf, sf.Offset)...)
	out = append(out, sf.FileData...)
	return appendCrcIfSet(out, sf.header.PduConf.CrcFlag)
}

// UnpackFileDataPdu parses a FileData PDU from data.
func UnpackFileDataPdu(data []byte) (FileDataPdu, error) {
	header, err := cfdp.UnpackPduHeader(data)
	if err != nil {
		return FileDataPdu{}, err
	}
	if header.PduType != cfdp.FileData {
		return FileDataPdu{}, fmt.Errorf("%w: pdu type %s is not FileData", sp.ErrInvalidFieldValue, header.PduType)
	}
	if err := header.VerifyLengthAndChecksum(data); err != nil {
		return FileDataPdu{}, err
	}
	idx := header.HeaderLen()
	var segMeta *SegmentMetadata
	if header.SegmentMetadataFlag == cfdp.SegmentMetadataPresent {
		if idx >= len(data) {
			return FileDataPdu{}, fmt.Errorf("%w: need %d bytes for segment metadata header byte, got %d", sp.ErrBytesTooShort, idx+1, len(data))
		}
		recContState := cfdp.RecordContinuationState((data[idx] & 0xC0) >> 6)
		n := int(data[idx] & 0x3F)
		idx++
		if idx+n > len(data) {
			return FileDataPdu{}, fmt.Errorf("%w: need %d bytes for segment metadata value, got %d", sp.ErrBytesTooShort, idx+n, len(data))
		}
		metadata := make([]byte, n)
		copy(metadata, data[idx:idx+n])
		idx += n
		segMeta = &SegmentMetadata{RecordContState: recContState, Metadata: metadata}
	}
	fss := cfdp.FssLen(header.PduConf)
	if idx+fss > len(data) {
		return FileDataPdu{}, fmt.Errorf("%w: packet too small to accommodate offset field", sp.ErrBytesTooShort)
	}
	offset, err := cfdp.UnpackFss(data[idx:], header.PduConf)
	if err != nil {
		return FileDataPdu{}, err
	}
	idx += fss

	body := stripCrcIfSet(data[:header.PacketLen()], header.PduConf.CrcFlag)
	var fileData []byte
	if idx < len(body) {
		fileData = make([]byte, len(body)-idx)
		copy(fileData, body[idx:])
	}
	return FileDataPdu{header: header, SegmentMetadata: segMeta, Offset: offset, FileData: fileData}, nil
}
