// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cfdp

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
)

// reservedMsgMagic is the 4 ASCII octets every reserved CFDP message
// begins with. See 727.0-B-5, 6.1.
const reservedMsgMagic = "cfdp"

// ProxyMessageType enumerates the reserved CFDP proxy operation message
// type IDs.
type ProxyMessageType uint8

const (
	ProxyPutRequest      ProxyMessageType = 0x00
	ProxyMsgToUserPutCancel ProxyMessageType = 0x01
	ProxyClosureRequest  ProxyMessageType = 0x04
	ProxyPutResponse     ProxyMessageType = 0x07
	ProxyTransmissionMode ProxyMessageType = 0x09
	ProxyPutCancel       ProxyMessageType = 0x0B
)

func isProxyMessageType(t uint8) bool {
	switch ProxyMessageType(t) {
	case ProxyPutRequest, ProxyMsgToUserPutCancel, ProxyClosureRequest, ProxyPutResponse, ProxyTransmissionMode, ProxyPutCancel:
		return true
	default:
		return false
	}
}

// DirectoryOperationMessageType enumerates the reserved CFDP directory
// operation message type IDs.
type DirectoryOperationMessageType uint8

const (
	DirListingRequest         DirectoryOperationMessageType = 0x10
	DirListingResponse        DirectoryOperationMessageType = 0x11
	DirCustomListingParameters DirectoryOperationMessageType = 0x15
)

func isDirectoryMessageType(t uint8) bool {
	switch DirectoryOperationMessageType(t) {
	case DirListingRequest, DirListingResponse, DirCustomListingParameters:
		return true
	default:
		return false
	}
}

// OriginatingTransactionIdMsgType is the reserved message type ID carrying
// the originating transaction ID of a proxy operation.
const OriginatingTransactionIdMsgType uint8 = 0x0A

// ReservedCfdpMessage is a MessageToUserTlv whose value begins with the
// "cfdp" magic followed by a 1 octet message-type ID: the vocabulary used
// by proxy put operations, directory listing operations and originating
// transaction ID propagation. Accessors are lazy: they return (T, false)
// rather than an error when the type ID does not match the requested
// sub-variant.
type ReservedCfdpMessage struct {
	MsgType uint8
	Value   []byte
}

// NewReservedCfdpMessage builds a reserved message from a type ID and its
// payload (not including the "cfdp" magic or the type octet).
func NewReservedCfdpMessage(msgType uint8, value []byte) ReservedCfdpMessage {
	return ReservedCfdpMessage{MsgType: msgType, Value: value}
}

// ToMessageToUserTlv converts the reserved message to a MessageToUserTlv
// carrying the "cfdp" magic, the type octet and the payload.
func (sf ReservedCfdpMessage) ToMessageToUserTlv() MessageToUserTlv {
	full := make([]byte, 0, 5+len(sf.Value))
	full = append(full, reservedMsgMagic...)
	full = append(full, sf.MsgType)
	full = append(full, sf.Value...)
	return MessageToUserTlv{Value: full}
}

// IsReservedCfdpMessage reports whether a MessageToUserTlv carries the
// "cfdp" magic and is therefore convertible via ReservedFromMessageToUser.
func IsReservedCfdpMessage(m MessageToUserTlv) bool {
	return len(m.Value) >= 5 && string(m.Value[0:4]) == reservedMsgMagic
}

// ReservedFromMessageToUser attempts to reinterpret a MessageToUserTlv as
// a ReservedCfdpMessage, returning false if it does not carry the "cfdp"
// magic.
func ReservedFromMessageToUser(m MessageToUserTlv) (ReservedCfdpMessage, bool) {
	if !IsReservedCfdpMessage(m) {
		return ReservedCfdpMessage{}, false
	}
	return ReservedCfdpMessage{MsgType: m.Value[4], Value: m.Value[5:]}, true
}

// IsCfdpProxyOperation reports whether MsgType names one of the proxy
// operation sub-variants.
func (sf ReservedCfdpMessage) IsCfdpProxyOperation() bool {
	return isProxyMessageType(sf.MsgType)
}

// IsDirectoryOperation reports whether MsgType names one of the directory
// operation sub-variants.
func (sf ReservedCfdpMessage) IsDirectoryOperation() bool {
	return isDirectoryMessageType(sf.MsgType)
}

// IsOriginatingTransactionId reports whether this message carries an
// originating transaction ID.
func (sf ReservedCfdpMessage) IsOriginatingTransactionId() bool {
	return sf.MsgType == OriginatingTransactionIdMsgType
}

// ProxyPutRequestParams is the payload of a proxy put request reserved
// message.
type ProxyPutRequestParams struct {
	DestEntityId   []byte
	SourceFileName string
	DestFileName   string
}

// AsProxyPutRequest extracts the proxy put request parameters, returning
// false if this message is not a proxy put request or its value is
// malformed.
func (sf ReservedCfdpMessage) AsProxyPutRequest() (ProxyPutRequestParams, bool) {
	if !sf.IsCfdpProxyOperation() || ProxyMessageType(sf.MsgType) != ProxyPutRequest {
		return ProxyPutRequestParams{}, false
	}
	idx := 0
	destIdLv, err := UnpackLv(sf.Value[idx:])
	if err != nil {
		return ProxyPutRequestParams{}, false
	}
	idx += destIdLv.Len()
	sourceLv, err := UnpackLv(sf.Value[idx:])
	if err != nil {
		return ProxyPutRequestParams{}, false
	}
	idx += sourceLv.Len()
	destLv, err := UnpackLv(sf.Value[idx:])
	if err != nil {
		return ProxyPutRequestParams{}, false
	}
	return ProxyPutRequestParams{
		DestEntityId:   destIdLv.Value(),
		SourceFileName: string(sourceLv.Value()),
		DestFileName:   string(destLv.Value()),
	}, true
}

// ProxyPutResponseParams is the payload of a proxy put response reserved
// message.
type ProxyPutResponseParams struct {
	ConditionCode ConditionCode
	DeliveryCode  DeliveryCode
	FileStatus    FileStatus
}

// AsProxyPutResponse extracts the proxy put response parameters, returning
// false if this message is not a proxy put response or too short.
func (sf ReservedCfdpMessage) AsProxyPutResponse() (ProxyPutResponseParams, bool) {
	if !sf.IsCfdpProxyOperation() || ProxyMessageType(sf.MsgType) != ProxyPutResponse || len(sf.Value) < 1 {
		return ProxyPutResponseParams{}, false
	}
	b := sf.Value[0]
	return ProxyPutResponseParams{
		ConditionCode: ConditionCode((b >> 4) & 0x0F),
		DeliveryCode:  DeliveryCode((b >> 2) & 0b1),
		FileStatus:    FileStatus(b & 0b11),
	}, true
}

// AsProxyClosureRequested extracts the closure-requested flag, returning
// false if this message is not a proxy closure request.
func (sf ReservedCfdpMessage) AsProxyClosureRequested() (bool, bool) {
	if !sf.IsCfdpProxyOperation() || ProxyMessageType(sf.MsgType) != ProxyClosureRequest || len(sf.Value) < 1 {
		return false, false
	}
	return sf.Value[0]&0b1 != 0, true
}

// AsProxyTransmissionMode extracts the requested transmission mode,
// returning false if this message is not a proxy transmission-mode
// message.
func (sf ReservedCfdpMessage) AsProxyTransmissionMode() (TransmissionMode, bool) {
	if !sf.IsCfdpProxyOperation() || ProxyMessageType(sf.MsgType) != ProxyTransmissionMode || len(sf.Value) < 1 {
		return 0, false
	}
	return TransmissionMode(sf.Value[0] & 0b1), true
}

// OriginatingTransactionId is the (source entity id, transaction sequence
// number) pair a proxy response carries back to identify the transaction
// that originated it. Both fields reuse the root package's
// UnsignedByteField, demonstrating the layering the originating-
// transaction-id sub-TLV was introduced to exercise.
type OriginatingTransactionId struct {
	SourceEntityId    sp.UnsignedByteField
	TransactionSeqNum sp.UnsignedByteField
}

// AsOriginatingTransactionId extracts the originating transaction ID,
// returning false if this message does not carry one or is too short.
func (sf ReservedCfdpMessage) AsOriginatingTransactionId() (OriginatingTransactionId, bool) {
	if !sf.IsOriginatingTransactionId() || len(sf.Value) < 1 {
		return OriginatingTransactionId{}, false
	}
	sourceLen := sp.ByteFieldLen(((sf.Value[0] >> 4) & 0b111) + 1)
	seqLen := sp.ByteFieldLen((sf.Value[0] & 0b111) + 1)
	idx := 1
	if idx+int(sourceLen)+int(seqLen) > len(sf.Value) {
		return OriginatingTransactionId{}, false
	}
	source, err := sp.UnpackUnsignedByteField(sf.Value[idx:], sourceLen)
	if err != nil {
		return OriginatingTransactionId{}, false
	}
	idx += int(sourceLen)
	seq, err := sp.UnpackUnsignedByteField(sf.Value[idx:], seqLen)
	if err != nil {
		return OriginatingTransactionId{}, false
	}
	return OriginatingTransactionId{SourceEntityId: source, TransactionSeqNum: seq}, true
}

// NewOriginatingTransactionIdMessage builds the reserved message carrying
// an originating transaction ID.
func NewOriginatingTransactionIdMessage(source, seq sp.UnsignedByteField) (ReservedCfdpMessage, error) {
	if !validByteFieldLen(source.Len()) || !validByteFieldLen(seq.Len()) {
		return ReservedCfdpMessage{}, fmt.Errorf("%w: source/seq byte length must be one of 1,2,4,8", sp.ErrInvalidFieldValue)
	}
	value := []byte{byte((source.Len()-1)<<4) | byte(seq.Len()-1)}
	value = append(value, source.Pack()...)
	value = append(value, seq.Pack()...)
	return NewReservedCfdpMessage(OriginatingTransactionIdMsgType, value), nil
}

func validByteFieldLen(n int) bool {
	switch n {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// DirectoryParams is the shared (dir_path, dir_file_name) payload of the
// directory listing request/response reserved messages.
type DirectoryParams struct {
	DirPath     string
	DirFileName string
}

// AsDirectoryListingRequest extracts the directory listing request
// parameters, returning false if this message is not one.
func (sf ReservedCfdpMessage) AsDirectoryListingRequest() (DirectoryParams, bool) {
	if !sf.IsDirectoryOperation() || DirectoryOperationMessageType(sf.MsgType) != DirListingRequest {
		return DirectoryParams{}, false
	}
	return unpackDirectoryParams(sf.Value)
}

// AsDirectoryListingResponse extracts the directory listing response
// success flag and parameters, returning false if this message is not
// one.
func (sf ReservedCfdpMessage) AsDirectoryListingResponse() (bool, DirectoryParams, bool) {
	if !sf.IsDirectoryOperation() || DirectoryOperationMessageType(sf.MsgType) != DirListingResponse || len(sf.Value) < 1 {
		return false, DirectoryParams{}, false
	}
	success := sf.Value[0]&0x80 != 0
	params, ok := unpackDirectoryParams(sf.Value[1:])
	return success, params, ok
}

func unpackDirectoryParams(raw []byte) (DirectoryParams, bool) {
	pathLv, err := UnpackLv(raw)
	if err != nil {
		return DirectoryParams{}, false
	}
	nameLv, err := UnpackLv(raw[pathLv.Len():])
	if err != nil {
		return DirectoryParams{}, false
	}
	return DirectoryParams{DirPath: string(pathLv.Value()), DirFileName: string(nameLv.Value())}, true
}

// DirListingOptions is the payload of the custom (non-standard)
// directory listing options reserved message.
type DirListingOptions struct {
	Recursive bool
	All       bool
}

// AsDirectoryListingOptions extracts the custom listing options, returning
// false if this message is not one.
func (sf ReservedCfdpMessage) AsDirectoryListingOptions() (DirListingOptions, bool) {
	if !sf.IsDirectoryOperation() || DirectoryOperationMessageType(sf.MsgType) != DirCustomListingParameters || len(sf.Value) < 1 {
		return DirListingOptions{}, false
	}
	b := sf.Value[0]
	return DirListingOptions{Recursive: b&0b10 != 0, All: b&0b1 != 0}, true
}
