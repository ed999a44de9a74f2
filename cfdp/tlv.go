// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cfdp

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
)

// TlvType is the 1 octet type field of a CFDP Type-Length-Value field.
// See 727.0-B-5, 5.4.
type TlvType uint8

// The six recognized TLV type codes.
const (
	TlvFilestoreRequest    TlvType = 0x00
	TlvFilestoreResponse   TlvType = 0x01
	TlvMessageToUser       TlvType = 0x02
	TlvFaultHandlerOverride TlvType = 0x04
	TlvFlowLabel           TlvType = 0x05
	TlvEntityId            TlvType = 0x06
)

func (sf TlvType) String() string {
	switch sf {
	case TlvFilestoreRequest:
		return "FilestoreRequest"
	case TlvFilestoreResponse:
		return "FilestoreResponse"
	case TlvMessageToUser:
		return "MessageToUser"
	case TlvFaultHandlerOverride:
		return "FaultHandlerOverride"
	case TlvFlowLabel:
		return "FlowLabel"
	case TlvEntityId:
		return "EntityId"
	default:
		return "Unknown"
	}
}

func isKnownTlvType(t TlvType) bool {
	switch t {
	case TlvFilestoreRequest, TlvFilestoreResponse, TlvMessageToUser, TlvFaultHandlerOverride, TlvFlowLabel, TlvEntityId:
		return true
	default:
		return false
	}
}

// GenericTlv is the untyped 2-octet-header TLV used as the escape hatch
// for dispatch by callers (such as a PDU factory) that need to inspect
// the type before deciding which concrete variant to re-parse into.
type GenericTlv struct {
	Type  TlvType
	Value []byte
}

// MinTlvLen is the minimum packed length of a TLV: 1 type octet + 1
// length octet.
const MinTlvLen = 2

// Len returns the number of octets the packed TLV occupies.
func (sf GenericTlv) Len() int {
	return MinTlvLen + len(sf.Value)
}

// Pack serializes the TLV as [type, len, value...].
func (sf GenericTlv) Pack() []byte {
	out := make([]byte, 0, sf.Len())
	out = append(out, byte(sf.Type), byte(len(sf.Value)))
	out = append(out, sf.Value...)
	return out
}

// UnpackGenericTlv parses a TLV at the start of data, validating that the
// type octet is one of the six known codes.
func UnpackGenericTlv(data []byte) (GenericTlv, error) {
	if len(data) < MinTlvLen {
		return GenericTlv{}, fmt.Errorf("%w: need %d bytes for tlv header, got %d", sp.ErrBytesTooShort, MinTlvLen, len(data))
	}
	t := TlvType(data[0])
	if !isKnownTlvType(t) {
		return GenericTlv{}, fmt.Errorf("%w: tlv type byte %#02x is not a recognized tlv type", sp.ErrInvalidTlvType, data[0])
	}
	n := int(data[1])
	if MinTlvLen+n > len(data) {
		return GenericTlv{}, fmt.Errorf("%w: tlv declares %d value bytes, only %d available", sp.ErrBytesTooShort, n, len(data)-MinTlvLen)
	}
	value := make([]byte, n)
	copy(value, data[2:2+n])
	return GenericTlv{Type: t, Value: value}, nil
}

func checkTlvType(got, want TlvType) error {
	if got != want {
		return fmt.Errorf("%w: tlv has type %s, expected %s", sp.ErrInvalidTlvType, got, want)
	}
	return nil
}

// EntityIdTlv wraps an UnsignedByteField-shaped entity ID in a TLV, used
// by EOF/Finished fault location.
type EntityIdTlv struct {
	EntityId []byte
}

func (sf EntityIdTlv) Len() int { return MinTlvLen + len(sf.EntityId) }

func (sf EntityIdTlv) Pack() []byte {
	return GenericTlv{Type: TlvEntityId, Value: sf.EntityId}.Pack()
}

func UnpackEntityIdTlv(data []byte) (EntityIdTlv, error) {
	g, err := UnpackGenericTlv(data)
	if err != nil {
		return EntityIdTlv{}, err
	}
	if err := checkTlvType(g.Type, TlvEntityId); err != nil {
		return EntityIdTlv{}, err
	}
	return EntityIdTlv{EntityId: g.Value}, nil
}

// FlowLabelTlv carries an opaque, network-defined flow label.
type FlowLabelTlv struct {
	FlowLabel []byte
}

func (sf FlowLabelTlv) Len() int { return MinTlvLen + len(sf.FlowLabel) }

func (sf FlowLabelTlv) Pack() []byte {
	return GenericTlv{Type: TlvFlowLabel, Value: sf.FlowLabel}.Pack()
}

func UnpackFlowLabelTlv(data []byte) (FlowLabelTlv, error) {
	g, err := UnpackGenericTlv(data)
	if err != nil {
		return FlowLabelTlv{}, err
	}
	if err := checkTlvType(g.Type, TlvFlowLabel); err != nil {
		return FlowLabelTlv{}, err
	}
	return FlowLabelTlv{FlowLabel: g.Value}, nil
}

// FaultHandlerOverrideTlv maps a condition code to the handler action the
// sending entity requests for it.
type FaultHandlerOverrideTlv struct {
	ConditionCode ConditionCode
	HandlerCode   FaultHandlerCode
}

func (sf FaultHandlerOverrideTlv) Len() int { return MinTlvLen + 1 }

func (sf FaultHandlerOverrideTlv) Pack() []byte {
	value := []byte{byte(sf.ConditionCode)<<4 | byte(sf.HandlerCode)&0x0F}
	return GenericTlv{Type: TlvFaultHandlerOverride, Value: value}.Pack()
}

func UnpackFaultHandlerOverrideTlv(data []byte) (FaultHandlerOverrideTlv, error) {
	g, err := UnpackGenericTlv(data)
	if err != nil {
		return FaultHandlerOverrideTlv{}, err
	}
	if err := checkTlvType(g.Type, TlvFaultHandlerOverride); err != nil {
		return FaultHandlerOverrideTlv{}, err
	}
	if len(g.Value) < 1 {
		return FaultHandlerOverrideTlv{}, fmt.Errorf("%w: fault handler override tlv value empty", sp.ErrBytesTooShort)
	}
	return FaultHandlerOverrideTlv{
		ConditionCode: ConditionCode(g.Value[0] >> 4),
		HandlerCode:   FaultHandlerCode(g.Value[0] & 0x0F),
	}, nil
}

// FilestoreRequestTlv asks the receiving entity to perform a filestore
// action as part of Metadata PDU processing.
type FilestoreRequestTlv struct {
	ActionCode     FilestoreActionCode
	FirstFileName  string
	SecondFileName string
}

func (sf FilestoreRequestTlv) value() []byte {
	out := []byte{byte(sf.ActionCode)<<4 | 0b0000}
	firstLv, _ := LvFromString(sf.FirstFileName)
	out = append(out, firstLv.Pack()...)
	if snpAction(sf.ActionCode) {
		secondLv, _ := LvFromString(sf.SecondFileName)
		out = append(out, secondLv.Pack()...)
	}
	return out
}

func (sf FilestoreRequestTlv) Len() int { return MinTlvLen + len(sf.value()) }

func (sf FilestoreRequestTlv) Pack() []byte {
	return GenericTlv{Type: TlvFilestoreRequest, Value: sf.value()}.Pack()
}

func UnpackFilestoreRequestTlv(data []byte) (FilestoreRequestTlv, error) {
	g, err := UnpackGenericTlv(data)
	if err != nil {
		return FilestoreRequestTlv{}, err
	}
	if err := checkTlvType(g.Type, TlvFilestoreRequest); err != nil {
		return FilestoreRequestTlv{}, err
	}
	action, first, second, _, err := unpackFilestoreCommon(g.Value)
	if err != nil {
		return FilestoreRequestTlv{}, err
	}
	return FilestoreRequestTlv{ActionCode: action, FirstFileName: first, SecondFileName: second}, nil
}

// FilestoreResponseTlv reports the result of a filestore action requested
// by a FilestoreRequestTlv, optionally carrying an implementation-defined
// message.
type FilestoreResponseTlv struct {
	ActionCode     FilestoreActionCode
	StatusCode     uint8 // 4 bit status code, 0b1111 == "not performed"
	FirstFileName  string
	SecondFileName string
	FilestoreMsg   []byte
}

func (sf FilestoreResponseTlv) value() []byte {
	out := []byte{byte(sf.ActionCode)<<4 | sf.StatusCode&0x0F}
	firstLv, _ := LvFromString(sf.FirstFileName)
	out = append(out, firstLv.Pack()...)
	if snpAction(sf.ActionCode) {
		secondLv, _ := LvFromString(sf.SecondFileName)
		out = append(out, secondLv.Pack()...)
	}
	msgLv, _ := NewLv(sf.FilestoreMsg)
	out = append(out, msgLv.Pack()...)
	return out
}

func (sf FilestoreResponseTlv) Len() int { return MinTlvLen + len(sf.value()) }

func (sf FilestoreResponseTlv) Pack() []byte {
	return GenericTlv{Type: TlvFilestoreResponse, Value: sf.value()}.Pack()
}

func UnpackFilestoreResponseTlv(data []byte) (FilestoreResponseTlv, error) {
	g, err := UnpackGenericTlv(data)
	if err != nil {
		return FilestoreResponseTlv{}, err
	}
	if err := checkTlvType(g.Type, TlvFilestoreResponse); err != nil {
		return FilestoreResponseTlv{}, err
	}
	action, first, second, idx, err := unpackFilestoreCommon(g.Value)
	if err != nil {
		return FilestoreResponseTlv{}, err
	}
	status := g.Value[0] & 0x0F
	msgLv, err := UnpackLv(g.Value[idx:])
	if err != nil {
		return FilestoreResponseTlv{}, err
	}
	return FilestoreResponseTlv{
		ActionCode:     action,
		StatusCode:     status,
		FirstFileName:  first,
		SecondFileName: second,
		FilestoreMsg:   msgLv.Value(),
	}, nil
}

// unpackFilestoreCommon parses the action|status octet and the one or
// two LV-encoded filenames shared by FilestoreRequest/Response TLVs,
// returning the number of octets consumed.
func unpackFilestoreCommon(raw []byte) (action FilestoreActionCode, first, second string, idx int, err error) {
	if len(raw) < 1 {
		return 0, "", "", 0, fmt.Errorf("%w: filestore tlv value empty", sp.ErrBytesTooShort)
	}
	action = FilestoreActionCode(raw[0] >> 4)
	idx = 1
	firstLv, err := UnpackLv(raw[idx:])
	if err != nil {
		return 0, "", "", 0, err
	}
	first = string(firstLv.Value())
	idx += firstLv.Len()
	if snpAction(action) {
		secondLv, err := UnpackLv(raw[idx:])
		if err != nil {
			return 0, "", "", 0, err
		}
		second = string(secondLv.Value())
		idx += secondLv.Len()
	}
	return action, first, second, idx, nil
}

// MessageToUserTlv is an opaque application-defined message, the
// transport for the CFDP proxy/directory-listing vocabulary (see
// ReservedCfdpMessage).
type MessageToUserTlv struct {
	Value []byte
}

func (sf MessageToUserTlv) Len() int { return MinTlvLen + len(sf.Value) }

func (sf MessageToUserTlv) Pack() []byte {
	return GenericTlv{Type: TlvMessageToUser, Value: sf.Value}.Pack()
}

func UnpackMessageToUserTlv(data []byte) (MessageToUserTlv, error) {
	g, err := UnpackGenericTlv(data)
	if err != nil {
		return MessageToUserTlv{}, err
	}
	if err := checkTlvType(g.Type, TlvMessageToUser); err != nil {
		return MessageToUserTlv{}, err
	}
	return MessageToUserTlv{Value: g.Value}, nil
}
