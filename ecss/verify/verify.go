// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package verify implements PUS Service 1 (verification), including the
// Service 1 TM source-data codec and the PusVerificator tracker that
// matches a telecommand's verification TMs against its progress through
// acceptance, start, step and completion. See ECSS-E-ST-70-41C, 8.1.
package verify

import (
	"fmt"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/ecss"
)

// Subservice enumerates the Service 1 subservices. Odd subservices are
// successes, even subservices are failures, per ECSS-E-ST-70-41C, table
// 8-1.
type Subservice uint8

const (
	AcceptanceSuccess Subservice = 1
	AcceptanceFailure Subservice = 2
	StartSuccess      Subservice = 3
	StartFailure      Subservice = 4
	StepSuccess       Subservice = 5
	StepFailure       Subservice = 6
	CompletionSuccess Subservice = 7
	CompletionFailure Subservice = 8
)

func (sf Subservice) String() string {
	switch sf {
	case AcceptanceSuccess:
		return "ACCEPTANCE_SUCCESS"
	case AcceptanceFailure:
		return "ACCEPTANCE_FAILURE"
	case StartSuccess:
		return "START_SUCCESS"
	case StartFailure:
		return "START_FAILURE"
	case StepSuccess:
		return "STEP_SUCCESS"
	case StepFailure:
		return "STEP_FAILURE"
	case CompletionSuccess:
		return "COMPLETION_SUCCESS"
	case CompletionFailure:
		return "COMPLETION_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// IsFailure reports whether the subservice denotes a failure report: the
// even-numbered subservices.
func (sf Subservice) IsFailure() bool {
	return sf%2 == 0
}

// IsStep reports whether the subservice is a step progress report,
// which carries a StepId the others don't.
func (sf Subservice) IsStep() bool {
	return sf == StepSuccess || sf == StepFailure
}

// PacketFieldC is a byte-width-tagged failure code, used for the
// failure notice's error code field. Its width is a managed parameter:
// missions differ on whether they use 1, 2, 4 or 8 octet error codes.
type PacketFieldC struct {
	Value sp.UnsignedByteField
}

// NewPacketFieldC builds a PacketFieldC of the given width.
func NewPacketFieldC(width sp.ByteFieldLen, val uint64) (PacketFieldC, error) {
	v, err := sp.NewUnsignedByteField(width, val)
	if err != nil {
		return PacketFieldC{}, err
	}
	return PacketFieldC{Value: v}, nil
}

// FailureNotice is the error code plus optional free-form data carried
// by even-numbered (failure) subservices. See ECSS-E-ST-70-41C, 8.1.2.4.
type FailureNotice struct {
	Code PacketFieldC
	Data []byte
}

// Len returns the packed length of the failure notice.
func (sf FailureNotice) Len() int {
	return sf.Code.Value.Len() + len(sf.Data)
}

// Pack serializes the failure notice.
func (sf FailureNotice) Pack() []byte {
	out := make([]byte, 0, sf.Len())
	out = append(out, sf.Code.Value.Pack()...)
	out = append(out, sf.Data...)
	return out
}

// VerificationParams is the decoded or to-be-encoded source data of a
// Service 1 TM: the RequestId of the telecommand being reported on,
// plus a StepId (present exactly for step reports) and a FailureNotice
// (present exactly for failure reports). See ECSS-E-ST-70-41C, 8.1.
type VerificationParams struct {
	ReqId         ecss.RequestId
	StepId        *sp.UnsignedByteField
	FailureNotice *FailureNotice
}

// Valid checks a VerificationParams against the structural rules a
// Service 1 TM of the given subservice must follow: a step reply must
// carry a StepId and no other subservice may; a failure (even)
// subservice must carry a FailureNotice and no other subservice may.
func (sf VerificationParams) Valid(subservice Subservice) error {
	if subservice.IsStep() && sf.StepId == nil {
		return fmt.Errorf("%w: subservice %s requires a step id", sp.ErrInvalidVerifParams, subservice)
	}
	if !subservice.IsStep() && sf.StepId != nil {
		return fmt.Errorf("%w: subservice %s must not carry a step id", sp.ErrInvalidVerifParams, subservice)
	}
	if subservice.IsFailure() && sf.FailureNotice == nil {
		return fmt.Errorf("%w: subservice %s requires a failure notice", sp.ErrInvalidVerifParams, subservice)
	}
	if !subservice.IsFailure() && sf.FailureNotice != nil {
		return fmt.Errorf("%w: subservice %s must not carry a failure notice", sp.ErrInvalidVerifParams, subservice)
	}
	return nil
}

// Len returns the packed length of the source data these params encode.
func (sf VerificationParams) Len() int {
	n := ecss.RequestIdLen
	if sf.StepId != nil {
		n += sf.StepId.Len()
	}
	if sf.FailureNotice != nil {
		n += sf.FailureNotice.Len()
	}
	return n
}

func (sf VerificationParams) pack() []byte {
	out := make([]byte, 0, sf.Len())
	out = sf.ReqId.PackInto(out)
	if sf.StepId != nil {
		out = append(out, sf.StepId.Pack()...)
	}
	if sf.FailureNotice != nil {
		out = append(out, sf.FailureNotice.Pack()...)
	}
	return out
}

// BuildService1Tm builds a Service 1 PUS-C telemetry packet reporting
// subservice for the telecommand and verification details in params.
// apid, seqCount, timeRef, msgCounter, destId and timestamp are passed
// through to the owning PUS-C TM as in ecss.NewPusTm.
func BuildService1Tm(subservice Subservice, params VerificationParams, apid uint16, seqCount uint16, timeRef uint8, msgCounter, destId uint16, timestamp []byte) (ecss.PusTm, error) {
	if err := params.Valid(subservice); err != nil {
		return ecss.PusTm{}, err
	}
	return ecss.NewPusTm(apid, seqCount, ecss.ServiceVerification, uint8(subservice), timeRef, msgCounter, destId, timestamp, params.pack())
}

// ParseService1Tm extracts the subservice and verification params from a
// Service 1 TM's source data, rejecting any service other than
// verification. The step ID and the failure code are always read as
// 1 octet fields; params packed by BuildService1Tm with a wider StepId
// or PacketFieldC do not parse back to the same values.
func ParseService1Tm(tm ecss.PusTm) (Subservice, VerificationParams, error) {
	if tm.SecHeader.Service != ecss.ServiceVerification {
		return 0, VerificationParams{}, fmt.Errorf("%w: service %d is not the verification service", sp.ErrInvalidFieldValue, tm.SecHeader.Service)
	}
	subservice := Subservice(tm.SecHeader.Subservice)
	data := tm.SourceData
	if len(data) < ecss.RequestIdLen {
		return 0, VerificationParams{}, fmt.Errorf("%w: need %d bytes for request id, got %d", sp.ErrSrcDataTooShort, ecss.RequestIdLen, len(data))
	}
	reqId, err := ecss.UnpackRequestId(data)
	if err != nil {
		return 0, VerificationParams{}, err
	}
	params := VerificationParams{ReqId: reqId}
	idx := ecss.RequestIdLen
	if subservice.IsStep() {
		if len(data) < idx+1 {
			return 0, VerificationParams{}, fmt.Errorf("%w: need 1 byte for step id, got %d remaining", sp.ErrSrcDataTooShort, len(data)-idx)
		}
		stepId, err := sp.NewUnsignedByteField(sp.Len1, uint64(data[idx]))
		if err != nil {
			return 0, VerificationParams{}, err
		}
		params.StepId = &stepId
		idx++
	}
	if subservice.IsFailure() {
		if len(data) < idx+1 {
			return 0, VerificationParams{}, fmt.Errorf("%w: need at least 1 byte for failure notice, got %d remaining", sp.ErrSrcDataTooShort, len(data)-idx)
		}
		code, err := sp.NewUnsignedByteField(sp.Len1, uint64(data[idx]))
		if err != nil {
			return 0, VerificationParams{}, err
		}
		idx++
		notice := FailureNotice{Code: PacketFieldC{Value: code}, Data: append([]byte(nil), data[idx:]...)}
		params.FailureNotice = &notice
	}
	if err := params.Valid(subservice); err != nil {
		return 0, VerificationParams{}, err
	}
	return subservice, params, nil
}
