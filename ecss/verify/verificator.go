// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package verify

import (
	"github.com/rob-gra/spacepackets-go/ecss"
	"github.com/rob-gra/spacepackets-go/internal/spclog"
)

// StatusField is the tri-state outcome of an acceptance, start, step or
// completion check: unset until a verification TM for that stage
// arrives, then success or failure.
type StatusField int8

const (
	Unset   StatusField = -1
	Failure StatusField = 0
	Success StatusField = 1
)

func (sf StatusField) String() string {
	switch sf {
	case Failure:
		return "FAILURE"
	case Success:
		return "SUCCESS"
	default:
		return "UNSET"
	}
}

// VerificationStatus tracks a single telecommand's progress through the
// Service 1 verification stages. Step reports accumulate in StepList in
// arrival order; Step holds the most recently reported step ID.
type VerificationStatus struct {
	AllVerifsReceived bool
	Accepted          StatusField
	Started           StatusField
	Step              uint64
	StepList          []StatusField
	Completed         StatusField
}

func newVerificationStatus() *VerificationStatus {
	return &VerificationStatus{Accepted: Unset, Started: Unset, Completed: Unset}
}

// CheckResult is the outcome of feeding one verification TM into a
// PusVerificator: the subservice that was applied and the tracked
// telecommand's status immediately afterward.
type CheckResult struct {
	VerificationStatus
	Subservice Subservice
}

// PusVerificator matches Service 1 verification TMs against the
// telecommands they report on, keyed by RequestId. See
// ECSS-E-ST-70-41C, 8.1 and §9.1 of the CCSDS 133.0-B-2/727.0-B-5
// verification chain this mirrors.
type PusVerificator struct {
	entries map[ecss.RequestId]*VerificationStatus
	log     spclog.Provider
}

// NewPusVerificator builds an empty PusVerificator.
func NewPusVerificator() *PusVerificator {
	return &PusVerificator{entries: make(map[ecss.RequestId]*VerificationStatus)}
}

// SetLogger installs a logging provider for tracing applied TMs. A nil
// provider (the default) disables tracing.
func (sf *PusVerificator) SetLogger(p spclog.Provider) {
	sf.log = p
}

// AddTc registers a telecommand for verification tracking. It reports
// false without modifying any state if the telecommand's RequestId is
// already tracked.
func (sf *PusVerificator) AddTc(tc ecss.PusTc) bool {
	reqId := tc.RequestId()
	if _, ok := sf.entries[reqId]; ok {
		return false
	}
	sf.entries[reqId] = newVerificationStatus()
	return true
}

// AddTcPusA registers a PUS-A telecommand for verification tracking.
func (sf *PusVerificator) AddTcPusA(tc ecss.PusTcPusA) bool {
	reqId := tc.RequestId()
	if _, ok := sf.entries[reqId]; ok {
		return false
	}
	sf.entries[reqId] = newVerificationStatus()
	return true
}

// AddTm applies a verification TM's subservice and params to the
// tracked telecommand matching params.ReqId, returning the updated
// status. The second return value is false if no telecommand with that
// RequestId is tracked, in which case the TM is ignored.
func (sf *PusVerificator) AddTm(subservice Subservice, params VerificationParams) (*CheckResult, bool) {
	status, ok := sf.entries[params.ReqId]
	if !ok {
		return nil, false
	}
	sf.applySubservice(status, subservice, params)
	result := &CheckResult{VerificationStatus: *status, Subservice: subservice}
	return result, true
}

func (sf *PusVerificator) applySubservice(status *VerificationStatus, subservice Subservice, params VerificationParams) {
	switch subservice {
	case AcceptanceSuccess:
		status.Accepted = Success
	case AcceptanceFailure:
		status.Accepted = Failure
		status.AllVerifsReceived = true
	case StartSuccess:
		status.Started = Success
	case StartFailure:
		status.Started = Failure
		status.AllVerifsReceived = true
	case StepSuccess:
		status.StepList = append(status.StepList, Success)
		if params.StepId != nil {
			status.Step = params.StepId.Value()
		}
	case StepFailure:
		status.StepList = append(status.StepList, Failure)
		if params.StepId != nil {
			status.Step = params.StepId.Value()
		}
		status.AllVerifsReceived = true
	case CompletionSuccess:
		status.Completed = Success
		status.AllVerifsReceived = true
	case CompletionFailure:
		status.Completed = Failure
		status.AllVerifsReceived = true
	}
	if sf.log != nil {
		sf.log.Debug("verificator: applied subservice %s, all_verifs_received=%t", subservice, status.AllVerifsReceived)
	}
}

// Status returns the tracked status for reqId, if any.
func (sf *PusVerificator) Status(reqId ecss.RequestId) (VerificationStatus, bool) {
	status, ok := sf.entries[reqId]
	if !ok {
		return VerificationStatus{}, false
	}
	return *status, true
}

// RemoveEntry stops tracking reqId, reporting false if it wasn't
// tracked.
func (sf *PusVerificator) RemoveEntry(reqId ecss.RequestId) bool {
	if _, ok := sf.entries[reqId]; !ok {
		return false
	}
	delete(sf.entries, reqId)
	return true
}

// RemoveCompletedEntries drops every tracked telecommand whose
// verification chain has reached a terminal outcome (a failure at any
// stage, or a completion report), returning the number removed.
func (sf *PusVerificator) RemoveCompletedEntries() int {
	removed := 0
	for reqId, status := range sf.entries {
		if status.AllVerifsReceived {
			delete(sf.entries, reqId)
			removed++
		}
	}
	return removed
}

// Len returns the number of telecommands currently tracked.
func (sf *PusVerificator) Len() int {
	return len(sf.entries)
}
