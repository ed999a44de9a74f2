// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package verify

import (
	"testing"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/ecss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackedTc(t *testing.T, v *PusVerificator, apid uint16, seqCount uint16) ecss.PusTc {
	tc, err := ecss.NewPusTc(apid, seqCount, ecss.ServiceVerification, 1, 0, 0, nil, false)
	require.NoError(t, err)
	require.True(t, v.AddTc(tc))
	return tc
}

func TestPusVerificatorAcceptanceStartCompletion(t *testing.T) {
	v := NewPusVerificator()
	tc := newTrackedTc(t, v, 0x10, 1)
	reqId := tc.RequestId()

	res, ok := v.AddTm(AcceptanceSuccess, VerificationParams{ReqId: reqId})
	require.True(t, ok)
	assert.Equal(t, Success, res.Accepted)
	assert.False(t, res.AllVerifsReceived)

	res, ok = v.AddTm(StartSuccess, VerificationParams{ReqId: reqId})
	require.True(t, ok)
	assert.Equal(t, Success, res.Started)
	assert.False(t, res.AllVerifsReceived)

	res, ok = v.AddTm(CompletionSuccess, VerificationParams{ReqId: reqId})
	require.True(t, ok)
	assert.Equal(t, Success, res.Completed)
	assert.True(t, res.AllVerifsReceived)
}

func TestPusVerificatorStepFailureStopsChain(t *testing.T) {
	v := NewPusVerificator()
	tc := newTrackedTc(t, v, 0x10, 2)
	reqId := tc.RequestId()

	stepId, err := sp.NewUnsignedByteField(sp.Len1, 2)
	require.NoError(t, err)
	code, err := NewPacketFieldC(sp.Len1, 9)
	require.NoError(t, err)
	notice := FailureNotice{Code: code}

	res, ok := v.AddTm(StepFailure, VerificationParams{ReqId: reqId, StepId: &stepId, FailureNotice: &notice})
	require.True(t, ok)
	require.Len(t, res.StepList, 1)
	assert.Equal(t, Failure, res.StepList[0])
	assert.Equal(t, uint64(2), res.Step)
	assert.True(t, res.AllVerifsReceived)
}

func TestPusVerificatorUnknownRequestIdIgnored(t *testing.T) {
	v := NewPusVerificator()
	_, ok := v.AddTm(AcceptanceSuccess, VerificationParams{ReqId: ecss.RequestId{}})
	assert.False(t, ok)
}

func TestPusVerificatorDuplicateTcRejected(t *testing.T) {
	v := NewPusVerificator()
	tc := newTrackedTc(t, v, 0x10, 3)
	assert.False(t, v.AddTc(tc))
}

func TestPusVerificatorRemoveCompletedEntries(t *testing.T) {
	v := NewPusVerificator()
	tcDone := newTrackedTc(t, v, 0x10, 4)
	tcPending := newTrackedTc(t, v, 0x10, 5)

	_, ok := v.AddTm(CompletionSuccess, VerificationParams{ReqId: tcDone.RequestId()})
	require.True(t, ok)
	_, ok = v.AddTm(AcceptanceSuccess, VerificationParams{ReqId: tcPending.RequestId()})
	require.True(t, ok)

	removed := v.RemoveCompletedEntries()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, v.Len())

	_, stillTracked := v.Status(tcPending.RequestId())
	assert.True(t, stillTracked)
	_, doneTracked := v.Status(tcDone.RequestId())
	assert.False(t, doneTracked)
}

func TestPusVerificatorRemoveEntry(t *testing.T) {
	v := NewPusVerificator()
	tc := newTrackedTc(t, v, 0x10, 6)
	assert.True(t, v.RemoveEntry(tc.RequestId()))
	assert.False(t, v.RemoveEntry(tc.RequestId()))
}
