// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package pdu

import (
	"testing"

	sp "github.com/rob-gra/spacepackets-go"
	"github.com/rob-gra/spacepackets-go/cfdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRawDispatchesEachDirective(t *testing.T) {
	cfg := testCfg(t, false)

	eof := NewEOFPdu(cfg, [4]byte{}, 0, nil, cfdp.NoError)
	parsed, err := FromRaw(eof.Pack())
	require.NoError(t, err)
	assert.IsType(t, EOFPdu{}, parsed)

	fin := NewSuccessFinishedPdu(cfg)
	parsed, err = FromRaw(fin.Pack())
	require.NoError(t, err)
	assert.IsType(t, FinishedPdu{}, parsed)

	ack, err := NewAckPdu(cfg, cfdp.DirEOF, cfdp.NoError, cfdp.TransactionActive)
	require.NoError(t, err)
	parsed, err = FromRaw(ack.Pack())
	require.NoError(t, err)
	assert.IsType(t, AckPdu{}, parsed)

	meta := NewMetadataPdu(cfg, false, cfdp.ChecksumNull, 0, "a", "b", nil)
	parsed, err = FromRaw(meta.Pack())
	require.NoError(t, err)
	assert.IsType(t, MetadataPdu{}, parsed)

	nak := NewNakPdu(cfg, 0, 0, nil)
	parsed, err = FromRaw(nak.Pack())
	require.NoError(t, err)
	assert.IsType(t, NakPdu{}, parsed)

	prompt := NewPromptPdu(cfg, cfdp.PromptNak)
	parsed, err = FromRaw(prompt.Pack())
	require.NoError(t, err)
	assert.IsType(t, PromptPdu{}, parsed)

	keepAlive := NewKeepAlivePdu(cfg, 1)
	parsed, err = FromRaw(keepAlive.Pack())
	require.NoError(t, err)
	assert.IsType(t, KeepAlivePdu{}, parsed)

	fd, err := NewFileDataPdu(cfg, 0, []byte{1, 2}, nil)
	require.NoError(t, err)
	parsed, err = FromRaw(fd.Pack())
	require.NoError(t, err)
	assert.IsType(t, FileDataPdu{}, parsed)
}

func TestPduHolderIsFileDirectiveAndDirectiveType(t *testing.T) {
	cfg := testCfg(t, false)
	eof := NewEOFPdu(cfg, [4]byte{}, 0, nil, cfdp.NoError)

	holder, err := NewPduHolder(eof.Pack())
	require.NoError(t, err)
	assert.True(t, holder.IsFileDirective())

	code, err := holder.DirectiveType()
	require.NoError(t, err)
	assert.Equal(t, cfdp.DirEOF, code)

	unpacked, err := holder.Unpack()
	require.NoError(t, err)
	assert.Equal(t, eof, unpacked)
}

func TestPduHolderFileData(t *testing.T) {
	cfg := testCfg(t, false)
	fd, err := NewFileDataPdu(cfg, 0, []byte{1, 2, 3}, nil)
	require.NoError(t, err)

	holder, err := NewPduHolder(fd.Pack())
	require.NoError(t, err)
	assert.False(t, holder.IsFileDirective())
}

func TestFromRawUnrecognizedDirective(t *testing.T) {
	cfg := testCfg(t, false)
	header := cfdp.NewPduHeader(cfdp.FileDirective, cfdp.SegmentMetadataNotPresent, cfg, 1)
	packed := header.Pack()
	packed = append(packed, 0x0F)

	_, err := FromRaw(packed)
	require.Error(t, err)
	assert.ErrorIs(t, err, sp.ErrInvalidDirectiveCode)
}
