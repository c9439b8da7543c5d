// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package steg

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeTempFile(t, dir, "in.bin", []byte("a small secret payload"))
	out := filepath.Join(dir, "out.pgn")
	recovered := filepath.Join(dir, "recovered.bin")

	err := Encode(in, out, withEntropy(rand.New(rand.NewSource(7))))
	require.NoError(t, err)

	_, statErr := os.Stat(out)
	require.NoError(t, statErr)

	err = Decode(out, recovered)
	require.NoError(t, err)

	got, err := os.ReadFile(recovered)
	require.NoError(t, err)
	assert.Equal(t, "a small secret payload", string(got))
}

func TestEncodeFailureLeavesNoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	missingInput := filepath.Join(dir, "does-not-exist.bin")
	out := filepath.Join(dir, "out.pgn")

	err := Encode(missingInput, out)
	require.Error(t, err)

	var stegErr *Error
	require.ErrorAs(t, err, &stegErr)
	assert.Equal(t, KindInputMissing, stegErr.Kind)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDecodeRejectsExpiredPayload(t *testing.T) {
	dir := t.TempDir()
	in := writeTempFile(t, dir, "in.bin", []byte("ephemeral"))
	out := filepath.Join(dir, "out.pgn")
	recovered := filepath.Join(dir, "recovered.bin")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := Encode(in, out,
		withEntropy(rand.New(rand.NewSource(3))),
		withClock(fixedClock(base)),
		WithSelfDestruct(time.Hour),
	)
	require.NoError(t, err)

	err = Decode(out, recovered, withDecodeClock(fixedClock(base.Add(2*time.Hour))))
	require.Error(t, err)

	var stegErr *Error
	require.ErrorAs(t, err, &stegErr)
	assert.Equal(t, KindExpired, stegErr.Kind)

	_, statErr := os.Stat(recovered)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLedgerEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeTempFile(t, dir, "in.bin", []byte("ledgered payload"))
	out := filepath.Join(dir, "out.pgn")
	recovered := filepath.Join(dir, "recovered.bin")

	l := NewLedger(WithLedgerDifficulty(1))

	blockIndex, err := l.Encode(in, out, withEntropy(rand.New(rand.NewSource(11))))
	require.NoError(t, err)
	assert.Equal(t, 1, blockIndex)

	err = l.Decode(out, recovered)
	require.NoError(t, err)

	got, err := os.ReadFile(recovered)
	require.NoError(t, err)
	assert.Equal(t, "ledgered payload", string(got))
}

func TestOpenLedgerPersistsChainAcrossInvocations(t *testing.T) {
	dir := t.TempDir()
	chainPath := filepath.Join(dir, "chain.json")
	in := writeTempFile(t, dir, "in.bin", []byte("cross process payload"))
	out := filepath.Join(dir, "out.pgn")
	recovered := filepath.Join(dir, "recovered.bin")

	encoder, err := OpenLedger(chainPath, WithLedgerDifficulty(1))
	require.NoError(t, err)

	blockIndex, err := encoder.Encode(in, out, withEntropy(rand.New(rand.NewSource(13))))
	require.NoError(t, err)
	assert.Equal(t, 1, blockIndex)

	// A fresh Ledger opened from the same path stands in for a second CLI
	// invocation: it must see the block the first process mined.
	decoder, err := OpenLedger(chainPath, WithLedgerDifficulty(1))
	require.NoError(t, err)

	err = decoder.Decode(out, recovered)
	require.NoError(t, err)

	got, err := os.ReadFile(recovered)
	require.NoError(t, err)
	assert.Equal(t, "cross process payload", string(got))
}

func TestLedgerDecodeDetectsOnDiskTampering(t *testing.T) {
	dir := t.TempDir()
	in := writeTempFile(t, dir, "in.bin", []byte("ledgered payload"))
	out := filepath.Join(dir, "out.pgn")
	recovered := filepath.Join(dir, "recovered.bin")

	l := NewLedger(WithLedgerDifficulty(1))

	_, err := l.Encode(in, out, withEntropy(rand.New(rand.NewSource(11))))
	require.NoError(t, err)

	original, err := os.ReadFile(out)
	require.NoError(t, err)
	tampered := append([]byte(nil), original...)
	tampered = append(tampered, []byte("\n; tampered")...)
	require.NoError(t, os.WriteFile(out, tampered, 0o644))

	err = l.Decode(out, recovered)
	require.Error(t, err)

	var stegErr *Error
	require.ErrorAs(t, err, &stegErr)
	assert.Equal(t, KindTampered, stegErr.Kind)
}
