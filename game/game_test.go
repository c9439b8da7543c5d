// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func buildOpts() BuildOptions {
	return BuildOptions{
		Entropy: rand.New(rand.NewSource(1)),
		Now:     fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestBuildConsumeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0xff},
		[]byte("hi"),
		[]byte("the quick brown fox jumps over the lazy dog"),
	}
	for _, payload := range payloads {
		doc, err := Build(payload, buildOpts())
		require.NoError(t, err)
		require.NotEmpty(t, doc.Games)

		out, err := Consume(doc, ConsumeOptions{})
		require.NoError(t, err)
		assert.Equal(t, payload, out)
	}
}

func TestBuildSpansMultipleGamesForLargePayload(t *testing.T) {
	payload := make([]byte, 2048)
	for i := range payload {
		payload[i] = byte(i)
	}
	doc, err := Build(payload, buildOpts())
	require.NoError(t, err)
	require.Greater(t, len(doc.Games), 1, "a large payload must not fit in a single fifty-ply game")

	_, hasLen := doc.Games[0].Headers.Get(HeaderDataBitLength)
	assert.True(t, hasLen)

	for i, g := range doc.Games {
		_, hasSeed := g.Headers.Get(HeaderSeed)
		assert.True(t, hasSeed, "game %d must carry a Seed header", i)
		if i == 0 {
			_, hasRound := g.Headers.Get(HeaderRound)
			assert.False(t, hasRound, "the first game must not carry a Round header")
		} else {
			round, hasRound := g.Headers.Get(HeaderRound)
			assert.True(t, hasRound, "game %d must carry a Round header", i)
			assert.NotEmpty(t, round)
		}
	}

	out, err := Consume(doc, ConsumeOptions{})
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestParseDocumentRoundTripsThroughText(t *testing.T) {
	payload := []byte("round trip through pgn text")
	doc, err := Build(payload, buildOpts())
	require.NoError(t, err)

	text := doc.String()
	parsed, err := ParseDocument(text)
	require.NoError(t, err)

	out, err := Consume(parsed, ConsumeOptions{})
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestCustomHeadersCannotOverrideReservedKeys(t *testing.T) {
	opts := buildOpts()
	opts.CustomHeaders = map[string]string{
		"Seed":          "999999999",
		"DataBitLength": "0",
		"Event":         "Friendly Match",
	}
	doc, err := Build([]byte("x"), opts)
	require.NoError(t, err)

	seed, _ := doc.Games[0].Headers.Get(HeaderSeed)
	assert.NotEqual(t, "999999999", seed)

	event, _ := doc.Games[0].Headers.Get("Event")
	assert.Equal(t, "Friendly Match", event)
}

func TestConsumeRejectsExpiredPayload(t *testing.T) {
	opts := buildOpts()
	expiry := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.ExpiryTime = &expiry

	doc, err := Build([]byte("secret"), opts)
	require.NoError(t, err)

	_, err = Consume(doc, ConsumeOptions{Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))})
	assert.ErrorIs(t, err, ErrExpired)
}

func TestConsumeAllowsUnexpiredPayload(t *testing.T) {
	opts := buildOpts()
	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.ExpiryTime = &expiry

	doc, err := Build([]byte("secret"), opts)
	require.NoError(t, err)

	out, err := Consume(doc, ConsumeOptions{Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), out)
}

func TestConsumeDetectsTamperedMove(t *testing.T) {
	doc, err := Build([]byte("tamper me"), buildOpts())
	require.NoError(t, err)
	require.NotEmpty(t, doc.Games[0].Moves)

	doc.Games[0].Moves[0] = "a1a1"

	_, err = Consume(doc, ConsumeOptions{})
	assert.ErrorIs(t, err, ErrDesync)
}

func TestConsumeRejectsDocumentWithNoGames(t *testing.T) {
	_, err := Consume(&PGNDocument{}, ConsumeOptions{})
	assert.ErrorIs(t, err, ErrNoGames)
}

func TestHeadersPreserveInsertionOrder(t *testing.T) {
	h := NewHeaders()
	h.Set("Event", "E")
	h.Set("Date", "D")
	h.Set("Event", "E2")
	assert.Equal(t, []string{"Event", "Date"}, h.Keys())
	v, ok := h.Get("Event")
	assert.True(t, ok)
	assert.Equal(t, "E2", v)
}
