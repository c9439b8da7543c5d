// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAt(t *testing.T) {
	payload := []byte{0b10110010}
	expect := []uint{1, 0, 1, 1, 0, 0, 1, 0}
	for i, want := range expect {
		assert.Equalf(t, want, At(payload, i), "bit %d", i)
	}
}

func TestExtractWithinBounds(t *testing.T) {
	payload := []byte{0b10110010, 0b01010101}
	v, got := Extract(payload, 0, 4)
	require.Equal(t, 4, got)
	assert.Equal(t, uint64(0b1011), v)

	v, got = Extract(payload, 4, 8)
	require.Equal(t, 8, got)
	assert.Equal(t, uint64(0b00100101), v)
}

func TestExtractTailShrinksInsteadOfPadding(t *testing.T) {
	payload := []byte{0xFF}
	v, got := Extract(payload, 6, 5)
	require.Equal(t, 2, got, "only 2 bits remain in an 8-bit payload starting at bit 6")
	assert.Equal(t, uint64(0b11), v)
}

func TestExtractPastEndReturnsNothing(t *testing.T) {
	payload := []byte{0x00}
	_, got := Extract(payload, 8, 4)
	assert.Equal(t, 0, got)
}

func TestWriterRoundTripsByteAligned(t *testing.T) {
	w := NewWriter(0)
	w.WriteBits(0b1011, 4)
	w.WriteBits(0b0010, 4)
	assert.Equal(t, 8, w.Bits())
	assert.Equal(t, []byte{0b10110010}, w.Bytes())
}

func TestWriterPadsFinalPartialByte(t *testing.T) {
	w := NewWriter(0)
	w.WriteBits(0b101, 3)
	assert.Equal(t, 3, w.Bits())
	assert.Equal(t, []byte{0b10100000}, w.Bytes())
}

func TestBitsForIndex(t *testing.T) {
	cases := map[int]int{1: 0, 2: 1, 3: 1, 4: 2, 5: 2, 7: 2, 8: 3, 31: 4, 32: 5}
	for n, want := range cases {
		assert.Equalf(t, want, BitsForIndex(n), "n=%d", n)
	}
}

func TestExtractPackRoundTrip(t *testing.T) {
	payload := []byte("hello")
	total := Len(payload)
	w := NewWriter(len(payload))
	bit := 0
	for bit < total {
		n := 3
		v, got := Extract(payload, bit, n)
		w.WriteBits(v, got)
		bit += got
	}
	assert.Equal(t, payload, w.Bytes())
}
