// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package shuffle implements the per-game keyed move permutation shared by
// the encoder and decoder (spec §4.3.3). It is pinned to Go's classic
// math/rand generator, seeded from a small integer, because the format
// requires byte-identical permutations across independent processes given
// the same Seed header — a property the crypto DRBGs elsewhere in this
// module deliberately do not offer.
package shuffle

import "math/rand"

// Keyed is a per-game deterministic permutation source. Two Keyed values
// constructed with the same seed and driven with the same sequence of
// Permute calls produce identical permutations, ply for ply.
type Keyed struct {
	rng *rand.Rand
}

// New returns a Keyed shuffle source seeded from the game's Seed header
// value.
func New(seed uint64) *Keyed {
	return &Keyed{rng: rand.New(rand.NewSource(int64(seed)))}
}

// Permute returns a new slice containing indices [0, n) permuted by a
// Fisher-Yates shuffle driven by the underlying PRNG. The PRNG always
// consumes the full shuffle, even when the caller only needs index 0, so
// that encoder and decoder land on identical PRNG state at the next ply.
func (k *Keyed) Permute(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	k.rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx
}
