// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package game

import (
	"fmt"
	"strconv"
	"time"

	"github.com/movetext/steg/internal/bitstream"
	"github.com/movetext/steg/internal/rules"
	"github.com/movetext/steg/internal/shuffle"
)

// ConsumeOptions configures Consume.
type ConsumeOptions struct {
	// Now overrides the clock used to evaluate ExpiryTime. Defaults to
	// time.Now.
	Now func() time.Time
}

func (o ConsumeOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Consume replays doc's games against the Chess Rule Engine, recovering
// the payload bytes encoded by Build. It recomputes the remaining bit
// count from DataBitLength minus bits already extracted at every ply
// (never inferring a ply's bit width from its position in the stream),
// and stops as soon as exactly DataBitLength bits have been recovered —
// trailing moves, if any, are ignored. If the document carries no
// DataBitLength header (a hand-edited or legacy PGN), Consume falls back
// to decoding every ply at full width and returns whatever the shuffle
// recovers, least-significant bits of the final byte right-padded with
// zero.
func Consume(doc *PGNDocument, opts ConsumeOptions) ([]byte, error) {
	if len(doc.Games) == 0 {
		return nil, ErrNoGames
	}

	first := doc.Games[0]

	if expiryStr, ok := first.Headers.Get(HeaderExpiryTime); ok {
		expiryUnix, err := strconv.ParseInt(expiryStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: ExpiryTime %q: %v", ErrMalformed, expiryStr, err)
		}
		if !opts.now().Before(time.Unix(expiryUnix, 0)) {
			return nil, ErrExpired
		}
	}

	var expected int
	hasLen := false
	if lenStr, ok := first.Headers.Get(HeaderDataBitLength); ok {
		v, err := strconv.Atoi(lenStr)
		if err != nil {
			return nil, fmt.Errorf("%w: DataBitLength %q: %v", ErrMalformed, lenStr, err)
		}
		expected = v
		hasLen = true
	}

	w := bitstream.NewWriter(expected/8 + 1)
	extracted := 0

	for gi := range doc.Games {
		if hasLen && extracted >= expected {
			break
		}
		g := doc.Games[gi]

		seedStr, ok := g.Headers.Get(HeaderSeed)
		if !ok {
			return nil, fmt.Errorf("%w: game %d has no Seed header", ErrMalformed, gi+1)
		}
		seed, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: Seed %q in game %d: %v", ErrMalformed, seedStr, gi+1, err)
		}

		shuf := shuffle.New(seed)
		pos := rules.Initial()

		for _, uci := range g.Moves {
			if hasLen && extracted >= expected {
				break
			}

			legal := pos.LegalMoves()
			n := len(legal)
			if n == 0 {
				return nil, fmt.Errorf("%w: game %d has moves past a terminal position", ErrDesync, gi+1)
			}

			if n == 1 {
				if rules.MoveUCI(legal[0]) != uci {
					return nil, fmt.Errorf("%w: game %d: forced move mismatch, want %q got %q", ErrDesync, gi+1, rules.MoveUCI(legal[0]), uci)
				}
				next, err := pos.Apply(legal[0])
				if err != nil {
					return nil, fmt.Errorf("game: replaying forced move: %w", err)
				}
				pos = next
				continue
			}

			perm := shuf.Permute(n)
			decodedIdx := -1
			legalIdx := -1
			for i, li := range perm {
				if rules.MoveUCI(legal[li]) == uci {
					decodedIdx = i
					legalIdx = li
					break
				}
			}
			if decodedIdx < 0 {
				return nil, fmt.Errorf("%w: game %d: move %q not found in permuted legal moves", ErrDesync, gi+1, uci)
			}
			if decodedIdx >= n {
				return nil, fmt.Errorf("%w: decoded index %d against %d legal moves", ErrOverflow, decodedIdx, n)
			}

			capacity := bitstream.BitsForIndex(n)
			k := capacity
			if hasLen {
				if remaining := expected - extracted; remaining < k {
					k = remaining
				}
			}
			if k > 0 {
				w.WriteBits(uint64(decodedIdx), k)
				extracted += k
			}

			next, err := pos.Apply(legal[legalIdx])
			if err != nil {
				return nil, fmt.Errorf("game: replaying decoded move: %w", err)
			}
			pos = next
		}
	}

	if hasLen && extracted < expected {
		return nil, fmt.Errorf("%w: recovered only %d of %d expected bits", ErrMalformed, extracted, expected)
	}

	out := w.Bytes()
	if hasLen {
		wantBytes := (expected + 7) / 8
		if len(out) > wantBytes {
			out = out[:wantBytes]
		}
	}
	return out, nil
}
