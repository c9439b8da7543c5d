// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package game

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/movetext/steg/internal/bitstream"
	"github.com/movetext/steg/internal/rules"
	"github.com/movetext/steg/internal/shuffle"
	"github.com/movetext/steg/x/crypto/ctrdrbg"
)

// seedCeiling bounds drawn seeds to [1, 1_000_000], matching
// the "small integer header" shape the format has always used — wide
// enough for collision-free games, narrow enough to stay eyeball-readable
// in a PGN tag.
const seedCeiling = 1_000_000

// maxPlies caps a single game at fifty plies (twenty-five full moves), so a
// long payload is spread over many short games.
const maxPlies = 50

// BuildOptions configures Build.
type BuildOptions struct {
	// CustomHeaders overlays caller-supplied PGN tags onto every game's
	// default headers. Reserved keys (Seed, DataBitLength, ExpiryTime,
	// ExpiryTimeReadable, Round, BlockchainRef) and empty values are
	// ignored rather than rejected.
	CustomHeaders map[string]string

	// ExpiryTime, if set, is recorded on the first game as the instant
	// after which Consume must refuse to decode.
	ExpiryTime *time.Time

	// Entropy supplies randomness for each game's Seed header. Defaults to
	// the module's AES-CTR-DRBG reader.
	Entropy io.Reader

	// Now overrides the clock used for header timestamps. Defaults to
	// time.Now.
	Now func() time.Time
}

func (o BuildOptions) entropy() io.Reader {
	if o.Entropy != nil {
		return o.Entropy
	}
	return ctrdrbg.Reader
}

func (o BuildOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func drawSeed(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("game: drawing seed entropy: %w", err)
	}
	return 1 + (binary.BigEndian.Uint64(buf[:]) % seedCeiling), nil
}

func shouldEndGame(pos *rules.Position) bool {
	return pos.IsGameOver() || pos.IsInsufficientMaterial() || pos.CanClaimDraw() || pos.MoveCount() >= maxPlies
}

// Build encodes payload into a sequence of legal chess games whose move
// choices carry the payload's bits (spec §4.3.1-§4.3.4). It always
// produces at least one game, even for an empty payload.
func Build(payload []byte, opts BuildOptions) (*PGNDocument, error) {
	totalBits := bitstream.Len(payload)

	doc := &PGNDocument{}
	gameNum := 1
	bitIdx := 0

	pos := rules.Initial()
	var moves []string

	seed, err := drawSeed(opts.entropy())
	if err != nil {
		return nil, err
	}
	shuf := shuffle.New(seed)

	finishGame := func() error {
		headers := buildHeaders(gameNum, seed, totalBits, opts)
		doc.Games = append(doc.Games, GameRecord{Headers: headers, Moves: moves, Result: "*"})
		gameNum++
		pos = rules.Initial()
		moves = nil

		nextSeed, err := drawSeed(opts.entropy())
		if err != nil {
			return err
		}
		seed = nextSeed
		shuf = shuffle.New(seed)
		return nil
	}

	for bitIdx < totalBits {
		legal := pos.LegalMoves()
		n := len(legal)

		if n == 0 {
			// The previous ply ended the game; start a fresh one without
			// consuming any bits on this iteration.
			if err := finishGame(); err != nil {
				return nil, err
			}
			continue
		}

		if n == 1 {
			next, err := pos.Apply(legal[0])
			if err != nil {
				return nil, fmt.Errorf("game: applying forced move: %w", err)
			}
			moves = append(moves, rules.MoveUCI(legal[0]))
			pos = next
			if shouldEndGame(pos) {
				if err := finishGame(); err != nil {
					return nil, err
				}
			}
			continue
		}

		capacity := bitstream.BitsForIndex(n)
		remaining := totalBits - bitIdx
		k := capacity
		if remaining < k {
			k = remaining
		}

		value, got := bitstream.Extract(payload, bitIdx, k)
		if got != k {
			return nil, fmt.Errorf("game: short bit read at bit %d: wanted %d, got %d", bitIdx, k, got)
		}

		perm := shuf.Permute(n)
		if int(value) >= len(perm) {
			return nil, fmt.Errorf("%w: value %d against %d legal moves", ErrOverflow, value, n)
		}
		chosen := legal[perm[value]]

		next, err := pos.Apply(chosen)
		if err != nil {
			return nil, fmt.Errorf("game: applying chosen move: %w", err)
		}
		moves = append(moves, rules.MoveUCI(chosen))
		pos = next
		bitIdx += k

		if shouldEndGame(pos) {
			if err := finishGame(); err != nil {
				return nil, err
			}
		}
	}

	if len(moves) > 0 || len(doc.Games) == 0 {
		if err := finishGame(); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func buildHeaders(gameNum int, seed uint64, totalBits int, opts BuildOptions) *Headers {
	h := NewHeaders()
	h.Set("Event", "Encoded Game")
	h.Set("Date", opts.now().Format("2006.01.02"))
	h.Set("White", "Player1")
	h.Set("Black", "Player2")
	h.Set("Result", "*")
	h.ApplyCustom(opts.CustomHeaders)

	h.Set(HeaderSeed, strconv.FormatUint(seed, 10))

	if gameNum == 1 {
		h.Set(HeaderDataBitLength, strconv.Itoa(totalBits))
		if opts.ExpiryTime != nil {
			h.Set(HeaderExpiryTime, strconv.FormatInt(opts.ExpiryTime.Unix(), 10))
			h.Set(HeaderExpiryTimeReadable, opts.ExpiryTime.Local().Format("2006-01-02 15:04:05"))
		}
	} else {
		h.Set(HeaderRound, strconv.Itoa(gameNum))
	}

	return h
}
