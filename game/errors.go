// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package game

import "errors"

// Sentinel errors returned by Build and Consume. Callers that need a
// coarser, stable classification should use the root package's Error/Kind
// instead of matching these directly.
var (
	// ErrNoGames is returned when a document has no games to decode.
	ErrNoGames = errors.New("game: document contains no games")

	// ErrMalformed is returned when a header required by the format is
	// missing or does not parse as the type it is supposed to hold.
	ErrMalformed = errors.New("game: malformed header")

	// ErrDesync is returned when a played move cannot be located in the
	// permuted legal-move list recomputed at decode time. This means the
	// decoder's Seed, move history, or move order diverged from the
	// encoder's — a corrupted or hand-edited PGN, not a bit-level issue.
	ErrDesync = errors.New("game: played move not found in recomputed legal-move list")

	// ErrOverflow is returned when a decoded move index would exceed the
	// legal-move count. Cannot happen from a correctly encoded stream; its
	// presence indicates the bit stream itself was corrupted.
	ErrOverflow = errors.New("game: decoded move index exceeds legal-move count")

	// ErrExpired is returned when the first game's ExpiryTime header names
	// a time at or before the decode-time clock.
	ErrExpired = errors.New("game: payload has expired")
)
