// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package rules is the Chess Rule Engine adapter. It wraps
// github.com/corentings/chess/v2 — a rules-complete engine (castling, en
// passant, promotion, threefold repetition, insufficient material, the
// fifty-move rule) — behind the small, deterministic contract the
// steganographic codec needs (spec §4.1). The engine itself is reused, not
// reimplemented; this package only adds one thing the engine doesn't
// contract to provide: a canonical, reproducible legal-move order.
package rules

import (
	"fmt"
	"sort"

	chesslib "github.com/corentings/chess/v2"
)

var notation = chesslib.UCINotation{}

// Move is one legal move in some Position, carrying its own canonical UCI
// string so it never needs to be re-derived from engine internals.
type Move struct {
	uci string
}

// UCI returns the move in UCI notation (e.g. "e2e4", "e7e8q").
func (m Move) UCI() string { return m.uci }

// Position is an immutable chess position. Every mutation (Apply) returns a
// new Position; the receiver is left untouched, matching spec's
// apply(Position, Move) -> Position contract.
type Position struct {
	// history is the UCI move list from the initial position to here. The
	// engine is replayed from scratch on every query instead of relying on
	// an in-library clone/undo primitive, which keeps this adapter's
	// surface area against the dependency to the handful of operations
	// actually observed in the pack (NewGame, UseNotation, MoveStr,
	// ValidMoves, Outcome, Method) rather than an unobserved Clone/Move API.
	history []string
}

// Initial returns the starting position.
func Initial() *Position {
	return &Position{}
}

// MoveCount returns the number of plies played to reach this position.
func (p *Position) MoveCount() int {
	return len(p.history)
}

func (p *Position) replay() *chesslib.Game {
	g := chesslib.NewGame(chesslib.UseNotation(notation))
	for _, uci := range p.history {
		if err := g.MoveStr(uci); err != nil {
			// The history was only ever built from moves this package
			// already validated as legal; a replay failure means internal
			// state was corrupted, which is a programmer error, not a
			// caller-facing one.
			panic(fmt.Sprintf("rules: replay of previously-legal move %q failed: %v", uci, err))
		}
	}
	return g
}

// LegalMoves returns every legal move in this position, in a canonical,
// deterministic order (ascending UCI string) that is a pure function of the
// position — independent of the engine's internal generation order, which
// is not itself contracted to be stable. This reaches into the engine's
// current Position rather than the Game wrapper for move generation,
// since Position.ValidMoves (returning a []Move of values) is the one
// generation entry point actually observed in the vendored engine source
// in the pack; everything built on top of it stays one level removed
// from an unobserved Game-level method signature.
func (p *Position) LegalMoves() []Move {
	g := p.replay()
	cur := g.Position()
	valid := cur.ValidMoves()
	moves := make([]Move, len(valid))
	for i := range valid {
		moves[i] = Move{uci: notation.Encode(cur, &valid[i])}
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].uci < moves[j].uci })
	return moves
}

// Apply plays m and returns the resulting position. It returns an error if m
// is not legal here. The SGB only applies moves taken from LegalMoves; a
// played move that is not legal is reported as a desync earlier, when the
// decoder cannot find it in the legal-move list.
func (p *Position) Apply(m Move) (*Position, error) {
	g := p.replay()
	if err := g.MoveStr(m.uci); err != nil {
		return nil, fmt.Errorf("rules: move %q is not legal: %w", m.uci, err)
	}
	next := make([]string, len(p.history), len(p.history)+1)
	copy(next, p.history)
	next = append(next, m.uci)
	return &Position{history: next}, nil
}

// IsGameOver reports whether the engine considers the game concluded
// (checkmate, stalemate, or an auto-adjudicated draw).
func (p *Position) IsGameOver() bool {
	return p.replay().Outcome() != chesslib.NoOutcome
}

// IsInsufficientMaterial reports whether neither side has enough material
// to deliver checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	return p.replay().Method() == chesslib.InsufficientMaterial
}

// CanClaimDraw reports whether the position qualifies for a claimable draw
// (threefold repetition or the fifty-move rule). The SGB also tracks its
// own fifty-ply cap independently (spec §4.3.2), so this predicate is a
// supplementary signal, not the only backstop against runaway games.
func (p *Position) CanClaimDraw() bool {
	switch p.replay().Method() {
	case chesslib.ThreefoldRepetition, chesslib.FiftyMoveRule:
		return true
	default:
		return false
	}
}

// MoveUCI returns m in UCI notation.
func MoveUCI(m Move) string {
	return m.uci
}

// MoveFromUCI resolves a UCI string to the Move it names in Position p,
// verifying it against p's legal-move list. An unresolvable string
// indicates the played move was not legal here — a tampering or
// wrong-shuffle signal at decode time.
func MoveFromUCI(p *Position, uci string) (Move, error) {
	for _, m := range p.LegalMoves() {
		if m.uci == uci {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("rules: %q is not a legal move in this position", uci)
}
