// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package game implements the Steganographic Game Builder: turning a
// payload's bit stream into a sequence of legal-but-meaningful chess games
// (spec §4.3), framed as PGN text, and the inverse decode. It is the
// largest single component of this module, mirroring how much of the
// original encode.py/decode.py pair it is grounded on.
package game

import (
	"fmt"
	"strings"
)

// GameRecord is one complete PGN game: its header tags, in insertion
// order, and its move list in UCI notation.
type GameRecord struct {
	Headers *Headers
	Moves   []string
	Result  string
}

// PGNDocument is an ordered sequence of games. Ledger-backed documents
// (produced by Ledger.Encode) append a BlockchainRef tag after the last
// game rather than carrying it as a field here; see ledger_codec.go.
type PGNDocument struct {
	Games []GameRecord
}

// String renders the document as PGN text: one or more games separated by
// a blank line, each game's headers followed by a blank line and its
// movetext.
func (d *PGNDocument) String() string {
	var b strings.Builder
	for i, g := range d.Games {
		if i > 0 {
			b.WriteString("\n\n")
		}
		g.writeTo(&b)
	}
	return b.String()
}

func (g GameRecord) writeTo(b *strings.Builder) {
	for _, k := range g.Headers.Keys() {
		v, _ := g.Headers.Get(k)
		fmt.Fprintf(b, "[%s \"%s\"]\n", k, v)
	}
	b.WriteByte('\n')
	writeMovetext(b, g.Moves)
	result := g.Result
	if result == "" {
		result = "*"
	}
	if len(g.Moves) > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(result)
}

func writeMovetext(b *strings.Builder, moves []string) {
	for i, mv := range moves {
		if i%2 == 0 {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(b, "%d. ", i/2+1)
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(mv)
	}
}
