// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package game

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headerLineRe = regexp.MustCompile(`^\[(\S+)\s+"(.*)"\]\s*$`)
	moveNumberRe = regexp.MustCompile(`^\d+\.+$`)
)

var resultTokens = map[string]bool{
	"1-0":     true,
	"0-1":     true,
	"1/2-1/2": true,
	"*":       true,
}

// ParseDocument parses PGN text previously produced by Build back into a
// PGNDocument of GameRecords. Text produced by Ledger.Encode carries a
// trailing BlockchainRef tag after the last game; callers that need to
// recognize or verify it (ledger_codec.go) strip that line before calling
// ParseDocument, so this parser never needs to special-case it.
func ParseDocument(text string) (*PGNDocument, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	doc := &PGNDocument{}

	i := 0
	skipBlank := func() {
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
	}

	skipBlank()
	for i < len(lines) {
		m := headerLineRe.FindStringSubmatch(lines[i])
		if m == nil {
			return nil, fmt.Errorf("%w: expected a header line, got %q", ErrMalformed, lines[i])
		}

		headers := NewHeaders()
		for i < len(lines) {
			m := headerLineRe.FindStringSubmatch(lines[i])
			if m == nil {
				break
			}
			headers.Set(m[1], m[2])
			i++
		}

		skipBlank()

		var moveLines []string
		for i < len(lines) {
			line := strings.TrimSpace(lines[i])
			if line == "" || headerLineRe.MatchString(lines[i]) {
				break
			}
			moveLines = append(moveLines, lines[i])
			i++
		}
		moves, result := parseMovetext(strings.Join(moveLines, " "))
		doc.Games = append(doc.Games, GameRecord{Headers: headers, Moves: moves, Result: result})

		skipBlank()
	}

	if len(doc.Games) == 0 {
		return nil, ErrNoGames
	}
	return doc, nil
}

func parseMovetext(s string) (moves []string, result string) {
	result = "*"
	for _, f := range strings.Fields(s) {
		switch {
		case resultTokens[f]:
			result = f
		case moveNumberRe.MatchString(f):
			// move-number marker ("12." or "12..."), not a move
		default:
			moves = append(moves, f)
		}
	}
	return moves, result
}
