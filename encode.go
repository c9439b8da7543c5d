// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package steg hides a byte payload inside a sequence of legal chess
// games, serialized as PGN text, and recovers it bit-exact. See
// internal/rules, internal/bitstream, internal/shuffle, game, and ledger
// for the components this package wires together.
package steg

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/movetext/steg/game"
	"github.com/movetext/steg/ledger"
)

const defaultLedgerDifficulty = ledger.DefaultDifficulty

// Encode reads the payload at inputPath, hides it across a sequence of
// legal chess games, and writes the resulting PGN text to outputPath. On
// any failure it removes a partial outputPath rather than leaving a
// truncated or malformed file behind.
func Encode(inputPath, outputPath string, opts ...EncodeOption) (err error) {
	cfg := newEncodeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	defer cleanupOnError(outputPath, &err)

	payload, readErr := os.ReadFile(inputPath)
	if readErr != nil {
		return classify("steg.Encode", readErr)
	}

	doc, buildErr := buildDocument(payload, cfg)
	if buildErr != nil {
		return classify("steg.Encode", buildErr)
	}

	text := doc.String()
	if writeErr := os.WriteFile(outputPath, []byte(text), 0o644); writeErr != nil {
		return classify("steg.Encode", writeErr)
	}

	verifyEncodedOutput(cfg.logger, doc, cfg.customHeaders)

	cfg.logger.Debug("encode complete",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("games", len(doc.Games)),
		zap.Int("payload_bytes", len(payload)),
	)
	return nil
}

func buildDocument(payload []byte, cfg *encodeConfig) (*game.PGNDocument, error) {
	buildOpts := game.BuildOptions{
		CustomHeaders: cfg.customHeaders,
		Entropy:       cfg.entropy,
	}
	if cfg.now != nil {
		buildOpts.Now = cfg.now
	}
	if cfg.selfDestruct != nil {
		now := time.Now
		if cfg.now != nil {
			now = cfg.now
		}
		expiry := now().Add(*cfg.selfDestruct)
		buildOpts.ExpiryTime = &expiry
	}
	return game.Build(payload, buildOpts)
}

// verifyEncodedOutput checks that every non-empty custom header value
// landed in the first game's headers of the in-memory document. It does
// not re-read the written file and does not check the expiry headers. A
// mismatch is logged at Warn level, not a hard failure — encoding has
// already succeeded by the time this runs.
func verifyEncodedOutput(logger *zap.Logger, doc *game.PGNDocument, customHeaders map[string]string) {
	if len(doc.Games) == 0 {
		return
	}
	first := doc.Games[0]
	for key, want := range customHeaders {
		if want == "" {
			continue
		}
		got, ok := first.Headers.Get(key)
		if !ok || got != want {
			logger.Warn("custom header did not round-trip into the encoded output",
				zap.String("header", key), zap.String("want", want), zap.String("got", got))
		}
	}
}

// Decode reads the PGN text at pgnPath, recovers the hidden payload, and
// writes it to outputPath. On any failure it removes a partial
// outputPath.
func Decode(pgnPath, outputPath string, opts ...DecodeOption) (err error) {
	cfg := newDecodeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	defer cleanupOnError(outputPath, &err)

	text, readErr := os.ReadFile(pgnPath)
	if readErr != nil {
		return classify("steg.Decode", readErr)
	}

	doc, parseErr := game.ParseDocument(string(text))
	if parseErr != nil {
		return classify("steg.Decode", parseErr)
	}

	consumeOpts := game.ConsumeOptions{}
	if cfg.now != nil {
		consumeOpts.Now = cfg.now
	}

	payload, consumeErr := game.Consume(doc, consumeOpts)
	if consumeErr != nil {
		return classify("steg.Decode", consumeErr)
	}

	if writeErr := os.WriteFile(outputPath, payload, 0o644); writeErr != nil {
		return classify("steg.Decode", writeErr)
	}

	cfg.logger.Debug("decode complete",
		zap.String("input", pgnPath),
		zap.String("output", outputPath),
		zap.Int("games", len(doc.Games)),
		zap.Int("payload_bytes", len(payload)),
	)
	return nil
}

// cleanupOnError removes path if *err is non-nil, so a failed Encode or
// Decode never leaves a partial or malformed file behind.
func cleanupOnError(path string, err *error) {
	if *err == nil {
		return
	}
	_ = os.Remove(path)
}
