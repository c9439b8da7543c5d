// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package steg

import (
	"io"
	"time"

	"go.uber.org/zap"
)

// encodeConfig is the private, fully-resolved configuration an
// EncodeOption mutates. Exported callers never see it directly — only
// through the functional options below — matching the teacher's
// ConfigOptions/Option pattern.
type encodeConfig struct {
	selfDestruct  *time.Duration
	customHeaders map[string]string
	logger        *zap.Logger
	entropy       io.Reader
	now           func() time.Time
}

func newEncodeConfig() *encodeConfig {
	return &encodeConfig{
		logger: zap.NewNop(),
	}
}

// EncodeOption configures Encode and Ledger.Encode.
type EncodeOption func(*encodeConfig)

// WithSelfDestruct schedules the payload to expire after d: Decode run
// after that instant refuses to recover it (KindExpired).
func WithSelfDestruct(d time.Duration) EncodeOption {
	return func(c *encodeConfig) { c.selfDestruct = &d }
}

// WithCustomHeaders overlays additional PGN tags onto every encoded game.
// Reserved keys are ignored; see game.Headers.ApplyCustom.
func WithCustomHeaders(headers map[string]string) EncodeOption {
	return func(c *encodeConfig) { c.customHeaders = headers }
}

// WithLogger attaches structured logging to an Encode/Decode call. The
// default is a no-op logger, so library use stays silent unless a caller
// opts in.
func WithLogger(logger *zap.Logger) EncodeOption {
	return func(c *encodeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// withEntropy overrides the randomness source used to draw per-game
// seeds. Unexported: intended for this package's own tests, not callers.
func withEntropy(r io.Reader) EncodeOption {
	return func(c *encodeConfig) { c.entropy = r }
}

// withClock overrides the clock used for header timestamps and for
// computing the expiry instant. Unexported: intended for this package's
// own tests.
func withClock(now func() time.Time) EncodeOption {
	return func(c *encodeConfig) { c.now = now }
}

// decodeConfig configures Decode.
type decodeConfig struct {
	logger *zap.Logger
	now    func() time.Time
}

func newDecodeConfig() *decodeConfig {
	return &decodeConfig{logger: zap.NewNop()}
}

// DecodeOption configures Decode and Ledger.Decode.
type DecodeOption func(*decodeConfig)

// WithDecodeLogger attaches structured logging to a Decode call.
func WithDecodeLogger(logger *zap.Logger) DecodeOption {
	return func(c *decodeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func withDecodeClock(now func() time.Time) DecodeOption {
	return func(c *decodeConfig) { c.now = now }
}
