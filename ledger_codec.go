// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package steg

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/movetext/steg/game"
	"github.com/movetext/steg/ledger"
)

var blockchainRefRe = regexp.MustCompile(`\[BlockchainRef "(\d+)"\]`)

// ledgerConfig configures a Ledger.
type ledgerConfig struct {
	difficulty int
	logger     *zap.Logger
	now        func() time.Time
}

// LedgerOption configures NewLedger.
type LedgerOption func(*ledgerConfig)

// WithLedgerDifficulty sets the proof-of-work difficulty new blocks are
// mined to.
func WithLedgerDifficulty(difficulty int) LedgerOption {
	return func(c *ledgerConfig) { c.difficulty = difficulty }
}

// WithLedgerLogger attaches structured logging to a Ledger.
func WithLedgerLogger(logger *zap.Logger) LedgerOption {
	return func(c *ledgerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func withLedgerClock(now func() time.Time) LedgerOption {
	return func(c *ledgerConfig) { c.now = now }
}

// Ledger pins encoded PGN blobs to a hash-linked, proof-of-work chain
// (spec's LDG component), and its Encode/Decode methods layer
// BlockchainRef framing on top of the plain Encode/Decode codec.
type Ledger struct {
	chain  *ledger.Chain
	logger *zap.Logger

	// path is where the chain is persisted, if any. Empty for a
	// NewLedger-constructed, in-memory-only Ledger.
	path string
}

// NewLedger returns a Ledger seeded with a freshly mined genesis block.
// Its chain lives only in memory; use OpenLedger for a chain that survives
// across process invocations.
func NewLedger(opts ...LedgerOption) *Ledger {
	cfg := &ledgerConfig{difficulty: defaultLedgerDifficulty, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	var chainOpts []ledger.ChainOption
	chainOpts = append(chainOpts, ledger.WithDifficulty(cfg.difficulty))
	if cfg.now != nil {
		chainOpts = append(chainOpts, ledger.WithClock(cfg.now))
	}

	return &Ledger{chain: ledger.NewChain(chainOpts...), logger: cfg.logger}
}

// OpenLedger loads a Ledger's chain from path, creating a fresh genesis
// block there if the file does not yet exist. Encode and Decode save the
// chain back to path after mutating it (AddPGN, Sweep), so a chain mined
// by one process is visible to the next invocation that opens the same
// path — the cross-invocation persistence spec's LDG component requires.
func OpenLedger(path string, opts ...LedgerOption) (*Ledger, error) {
	cfg := &ledgerConfig{difficulty: defaultLedgerDifficulty, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	var chainOpts []ledger.ChainOption
	chainOpts = append(chainOpts, ledger.WithDifficulty(cfg.difficulty))
	if cfg.now != nil {
		chainOpts = append(chainOpts, ledger.WithClock(cfg.now))
	}

	chain, err := ledger.Load(path, chainOpts...)
	if err != nil {
		return nil, classify("steg.OpenLedger", err)
	}

	l := &Ledger{chain: chain, logger: cfg.logger, path: path}
	if err := l.chain.Save(path); err != nil {
		return nil, classify("steg.OpenLedger", err)
	}
	return l, nil
}

func (l *Ledger) persist(op string) error {
	if l.path == "" {
		return nil
	}
	if err := l.chain.Save(l.path); err != nil {
		return classify(op, err)
	}
	return nil
}

// Encode behaves like the package-level Encode, then additionally mines a
// block holding the encoded PGN text, appends a BlockchainRef tag
// pointing at it to outputPath, and returns the new block's index.
func (l *Ledger) Encode(inputPath, outputPath string, opts ...EncodeOption) (blockIndex int, err error) {
	cfg := newEncodeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	defer cleanupOnError(outputPath, &err)

	payload, readErr := os.ReadFile(inputPath)
	if readErr != nil {
		return 0, classify("steg.Ledger.Encode", readErr)
	}

	doc, buildErr := buildDocument(payload, cfg)
	if buildErr != nil {
		return 0, classify("steg.Ledger.Encode", buildErr)
	}

	pgnText := doc.String()

	var expiry *time.Time
	if cfg.selfDestruct != nil {
		now := time.Now
		if cfg.now != nil {
			now = cfg.now
		}
		e := now().Add(*cfg.selfDestruct)
		expiry = &e
	}

	blockIndex = l.chain.AddPGN(pgnText, expiry)
	if persistErr := l.persist("steg.Ledger.Encode"); persistErr != nil {
		return 0, persistErr
	}

	withRef := fmt.Sprintf("%s\n\n[%s \"%d\"]", pgnText, game.HeaderBlockchainRef, blockIndex)
	if writeErr := os.WriteFile(outputPath, []byte(withRef), 0o644); writeErr != nil {
		return 0, classify("steg.Ledger.Encode", writeErr)
	}

	l.logger.Debug("ledger encode complete",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("block_index", blockIndex),
	)
	return blockIndex, nil
}

// Decode verifies the chain, resolves pgnPath's BlockchainRef tag (if
// any) against the ledger, cross-checks the referenced block's PGN text
// against the file's own content, and decodes the payload. A mismatch
// between the ledger's copy and the file's copy is reported as
// KindTampered.
func (l *Ledger) Decode(pgnPath, outputPath string, opts ...DecodeOption) (err error) {
	cfg := newDecodeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	defer cleanupOnError(outputPath, &err)

	l.chain.Sweep()
	if persistErr := l.persist("steg.Ledger.Decode"); persistErr != nil {
		return persistErr
	}

	if ok, badIndex := l.chain.VerifyChain(); !ok {
		return classify("steg.Ledger.Decode", fmt.Errorf("%w: first broken block is index %d", ledger.ErrTampered, badIndex))
	}

	fileBytes, readErr := os.ReadFile(pgnPath)
	if readErr != nil {
		return classify("steg.Ledger.Decode", readErr)
	}
	fileText := string(fileBytes)

	// Strip any trailing BlockchainRef tag before handing the text to
	// game.ParseDocument, which knows nothing about ledger framing.
	parseableText := strings.TrimSpace(blockchainRefRe.ReplaceAllString(fileText, ""))

	if m := blockchainRefRe.FindStringSubmatch(fileText); m != nil {
		blockIndex, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			return classify("steg.Ledger.Decode", fmt.Errorf("%w: BlockchainRef %q: %v", game.ErrMalformed, m[1], convErr))
		}

		ledgerPGN, retrieveErr := l.chain.Retrieve(blockIndex)
		if retrieveErr != nil {
			return classify("steg.Ledger.Decode", retrieveErr)
		}

		cleanLedger := strings.TrimSpace(blockchainRefRe.ReplaceAllString(ledgerPGN, ""))
		if parseableText != cleanLedger {
			return classify("steg.Ledger.Decode", fmt.Errorf("%w: on-disk PGN does not match the block it references", ledger.ErrTampered))
		}
	}

	doc, parseErr := game.ParseDocument(parseableText)
	if parseErr != nil {
		return classify("steg.Ledger.Decode", parseErr)
	}

	consumeOpts := game.ConsumeOptions{}
	if cfg.now != nil {
		consumeOpts.Now = cfg.now
	}

	payload, consumeErr := game.Consume(doc, consumeOpts)
	if consumeErr != nil {
		return classify("steg.Ledger.Decode", consumeErr)
	}

	if writeErr := os.WriteFile(outputPath, payload, 0o644); writeErr != nil {
		return classify("steg.Ledger.Decode", writeErr)
	}

	l.logger.Debug("ledger decode complete",
		zap.String("input", pgnPath),
		zap.String("output", outputPath),
	)
	return nil
}

// VerifyChain reports whether the ledger's chain is internally
// consistent, and the index of the first broken block if not.
func (l *Ledger) VerifyChain() (ok bool, firstBadIndex int) {
	return l.chain.VerifyChain()
}
