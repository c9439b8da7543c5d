// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package ledger implements a content-addressed, hash-linked,
// proof-of-work ledger that pins encoded PGN blobs (spec §5). Each block
// hashes its own fields plus the previous block's hash; tampering with
// any stored PGN breaks the chain from that point forward, which
// VerifyChain detects and localizes.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors returned by this package.
var (
	// ErrTampered is returned by VerifyChain's callers (via the root
	// package) when a block's stored hash no longer matches its
	// recomputed hash, or its previous-hash link is broken.
	ErrTampered = errors.New("ledger: chain integrity check failed")

	// ErrNotFound is returned when a referenced block index does not
	// exist or is the genesis block (index 0, which never holds caller
	// data).
	ErrNotFound = errors.New("ledger: block not found")

	// ErrExpired is returned by Retrieve for a block whose expiry has
	// fired, whether or not Sweep has marked it yet.
	ErrExpired = errors.New("ledger: block has expired")
)

// DefaultDifficulty is the default proof-of-work difficulty: the number
// of leading hex zeros a block's hash must have.
const DefaultDifficulty = 2

// expiredMarker is appended to a swept block's stored PGN text, exactly
// once, the first time its expiry fires.
const expiredMarker = "[EXPIRED]"

// Block is one link in the chain.
type Block struct {
	Index        int    `json:"index"`
	Timestamp    int64  `json:"timestamp"`
	PGNData      string `json:"pgn_data"`
	PreviousHash string `json:"previous_hash"`
	Nonce        int    `json:"nonce"`
	Hash         string `json:"hash"`
}

// calculateHash hashes the block's content fields (excluding Hash itself)
// with a canonical, fixed key order, matching the original
// json.dumps(..., sort_keys=True) + sha256 hexdigest scheme so the same
// block content always produces the same hash regardless of struct field
// order or map iteration order.
func calculateHash(index int, timestamp int64, pgnData, previousHash string, nonce int) string {
	canonical := fmt.Sprintf(
		`{"index":%d,"nonce":%d,"pgn_data":%s,"previous_hash":%s,"timestamp":%d}`,
		index, nonce, jsonString(pgnData), jsonString(previousHash), timestamp,
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// jsonString quotes s exactly as encoding/json would, reusing its escaping
// rules without pulling in a full map-based Marshal (which would not let
// us pin key order).
func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal(string) only fails on invalid UTF-8, which cannot occur
		// since PGN text and hex hashes are both always valid UTF-8.
		panic(fmt.Sprintf("ledger: marshaling string: %v", err))
	}
	return string(b)
}

func mine(index int, timestamp int64, pgnData, previousHash string, difficulty int) (nonce int, hash string) {
	target := strings.Repeat("0", difficulty)
	for {
		h := calculateHash(index, timestamp, pgnData, previousHash, nonce)
		if strings.HasPrefix(h, target) {
			return nonce, h
		}
		nonce++
	}
}

// pendingExpiry is a scheduled expiry for one block's data. Fields are
// exported so persist.go can round-trip a Chain's pending schedule through
// JSON.
type pendingExpiry struct {
	BlockIndex int   `json:"block_index"`
	ExpiryUnix int64 `json:"expiry_unix"`
}

// Chain is a hash-linked, proof-of-work ledger of PGN blobs.
type Chain struct {
	blocks     []Block
	difficulty int
	pending    []pendingExpiry
	now        func() time.Time
}

// ChainOption configures a new Chain.
type ChainOption func(*Chain)

// WithDifficulty overrides the default proof-of-work difficulty.
func WithDifficulty(difficulty int) ChainOption {
	return func(c *Chain) { c.difficulty = difficulty }
}

// WithClock overrides the clock used for block timestamps and expiry
// checks. Intended for tests.
func WithClock(now func() time.Time) ChainOption {
	return func(c *Chain) { c.now = now }
}

// NewChain returns a Chain seeded with a mined genesis block.
func NewChain(opts ...ChainOption) *Chain {
	c := &Chain{difficulty: DefaultDifficulty, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	ts := c.now().Unix()
	nonce, hash := mine(0, ts, "Genesis Block", "0", c.difficulty)
	c.blocks = append(c.blocks, Block{
		Index:        0,
		Timestamp:    ts,
		PGNData:      "Genesis Block",
		PreviousHash: "0",
		Nonce:        nonce,
		Hash:         hash,
	})
	return c
}

func (c *Chain) latest() Block {
	return c.blocks[len(c.blocks)-1]
}

// AddPGN mines a new block holding pgnData and appends it to the chain.
// If expiry is non-nil, the block is scheduled to have expiredMarker
// appended to its stored text, and become unretrievable, once Sweep runs
// at or after that instant. It returns the new block's index.
func (c *Chain) AddPGN(pgnData string, expiry *time.Time) int {
	prev := c.latest()
	ts := c.now().Unix()
	index := prev.Index + 1
	nonce, hash := mine(index, ts, pgnData, prev.Hash, c.difficulty)

	c.blocks = append(c.blocks, Block{
		Index:        index,
		Timestamp:    ts,
		PGNData:      pgnData,
		PreviousHash: prev.Hash,
		Nonce:        nonce,
		Hash:         hash,
	})

	if expiry != nil {
		c.pending = append(c.pending, pendingExpiry{BlockIndex: index, ExpiryUnix: expiry.Unix()})
	}
	return index
}

// VerifyChain recomputes every block's hash, checks its difficulty-length
// leading-zero prefix, and checks its previous-hash link. It returns
// ok=true if the whole chain is intact, or ok=false and the index of the
// first block found broken otherwise. The genesis block (index 0) is
// checked for hash validity and proof-of-work same as any other block; it
// has no previous-hash link to verify.
func (c *Chain) VerifyChain() (ok bool, firstBadIndex int) {
	target := strings.Repeat("0", c.difficulty)
	for i := 0; i < len(c.blocks); i++ {
		cur := c.blocks[i]

		recomputed := calculateHash(cur.Index, cur.Timestamp, cur.PGNData, cur.PreviousHash, cur.Nonce)
		if cur.Hash != recomputed {
			return false, i
		}
		if !strings.HasPrefix(cur.Hash, target) {
			return false, i
		}
		if i > 0 && cur.PreviousHash != c.blocks[i-1].Hash {
			return false, i
		}
	}
	return true, -1
}

// Sweep applies every pending expiry whose instant has passed: it appends
// expiredMarker to the block's stored PGN text (once) and drops the
// schedule entry. It is idempotent — calling it repeatedly never appends
// the marker twice.
func (c *Chain) Sweep() {
	now := c.now()
	var remaining []pendingExpiry
	for _, p := range c.pending {
		if now.Before(time.Unix(p.ExpiryUnix, 0)) {
			remaining = append(remaining, p)
			continue
		}
		if p.BlockIndex < len(c.blocks) {
			c.blocks[p.BlockIndex].PGNData += expiredMarker
		}
	}
	c.pending = remaining
}

// Retrieve returns the PGN text stored at blockIndex. It returns
// ErrNotFound for the genesis block or an out-of-range index, and
// ErrExpired for a block whose expiry has fired — whether or not Sweep
// has already run to mark it.
func (c *Chain) Retrieve(blockIndex int) (string, error) {
	if blockIndex <= 0 || blockIndex >= len(c.blocks) {
		return "", ErrNotFound
	}
	block := c.blocks[blockIndex]
	if strings.HasSuffix(block.PGNData, expiredMarker) {
		return "", ErrExpired
	}
	now := c.now()
	for _, p := range c.pending {
		if p.BlockIndex == blockIndex && !now.Before(time.Unix(p.ExpiryUnix, 0)) {
			return "", ErrExpired
		}
	}
	return block.PGNData, nil
}

// Len returns the number of blocks in the chain, including genesis.
func (c *Chain) Len() int {
	return len(c.blocks)
}
