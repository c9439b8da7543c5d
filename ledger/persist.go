// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// snapshot is the on-disk JSON representation of a Chain: enough to
// reconstruct blocks, pending expiries, and the difficulty they were mined
// at without re-running proof-of-work.
type snapshot struct {
	Difficulty int             `json:"difficulty"`
	Blocks     []Block         `json:"blocks"`
	Pending    []pendingExpiry `json:"pending"`
}

// Save writes the chain's current state to path as JSON, overwriting any
// existing file. It is the caller's responsibility to call Save after each
// mutation (AddPGN, Sweep) it wants persisted — Chain itself has no
// knowledge of path.
func (c *Chain) Save(path string) error {
	snap := snapshot{Difficulty: c.difficulty, Blocks: c.blocks, Pending: c.pending}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: marshaling chain snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ledger: writing chain snapshot to %s: %w", path, err)
	}
	return nil
}

// Load reads a chain snapshot from path and returns the reconstructed
// Chain. If path does not exist, Load returns a freshly mined chain (via
// NewChain) instead of an error, so a ledger's first use needs no
// pre-created file. Any ChainOption supplied applies after the snapshot's
// own difficulty and clock are restored, letting a caller override the
// clock (for tests) without needing to also know the persisted difficulty.
func Load(path string, opts ...ChainOption) (*Chain, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewChain(opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: reading chain snapshot from %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("ledger: unmarshaling chain snapshot from %s: %w", path, err)
	}

	c := &Chain{
		blocks:     snap.Blocks,
		difficulty: snap.Difficulty,
		pending:    snap.Pending,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}
