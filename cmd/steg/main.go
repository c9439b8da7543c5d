// Copyright (c) 2024-2026 The movetext authors
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Command steg is a thin CLI front end over the steg library: hide a
// payload in a sequence of legal chess games, recover it, and optionally
// pin the result to a ledger chain persisted in a file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/movetext/steg"
)

type encodeCmd struct {
	Input  string `arg:"" help:"Path to the payload to hide." type:"existingfile"`
	Output string `arg:"" help:"Path to write the encoded PGN to."`

	SelfDestruct time.Duration     `help:"Expire the payload after this duration (e.g. 1h30m)."`
	Header       map[string]string `help:"Custom PGN header, repeatable (e.g. --header Event=Friendly)."`
}

func (c *encodeCmd) Run(logger *zap.Logger) error {
	opts := []steg.EncodeOption{steg.WithLogger(logger)}
	if c.SelfDestruct > 0 {
		opts = append(opts, steg.WithSelfDestruct(c.SelfDestruct))
	}
	if len(c.Header) > 0 {
		opts = append(opts, steg.WithCustomHeaders(c.Header))
	}
	return steg.Encode(c.Input, c.Output, opts...)
}

type decodeCmd struct {
	Input  string `arg:"" help:"Path to the encoded PGN." type:"existingfile"`
	Output string `arg:"" help:"Path to write the recovered payload to."`
}

func (c *decodeCmd) Run(logger *zap.Logger) error {
	return steg.Decode(c.Input, c.Output, steg.WithDecodeLogger(logger))
}

type ledgerEncodeCmd struct {
	Input  string `arg:"" help:"Path to the payload to hide." type:"existingfile"`
	Output string `arg:"" help:"Path to write the encoded, ledger-referenced PGN to."`

	SelfDestruct time.Duration     `help:"Expire the payload after this duration (e.g. 1h30m)."`
	Header       map[string]string `help:"Custom PGN header, repeatable (e.g. --header Event=Friendly)."`
	Difficulty   int               `default:"2" help:"Proof-of-work difficulty for the mined block."`
	Chain        string            `default:"steg-ledger.json" help:"Path to the persisted ledger chain, shared across ledger-encode/ledger-decode invocations."`
}

func (c *ledgerEncodeCmd) Run(logger *zap.Logger) error {
	l, err := steg.OpenLedger(c.Chain, steg.WithLedgerDifficulty(c.Difficulty), steg.WithLedgerLogger(logger))
	if err != nil {
		return err
	}

	opts := []steg.EncodeOption{steg.WithLogger(logger)}
	if c.SelfDestruct > 0 {
		opts = append(opts, steg.WithSelfDestruct(c.SelfDestruct))
	}
	if len(c.Header) > 0 {
		opts = append(opts, steg.WithCustomHeaders(c.Header))
	}

	blockIndex, err := l.Encode(c.Input, c.Output, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "block %d\n", blockIndex)
	return nil
}

type ledgerDecodeCmd struct {
	Input  string `arg:"" help:"Path to the ledger-referenced PGN." type:"existingfile"`
	Output string `arg:"" help:"Path to write the recovered payload to."`
	Chain  string `default:"steg-ledger.json" help:"Path to the persisted ledger chain written by ledger-encode."`
}

func (c *ledgerDecodeCmd) Run(logger *zap.Logger) error {
	l, err := steg.OpenLedger(c.Chain, steg.WithLedgerLogger(logger))
	if err != nil {
		return err
	}
	return l.Decode(c.Input, c.Output)
}

var cli struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Encode       encodeCmd       `cmd:"" help:"Hide a payload in a sequence of legal chess games."`
	Decode       decodeCmd       `cmd:"" help:"Recover a payload from an encoded PGN."`
	LedgerEncode ledgerEncodeCmd `cmd:"" name:"ledger-encode" help:"Encode and pin the result to the ledger chain file."`
	LedgerDecode ledgerDecodeCmd `cmd:"" name:"ledger-decode" help:"Decode a ledger-referenced PGN."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("steg"),
		kong.Description("Hide and recover payloads inside legal chess games."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.Verbose)
	defer func() { _ = logger.Sync() }()

	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		// Logger construction only fails on an invalid static config, which
		// never happens for either of the two fixed configs above.
		panic(err)
	}
	return logger
}
