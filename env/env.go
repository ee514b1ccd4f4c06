//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the MPC system.
package env

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/markkurossi/smpc/ot"
	"github.com/markkurossi/smpc/prg"
)

// Triple sources.
const (
	TriplesOT     = "ot"
	TriplesDealer = "dealer"
)

// PRG algorithms.
const (
	PRGAES      = "aes"
	PRGChaCha20 = "chacha20"
)

// Config defines the global system configuration for the MPC system.
// It configures system operation for all MPC modules. Config must not
// be modified after being passed to any MPC module.  It is safe for
// concurrent use by multiple modules as they do not modify it.
type Config struct {
	// Rand is the entropy source. If unset, crypto/rand is used.
	Rand io.Reader

	// Verbose enables debug output.
	Verbose bool

	// Triples selects the multiplication triple source: "ot"
	// (default) or "dealer". The dealer source is insecure and
	// meant for testing.
	Triples string

	// Curve selects the OT curve: "P-256" (default) or
	// "secp256k1".
	Curve string

	// PRG selects the secret sharing PRG: "aes" (default) or
	// "chacha20".
	PRG string

	// DealerSeed seeds the dealer triple source. All parties must
	// use the same seed.
	DealerSeed uint64

	// ID is this party's ID.
	ID int

	// Parties lists the party addresses indexed by party ID.
	Parties []Party
}

// Party defines a party's network address.
type Party struct {
	Addr string `toml:"addr"`
}

// GetRandom returns the source of entropy for sharing, OT, and other
// cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// TripleSource returns the configured triple source.
func (config *Config) TripleSource() string {
	if len(config.Triples) == 0 {
		return TriplesOT
	}
	return config.Triples
}

// Addrs returns the party addresses.
func (config *Config) Addrs() []string {
	var result []string
	for _, p := range config.Parties {
		result = append(result, p.Addr)
	}
	return result
}

// Debugf prints debugging message if Verbose debugging is enabled.
func (config *Config) Debugf(format string, a ...interface{}) {
	if !config.Verbose {
		return
	}
	fmt.Printf(format, a...)
}

// Validate checks the configuration values.
func (config *Config) Validate() error {
	switch config.TripleSource() {
	case TriplesOT, TriplesDealer:
	default:
		return fmt.Errorf("invalid triple source: %s", config.Triples)
	}
	if _, err := ot.CurveByName(config.Curve); err != nil {
		return err
	}
	switch config.PRG {
	case "", PRGAES, PRGChaCha20:
	default:
		return fmt.Errorf("invalid PRG: %s", config.PRG)
	}
	if len(config.Parties) > 0 &&
		(config.ID < 0 || config.ID >= len(config.Parties)) {
		return fmt.Errorf("invalid ID %v: expected [0...%v[",
			config.ID, len(config.Parties))
	}
	return nil
}

// NewPRG creates a new PRG seeded from the entropy source.
func (config *Config) NewPRG() (*prg.PRG, error) {
	var seed [prg.SeedSize]byte
	if _, err := io.ReadFull(config.GetRandom(), seed[:]); err != nil {
		return nil, err
	}
	seed0 := binary.LittleEndian.Uint64(seed[0:])
	seed1 := binary.LittleEndian.Uint64(seed[8:])

	switch config.PRG {
	case "", PRGAES:
		return prg.New(seed0, seed1), nil
	case PRGChaCha20:
		return prg.NewChaCha20(seed0, seed1), nil
	default:
		return nil, fmt.Errorf("invalid PRG: %s", config.PRG)
	}
}
