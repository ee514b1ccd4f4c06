//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type file struct {
	ID         int     `toml:"id"`
	Verbose    bool    `toml:"verbose"`
	Triples    string  `toml:"triples"`
	Curve      string  `toml:"curve"`
	PRG        string  `toml:"prg"`
	DealerSeed uint64  `toml:"dealer_seed"`
	Party      []Party `toml:"party"`
}

// Load loads the party configuration from the TOML file.
//
//	id = 0
//	triples = "ot"
//
//	[[party]]
//	addr = "127.0.0.1:9000"
//
//	[[party]]
//	addr = "127.0.0.1:9001"
func Load(path string) (*Config, error) {
	var f file
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown keys: %v", path, undecoded)
	}
	config := &Config{
		ID:         f.ID,
		Verbose:    f.Verbose,
		Triples:    f.Triples,
		Curve:      f.Curve,
		PRG:        f.PRG,
		DealerSeed: f.DealerSeed,
		Parties:    f.Party,
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}
