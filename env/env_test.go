//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "party.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
id = 1
verbose = true
triples = "dealer"
curve = "secp256k1"
prg = "chacha20"
dealer_seed = 42

[[party]]
addr = "127.0.0.1:9000"

[[party]]
addr = "127.0.0.1:9001"
`)
	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, config.ID)
	assert.True(t, config.Verbose)
	assert.Equal(t, TriplesDealer, config.TripleSource())
	assert.Equal(t, "secp256k1", config.Curve)
	assert.Equal(t, PRGChaCha20, config.PRG)
	assert.Equal(t, uint64(42), config.DealerSeed)
	assert.Equal(t, []string{"127.0.0.1:9000", "127.0.0.1:9001"},
		config.Addrs())
}

func TestLoadErrors(t *testing.T) {
	tests := []string{
		`unknown = 1`,
		`triples = "magic"`,
		`curve = "P-521"`,
		`prg = "rc4"`,
		`
id = 2
[[party]]
addr = "a:1"
`,
		`id = "zero"`,
	}
	for _, test := range tests {
		_, err := Load(writeFile(t, test))
		assert.Error(t, err, "config %q", test)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	var config Config
	require.NoError(t, config.Validate())
	assert.Equal(t, TriplesOT, config.TripleSource())
	assert.NotNil(t, config.GetRandom())
}

func TestNewPRG(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 16)

	for _, name := range []string{"", PRGAES, PRGChaCha20} {
		a := &Config{
			Rand: bytes.NewReader(seed),
			PRG:  name,
		}
		b := &Config{
			Rand: bytes.NewReader(seed),
			PRG:  name,
		}
		pa, err := a.NewPRG()
		require.NoError(t, err)
		pb, err := b.NewPRG()
		require.NoError(t, err)
		assert.Equal(t, pa.Uint64(), pb.Uint64(), "PRG %q", name)
	}

	bad := &Config{
		Rand: bytes.NewReader(seed),
		PRG:  "rc4",
	}
	_, err := bad.NewPRG()
	assert.Error(t, err)

	short := &Config{
		Rand: bytes.NewReader(seed[:3]),
	}
	_, err = short.NewPRG()
	assert.Error(t, err)
}
