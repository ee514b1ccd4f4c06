//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package prg implements seedable pseudo-random generators for
// secret sharing and correlated randomness.
package prg

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

var (
	_ io.Reader = &PRG{}
)

// SeedSize specifies the PRG seed size in bytes.
const SeedSize = 16

// PRG implements a deterministic random stream from a 128-bit
// seed. The PRG is not safe for concurrent use.
type PRG struct {
	stream cipher.Stream
	bits   byte
	nbits  int
}

// Seed encodes two 64-bit seed words as a 128-bit seed.
func Seed(seed0, seed1 uint64) [SeedSize]byte {
	var seed [SeedSize]byte
	binary.LittleEndian.PutUint64(seed[0:], seed0)
	binary.LittleEndian.PutUint64(seed[8:], seed1)
	return seed
}

// New creates an AES-128-CTR PRG keyed by the seed words.
func New(seed0, seed1 uint64) *PRG {
	seed := Seed(seed0, seed1)
	return newAES(seed[:])
}

// NewChaCha20 creates a ChaCha20 PRG. The 256-bit stream key is
// expanded from the seed words with HKDF-SHA256.
func NewChaCha20(seed0, seed1 uint64) *PRG {
	seed := Seed(seed0, seed1)

	var key [chacha20.KeySize]byte
	expand(seed[:], []byte("chacha20"), key[:])

	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic(err)
	}
	return &PRG{
		stream: c,
	}
}

// NewDerived creates an AES PRG whose key is derived from seed and
// info with HKDF-SHA256. Different info values give independent
// streams from the same seed.
func NewDerived(seed [SeedSize]byte, info []byte) *PRG {
	var key [SeedSize]byte
	expand(seed[:], info, key[:])
	return newAES(key[:])
}

// NewEntropy creates an AES PRG seeded from the entropy source r.
func NewEntropy(r io.Reader) (*PRG, error) {
	var seed [SeedSize]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, err
	}
	return newAES(seed[:]), nil
}

func newAES(key []byte) *PRG {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	var iv [aes.BlockSize]byte
	return &PRG{
		stream: cipher.NewCTR(block, iv[:]),
	}
}

func expand(secret, info, out []byte) {
	r := hkdf.New(sha256.New, secret, nil, info)
	if _, err := io.ReadFull(r, out); err != nil {
		panic(err)
	}
}

// Read implements io.Reader. It always fills p and never fails.
func (prg *PRG) Read(p []byte) (int, error) {
	prg.Fill(p)
	return len(p), nil
}

// Fill fills p with pseudo-random bytes.
func (prg *PRG) Fill(p []byte) {
	for i := range p {
		p[i] = 0
	}
	prg.stream.XORKeyStream(p, p)
}

// Bit returns a pseudo-random bit.
func (prg *PRG) Bit() bool {
	if prg.nbits == 0 {
		var buf [1]byte
		prg.Fill(buf[:])
		prg.bits = buf[0]
		prg.nbits = 8
	}
	bit := prg.bits&1 == 1
	prg.bits >>= 1
	prg.nbits--
	return bit
}

// Uint64 returns a pseudo-random 64-bit value.
func (prg *PRG) Uint64() uint64 {
	var buf [8]byte
	prg.Fill(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}
