//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package prg

import (
	"bytes"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministic(t *testing.T) {
	ctors := map[string]func(a, b uint64) *PRG{
		"aes":      New,
		"chacha20": NewChaCha20,
	}
	for name, ctor := range ctors {
		t.Run(name, func(t *testing.T) {
			a := make([]byte, 100)
			b := make([]byte, 100)
			c := make([]byte, 100)

			ctor(1, 2).Fill(a)
			ctor(1, 2).Fill(b)
			ctor(2, 1).Fill(c)

			assert.Equal(t, a, b)
			assert.NotEqual(t, a, c)
		})
	}
	a := make([]byte, 32)
	b := make([]byte, 32)
	New(7, 7).Fill(a)
	NewChaCha20(7, 7).Fill(b)
	assert.NotEqual(t, a, b)
}

func TestStreamContinues(t *testing.T) {
	p := New(42, 0)
	a := make([]byte, 16)
	b := make([]byte, 16)
	p.Fill(a)
	p.Fill(b)
	assert.NotEqual(t, a, b)

	// Reads of any size give the same stream.
	whole := make([]byte, 32)
	New(42, 0).Read(whole)
	assert.Equal(t, append(a, b...), whole)
}

func TestDerived(t *testing.T) {
	seed := Seed(3, 4)
	a := make([]byte, 32)
	b := make([]byte, 32)
	c := make([]byte, 32)

	NewDerived(seed, []byte("session 1")).Fill(a)
	NewDerived(seed, []byte("session 1")).Fill(b)
	NewDerived(seed, []byte("session 2")).Fill(c)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestEntropy(t *testing.T) {
	seed := bytes.Repeat([]byte{0xab}, SeedSize)
	p, err := NewEntropy(bytes.NewReader(seed))
	require.NoError(t, err)

	q, err := NewEntropy(bytes.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, p.Uint64(), q.Uint64())

	_, err = NewEntropy(bytes.NewReader(seed[:5]))
	assert.Error(t, err)
}

func TestBitFrequency(t *testing.T) {
	const n = 10000

	p := New(0xdeadbeef, 0xcafe)
	var ones int
	for i := 0; i < n; i++ {
		if p.Bit() {
			ones++
		}
	}
	assert.InDelta(t, n/2, ones, 300)

	buf := make([]byte, n/8)
	New(5, 5).Fill(buf)
	ones = 0
	for _, b := range buf {
		ones += bits.OnesCount8(b)
	}
	assert.InDelta(t, n/2, ones, 300)
}
