//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"runtime"
	"testing"
	"weak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heapAlloc() uint64 {
	runtime.GC()
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

func evalAnds(t *testing.T, p *Protocol, n int) []weak.Pointer[slot] {
	var refs []weak.Pointer[slot]
	for i := 0; i < n; i++ {
		a := p.NewBool(true)
		b := p.NewBool(i%2 == 0)
		c := a.And(b)
		v, err := c.Get()
		require.NoError(t, err)
		require.Equal(t, i%2 == 0, v)
		refs = append(refs, weak.Make(a.s), weak.Make(b.s), weak.Make(c.s))
	}
	return refs
}

func TestValuesReleased(t *testing.T) {
	p := local(t)

	refs := evalAnds(t, p, 100)
	runtime.GC()

	var live int
	for _, ref := range refs {
		if ref.Value() != nil {
			live++
		}
	}
	assert.Equal(t, 0, live)
	assert.Equal(t, 0, p.Pending())
	assert.Equal(t, 100, p.Rounds())
}

func TestHeapBounded(t *testing.T) {
	if testing.Short() {
		t.Skip("long test")
	}
	p := local(t)

	divide := func(count int) {
		for i := 0; i < count; i++ {
			x := p.IntConstant(int64(i%100)-50, 8)
			y, err := p.InputInt(0, int64(i%7)+1, 8)
			require.NoError(t, err)
			_, err = x.Div(y).Get()
			require.NoError(t, err)
		}
	}

	divide(200)
	before := heapAlloc()
	divide(2000)
	after := heapAlloc()

	var growth uint64
	if after > before {
		growth = after - before
	}
	assert.Less(t, growth, uint64(2<<20),
		"heap grew from %d to %d bytes", before, after)
	assert.Equal(t, 2200, p.Rounds())
}
