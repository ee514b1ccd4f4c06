//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type boolOp struct {
	name string
	f    func(a, b, c Bool) Bool
	want func(a, b, c bool) bool
}

var boolOps = []boolOp{
	{
		name: "xor",
		f:    func(a, b, c Bool) Bool { return a.Xor(b) },
		want: func(a, b, c bool) bool { return a != b },
	},
	{
		name: "and",
		f:    func(a, b, c Bool) Bool { return a.And(b) },
		want: func(a, b, c bool) bool { return a && b },
	},
	{
		name: "or",
		f:    func(a, b, c Bool) Bool { return a.Or(b) },
		want: func(a, b, c bool) bool { return a || b },
	},
	{
		name: "not",
		f:    func(a, b, c Bool) Bool { return a.Not() },
		want: func(a, b, c bool) bool { return !a },
	},
	{
		name: "eq",
		f:    func(a, b, c Bool) Bool { return a.Eq(b) },
		want: func(a, b, c bool) bool { return a == b },
	},
	{
		name: "mux",
		f:    func(a, b, c Bool) Bool { return a.Mux(b, c) },
		want: func(a, b, c bool) bool {
			if a {
				return b
			}
			return c
		},
	},
	{
		name: "and3",
		f:    func(a, b, c Bool) Bool { return a.And(b).And(c) },
		want: func(a, b, c bool) bool { return a && b && c },
	},
}

func TestBoolTruthTables(t *testing.T) {
	const n = 3

	// results[party][input][op]
	results := make([][][]bool, n)

	parties(t, n, dealerConfig(), func(p *Protocol) error {
		var values [][]Bool
		for input := 0; input < 8; input++ {
			var in [3]Bool
			for i := range in {
				var err error
				in[i], err = p.InputBool(i, input&(1<<i) != 0)
				if err != nil {
					return err
				}
			}
			var row []Bool
			for _, op := range boolOps {
				row = append(row, op.f(in[0], in[1], in[2]))
			}
			values = append(values, row)
		}
		for _, row := range values {
			var clear []bool
			for _, v := range row {
				bit, err := v.Get()
				if err != nil {
					return err
				}
				clear = append(clear, bit)
			}
			results[p.ID()] = append(results[p.ID()], clear)
		}
		if p.Rounds() != 1 {
			t.Errorf("party %d: rounds %d, expected 1", p.ID(), p.Rounds())
		}
		return nil
	})

	for id := 0; id < n; id++ {
		for input := 0; input < 8; input++ {
			a := input&1 != 0
			b := input&2 != 0
			c := input&4 != 0
			for i, op := range boolOps {
				assert.Equal(t, op.want(a, b, c), results[id][input][i],
					"party %d: %s(%v,%v,%v)", id, op.name, a, b, c)
			}
		}
	}
}

func TestBoolConstants(t *testing.T) {
	p := local(t)

	tt := p.Constant(true)
	ff := p.Constant(false)
	x := p.NewBool(true)

	assert.True(t, tt.Xor(tt).IsConstant())
	assert.True(t, tt.And(ff).IsConstant())
	assert.True(t, ff.And(x).IsConstant())
	assert.False(t, x.IsConstant())

	// AND with true returns the argument.
	assert.Equal(t, x, tt.And(x))

	// Mux with a constant guard selects without gates.
	assert.Equal(t, x, tt.Mux(x, ff))
	assert.Equal(t, ff, ff.Mux(x, ff))

	assert.Equal(t, 0, p.Pending())

	v, err := x.Xor(tt).Get()
	assert.NoError(t, err)
	assert.False(t, v)
	assert.Equal(t, 0, p.Rounds())
}

func TestBoolConstantXor(t *testing.T) {
	const n = 2

	parties(t, n, dealerConfig(), func(p *Protocol) error {
		v := p.Constant(true).Xor(p.Constant(true))
		share, err := v.Reify()
		if err != nil {
			return err
		}
		clear, err := v.Get()
		if err != nil {
			return err
		}
		if share || clear {
			t.Errorf("party %d: true^true: share=%v, clear=%v",
				p.ID(), share, clear)
		}
		if p.Rounds() != 0 {
			t.Errorf("party %d: rounds %d, expected 0", p.ID(), p.Rounds())
		}
		return nil
	})
}

func TestBoolReify(t *testing.T) {
	const n = 3

	shares := make([]bool, n)
	parties(t, n, dealerConfig(), func(p *Protocol) error {
		a, err := p.InputBool(0, true)
		if err != nil {
			return err
		}
		b, err := p.InputBool(2, true)
		if err != nil {
			return err
		}
		shares[p.ID()], err = a.And(b).Reify()
		return err
	})

	var clear bool
	for _, share := range shares {
		clear = clear != share
	}
	assert.True(t, clear)
}

func TestBoolString(t *testing.T) {
	p := local(t)

	assert.Equal(t, "Bool{}", Bool{}.String())
	assert.Equal(t, "true", p.Constant(true).String())

	x := p.NewBool(false)
	assert.Regexp(t, `^b\d+$`, x.String())
	assert.Regexp(t, `^b\d+=w\d+\.\d+$`, x.And(p.NewBool(true)).String())
}
