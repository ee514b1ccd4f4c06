//
// circ_multiplier.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package protocol

// newMultiplier creates a shift-and-add multiplier implementing
// z=x*y. The result has the width of the arguments and the high bits
// of the product are dropped. The row i adds the partial product
// x*y[i] to the bits z[i:].
func newMultiplier(p *Protocol, x, y []Bool) []Bool {
	size := len(x)
	z := make([]Bool, size)
	for i := range z {
		z[i] = p.Constant(false)
	}
	row := make([]Bool, size)

	for i := 0; i < size; i++ {
		for j := 0; j < size-i; j++ {
			row[j] = p.and(x[j], y[i])
		}
		copy(z[i:], newAdder(p, z[i:], row[:size-i]))
	}
	return z
}
