//
// circ_mux.go
//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package protocol

// newMUX creates a multiplexer circuit that selects the input t or f
// to output, based on the value of the condition cond.
func newMUX(cond Bool, t, f []Bool) []Bool {
	out := make([]Bool, len(t))
	for i := range t {
		out[i] = cond.Mux(t[i], f[i])
	}
	return out
}

// newXOR returns the bitwise x^y.
func newXOR(p *Protocol, x, y []Bool) []Bool {
	out := make([]Bool, len(x))
	for i := range x {
		out[i] = p.xor(x[i], y[i])
	}
	return out
}
