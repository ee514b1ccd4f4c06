//
// circ_adder.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package protocol

// fullAdder returns the sum a^b^cin and the carry out of a+b+cin:
//
//	cout = cin XOR ((a XOR cin) AND (b XOR cin))
func fullAdder(p *Protocol, a, b, cin Bool) (s, cout Bool) {
	axc := p.xor(a, cin)
	bxc := p.xor(b, cin)
	s = p.xor(a, bxc)
	cout = p.xor(cin, p.and(axc, bxc))
	return
}

// newAdder creates a ripple-carry adder implementing z=x+y. The
// result has the width of the arguments and the carry out of the most
// significant bit is dropped.
func newAdder(p *Protocol, x, y []Bool) []Bool {
	z := make([]Bool, len(x))
	if len(x) == 0 {
		return z
	}
	cin := p.Constant(false)

	last := len(x) - 1
	for i := 0; i < last; i++ {
		z[i], cin = fullAdder(p, x[i], y[i], cin)
	}
	// N+N=N, overflow, drop carry bit.
	z[last] = p.xor(cin, p.xor(x[last], y[last]))

	return z
}
