//
// circ_subtractor.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package protocol

// fullSubtractor returns the difference x^y^bin and the borrow out of
// x-y-bin:
//
//	bout = bin XOR ((x XOR y) AND (bin XOR y))
func fullSubtractor(p *Protocol, x, y, bin Bool) (d, bout Bool) {
	xxy := p.xor(x, y)
	bxy := p.xor(bin, y)
	d = p.xor(xxy, bin)
	bout = p.xor(bin, p.and(xxy, bxy))
	return
}

// newSubtractor creates a subtractor circuit implementing z=x-y. The
// result has the width of the arguments and the borrow out of the most
// significant bit is dropped.
func newSubtractor(p *Protocol, x, y []Bool) []Bool {
	z := make([]Bool, len(x))
	if len(x) == 0 {
		return z
	}
	bin := p.Constant(false)

	last := len(x) - 1
	for i := 0; i < last; i++ {
		z[i], bin = fullSubtractor(p, x[i], y[i], bin)
	}
	// N-N=N, overflow, drop borrow bit.
	z[last] = p.xor(p.xor(x[last], y[last]), bin)

	return z
}

// newBorrowSubtractor implements z=x-y and returns the borrow out of
// the most significant bit. The borrow is true if x<y as unsigned
// numbers.
func newBorrowSubtractor(p *Protocol, x, y []Bool) ([]Bool, Bool) {
	z := make([]Bool, len(x))
	bin := p.Constant(false)

	for i := 0; i < len(x); i++ {
		z[i], bin = fullSubtractor(p, x[i], y[i], bin)
	}
	return z, bin
}
