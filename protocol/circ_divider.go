//
// circ_divider.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package protocol

// newDivider creates a restoring long division circuit implementing
// q=x/y and r=x%y for unsigned arguments. For each quotient bit i,
// from the most significant to the least significant, the circuit
// tries to subtract y<<i from the remainder. The subtraction fails if
// it borrows or if y<<i overflows the width, which is true if any of
// the i high bits of y is set. Division by zero gives a quotient with
// all bits set and the remainder x.
func newDivider(p *Protocol, x, y []Bool) (q, r []Bool) {
	n := len(x)
	q = make([]Bool, n)
	r = make([]Bool, n)
	copy(r, x)
	if n == 0 {
		return
	}

	// overflow[i] = y[n-1] | ... | y[n-i]
	overflow := make([]Bool, n)
	overflow[0] = p.Constant(false)
	for i := 1; i < n; i++ {
		overflow[i] = overflow[i-1].Or(y[n-i])
	}

	for i := n - 1; i >= 0; i-- {
		diff, borrow := newBorrowSubtractor(p, r[i:], y[:n-i])
		borrow = borrow.Or(overflow[i])
		for j := 0; j < n-i; j++ {
			r[i+j] = borrow.Mux(r[i+j], diff[j])
		}
		q[i] = borrow.Not()
	}
	return
}

// newCondNegate returns -x if sign is true and x otherwise. It
// computes (x XOR sign) + sign with the sign as the carry in.
func newCondNegate(p *Protocol, sign Bool, x []Bool) []Bool {
	n := len(x)
	z := make([]Bool, n)
	if n == 0 {
		return z
	}
	c := sign
	for i := 0; i < n-1; i++ {
		d := p.xor(x[i], sign)
		z[i] = p.xor(d, c)
		c = p.and(c, d)
	}
	z[n-1] = p.xor(p.xor(sign, c), x[n-1])
	return z
}

// newAbs returns the absolute value of the two's complement x. The
// result is (x + s) XOR s where s has all bits set to the sign of x.
func newAbs(p *Protocol, x []Bool) []Bool {
	n := len(x)
	if n == 0 {
		return nil
	}
	fill := make([]Bool, n)
	for i := range fill {
		fill[i] = x[n-1]
	}
	sum := newAdder(p, x, fill)
	for i := range sum {
		sum[i] = p.xor(sum[i], fill[i])
	}
	return sum
}
