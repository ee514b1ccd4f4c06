//
// circ_comparators.go
//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package protocol

// newEqComparator tests if x==y. The bitwise equalities are combined
// with a balanced tree of AND gates.
func newEqComparator(p *Protocol, x, y []Bool) Bool {
	if len(x) == 0 {
		return p.Constant(true)
	}
	level := make([]Bool, len(x))
	for i := range x {
		level[i] = p.xor(x[i], y[i]).Not()
	}
	for len(level) > 1 {
		var next []Bool
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, p.and(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0]
}

// newGeComparator tests if x>=y. The arguments are extended by one bit,
// with sign extension if signed and zero extension otherwise, and x>=y
// if the sign of the extended difference x-y is clear.
func newGeComparator(p *Protocol, x, y []Bool, signed bool) Bool {
	n := len(x)
	if n == 0 {
		return p.Constant(true)
	}
	xe := make([]Bool, n+1)
	ye := make([]Bool, n+1)
	copy(xe, x)
	copy(ye, y)
	if signed {
		xe[n] = x[n-1]
		ye[n] = y[n-1]
	} else {
		xe[n] = p.Constant(false)
		ye[n] = p.Constant(false)
	}
	diff := newSubtractor(p, xe, ye)
	return diff[n].Not()
}

// newLtComparator tests if x<y.
func newLtComparator(p *Protocol, x, y []Bool, signed bool) Bool {
	return newGeComparator(p, x, y, signed).Not()
}

// newLeComparator tests if x<=y.
func newLeComparator(p *Protocol, x, y []Bool, signed bool) Bool {
	return newGeComparator(p, y, x, signed)
}

// newGtComparator tests if x>y.
func newGtComparator(p *Protocol, x, y []Bool, signed bool) Bool {
	return newLeComparator(p, x, y, signed).Not()
}
