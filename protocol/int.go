//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"github.com/markkurossi/smpc/bitseq"
	"github.com/markkurossi/smpc/mpcerr"
)

// Int implements a secret shared two's complement signed integer of
// fixed width. The most significant bit is the sign bit.
type Int struct {
	bits []Bool
}

// NewInt creates a secret Int from the party's share bits.
func (p *Protocol) NewInt(share *bitseq.Seq) Int {
	if share == nil || share.Len() == 0 {
		panic(mpcerr.New(mpcerr.WidthMismatch, "protocol.NewInt",
			"empty share"))
	}
	return p.NewNat(share).Int()
}

// IntConstant creates a public Int constant of the width bits.
func (p *Protocol) IntConstant(v int64, width int) Int {
	checkNewWidth("protocol.IntConstant", width)
	return Int{
		bits: p.constantBits(uint64(v), width),
	}
}

// InputInt secret shares the width bits Int v from the party owner.
// The argument v is ignored by the other parties.
func (p *Protocol) InputInt(owner int, v int64, width int) (Int, error) {
	n, err := p.InputNat(owner, uint64(v), width)
	if err != nil {
		return Int{}, err
	}
	return n.Int(), nil
}

// Width returns the width of the value in bits.
func (i Int) Width() int {
	return len(i.bits)
}

// Bit returns the bit n of the value.
func (i Int) Bit(n int) Bool {
	return i.bits[n]
}

// Bits returns the bits of the value.
func (i Int) Bits() []Bool {
	return append([]Bool(nil), i.bits...)
}

// Sign returns the sign bit of the value.
func (i Int) Sign() Bool {
	return i.bits[len(i.bits)-1]
}

// Nat returns the value bits as an unsigned Nat.
func (i Int) Nat() Nat {
	return Nat{
		bits: i.bits,
	}
}

func (i Int) String() string {
	return bitsString(i.bits)
}

// Add returns i+o with two's complement wrap around.
func (i Int) Add(o Int) Int {
	p := checkWidth("Int.Add", i.bits, o.bits)
	return Int{bits: p.delay(newAdder(p, i.bits, o.bits))}
}

// Sub returns i-o with two's complement wrap around.
func (i Int) Sub(o Int) Int {
	p := checkWidth("Int.Sub", i.bits, o.bits)
	return Int{bits: p.delay(newSubtractor(p, i.bits, o.bits))}
}

// Mul returns i*o with two's complement wrap around.
func (i Int) Mul(o Int) Int {
	p := checkWidth("Int.Mul", i.bits, o.bits)
	return Int{bits: p.delay(newMultiplier(p, i.bits, o.bits))}
}

// Div returns i/o truncated toward zero.
func (i Int) Div(o Int) Int {
	p := checkWidth("Int.Div", i.bits, o.bits)
	q, _ := newDivider(p, newAbs(p, i.bits), newAbs(p, o.bits))
	sign := p.xor(i.Sign(), o.Sign())
	return Int{bits: p.delay(newCondNegate(p, sign, q))}
}

// Mod returns the remainder of i/o. The remainder has the sign of i.
func (i Int) Mod(o Int) Int {
	p := checkWidth("Int.Mod", i.bits, o.bits)
	_, r := newDivider(p, newAbs(p, i.bits), newAbs(p, o.bits))
	return Int{bits: p.delay(newCondNegate(p, i.Sign(), r))}
}

// Neg returns -i.
func (i Int) Neg() Int {
	p := checkInit("Int.Neg", i.bits)
	zero := p.constantBits(0, len(i.bits))
	return Int{bits: p.delay(newSubtractor(p, zero, i.bits))}
}

// Abs returns the absolute value of i. The absolute value of the
// minimum value is the minimum value.
func (i Int) Abs() Int {
	p := checkInit("Int.Abs", i.bits)
	return Int{bits: p.delay(newAbs(p, i.bits))}
}

// Xor returns the bitwise i^o.
func (i Int) Xor(o Int) Int {
	p := checkWidth("Int.Xor", i.bits, o.bits)
	return Int{bits: p.delay(newXOR(p, i.bits, o.bits))}
}

// Eq tests if i==o.
func (i Int) Eq(o Int) Bool {
	p := checkWidth("Int.Eq", i.bits, o.bits)
	return newEqComparator(p, i.bits, o.bits)
}

// Neq tests if i!=o.
func (i Int) Neq(o Int) Bool {
	return i.Eq(o).Not()
}

// Lt tests if i<o.
func (i Int) Lt(o Int) Bool {
	p := checkWidth("Int.Lt", i.bits, o.bits)
	return newLtComparator(p, i.bits, o.bits, true)
}

// Lte tests if i<=o.
func (i Int) Lte(o Int) Bool {
	p := checkWidth("Int.Lte", i.bits, o.bits)
	return newLeComparator(p, i.bits, o.bits, true)
}

// Gt tests if i>o.
func (i Int) Gt(o Int) Bool {
	p := checkWidth("Int.Gt", i.bits, o.bits)
	return newGtComparator(p, i.bits, o.bits, true)
}

// Gte tests if i>=o.
func (i Int) Gte(o Int) Bool {
	p := checkWidth("Int.Gte", i.bits, o.bits)
	return newGeComparator(p, i.bits, o.bits, true)
}

// MuxInt returns t if b is true and f otherwise.
func (b Bool) MuxInt(t, f Int) Int {
	return Int{bits: b.MuxNat(t.Nat(), f.Nat()).bits}
}

// Reify returns the party's share bits of the value.
func (i Int) Reify() (*bitseq.Seq, error) {
	return i.Nat().Reify()
}

// GetBits returns the cleartext bits of the value.
func (i Int) GetBits() (*bitseq.Seq, error) {
	return i.Nat().GetBits()
}

// Get returns the cleartext value sign extended to 64 bits.
func (i Int) Get() (int64, error) {
	clear, err := i.GetBits()
	if err != nil {
		return 0, err
	}
	v := clear.Uint64()
	width := clear.Len()
	if width < 64 && clear.Bit(width-1) {
		v |= ^uint64(0) << width
	}
	return int64(v), nil
}
