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

// Nat implements a secret shared unsigned integer of fixed width. The
// bits are stored from the least significant bit to the most
// significant bit. Nat values are handles to the protocol's value
// slots and they can be copied freely.
type Nat struct {
	bits []Bool
}

func checkWidth(op string, x, y []Bool) *Protocol {
	if len(x) == 0 {
		panic(mpcerr.New(mpcerr.ProtocolMisuse, op, "uninitialized value"))
	}
	if len(x) != len(y) {
		panic(mpcerr.New(mpcerr.WidthMismatch, op,
			"width mismatch: %d != %d", len(x), len(y)))
	}
	return x[0].protocol(op, y[0])
}

func checkInit(op string, x []Bool) *Protocol {
	if len(x) == 0 {
		panic(mpcerr.New(mpcerr.ProtocolMisuse, op, "uninitialized value"))
	}
	return x[0].protocol(op)
}

func checkNewWidth(op string, width int) {
	if width < 1 || width > 64 {
		panic(mpcerr.New(mpcerr.WidthMismatch, op,
			"invalid width %d", width))
	}
}

// NewNat creates a secret Nat from the party's share bits.
func (p *Protocol) NewNat(share *bitseq.Seq) Nat {
	if share == nil || share.Len() == 0 {
		panic(mpcerr.New(mpcerr.WidthMismatch, "protocol.NewNat",
			"empty share"))
	}
	bits := make([]Bool, share.Len())
	for i := range bits {
		bits[i] = p.NewBool(share.Bit(i))
	}
	return Nat{
		bits: bits,
	}
}

// NatConstant creates a public Nat constant of the width bits.
func (p *Protocol) NatConstant(v uint64, width int) Nat {
	checkNewWidth("protocol.NatConstant", width)
	return Nat{
		bits: p.constantBits(v, width),
	}
}

func (p *Protocol) constantBits(v uint64, width int) []Bool {
	bits := make([]Bool, width)
	for i := range bits {
		bits[i] = p.Constant(v&(1<<i) != 0)
	}
	return bits
}

// InputNat secret shares the width bits Nat v from the party owner.
// The argument v is ignored by the other parties.
func (p *Protocol) InputNat(owner int, v uint64, width int) (Nat, error) {
	checkNewWidth("protocol.InputNat", width)
	var clear *bitseq.Seq
	if owner == p.id {
		clear = bitseq.FromUint64(v, width)
	}
	bits, err := p.InputBits(owner, clear, width)
	if err != nil {
		return Nat{}, err
	}
	return Nat{
		bits: bits,
	}, nil
}

// Width returns the width of the value in bits.
func (n Nat) Width() int {
	return len(n.bits)
}

// Bit returns the bit i of the value.
func (n Nat) Bit(i int) Bool {
	return n.bits[i]
}

// Bits returns the bits of the value.
func (n Nat) Bits() []Bool {
	return append([]Bool(nil), n.bits...)
}

// Int returns the value as a two's complement Int of the same width.
func (n Nat) Int() Int {
	return Int{
		bits: n.bits,
	}
}

func (n Nat) String() string {
	return bitsString(n.bits)
}

// Add returns n+o mod 2^W.
func (n Nat) Add(o Nat) Nat {
	p := checkWidth("Nat.Add", n.bits, o.bits)
	return Nat{bits: p.delay(newAdder(p, n.bits, o.bits))}
}

// Sub returns n-o mod 2^W.
func (n Nat) Sub(o Nat) Nat {
	p := checkWidth("Nat.Sub", n.bits, o.bits)
	return Nat{bits: p.delay(newSubtractor(p, n.bits, o.bits))}
}

// Mul returns n*o mod 2^W.
func (n Nat) Mul(o Nat) Nat {
	p := checkWidth("Nat.Mul", n.bits, o.bits)
	return Nat{bits: p.delay(newMultiplier(p, n.bits, o.bits))}
}

// Div returns n/o. Division by zero returns a value with all bits set.
func (n Nat) Div(o Nat) Nat {
	p := checkWidth("Nat.Div", n.bits, o.bits)
	q, _ := newDivider(p, n.bits, o.bits)
	return Nat{bits: p.delay(q)}
}

// Mod returns n%o. Modulo by zero returns n.
func (n Nat) Mod(o Nat) Nat {
	p := checkWidth("Nat.Mod", n.bits, o.bits)
	_, r := newDivider(p, n.bits, o.bits)
	return Nat{bits: p.delay(r)}
}

// Xor returns the bitwise n^o.
func (n Nat) Xor(o Nat) Nat {
	p := checkWidth("Nat.Xor", n.bits, o.bits)
	return Nat{bits: p.delay(newXOR(p, n.bits, o.bits))}
}

// Eq tests if n==o.
func (n Nat) Eq(o Nat) Bool {
	p := checkWidth("Nat.Eq", n.bits, o.bits)
	return newEqComparator(p, n.bits, o.bits)
}

// Neq tests if n!=o.
func (n Nat) Neq(o Nat) Bool {
	return n.Eq(o).Not()
}

// Lt tests if n<o.
func (n Nat) Lt(o Nat) Bool {
	p := checkWidth("Nat.Lt", n.bits, o.bits)
	return newLtComparator(p, n.bits, o.bits, false)
}

// Lte tests if n<=o.
func (n Nat) Lte(o Nat) Bool {
	p := checkWidth("Nat.Lte", n.bits, o.bits)
	return newLeComparator(p, n.bits, o.bits, false)
}

// Gt tests if n>o.
func (n Nat) Gt(o Nat) Bool {
	p := checkWidth("Nat.Gt", n.bits, o.bits)
	return newGtComparator(p, n.bits, o.bits, false)
}

// Gte tests if n>=o.
func (n Nat) Gte(o Nat) Bool {
	p := checkWidth("Nat.Gte", n.bits, o.bits)
	return newGeComparator(p, n.bits, o.bits, false)
}

// MuxNat returns t if b is true and f otherwise.
func (b Bool) MuxNat(t, f Nat) Nat {
	p := checkWidth("Bool.MuxNat", t.bits, f.bits)
	b.protocol("Bool.MuxNat", t.bits[0])
	return Nat{bits: p.delay(newMUX(b, t.bits, f.bits))}
}

// Reify returns the party's share bits of the value.
func (n Nat) Reify() (*bitseq.Seq, error) {
	shares, err := checkInit("Nat.Reify", n.bits).reify(n.bits)
	if err != nil {
		return nil, err
	}
	return bitseq.FromBools(shares), nil
}

// GetBits returns the cleartext bits of the value.
func (n Nat) GetBits() (*bitseq.Seq, error) {
	clear, err := checkInit("Nat.GetBits", n.bits).reveal(n.bits)
	if err != nil {
		return nil, err
	}
	return bitseq.FromBools(clear), nil
}

// Get returns the cleartext value. Only the 64 least significant bits
// are returned for wider values.
func (n Nat) Get() (uint64, error) {
	clear, err := n.GetBits()
	if err != nil {
		return 0, err
	}
	return clear.Uint64(), nil
}

func bitsString(bits []Bool) string {
	result := make([]byte, 0, len(bits)+1)
	result = append(result, '{')
	for i := len(bits) - 1; i >= 0; i-- {
		b := bits[i]
		switch {
		case b.p == nil:
			result = append(result, '?')
		case b.IsConstant():
			if b.s.bit {
				result = append(result, '1')
			} else {
				result = append(result, '0')
			}
		default:
			result = append(result, 'x')
		}
	}
	return string(append(result, '}'))
}
