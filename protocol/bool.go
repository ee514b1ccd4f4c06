//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"fmt"

	"github.com/markkurossi/smpc/mpcerr"
)

// Bool implements a secret shared bit. Bool values are handles to
// value slots and they can be copied freely. A slot is released when
// no Bool refers to it.
type Bool struct {
	p *Protocol
	s *slot
}

func (b Bool) String() string {
	if b.p == nil {
		return "Bool{}"
	}
	s := b.s
	switch s.kind {
	case kindConstant:
		return fmt.Sprintf("%v", s.bit)
	case kindExpr:
		return fmt.Sprintf("b%d=%v", s.id, s.wire)
	default:
		return fmt.Sprintf("b%d", s.id)
	}
}

func (b Bool) protocol(op string, o ...Bool) *Protocol {
	if b.p == nil {
		panic(mpcerr.New(mpcerr.ProtocolMisuse, op, "uninitialized value"))
	}
	for _, v := range o {
		if v.p != b.p {
			panic(mpcerr.New(mpcerr.ProtocolMisuse, op,
				"values from different protocols"))
		}
	}
	return b.p
}

// IsConstant tests if the value is a public constant.
func (b Bool) IsConstant() bool {
	return b.p != nil && b.s.kind == kindConstant
}

// Xor returns b^o. The operation is local.
func (b Bool) Xor(o Bool) Bool {
	return b.protocol("Bool.Xor", o).xor(b, o)
}

// And returns b&o. The operation is evaluated in the next evaluation
// round unless either of the values is a constant.
func (b Bool) And(o Bool) Bool {
	return b.protocol("Bool.And", o).and(b, o)
}

// Not returns !b.
func (b Bool) Not() Bool {
	p := b.protocol("Bool.Not")
	return p.xor(b, p.Constant(true))
}

// Or returns b|o.
func (b Bool) Or(o Bool) Bool {
	p := b.protocol("Bool.Or", o)
	return p.xor(p.and(b, o), p.xor(b, o))
}

// Eq returns b==o.
func (b Bool) Eq(o Bool) Bool {
	return b.Xor(o).Not()
}

// Mux returns t if b is true and f otherwise.
func (b Bool) Mux(t, f Bool) Bool {
	p := b.protocol("Bool.Mux", t, f)
	if b.s.kind == kindConstant {
		if b.s.bit {
			return t
		}
		return f
	}
	return p.xor(f, p.and(b, p.xor(t, f)))
}

// Reify returns the party's share of the value. It runs an evaluation
// round if the value is pending.
func (b Bool) Reify() (bool, error) {
	result, err := b.protocol("Bool.Reify").reify([]Bool{b})
	if err != nil {
		return false, err
	}
	return result[0], nil
}

// Get returns the cleartext value. It runs an evaluation round if the
// value is pending and reveals the value with all parties. Constants
// are resolved without communication.
func (b Bool) Get() (bool, error) {
	result, err := b.protocol("Bool.Get").reveal([]Bool{b})
	if err != nil {
		return false, err
	}
	return result[0], nil
}
