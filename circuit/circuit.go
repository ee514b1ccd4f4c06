//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package circuit defines the boolean circuit evaluation contract
// between the protocol orchestrator and the evaluation engine.
package circuit

import (
	"fmt"
)

// Operation specifies gate function.
type Operation byte

// Gate functions.
const (
	XOR Operation = iota
	AND
	INV
	SHARE
	CONST
)

func (op Operation) String() string {
	switch op {
	case XOR:
		return "XOR"
	case AND:
		return "AND"
	case INV:
		return "INV"
	case SHARE:
		return "SHARE"
	case CONST:
		return "CONST"
	default:
		return fmt.Sprintf("{Operation %d}", op)
	}
}

// Stats holds statistics about circuit operations.
type Stats [CONST + 1]int

// Add returns the sum of the statistics.
func (s Stats) Add(o Stats) Stats {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

// Count returns the total number of gates.
func (s Stats) Count() int {
	var sum int
	for _, v := range s {
		sum += v
	}
	return sum
}

// Cost computes the relative network cost of the operations. Only
// AND gates need communication.
func (s Stats) Cost() int {
	return s[AND]
}

func (s Stats) String() string {
	var result string
	for op := XOR; op <= CONST; op++ {
		if len(result) > 0 {
			result += " "
		}
		result += fmt.Sprintf("%s=%d", op, s[op])
	}
	return result
}

// Wire is an opaque handle to a wire inside an evaluation session.
// The Epoch identifies the session that created the wire.
type Wire struct {
	Epoch uint32
	ID    uint32
}

func (w Wire) String() string {
	return fmt.Sprintf("w%d.%d", w.Epoch, w.ID)
}

// Gate specifies a boolean gate.
type Gate struct {
	Input0 Wire
	Input1 Wire
	Output Wire
	Op     Operation
}

func (g Gate) String() string {
	switch g.Op {
	case XOR, AND:
		return fmt.Sprintf("%v %v %v %v", g.Input0, g.Input1, g.Op, g.Output)
	case INV:
		return fmt.Sprintf("%v %v %v", g.Input0, g.Op, g.Output)
	default:
		return fmt.Sprintf("%v %v", g.Op, g.Output)
	}
}

// Session evaluates one round of boolean gates for a party. All
// parties must construct their gates in the same order since gates
// are matched between parties by their submission order. The gate
// constructors never fail; a wire that does not belong to the session
// makes the following Run fail with a protocol misuse error.
type Session interface {
	// Party returns the party ID of the session.
	Party() int

	// NumParties returns the number of parties.
	NumParties() int

	// NewShare creates a wire holding the local share bit.
	NewShare(bit bool) Wire

	// Constant creates a wire with a public bit value.
	Constant(bit bool) Wire

	// XOR creates a local a^b gate.
	XOR(a, b Wire) Wire

	// AND creates an a&b gate. AND gates need one network round
	// and they are evaluated by Run.
	AND(a, b Wire) Wire

	// INV creates a local !a gate.
	INV(a Wire) Wire

	// MUX creates a gate that selects a if g is true and b
	// otherwise. MUX is XOR(b, AND(g, XOR(a, b))).
	MUX(g, a, b Wire) Wire

	// Run evaluates all gates of the session.
	Run() error

	// Reify returns the party's share of the wire value. It is
	// valid only after a completed Run.
	Reify(w Wire) (bool, error)

	// Free releases the wire.
	Free(w Wire)

	// Stats returns the session's gate statistics.
	Stats() Stats

	// Close releases the session and all its wires.
	Close() error
}

// Backend creates evaluation sessions.
type Backend interface {
	// NewSession creates a new session with a fresh epoch.
	NewSession() (Session, error)
}
