//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"time"

	"github.com/markkurossi/smpc/bitseq"
	"github.com/markkurossi/smpc/circuit"
	"github.com/markkurossi/smpc/mpcerr"
)

var (
	_ circuit.Session = &Session{}
)

type sessionState int

const (
	stateBuilding sessionState = iota
	stateEvaluated
	stateClosed
)

type wire struct {
	value bool
	depth int
	freed bool
}

// Session implements circuit.Session for one evaluation round.
type Session struct {
	nw       *Network
	epoch    uint32
	state    sessionState
	err      error
	wires    []wire
	gates    []circuit.Gate
	maxDepth int
	numAND   int
	stats    circuit.Stats
}

func newSession(nw *Network, epoch uint32) *Session {
	return &Session{
		nw:    nw,
		epoch: epoch,
	}
}

// Party implements circuit.Session.Party.
func (s *Session) Party() int {
	return s.nw.id
}

// NumParties implements circuit.Session.NumParties.
func (s *Session) NumParties() int {
	return len(s.nw.peers)
}

func (s *Session) fail(op, format string, a ...interface{}) {
	if s.err == nil {
		s.err = mpcerr.New(mpcerr.ProtocolMisuse, op, format, a...)
	}
}

func (s *Session) newWire(value bool, depth int) circuit.Wire {
	if s.state != stateBuilding {
		s.fail("gmw.Session", "session epoch %d already evaluated", s.epoch)
	}
	id := len(s.wires)
	s.wires = append(s.wires, wire{
		value: value,
		depth: depth,
	})
	if depth > s.maxDepth {
		s.maxDepth = depth
	}
	return circuit.Wire{
		Epoch: s.epoch,
		ID:    uint32(id),
	}
}

// input validates the input wire and returns its depth.
func (s *Session) input(w circuit.Wire) int {
	if w.Epoch != s.epoch {
		s.fail("gmw.Session", "wire %v from epoch %d, current %d",
			w, w.Epoch, s.epoch)
		return 0
	}
	if int(w.ID) >= len(s.wires) || s.wires[w.ID].freed {
		s.fail("gmw.Session", "invalid wire %v", w)
		return 0
	}
	return s.wires[w.ID].depth
}

// NewShare implements circuit.Session.NewShare.
func (s *Session) NewShare(bit bool) circuit.Wire {
	s.stats[circuit.SHARE]++
	return s.newWire(bit, 0)
}

// Constant implements circuit.Session.Constant. The party 0 holds the
// constant value and all other parties hold false.
func (s *Session) Constant(bit bool) circuit.Wire {
	s.stats[circuit.CONST]++
	return s.newWire(bit && s.nw.id == 0, 0)
}

func (s *Session) gate(op circuit.Operation, a, b circuit.Wire,
	depth int) circuit.Wire {

	s.stats[op]++
	out := s.newWire(false, depth)
	s.gates = append(s.gates, circuit.Gate{
		Input0: a,
		Input1: b,
		Output: out,
		Op:     op,
	})
	return out
}

// XOR implements circuit.Session.XOR.
func (s *Session) XOR(a, b circuit.Wire) circuit.Wire {
	return s.gate(circuit.XOR, a, b, max(s.input(a), s.input(b)))
}

// AND implements circuit.Session.AND.
func (s *Session) AND(a, b circuit.Wire) circuit.Wire {
	s.numAND++
	return s.gate(circuit.AND, a, b, max(s.input(a), s.input(b))+1)
}

// INV implements circuit.Session.INV.
func (s *Session) INV(a circuit.Wire) circuit.Wire {
	return s.gate(circuit.INV, a, a, s.input(a))
}

// MUX implements circuit.Session.MUX.
func (s *Session) MUX(g, a, b circuit.Wire) circuit.Wire {
	return s.XOR(b, s.AND(g, s.XOR(a, b)))
}

// Run implements circuit.Session.Run. Gates are evaluated level by
// level where the level of a gate is its AND-depth. At each level,
// the AND gates are evaluated first with one opening exchange and
// then the local gates in their submission order.
func (s *Session) Run() error {
	if s.err != nil {
		return s.err
	}
	if s.state != stateBuilding {
		s.fail("gmw.Run", "session epoch %d already evaluated", s.epoch)
		return s.err
	}
	start := time.Now()

	free := make([][]int, s.maxDepth+1)
	ands := make([][]int, s.maxDepth+1)
	for idx, g := range s.gates {
		depth := s.wires[g.Output.ID].depth
		if g.Op == circuit.AND {
			ands[depth] = append(ands[depth], idx)
		} else {
			free[depth] = append(free[depth], idx)
		}
	}

	t, err := s.nw.triples(s.epoch, s.numAND)
	if err != nil {
		s.err = err
		return err
	}
	tripleTime := time.Now()

	var offset int
	for level := 0; level <= s.maxDepth; level++ {
		if len(ands[level]) > 0 {
			err := s.evalAND(ands[level], t, offset)
			if err != nil {
				s.err = err
				return err
			}
			offset += len(ands[level])
		}
		for _, idx := range free[level] {
			g := s.gates[idx]
			a := s.wires[g.Input0.ID].value
			var v bool
			switch g.Op {
			case circuit.XOR:
				v = a != s.wires[g.Input1.ID].value
			case circuit.INV:
				v = a != (s.nw.id == 0)
			}
			s.wires[g.Output.ID].value = v
		}
	}
	s.state = stateEvaluated

	s.nw.Debugf("epoch %d: %v, depth=%d, triples=%v, eval=%v\n",
		s.epoch, s.stats, s.maxDepth, tripleTime.Sub(start),
		time.Since(tripleTime))

	return nil
}

// evalAND evaluates the AND gates with the Beaver triples starting
// from the offset. The parties open d=x^a and e=y^b for all gates and
// compute their shares of z = c ^ d&b ^ e&a ^ d&e where the d&e term
// is added by the party 0.
func (s *Session) evalAND(gates []int, t *triples, offset int) error {
	k := len(gates)
	masked := bitseq.New(2 * k)
	for i, idx := range gates {
		g := s.gates[idx]
		x := s.wires[g.Input0.ID].value
		y := s.wires[g.Input1.ID].value
		masked.SetBit(i, x != t.a[offset+i])
		masked.SetBit(k+i, y != t.b[offset+i])
	}

	opened, err := s.nw.open(masked)
	if err != nil {
		return err
	}

	for i, idx := range gates {
		d := opened.Bit(i)
		e := opened.Bit(k + i)
		a := t.a[offset+i]
		b := t.b[offset+i]

		z := t.c[offset+i] != (d && b)
		z = z != (e && a)
		if s.nw.id == 0 {
			z = z != (d && e)
		}
		s.wires[s.gates[idx].Output.ID].value = z
	}
	return nil
}

// Reify implements circuit.Session.Reify.
func (s *Session) Reify(w circuit.Wire) (bool, error) {
	const op = "gmw.Reify"

	switch s.state {
	case stateBuilding:
		return false, mpcerr.New(mpcerr.ProtocolMisuse, op,
			"session epoch %d not evaluated", s.epoch)
	case stateClosed:
		return false, mpcerr.New(mpcerr.ProtocolMisuse, op,
			"session epoch %d closed", s.epoch)
	}
	if w.Epoch != s.epoch {
		return false, mpcerr.New(mpcerr.ProtocolMisuse, op,
			"wire %v from epoch %d, current %d", w, w.Epoch, s.epoch)
	}
	if int(w.ID) >= len(s.wires) || s.wires[w.ID].freed {
		return false, mpcerr.New(mpcerr.ProtocolMisuse, op,
			"invalid wire %v", w)
	}
	return s.wires[w.ID].value, nil
}

// Free implements circuit.Session.Free.
func (s *Session) Free(w circuit.Wire) {
	if w.Epoch == s.epoch && int(w.ID) < len(s.wires) {
		s.wires[w.ID].freed = true
	}
}

// Stats implements circuit.Session.Stats.
func (s *Session) Stats() circuit.Stats {
	return s.stats
}

// Depth returns the AND-depth of the session's circuit.
func (s *Session) Depth() int {
	return s.maxDepth
}

// Close implements circuit.Session.Close.
func (s *Session) Close() error {
	s.state = stateClosed
	s.wires = nil
	s.gates = nil
	return nil
}
