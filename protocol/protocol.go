//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package protocol implements the lazy, batched secure computation
// orchestrator and the typed secure values Bool, Nat, and Int.
//
// Each value refers to a slot that holds either the party's share of
// a resolved value, a public constant, or a pending expression in the
// current evaluation session. Slots are released with their last
// value. Operations
// that need the network are queued into the session and evaluated
// together when some value's share or cleartext is needed. All
// parties must perform their operations in the same order since the
// queued gates are matched between the parties by their order.
//
// A Protocol is not safe for concurrent use.
package protocol

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/markkurossi/smpc/bitseq"
	"github.com/markkurossi/smpc/circuit"
	"github.com/markkurossi/smpc/env"
	"github.com/markkurossi/smpc/mpcerr"
	"github.com/markkurossi/smpc/p2p"
	"github.com/markkurossi/smpc/prg"
	"github.com/markkurossi/smpc/sharing"
	"github.com/markkurossi/text/superscript"
	"golang.org/x/sync/errgroup"
)

// Network defines the evaluation backend and the byte channels
// between the parties.
type Network interface {
	circuit.Backend

	// ID returns the party ID.
	ID() int

	// NumParties returns the number of parties.
	NumParties() int

	// Channels returns the channels to all parties indexed by party
	// ID. The party's own channel is a loopback.
	Channels() []p2p.Channel

	// IOStats returns the network I/O statistics.
	IOStats() p2p.IOStats
}

// State defines the protocol states.
type State int

// Protocol states.
const (
	Building State = iota
	Running
	Settled
	Failed
)

var stateNames = map[State]string{
	Building: "building",
	Running:  "running",
	Settled:  "settled",
	Failed:   "failed",
}

func (s State) String() string {
	name, ok := stateNames[s]
	if ok {
		return name
	}
	return fmt.Sprintf("{State %d}", int(s))
}

type kind byte

const (
	kindValue kind = iota
	kindConstant
	kindExpr
)

type slot struct {
	id   int
	kind kind
	bit  bool
	wire circuit.Wire

	// Session wire of a value or constant slot, valid for the
	// session liftSerial.
	liftSerial uint32
	lift       circuit.Wire
}

// maxTimingRounds limits the number of rounds in the timing report.
const maxTimingRounds = 100

// Transcript operation codes.
const (
	opConst byte = iota + 1
	opShare
	opInput
	opXor
	opAnd
	opRun
)

// Protocol implements the secure computation orchestrator for one
// party.
type Protocol struct {
	config      *env.Config
	nw          Network
	id          int
	n           int
	instance    uuid.UUID
	rand        *prg.PRG
	session     circuit.Session
	serial      uint32
	state       State
	err         error
	numSlots    int
	pending     []*slot
	pendingVecs [][]Bool
	transcript  hash.Hash
	rounds      int
	stats       circuit.Stats
	timing      *circuit.Timing
}

// New creates a new protocol for the network.
func New(config *env.Config, nw Network) (*Protocol, error) {
	r, err := config.NewPRG()
	if err != nil {
		return nil, mpcerr.Wrap(mpcerr.Backend, "protocol.New", err)
	}
	instance, err := uuid.NewRandomFromReader(config.GetRandom())
	if err != nil {
		return nil, mpcerr.Wrap(mpcerr.Backend, "protocol.New", err)
	}
	session, err := nw.NewSession()
	if err != nil {
		return nil, mpcerr.Wrap(mpcerr.Backend, "protocol.New", err)
	}
	p := &Protocol{
		config:     config,
		nw:         nw,
		id:         nw.ID(),
		n:          nw.NumParties(),
		instance:   instance,
		rand:       r,
		session:    session,
		serial:     1,
		transcript: sha256.New(),
		timing:     circuit.NewTiming(),
	}
	p.timing.Max = maxTimingRounds
	p.Debugf("new protocol: %d parties\n", p.n)
	return p, nil
}

// Debugf prints debugging message if Verbose debugging is enabled.
func (p *Protocol) Debugf(format string, a ...interface{}) {
	p.config.Debugf("Protocol%s %s: "+format, append([]interface{}{
		superscript.Itoa(p.id), p.instance.String()[:8]}, a...)...)
}

// ID returns the party ID.
func (p *Protocol) ID() int {
	return p.id
}

// NumParties returns the number of parties.
func (p *Protocol) NumParties() int {
	return p.n
}

// Instance returns the protocol instance ID.
func (p *Protocol) Instance() uuid.UUID {
	return p.instance
}

// State returns the protocol state.
func (p *Protocol) State() State {
	return p.state
}

// Err returns the error that failed the protocol.
func (p *Protocol) Err() error {
	return p.err
}

// Rounds returns the number of evaluation rounds run.
func (p *Protocol) Rounds() int {
	return p.rounds
}

// Stats returns the gate statistics of all evaluation rounds.
func (p *Protocol) Stats() circuit.Stats {
	return p.stats
}

// Pending returns the number of pending values.
func (p *Protocol) Pending() int {
	return len(p.pending)
}

// Transcript returns the digest of the canonical operation sequence
// so far. The transcripts of all parties are equal when they
// construct their computations in the same order.
func (p *Protocol) Transcript() []byte {
	return p.transcript.Sum(nil)
}

// Timing prints the evaluation round timing report to w.
func (p *Protocol) Timing(w io.Writer) {
	p.timing.Print(w, p.nw.IOStats())
}

// Close closes the protocol's evaluation session.
func (p *Protocol) Close() error {
	if p.session == nil {
		return nil
	}
	err := p.session.Close()
	p.session = nil
	return err
}

func (p *Protocol) fail(err error) error {
	if p.state != Failed {
		p.state = Failed
		p.err = err
		p.Debugf("failed: %v\n", err)
	}
	return p.err
}

func (p *Protocol) record(op byte, out int, in ...int) {
	var buf [4]byte
	p.transcript.Write([]byte{op})
	binary.BigEndian.PutUint32(buf[:], uint32(out))
	p.transcript.Write(buf[:])
	for _, idx := range in {
		binary.BigEndian.PutUint32(buf[:], uint32(idx))
		p.transcript.Write(buf[:])
	}
}

func (p *Protocol) newSlot(s slot) Bool {
	s.id = p.numSlots
	p.numSlots++
	return Bool{
		p: p,
		s: &s,
	}
}

func (p *Protocol) value(share bool) Bool {
	return p.newSlot(slot{
		kind: kindValue,
		bit:  share,
	})
}

func (p *Protocol) expr(w circuit.Wire) Bool {
	b := p.newSlot(slot{
		kind: kindExpr,
		wire: w,
	})
	p.pending = append(p.pending, b.s)
	return b
}

// share returns the party's share of a resolved slot.
func (p *Protocol) share(s *slot) bool {
	if s.kind == kindConstant {
		return s.bit && p.id == 0
	}
	return s.bit
}

// backend returns the current evaluation session.
func (p *Protocol) backend() circuit.Session {
	if p.session == nil {
		if p.err != nil {
			panic(mpcerr.New(mpcerr.ProtocolMisuse, "protocol.session",
				"no session: %v", p.err))
		}
		panic(mpcerr.New(mpcerr.ProtocolMisuse, "protocol.session",
			"protocol closed"))
	}
	return p.session
}

// wire returns the session wire for the value b.
func (p *Protocol) wire(b Bool) circuit.Wire {
	s := b.s
	if s.kind == kindExpr {
		return s.wire
	}
	if s.liftSerial != p.serial {
		if s.kind == kindValue {
			s.lift = p.backend().NewShare(s.bit)
		} else {
			s.lift = p.backend().Constant(s.bit)
		}
		s.liftSerial = p.serial
	}
	return s.lift
}

// Constant creates a public constant value.
func (p *Protocol) Constant(bit bool) Bool {
	b := p.newSlot(slot{
		kind: kindConstant,
		bit:  bit,
	})
	if bit {
		p.record(opConst, b.s.id, 1)
	} else {
		p.record(opConst, b.s.id, 0)
	}
	return b
}

// NewBool creates a secret value from the party's share.
func (p *Protocol) NewBool(share bool) Bool {
	b := p.value(share)
	p.record(opShare, b.s.id)
	return b
}

func (p *Protocol) xor(a, b Bool) Bool {
	sa := a.s
	sb := b.s

	var r Bool
	switch {
	case sa.kind == kindConstant && sb.kind == kindConstant:
		r = p.newSlot(slot{
			kind: kindConstant,
			bit:  sa.bit != sb.bit,
		})
	case sa.kind != kindExpr && sb.kind != kindExpr:
		r = p.value(p.share(sa) != p.share(sb))
	case sa.kind == kindConstant:
		r = p.xorConstant(b, sa.bit)
	case sb.kind == kindConstant:
		r = p.xorConstant(a, sb.bit)
	default:
		wa := p.wire(a)
		wb := p.wire(b)
		r = p.expr(p.backend().XOR(wa, wb))
	}
	p.record(opXor, r.s.id, a.s.id, b.s.id)
	return r
}

func (p *Protocol) xorConstant(e Bool, bit bool) Bool {
	if !bit {
		return e
	}
	w := p.wire(e)
	return p.expr(p.backend().INV(w))
}

func (p *Protocol) and(a, b Bool) Bool {
	sa := a.s
	sb := b.s

	var r Bool
	switch {
	case sa.kind == kindConstant && sb.kind == kindConstant:
		r = p.newSlot(slot{
			kind: kindConstant,
			bit:  sa.bit && sb.bit,
		})
	case sa.kind == kindConstant:
		if sa.bit {
			r = b
		} else {
			r = p.newSlot(slot{
				kind: kindConstant,
			})
		}
	case sb.kind == kindConstant:
		if sb.bit {
			r = a
		} else {
			r = p.newSlot(slot{
				kind: kindConstant,
			})
		}
	default:
		wa := p.wire(a)
		wb := p.wire(b)
		r = p.expr(p.backend().AND(wa, wb))
	}
	p.record(opAnd, r.s.id, a.s.id, b.s.id)
	return r
}

// delay queues the result vector of a Nat or Int operation if it has
// pending bits.
func (p *Protocol) delay(bits []Bool) []Bool {
	for _, b := range bits {
		if b.s.kind == kindExpr {
			p.pendingVecs = append(p.pendingVecs, bits)
			break
		}
	}
	return bits
}

// Run evaluates all pending values in one evaluation round and opens
// a new evaluation session. Run does nothing if there are no pending
// values.
func (p *Protocol) Run() error {
	if p.state == Failed {
		return p.err
	}
	if p.session == nil {
		return mpcerr.New(mpcerr.ProtocolMisuse, "protocol.Run",
			"protocol closed")
	}
	if len(p.pending) == 0 {
		p.pendingVecs = nil
		return nil
	}
	p.state = Running
	start := time.Now()

	if err := p.session.Run(); err != nil {
		return p.fail(err)
	}
	evaluated := time.Now()

	for _, s := range p.pending {
		v, err := p.session.Reify(s.wire)
		if err != nil {
			return p.fail(err)
		}
		p.session.Free(s.wire)
		s.kind = kindValue
		s.bit = v
		s.wire = circuit.Wire{}
	}
	var vecBits int
	for _, vec := range p.pendingVecs {
		for _, b := range vec {
			if b.s.kind == kindExpr {
				return p.fail(mpcerr.New(mpcerr.ProtocolMisuse,
					"protocol.Run", "unresolved value %d", b.s.id))
			}
		}
		vecBits += len(vec)
	}
	reified := time.Now()
	p.state = Settled

	stats := p.session.Stats()
	p.stats = p.stats.Add(stats)
	p.rounds++

	if err := p.session.Close(); err != nil {
		return p.fail(err)
	}
	session, err := p.nw.NewSession()
	if err != nil {
		p.session = nil
		return p.fail(err)
	}
	p.session = session
	p.serial++

	sample := p.timing.Add(fmt.Sprintf("Round %d", p.rounds), start,
		[]string{
			fmt.Sprintf("%v", stats.Count()),
			fmt.Sprintf("%v", stats[circuit.AND]),
		})
	sample.SubSample("Eval", evaluated)
	sample.SubSample("Reify", reified)
	sample.SubSample("Session", sample.End)
	p.Debugf("round %d: %d values, %d vectors (%d bits): %v\n",
		p.rounds, len(p.pending), len(p.pendingVecs), vecBits, stats)
	p.record(opRun, len(p.pending), len(p.pendingVecs))

	p.pending = nil
	p.pendingVecs = nil
	p.state = Building

	return nil
}

// reify returns the party's shares of the values.
func (p *Protocol) reify(bits []Bool) ([]bool, error) {
	if p.state == Failed {
		return nil, p.err
	}
	for _, b := range bits {
		if b.s.kind == kindExpr {
			if err := p.Run(); err != nil {
				return nil, err
			}
			break
		}
	}
	result := make([]bool, len(bits))
	for i, b := range bits {
		result[i] = p.share(b.s)
	}
	return result, nil
}

// reveal returns the cleartext values. Constants are resolved locally
// and the secret values are opened with one exchange with all
// parties.
func (p *Protocol) reveal(bits []Bool) ([]bool, error) {
	if p.state == Failed {
		return nil, p.err
	}
	result := make([]bool, len(bits))
	var secret []Bool
	var positions []int

	for i, b := range bits {
		if b.s.kind == kindConstant {
			result[i] = b.s.bit
		} else {
			secret = append(secret, b)
			positions = append(positions, i)
		}
	}
	if len(secret) == 0 {
		return result, nil
	}
	shares, err := p.reify(secret)
	if err != nil {
		return nil, err
	}
	clear, err := p.revealShares(bitseq.FromBools(shares))
	if err != nil {
		return nil, p.fail(err)
	}
	if clear.Len() != len(secret) {
		return nil, p.fail(mpcerr.New(mpcerr.Format, "protocol.Get",
			"revealed %d bits, expected %d", clear.Len(), len(secret)))
	}
	for i, pos := range positions {
		result[pos] = clear.Bit(i)
	}
	return result, nil
}

func (p *Protocol) revealShares(share *bitseq.Seq) (*bitseq.Seq, error) {
	channels := p.nw.Channels()

	// The loopback is written before the peer sends start.
	if err := sharing.RevealSend(channels[p.id], share); err != nil {
		return nil, err
	}
	var g errgroup.Group
	for idx, ch := range channels {
		if idx == p.id {
			continue
		}
		ch := ch
		g.Go(func() error {
			return sharing.RevealSend(ch, share)
		})
	}
	clear, err := sharing.RevealRecv(channels)
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return nil, err
	}
	return clear, nil
}

// InputBits secret shares the width bits from the party owner. The
// owner provides the cleartext bits and all other parties provide
// nil. All parties receive their shares of the bits.
func (p *Protocol) InputBits(owner int, clear *bitseq.Seq, width int) (
	[]Bool, error) {

	const op = "protocol.Input"

	if p.state == Failed {
		return nil, p.err
	}
	if owner < 0 || owner >= p.n {
		return nil, mpcerr.New(mpcerr.ProtocolMisuse, op,
			"invalid owner %d", owner)
	}
	channels := p.nw.Channels()

	if owner == p.id {
		if clear == nil || clear.Len() != width {
			return nil, mpcerr.New(mpcerr.WidthMismatch, op,
				"input has %d bits, expected %d", seqLen(clear), width)
		}
		if err := sharing.ShareSend(p.rand, channels, clear); err != nil {
			return nil, p.fail(err)
		}
	}
	share, err := sharing.ShareRecv(channels[owner])
	if err != nil {
		return nil, p.fail(err)
	}
	if share.Len() != width {
		return nil, p.fail(mpcerr.New(mpcerr.Format, op,
			"share has %d bits, expected %d", share.Len(), width))
	}
	result := make([]Bool, width)
	for i := 0; i < width; i++ {
		result[i] = p.value(share.Bit(i))
		p.record(opInput, result[i].s.id, owner)
	}
	return result, nil
}

func seqLen(s *bitseq.Seq) int {
	if s == nil {
		return 0
	}
	return s.Len()
}

// InputBool secret shares the bit v from the party owner.
func (p *Protocol) InputBool(owner int, v bool) (Bool, error) {
	var clear *bitseq.Seq
	if owner == p.id {
		clear = bitseq.FromBools([]bool{v})
	}
	bits, err := p.InputBits(owner, clear, 1)
	if err != nil {
		return Bool{}, err
	}
	return bits[0], nil
}
