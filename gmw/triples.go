//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"encoding/binary"

	"github.com/markkurossi/smpc/bitseq"
	"github.com/markkurossi/smpc/env"
	"github.com/markkurossi/smpc/mpcerr"
	"github.com/markkurossi/smpc/ot"
	"github.com/markkurossi/smpc/prg"
	"golang.org/x/sync/errgroup"
)

// triples hold the party's shares of the multiplication triples
// (a, b, c) where c = a&b for the XOR of all parties' shares.
type triples struct {
	a []bool
	b []bool
	c []bool
}

func newTriples(k int) *triples {
	return &triples{
		a: make([]bool, k),
		b: make([]bool, k),
		c: make([]bool, k),
	}
}

// triples creates k triples for the session epoch.
func (nw *Network) triples(epoch uint32, k int) (*triples, error) {
	if k == 0 {
		return newTriples(0), nil
	}
	if nw.config.TripleSource() == env.TriplesDealer {
		return nw.dealerTriples(epoch, k), nil
	}
	return nw.otTriples(k)
}

// dealerTriples creates the triples from a dealer PRG that all
// parties derive from the shared dealer seed. Every party can compute
// all parties' shares so the triples provide no security.
func (nw *Network) dealerTriples(epoch uint32, k int) *triples {
	info := make([]byte, 0, 16)
	info = append(info, "gmw dealer"...)
	info = binary.BigEndian.AppendUint32(info, epoch)

	r := prg.NewDerived(prg.Seed(nw.config.DealerSeed, 0), info)

	n := len(nw.peers)
	result := newTriples(k)

	for t := 0; t < k; t++ {
		var a, b, c bool
		for party := 0; party < n; party++ {
			ai := r.Bit()
			bi := r.Bit()
			a = a != ai
			b = b != bi
			if party == nw.id {
				result.a[t] = ai
				result.b[t] = bi
			}
			if party < n-1 {
				ci := r.Bit()
				c = c != ci
				if party == nw.id {
					result.c[t] = ci
				}
			}
		}
		if nw.id == n-1 {
			result.c[t] = (a && b) != c
		}
	}
	return result
}

// otTriples creates the triples with oblivious transfer. Each party
// picks random a_i and b_i. For each peer pair, the cross terms
// a_i&b_j are shared with one OT where party i sends (r, r^a_i) and
// party j selects with b_j.
func (nw *Network) otTriples(k int) (*triples, error) {
	result := newTriples(k)
	for t := 0; t < k; t++ {
		result.a[t] = nw.rand.Bit()
		result.b[t] = nw.rand.Bit()
		result.c[t] = result.a[t] && result.b[t]
	}

	cross := make([][]bool, len(nw.peers))
	err := nw.forPeers(func(peer *Peer) error {
		terms, err := peer.crossTerms(result.a, result.b)
		if err != nil {
			return mpcerr.Wrap(mpcerr.Backend, "gmw.triples", err)
		}
		cross[peer.id] = terms
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, terms := range cross {
		for t, v := range terms {
			result.c[t] = result.c[t] != v
		}
	}
	return result, nil
}

// crossTerms returns the party's shares of a_i&b_j and a_j&b_i for
// the peer j.
func (peer *Peer) crossTerms(a, b []bool) ([]bool, error) {
	first := peer.nw.id < peer.id

	if !peer.otInit {
		if first {
			if err := peer.otSender.InitSender(peer.conn); err != nil {
				return nil, err
			}
			if err := peer.otReceiver.InitReceiver(peer.conn); err != nil {
				return nil, err
			}
		} else {
			if err := peer.otReceiver.InitReceiver(peer.conn); err != nil {
				return nil, err
			}
			if err := peer.otSender.InitSender(peer.conn); err != nil {
				return nil, err
			}
		}
		peer.otInit = true
	}

	k := len(a)
	r := make([]bool, k)
	m1 := make([]bool, k)
	for t := 0; t < k; t++ {
		r[t] = peer.rand.Bit()
		m1[t] = r[t] != a[t]
	}

	var received []bool
	var err error
	if first {
		if err = ot.SendBits(peer.otSender, r, m1); err != nil {
			return nil, err
		}
		received, err = ot.ReceiveBits(peer.otReceiver, b)
	} else {
		received, err = ot.ReceiveBits(peer.otReceiver, b)
		if err == nil {
			err = ot.SendBits(peer.otSender, r, m1)
		}
	}
	if err != nil {
		return nil, err
	}
	for t := 0; t < k; t++ {
		r[t] = r[t] != received[t]
	}
	return r, nil
}

// open sends the party's masked values to all peers and returns the
// XOR of all parties' values.
func (nw *Network) open(masked *bitseq.Seq) (*bitseq.Seq, error) {
	received := make([]*bitseq.Seq, len(nw.peers))

	err := nw.forPeers(func(peer *Peer) error {
		// Both peers send at the same time so the send runs
		// concurrently with the receive.
		var g errgroup.Group
		g.Go(func() error {
			if _, err := masked.WriteTo(peer.conn); err != nil {
				return err
			}
			return mpcerr.Wrap(mpcerr.Channel, "gmw.open", peer.conn.Flush())
		})
		seq, err := bitseq.Read(peer.conn)
		if werr := g.Wait(); err == nil {
			err = werr
		}
		if err != nil {
			return err
		}
		if seq.Len() != masked.Len() {
			return mpcerr.New(mpcerr.Format, "gmw.open",
				"peer %v: %d masked bits, expected %d",
				peer, seq.Len(), masked.Len())
		}
		received[peer.id] = seq
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := masked.Clone()
	for _, seq := range received {
		if seq == nil {
			continue
		}
		if err := result.XorWith(seq); err != nil {
			return nil, err
		}
	}
	return result, nil
}
