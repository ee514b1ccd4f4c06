//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/markkurossi/smpc/bitseq"
	"github.com/markkurossi/smpc/circuit"
	"github.com/markkurossi/smpc/env"
	"github.com/markkurossi/smpc/mpcerr"
	"github.com/markkurossi/smpc/p2p"
	"github.com/markkurossi/smpc/prg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const numInputs = 8

func mesh(n int) [][]*p2p.Conn {
	conns := make([][]*p2p.Conn, n)
	for i := 0; i < n; i++ {
		conns[i] = make([]*p2p.Conn, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			conns[i][j], conns[j][i] = p2p.Pipe()
		}
	}
	return conns
}

// share splits the clear bits into n XOR shares.
func share(r *prg.PRG, n int, clear []bool) [][]bool {
	result := make([][]bool, n)
	for p := 0; p < n; p++ {
		result[p] = make([]bool, len(clear))
	}
	for i, bit := range clear {
		acc := bit
		for p := 0; p < n-1; p++ {
			result[p][i] = r.Bit()
			acc = acc != result[p][i]
		}
		result[n-1][i] = acc
	}
	return result
}

// evaluate builds the test circuit from the input shares, runs it,
// and returns the output shares.
func evaluate(s circuit.Session, x, y []bool) ([]bool, error) {
	var xs, ys, outputs []circuit.Wire
	for i := range x {
		xs = append(xs, s.NewShare(x[i]))
		ys = append(ys, s.NewShare(y[i]))
	}
	var z []circuit.Wire
	for i := range xs {
		z = append(z, s.AND(xs[i], ys[i]))
	}
	outputs = append(outputs, z...)

	// Deeper gates mixing all gate types.
	w := s.AND(z[0], s.XOR(z[1], s.INV(xs[2])))
	outputs = append(outputs, w)
	outputs = append(outputs, s.MUX(xs[3], ys[3], ys[4]))
	outputs = append(outputs, s.AND(w, s.Constant(true)))
	outputs = append(outputs, s.XOR(s.Constant(true), xs[5]))

	if err := s.Run(); err != nil {
		return nil, err
	}
	var result []bool
	for _, o := range outputs {
		v, err := s.Reify(o)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func expected(x, y []bool) []bool {
	var result []bool
	for i := range x {
		result = append(result, x[i] && y[i])
	}
	w := result[0] && (result[1] != !x[2])
	result = append(result, w)
	if x[3] {
		result = append(result, y[3])
	} else {
		result = append(result, y[4])
	}
	result = append(result, w)
	result = append(result, !x[5])
	return result
}

func run(t *testing.T, n int, config *env.Config, rounds int) {
	r := prg.New(uint64(n), uint64(rounds))

	nets := make([]*Network, n)
	conns := mesh(n)
	for id := 0; id < n; id++ {
		var err error
		nets[id], err = NewNetwork(config, id, conns[id])
		require.NoError(t, err)
	}
	defer func() {
		for _, nw := range nets {
			nw.Close()
		}
	}()

	for round := 0; round < rounds; round++ {
		x := make([]bool, numInputs)
		y := make([]bool, numInputs)
		for i := range x {
			x[i] = r.Bit()
			y[i] = r.Bit()
		}
		xShares := share(r, n, x)
		yShares := share(r, n, y)

		results := make([][]bool, n)
		var g errgroup.Group
		for id := 0; id < n; id++ {
			id := id
			g.Go(func() error {
				s, err := nets[id].NewSession()
				if err != nil {
					return err
				}
				defer s.Close()
				results[id], err = evaluate(s, xShares[id], yShares[id])
				return err
			})
		}
		require.NoError(t, g.Wait())

		want := expected(x, y)
		for i := range want {
			var got bool
			for id := 0; id < n; id++ {
				got = got != results[id][i]
			}
			assert.Equal(t, want[i], got, "round %d: output %d", round, i)
		}
	}
}

func TestLocal(t *testing.T) {
	run(t, 1, &env.Config{
		Rand: prg.New(1, 0),
	}, 3)
}

func TestDealer(t *testing.T) {
	for n := 2; n <= 4; n++ {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			run(t, n, &env.Config{
				Triples:    env.TriplesDealer,
				DealerSeed: 1234,
			}, 3)
		})
	}
}

func TestOT(t *testing.T) {
	run(t, 2, &env.Config{}, 2)
}

func TestOT3Secp256k1(t *testing.T) {
	if testing.Short() {
		t.Skip("slow")
	}
	run(t, 3, &env.Config{
		Curve: "secp256k1",
	}, 1)
}

func TestDealerTriples(t *testing.T) {
	const n = 3
	const k = 200

	var parts []*triples
	for id := 0; id < n; id++ {
		nw := &Network{
			config: &env.Config{
				DealerSeed: 99,
			},
			id:    id,
			peers: make([]*Peer, n),
		}
		parts = append(parts, nw.dealerTriples(7, k))
	}
	var ones int
	for t0 := 0; t0 < k; t0++ {
		var a, b, c bool
		for _, p := range parts {
			a = a != p.a[t0]
			b = b != p.b[t0]
			c = c != p.c[t0]
		}
		assert.Equal(t, a && b, c, "triple %d", t0)
		if a {
			ones++
		}
	}
	assert.Greater(t, ones, 0)
	assert.Less(t, ones, k)
}

func TestOpenWide(t *testing.T) {
	const n = 3
	// Each party sends more than the connection write buffers hold
	// before it reads.
	const bits = 8 << 20

	conns := mesh(n)
	nets := make([]*Network, n)
	for id := 0; id < n; id++ {
		var err error
		nets[id], err = NewNetwork(&env.Config{}, id, conns[id])
		require.NoError(t, err)
		defer nets[id].Close()
	}

	r := prg.New(3, 4)
	masked := make([]*bitseq.Seq, n)
	want := bitseq.New(bits)
	for id := range masked {
		var err error
		masked[id], err = bitseq.Random(r, bits)
		require.NoError(t, err)
		require.NoError(t, want.XorWith(masked[id]))
	}

	opened := make([]*bitseq.Seq, n)
	var g errgroup.Group
	for id := 0; id < n; id++ {
		id := id
		g.Go(func() error {
			var err error
			opened[id], err = nets[id].open(masked[id])
			return err
		})
	}
	require.NoError(t, g.Wait())
	for id, seq := range opened {
		assert.True(t, want.Equal(seq), "party %d", id)
	}
}

func TestWideLevel(t *testing.T) {
	if testing.Short() {
		t.Skip("slow")
	}
	const n = 2
	const k = 600000

	conns := mesh(n)
	config := &env.Config{
		Triples:    env.TriplesDealer,
		DealerSeed: 8,
	}
	r := prg.New(5, 6)
	x := make([]bool, k)
	y := make([]bool, k)
	for i := range x {
		x[i] = r.Bit()
		y[i] = r.Bit()
	}
	xShares := share(r, n, x)
	yShares := share(r, n, y)

	results := make([][]bool, n)
	var g errgroup.Group
	for id := 0; id < n; id++ {
		id := id
		g.Go(func() error {
			nw, err := NewNetwork(config, id, conns[id])
			if err != nil {
				return err
			}
			defer nw.Close()
			s, err := nw.NewSession()
			if err != nil {
				return err
			}
			defer s.Close()

			z := make([]circuit.Wire, k)
			for i := range z {
				z[i] = s.AND(s.NewShare(xShares[id][i]),
					s.NewShare(yShares[id][i]))
			}
			if err := s.Run(); err != nil {
				return err
			}
			results[id] = make([]bool, k)
			for i, w := range z {
				results[id][i], err = s.Reify(w)
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var wrong int
	for i := 0; i < k; i++ {
		if results[0][i] != results[1][i] != (x[i] && y[i]) {
			wrong++
		}
	}
	assert.Equal(t, 0, wrong)
}

func TestMisuse(t *testing.T) {
	nw, err := NewNetwork(&env.Config{}, 0, make([]*p2p.Conn, 1))
	require.NoError(t, err)

	s1, err := nw.NewSession()
	require.NoError(t, err)

	a := s1.NewShare(true)
	b := s1.AND(a, s1.Constant(true))

	_, err = s1.Reify(b)
	assert.True(t, errors.Is(err, mpcerr.ProtocolMisuse), "got %v", err)

	require.NoError(t, s1.Run())
	v, err := s1.Reify(b)
	require.NoError(t, err)
	assert.True(t, v)

	assert.True(t, errors.Is(s1.Run(), mpcerr.ProtocolMisuse))

	s1.Free(b)
	_, err = s1.Reify(b)
	assert.True(t, errors.Is(err, mpcerr.ProtocolMisuse), "got %v", err)

	require.NoError(t, s1.Close())
	_, err = s1.Reify(a)
	assert.True(t, errors.Is(err, mpcerr.ProtocolMisuse), "got %v", err)

	// Wires of an earlier session are stale in the next one.
	s2, err := nw.NewSession()
	require.NoError(t, err)
	_, err = s2.Reify(a)
	assert.True(t, errors.Is(err, mpcerr.ProtocolMisuse), "got %v", err)

	s2.XOR(a, s2.Constant(false))
	assert.True(t, errors.Is(s2.Run(), mpcerr.ProtocolMisuse))

	require.NoError(t, nw.Close())
	_, err = nw.NewSession()
	assert.True(t, errors.Is(err, mpcerr.ProtocolMisuse), "got %v", err)
}

func TestStats(t *testing.T) {
	nw, err := NewNetwork(&env.Config{}, 0, make([]*p2p.Conn, 1))
	require.NoError(t, err)
	defer nw.Close()

	s, err := nw.NewSession()
	require.NoError(t, err)

	a := s.NewShare(true)
	b := s.NewShare(false)
	s.MUX(a, b, s.INV(b))

	stats := s.Stats()
	assert.Equal(t, 2, stats[circuit.SHARE])
	assert.Equal(t, 1, stats[circuit.AND])
	assert.Equal(t, 2, stats[circuit.XOR])
	assert.Equal(t, 1, stats[circuit.INV])
	assert.Equal(t, 1, s.(*Session).Depth())
}

func TestHandshake(t *testing.T) {
	free := func(int) bool { return true }

	tests := []struct {
		dialer   int
		n        int
		accepted bool
	}{
		{dialer: 2, n: 3, accepted: true},
		{dialer: 1, n: 3},
		{dialer: 3, n: 3},
		{dialer: 2, n: 4},
	}
	for _, test := range tests {
		dc, ac := p2p.Pipe()

		done := make(chan error, 1)
		go func() {
			done <- dialHandshake(dc, test.dialer, test.n)
		}()
		peer, err := acceptHandshake(ac, 1, 3, free)
		derr := <-done
		if test.accepted {
			require.NoError(t, err)
			require.NoError(t, derr)
			assert.Equal(t, test.dialer, peer)
		} else {
			assert.Error(t, err, "dialer %d/%d", test.dialer, test.n)
			assert.Error(t, derr, "dialer %d/%d", test.dialer, test.n)
		}
		dc.Close()
		ac.Close()
	}
}

func TestHandshakeVersion(t *testing.T) {
	dc, ac := p2p.Pipe()
	defer dc.Close()
	defer ac.Close()

	go func() {
		dc.SendByte(handshakeVersion + 1)
		dc.SendUint32(2)
		dc.SendUint32(3)
		dc.Flush()
	}()
	_, err := acceptHandshake(ac, 1, 3, func(int) bool { return true })
	assert.ErrorContains(t, err, "version")

	ack, err := dc.ReceiveByte()
	require.NoError(t, err)
	assert.Equal(t, handshakeFail, ack)
}

func TestConnect(t *testing.T) {
	const n = 3

	var addrs []string
	for i := 0; i < n; i++ {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addrs = append(addrs, l.Addr().String())
		l.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	config := &env.Config{
		Triples:    env.TriplesDealer,
		DealerSeed: 5,
	}

	results := make([]bool, n)
	var g errgroup.Group
	for id := 0; id < n; id++ {
		id := id
		g.Go(func() error {
			nw, err := Connect(ctx, config, id, addrs)
			if err != nil {
				return err
			}
			defer nw.Close()

			if nw.NumParties() != n || nw.ID() != id {
				return fmt.Errorf("invalid network %d/%d", nw.ID(),
					nw.NumParties())
			}
			s, err := nw.NewSession()
			if err != nil {
				return err
			}
			// Every party holds the share true: the value is n&1.
			a := s.NewShare(true)
			b := s.AND(a, a)
			if err := s.Run(); err != nil {
				return err
			}
			results[id], err = s.Reify(b)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var v bool
	for _, r := range results {
		v = v != r
	}
	assert.Equal(t, n%2 == 1, v)
}
