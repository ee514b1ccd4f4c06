//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"testing"

	"github.com/markkurossi/smpc/env"
	"github.com/markkurossi/smpc/gmw"
	"github.com/markkurossi/smpc/p2p"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func dealerConfig() *env.Config {
	return &env.Config{
		Triples:    env.TriplesDealer,
		DealerSeed: 42,
	}
}

// networks creates n gmw networks connected with a pipe mesh.
func networks(t *testing.T, n int, config *env.Config) []*gmw.Network {
	conns := make([][]*p2p.Conn, n)
	for i := 0; i < n; i++ {
		conns[i] = make([]*p2p.Conn, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			conns[i][j], conns[j][i] = p2p.Pipe()
		}
	}
	nets := make([]*gmw.Network, n)
	for id := 0; id < n; id++ {
		var err error
		nets[id], err = gmw.NewNetwork(config, id, conns[id])
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, nw := range nets {
			nw.Close()
		}
	})
	return nets
}

// parties runs f for n parties, each in its own goroutine with its own
// Protocol, and returns the protocols after all parties are done.
func parties(t *testing.T, n int, config *env.Config,
	f func(p *Protocol) error) []*Protocol {

	nets := networks(t, n, config)
	protos := make([]*Protocol, n)

	var g errgroup.Group
	for id := 0; id < n; id++ {
		id := id
		g.Go(func() error {
			p, err := New(config, nets[id])
			if err != nil {
				return err
			}
			protos[id] = p
			return f(p)
		})
	}
	require.NoError(t, g.Wait())

	t.Cleanup(func() {
		for _, p := range protos {
			p.Close()
		}
	})
	return protos
}

// local creates a single party protocol.
func local(t *testing.T) *Protocol {
	nets := networks(t, 1, dealerConfig())
	p, err := New(dealerConfig(), nets[0])
	require.NoError(t, err)
	t.Cleanup(func() {
		p.Close()
	})
	return p
}

// catch runs f and returns the error it panicked with.
func catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	f()
	return nil
}
