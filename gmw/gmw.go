//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package gmw implements the GMW multi-party protocol engine. The
// engine evaluates boolean circuits over XOR-shared wires: XOR and
// INV gates are local and every AND gate consumes one multiplication
// triple and one opening of masked inputs. All AND gates of the same
// AND-depth are opened in one network round.
package gmw

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/markkurossi/smpc/circuit"
	"github.com/markkurossi/smpc/env"
	"github.com/markkurossi/smpc/mpcerr"
	"github.com/markkurossi/smpc/ot"
	"github.com/markkurossi/smpc/p2p"
	"github.com/markkurossi/smpc/prg"
	"github.com/markkurossi/text/superscript"
	"golang.org/x/sync/errgroup"
)

var (
	_ circuit.Backend = &Network{}
)

// Network implements P2P network between the protocol parties.
type Network struct {
	m      sync.Mutex
	config *env.Config
	id     int
	peers  []*Peer
	self   *p2p.Loopback
	rand   *prg.PRG
	epoch  uint32
	closed bool
}

// Peer implements a peer in the P2P network.
type Peer struct {
	nw         *Network
	id         int
	conn       *p2p.Conn
	rand       *prg.PRG
	otSender   *ot.CO
	otReceiver *ot.CO
	otInit     bool
}

func (p *Peer) String() string {
	return fmt.Sprintf("%s⇄%s",
		superscript.Itoa(p.nw.id), superscript.Itoa(p.id))
}

// Close closes the peer.
func (p *Peer) Close() error {
	return p.conn.Close()
}

// NewNetwork creates the network for the party id. The conns
// specify the peer connections indexed by party ID. The party's own
// entry is ignored.
func NewNetwork(config *env.Config, id int, conns []*p2p.Conn) (
	*Network, error) {

	if err := config.Validate(); err != nil {
		return nil, err
	}
	if id < 0 || id >= len(conns) {
		return nil, fmt.Errorf("invalid ID %v: expected [0...%v[",
			id, len(conns))
	}
	curve, err := ot.CurveByName(config.Curve)
	if err != nil {
		return nil, err
	}
	r, err := prg.NewEntropy(config.GetRandom())
	if err != nil {
		return nil, err
	}
	nw := &Network{
		config: config,
		id:     id,
		peers:  make([]*Peer, len(conns)),
		self:   p2p.NewLoopback(),
		rand:   r,
	}
	for idx, conn := range conns {
		if idx == id {
			continue
		}
		if conn == nil {
			return nil, fmt.Errorf("no connection to party %v", idx)
		}
		// Each peer runs in its own goroutine and has its own
		// randomness.
		pr, err := prg.NewEntropy(config.GetRandom())
		if err != nil {
			return nil, err
		}
		nw.peers[idx] = &Peer{
			nw:         nw,
			id:         idx,
			conn:       conn,
			rand:       pr,
			otSender:   ot.NewCOCurve(pr, curve),
			otReceiver: ot.NewCOCurve(pr, curve),
		}
	}
	return nw, nil
}

// Connect creates a TCP mesh between the parties and returns the
// network for the party id. The party listens at addrs[id], dials the
// parties with smaller IDs, and accepts connections from the parties
// with larger IDs. The connections start with a handshake where the
// dialing party announces its ID and the mesh parameters.
func Connect(ctx context.Context, config *env.Config, id int,
	addrs []string) (*Network, error) {

	n := len(addrs)
	if id < 0 || id >= n {
		return nil, fmt.Errorf("invalid ID %v: expected [0...%v[", id, n)
	}
	l, err := net.Listen("tcp", addrs[id])
	if err != nil {
		return nil, mpcerr.Wrap(mpcerr.Channel, "gmw.Connect", err)
	}

	conns := make([]*p2p.Conn, n)
	g, gctx := errgroup.WithContext(ctx)

	go func() {
		<-gctx.Done()
		l.Close()
	}()

	for i := 0; i < id; i++ {
		i := i
		g.Go(func() error {
			conn, err := p2p.Dial(gctx, addrs[i])
			if err != nil {
				return err
			}
			conns[i] = conn
			return dialHandshake(conn, id, n)
		})
	}
	g.Go(func() error {
		for count := id + 1; count < n; count++ {
			conn, err := p2p.Accept(l)
			if err != nil {
				return err
			}
			peer, err := acceptHandshake(conn, id, n, func(peer int) bool {
				return conns[peer] == nil
			})
			if err != nil {
				conn.Close()
				return err
			}
			conns[peer] = conn
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		for _, conn := range conns {
			if conn != nil {
				conn.Close()
			}
		}
		return nil, mpcerr.Wrap(mpcerr.Channel, "gmw.Connect", err)
	}
	config.Debugf("GMW%s: connected to %d peers\n",
		superscript.Itoa(id), n-1)

	return NewNetwork(config, id, conns)
}

const (
	handshakeVersion = byte(1)
	handshakeOK      = byte(0)
	handshakeFail    = byte(1)
)

// dialHandshake announces the party id and the mesh size n to the
// accepting party and waits for its acknowledgement.
func dialHandshake(conn *p2p.Conn, id, n int) error {
	if err := conn.SendByte(handshakeVersion); err != nil {
		return err
	}
	if err := conn.SendUint32(id); err != nil {
		return err
	}
	if err := conn.SendUint32(n); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	ack, err := conn.ReceiveByte()
	if err != nil {
		return err
	}
	if ack != handshakeOK {
		return fmt.Errorf("handshake rejected by peer")
	}
	return nil
}

// acceptHandshake reads the dialing party's announcement and returns
// its ID. The peer ID must be larger than id and accepted by the free
// function.
func acceptHandshake(conn *p2p.Conn, id, n int, free func(int) bool) (
	int, error) {

	version, err := conn.ReceiveByte()
	if err != nil {
		return 0, err
	}
	peer, err := conn.ReceiveUint32()
	if err != nil {
		return 0, err
	}
	size, err := conn.ReceiveUint32()
	if err != nil {
		return 0, err
	}
	switch {
	case version != handshakeVersion:
		err = fmt.Errorf("unsupported handshake version %v", version)
	case size != n:
		err = fmt.Errorf("peer %v has %v parties, expected %v", peer, size, n)
	case peer <= id || peer >= n || !free(peer):
		err = fmt.Errorf("invalid peer ID %v", peer)
	}
	ack := handshakeOK
	if err != nil {
		ack = handshakeFail
	}
	if serr := conn.SendByte(ack); serr != nil && err == nil {
		err = serr
	}
	if ferr := conn.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		return 0, err
	}
	return peer, nil
}

// ID returns the party ID.
func (nw *Network) ID() int {
	return nw.id
}

// NumParties returns the number of parties.
func (nw *Network) NumParties() int {
	return len(nw.peers)
}

// Channels returns the byte channels to all parties indexed by party
// ID. The party's own entry is an in-memory loopback.
func (nw *Network) Channels() []p2p.Channel {
	result := make([]p2p.Channel, len(nw.peers))
	for idx, peer := range nw.peers {
		if peer == nil {
			result[idx] = nw.self
		} else {
			result[idx] = peer.conn
		}
	}
	return result
}

// IOStats returns the sum of the peer connections' I/O statistics.
func (nw *Network) IOStats() p2p.IOStats {
	result := p2p.NewIOStats()
	for _, peer := range nw.peers {
		if peer != nil {
			result = result.Add(peer.conn.Stats)
		}
	}
	return result
}

// Debugf prints debugging message if Verbose debugging is enabled.
func (nw *Network) Debugf(format string, a ...interface{}) {
	nw.config.Debugf("GMW%s: "+format, append([]interface{}{
		superscript.Itoa(nw.id)}, a...)...)
}

// Close closes the network and all its peer connections.
func (nw *Network) Close() error {
	nw.m.Lock()
	defer nw.m.Unlock()

	if nw.closed {
		return nil
	}
	nw.closed = true

	var result error
	for _, peer := range nw.peers {
		if peer == nil {
			continue
		}
		if err := peer.Close(); err != nil && result == nil {
			result = err
		}
	}
	return result
}

// NewSession implements circuit.Backend.NewSession.
func (nw *Network) NewSession() (circuit.Session, error) {
	nw.m.Lock()
	defer nw.m.Unlock()

	if nw.closed {
		return nil, mpcerr.New(mpcerr.ProtocolMisuse, "gmw.NewSession",
			"network closed")
	}
	nw.epoch++

	return newSession(nw, nw.epoch), nil
}

// forPeers runs f concurrently for all peers.
func (nw *Network) forPeers(f func(peer *Peer) error) error {
	var g errgroup.Group
	for _, peer := range nw.peers {
		if peer == nil {
			continue
		}
		peer := peer
		g.Go(func() error {
			return f(peer)
		})
	}
	return g.Wait()
}
