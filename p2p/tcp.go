//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"net"
	"strconv"
	"time"
)

// RetryDelay specifies the delay between DialTCP connection
// attempts.
var RetryDelay = 50 * time.Millisecond

// DialTCP connects to the TCP server at host:port. It retries the
// connection until it succeeds or the context is done.
func DialTCP(ctx context.Context, host string, port int) (*Conn, error) {
	return Dial(ctx, net.JoinHostPort(host, strconv.Itoa(port)))
}

// Dial connects to the TCP address addr. It retries the connection
// until it succeeds or the context is done.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	var dialer net.Dialer
	for {
		nc, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return NewConn(nc), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(RetryDelay):
		}
	}
}

// ServeTCP binds the TCP address host:port and blocks until exactly
// one connection is accepted.
func ServeTCP(host string, port int) (*Conn, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	defer l.Close()

	return Accept(l)
}

// Accept accepts one connection from the listener.
func Accept(l net.Listener) (*Conn, error) {
	nc, err := l.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(nc), nil
}
