//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"io"
)

var (
	_ Channel = &Loopback{}
)

// Loopback implements an in-memory Channel within a single
// goroutine. Data written to the loopback is read back in order;
// reading an empty loopback returns io.EOF. A party uses a loopback
// as the channel to itself.
type Loopback struct {
	buf bytes.Buffer
}

// NewLoopback creates a new loopback channel.
func NewLoopback() *Loopback {
	return new(Loopback)
}

// Read implements io.Reader.
func (l *Loopback) Read(p []byte) (int, error) {
	if l.buf.Len() == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return l.buf.Read(p)
}

// Write implements io.Writer.
func (l *Loopback) Write(p []byte) (int, error) {
	return l.buf.Write(p)
}

// Flush implements Channel.Flush.
func (l *Loopback) Flush() error {
	return nil
}

// Close implements Channel.Close. Any unread data is discarded.
func (l *Loopback) Close() error {
	l.buf.Reset()
	return nil
}

// Len returns the number of unread bytes.
func (l *Loopback) Len() int {
	return l.buf.Len()
}
