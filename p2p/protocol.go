//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements the byte channels between protocol parties.
package p2p

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"

	"github.com/markkurossi/smpc/ot"
)

var (
	bo = binary.BigEndian

	_ ot.IO   = &Conn{}
	_ Channel = &Conn{}
)

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024
)

// Channel defines a duplex byte stream between two parties. Written
// data is not guaranteed to reach the peer before Flush.
type Channel interface {
	io.Reader
	io.Writer

	// Flush flushes any pending data in the channel.
	Flush() error

	// Close flushes pending data and closes the channel.
	Close() error
}

// Conn implements a buffered protocol connection.
type Conn struct {
	conn      io.ReadWriter
	WriteBuf  []byte
	WritePos  int
	ReadBuf   []byte
	ReadStart int
	ReadEnd   int
	Stats     IOStats

	fromWriter chan []byte
	toWriter   chan []byte
	closed     bool

	m         sync.Mutex
	writerErr error
}

// IOStats implements I/O statistics.
type IOStats struct {
	Sent    *atomic.Uint64
	Recvd   *atomic.Uint64
	Flushed *atomic.Uint64
}

// NewIOStats creates a new I/O statistics object.
func NewIOStats() IOStats {
	return IOStats{
		Sent:    new(atomic.Uint64),
		Recvd:   new(atomic.Uint64),
		Flushed: new(atomic.Uint64),
	}
}

// Add adds the argument stats to this IOStats and returns the sum.
func (stats IOStats) Add(o IOStats) IOStats {
	result := NewIOStats()
	result.Sent.Store(stats.Sent.Load() + o.Sent.Load())
	result.Recvd.Store(stats.Recvd.Load() + o.Recvd.Load())
	result.Flushed.Store(stats.Flushed.Load() + o.Flushed.Load())
	return result
}

// Sum returns sum of sent and received bytes.
func (stats IOStats) Sum() uint64 {
	return stats.Sent.Load() + stats.Recvd.Load()
}

// NewConn creates a new connection around the argument connection.
func NewConn(conn io.ReadWriter) *Conn {
	c := &Conn{
		conn:       conn,
		ReadBuf:    make([]byte, readBufSize),
		fromWriter: make(chan []byte, numBuffers),
		toWriter:   make(chan []byte, numBuffers),
		Stats:      NewIOStats(),
	}

	go c.writer()

	c.WriteBuf = <-c.fromWriter

	return c
}

func (c *Conn) writer() {
	for i := 0; i < numBuffers; i++ {
		c.fromWriter <- make([]byte, writeBufSize)
	}

	for buf := range c.toWriter {
		if c.err() == nil {
			_, err := c.conn.Write(buf)
			if err != nil {
				c.m.Lock()
				c.writerErr = err
				c.m.Unlock()
			}
		}
		c.fromWriter <- buf[0:cap(buf)]
	}
	close(c.fromWriter)
}

func (c *Conn) err() error {
	c.m.Lock()
	defer c.m.Unlock()
	return c.writerErr
}

// Flush flushed any pending data in the connection.
func (c *Conn) Flush() error {
	if c.WritePos > 0 {
		c.Stats.Sent.Add(uint64(c.WritePos))
		c.toWriter <- c.WriteBuf[0:c.WritePos]

		c.WriteBuf = <-c.fromWriter
		c.WritePos = 0
		c.Stats.Flushed.Add(1)
	}
	return c.err()
}

// Fill fills the input buffer from the connection so that it holds at
// least n unread bytes. Any unused data in the buffer is moved to the
// beginning of the buffer.
func (c *Conn) Fill(n int) error {
	if c.ReadStart < c.ReadEnd {
		copy(c.ReadBuf[0:], c.ReadBuf[c.ReadStart:c.ReadEnd])
		c.ReadEnd -= c.ReadStart
		c.ReadStart = 0
	} else {
		c.ReadStart = 0
		c.ReadEnd = 0
	}
	for c.ReadStart+n > c.ReadEnd {
		got, err := c.conn.Read(c.ReadBuf[c.ReadEnd:])
		c.Stats.Recvd.Add(uint64(got))
		c.ReadEnd += got
		if err != nil {
			if err == io.EOF && c.ReadEnd > 0 {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// Close flushes any pending data and closes the connection.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.Flush()

	// Wait that the writer completes.
	close(c.toWriter)
	for range c.fromWriter {
	}

	closer, ok := c.conn.(io.Closer)
	if ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Write implements io.Writer. The data is buffered until the next
// Flush.
func (c *Conn) Write(p []byte) (int, error) {
	var n int
	for n < len(p) {
		if c.WritePos >= len(c.WriteBuf) {
			if err := c.Flush(); err != nil {
				return n, err
			}
		}
		got := copy(c.WriteBuf[c.WritePos:], p[n:])
		c.WritePos += got
		n += got
	}
	return n, nil
}

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.ReadStart >= c.ReadEnd {
		c.ReadStart = 0
		c.ReadEnd = 0
		got, err := c.conn.Read(c.ReadBuf)
		c.Stats.Recvd.Add(uint64(got))
		c.ReadEnd = got
		if got == 0 {
			return 0, err
		}
	}
	n := copy(p, c.ReadBuf[c.ReadStart:c.ReadEnd])
	c.ReadStart += n
	return n, nil
}

// SendByte sends a byte value.
func (c *Conn) SendByte(val byte) error {
	if c.WritePos+1 > len(c.WriteBuf) {
		if err := c.Flush(); err != nil {
			return err
		}
	}
	c.WriteBuf[c.WritePos] = val
	c.WritePos++
	return nil
}

// SendUint32 sends an uint32 value.
func (c *Conn) SendUint32(val int) error {
	if c.WritePos+4 > len(c.WriteBuf) {
		if err := c.Flush(); err != nil {
			return err
		}
	}
	bo.PutUint32(c.WriteBuf[c.WritePos:], uint32(val))
	c.WritePos += 4
	return nil
}

// SendData sends binary data.
func (c *Conn) SendData(val []byte) error {
	if err := c.SendUint32(len(val)); err != nil {
		return err
	}
	_, err := c.Write(val)
	return err
}

// ReceiveByte receives a byte value.
func (c *Conn) ReceiveByte() (byte, error) {
	if c.ReadStart+1 > c.ReadEnd {
		if err := c.Fill(1); err != nil {
			return 0, err
		}
	}
	val := c.ReadBuf[c.ReadStart]
	c.ReadStart++
	return val, nil
}

// ReceiveUint32 receives an uint32 value.
func (c *Conn) ReceiveUint32() (int, error) {
	if c.ReadStart+4 > c.ReadEnd {
		if err := c.Fill(4); err != nil {
			return 0, err
		}
	}
	val := bo.Uint32(c.ReadBuf[c.ReadStart:])
	c.ReadStart += 4

	return int(val), nil
}

// ReceiveData receives binary data.
func (c *Conn) ReceiveData() ([]byte, error) {
	l, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	result := make([]byte, l)
	if l > len(c.ReadBuf) {
		_, err = io.ReadFull(c, result)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return result, err
	}
	if c.ReadStart+l > c.ReadEnd {
		if err := c.Fill(l); err != nil {
			return nil, err
		}
	}
	copy(result, c.ReadBuf[c.ReadStart:c.ReadStart+l])
	c.ReadStart += l

	return result, nil
}

