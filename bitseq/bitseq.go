//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package bitseq implements variable-length bit sequences with a
// length-prefixed wire format. Bit 0 is the least significant bit of
// the first byte.
package bitseq

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"slices"
	"strings"

	"github.com/markkurossi/smpc/mpcerr"
)

// MaxBits limits the bit count accepted by Read.
const MaxBits = 1 << 30

// Read grows the sequence data in chunks of readChunk bytes as the
// data arrives.
const readChunk = 64 * 1024

// Seq implements a bit sequence of exact length.
type Seq struct {
	n    int
	data []byte
}

// New creates a new all-zero sequence of n bits.
func New(n int) *Seq {
	if n < 0 {
		panic(fmt.Sprintf("bitseq: negative length %d", n))
	}
	return &Seq{
		n:    n,
		data: make([]byte, (n+7)/8),
	}
}

// FromBools creates a sequence from the bool values.
func FromBools(v []bool) *Seq {
	s := New(len(v))
	for i, b := range v {
		s.SetBit(i, b)
	}
	return s
}

// FromBytes creates an n bit sequence from the packed data. Bits
// beyond n are ignored and missing bytes are zero.
func FromBytes(data []byte, n int) *Seq {
	s := New(n)
	copy(s.data, data)
	s.clearPadding()
	return s
}

// FromUint64 creates an n bit sequence from the n least significant
// bits of v.
func FromUint64(v uint64, n int) *Seq {
	s := New(n)
	for i := 0; i < n && i < 64; i++ {
		s.SetBit(i, v&(1<<i) != 0)
	}
	return s
}

// Random creates an n bit sequence filled from r.
func Random(r io.Reader, n int) (*Seq, error) {
	s := New(n)
	if err := s.Randomize(r); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the sequence length in bits.
func (s *Seq) Len() int {
	return s.n
}

// Bit returns the bit i.
func (s *Seq) Bit(i int) bool {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("bitseq: index %d out of range [0,%d)", i, s.n))
	}
	return s.data[i/8]&(1<<(i%8)) != 0
}

// SetBit sets the bit i to v.
func (s *Seq) SetBit(i int, v bool) {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("bitseq: index %d out of range [0,%d)", i, s.n))
	}
	if v {
		s.data[i/8] |= 1 << (i % 8)
	} else {
		s.data[i/8] &^= 1 << (i % 8)
	}
}

// Bytes returns the packed bytes of the sequence. The result shares
// storage with the sequence.
func (s *Seq) Bytes() []byte {
	return s.data
}

// Bools returns the sequence as bool values.
func (s *Seq) Bools() []bool {
	result := make([]bool, s.n)
	for i := range result {
		result[i] = s.Bit(i)
	}
	return result
}

// Uint64 returns the first min(64, Len()) bits as an unsigned value.
func (s *Seq) Uint64() uint64 {
	var result uint64
	for i := 0; i < s.n && i < 64; i++ {
		if s.Bit(i) {
			result |= 1 << i
		}
	}
	return result
}

// Count returns the number of set bits.
func (s *Seq) Count() int {
	var count int
	for _, b := range s.data {
		count += bits.OnesCount8(b)
	}
	return count
}

// Clone returns a copy of the sequence.
func (s *Seq) Clone() *Seq {
	return FromBytes(s.data, s.n)
}

// Equal tests if the sequences have equal length and bits.
func (s *Seq) Equal(o *Seq) bool {
	if s.n != o.n {
		return false
	}
	for i := range s.data {
		if s.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// XorWith sets s to s^o. The sequences must have equal lengths.
func (s *Seq) XorWith(o *Seq) error {
	if s.n != o.n {
		return mpcerr.New(mpcerr.WidthMismatch, "bitseq.Xor",
			"%d != %d", s.n, o.n)
	}
	for i := range s.data {
		s.data[i] ^= o.data[i]
	}
	return nil
}

// Xor returns s^o as a new sequence.
func (s *Seq) Xor(o *Seq) (*Seq, error) {
	result := s.Clone()
	if err := result.XorWith(o); err != nil {
		return nil, err
	}
	return result, nil
}

// Randomize fills the sequence with bits from r.
func (s *Seq) Randomize(r io.Reader) error {
	if _, err := io.ReadFull(r, s.data); err != nil {
		return err
	}
	s.clearPadding()
	return nil
}

func (s *Seq) clearPadding() {
	if s.n%8 != 0 {
		s.data[len(s.data)-1] &= byte(1<<(s.n%8)) - 1
	}
}

func (s *Seq) String() string {
	var sb strings.Builder
	for i := 0; i < s.n; i++ {
		if s.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// WriteTo writes the sequence in its wire format: 8-byte little-endian
// bit count followed by the packed bytes.
func (s *Seq) WriteTo(w io.Writer) (int64, error) {
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(s.n))

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), mpcerr.Wrap(mpcerr.Channel, "bitseq.Write", err)
	}
	m, err := w.Write(s.data)
	if err != nil {
		return int64(n + m), mpcerr.Wrap(mpcerr.Channel, "bitseq.Write", err)
	}
	return int64(n + m), nil
}

// Read reads a sequence in its wire format from r.
func Read(r io.Reader) (*Seq, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, mpcerr.Wrap(mpcerr.Channel, "bitseq.Read", err)
	}
	count := binary.LittleEndian.Uint64(hdr[:])
	if count > MaxBits {
		return nil, mpcerr.New(mpcerr.Format, "bitseq.Read",
			"bit count %d exceeds limit %d", count, uint64(MaxBits))
	}
	s := &Seq{
		n: int(count),
	}
	nbytes := (s.n + 7) / 8
	s.data = make([]byte, 0, min(nbytes, readChunk))
	for len(s.data) < nbytes {
		l := len(s.data)
		n := min(nbytes-l, readChunk)
		s.data = slices.Grow(s.data, n)[:l+n]
		if _, err := io.ReadFull(r, s.data[l:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, mpcerr.Wrap(mpcerr.Channel, "bitseq.Read", err)
		}
	}
	if s.n%8 != 0 && s.data[len(s.data)-1]&^(byte(1<<(s.n%8))-1) != 0 {
		return nil, mpcerr.New(mpcerr.Format, "bitseq.Read",
			"nonzero padding bits in %d bit sequence", s.n)
	}
	return s, nil
}
