//
// co.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

/*

This implementation is derived from the EMP Toolkit's co.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/co.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Enquiries about further applications and development opportunities are welcome.

*/

package ot

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

var (
	bo    = binary.BigEndian
	_  OT = &CO{}
)

// Curve names.
const (
	CurveP256      = "P-256"
	CurveSecp256k1 = "secp256k1"
)

// CurveByName returns the elliptic curve by its name. An empty name
// selects P-256.
func CurveByName(name string) (elliptic.Curve, error) {
	switch name {
	case "", CurveP256:
		return elliptic.P256(), nil
	case CurveSecp256k1:
		return btcec.S256(), nil
	default:
		return nil, fmt.Errorf("ot: unknown curve %s", name)
	}
}

func kdf(hash hash.Hash, x, y *big.Int, id uint64, digest []byte) []byte {
	hash.Reset()
	hash.Write(x.Bytes())
	hash.Write(y.Bytes())

	var tmp [8]byte
	bo.PutUint64(tmp[:], id)
	hash.Write(tmp[:])

	return hash.Sum(digest)
}

func xor(a, b []byte) []byte {
	l := len(a)
	if len(b) < l {
		l = len(b)
	}
	for i := 0; i < l; i++ {
		a[i] ^= b[i]
	}
	return a[:l]
}

// CO implements CO OT as the OT interface.
type CO struct {
	curve  elliptic.Curve
	rand   io.Reader
	hash   hash.Hash
	digest []byte
	io     IO
	count  uint64
}

// NewCO creates a new CO OT over the P-256 curve. The rand provides
// the random scalars.
func NewCO(rand io.Reader) *CO {
	return NewCOCurve(rand, elliptic.P256())
}

// NewCOCurve creates a new CO OT over the curve.
func NewCOCurve(rand io.Reader, curve elliptic.Curve) *CO {
	return &CO{
		curve:  curve,
		rand:   rand,
		hash:   sha256.New(),
		digest: make([]byte, 0, sha256.Size),
	}
}

// Curve returns the OT elliptic curve.
func (co *CO) Curve() elliptic.Curve {
	return co.curve
}

// InitSender initializes the OT sender.
func (co *CO) InitSender(io IO) error {
	co.io = io
	if err := SendString(io, co.curve.Params().Name); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (co *CO) InitReceiver(io IO) error {
	co.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != co.curve.Params().Name {
		return fmt.Errorf("ot: invalid curve %s, expected %s",
			name, co.curve.Params().Name)
	}
	return nil
}

func (co *CO) receivePoint() (*big.Int, *big.Int, error) {
	x, err := ReceiveBigInt(co.io)
	if err != nil {
		return nil, nil, err
	}
	y, err := ReceiveBigInt(co.io)
	if err != nil {
		return nil, nil, err
	}
	if !co.curve.IsOnCurve(x, y) {
		return nil, nil, fmt.Errorf("ot: point not on curve %s",
			co.curve.Params().Name)
	}
	return x, y, nil
}

// Send sends the wire labels with OT.
func (co *CO) Send(wires []Wire) error {
	curveParams := co.curve.Params()

	// a <- Zp
	a, err := rand.Int(co.rand, curveParams.N)
	if err != nil {
		return err
	}
	aBytes := a.Bytes()

	// A = G^a
	Ax, Ay := co.curve.ScalarBaseMult(aBytes)

	if err := co.io.SendData(Ax.Bytes()); err != nil {
		return err
	}
	if err := co.io.SendData(Ay.Bytes()); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	// Aa = A^a
	Aax, Aay := co.curve.ScalarMult(Ax, Ay, aBytes)

	// a:    {x,y}
	// a^-1: {x,-y}
	// AaInv = {Aax, -Aay}
	AaInvx := big.NewInt(0).Set(Aax)
	AaInvy := big.NewInt(0).Sub(curveParams.P, Aay)

	wiresCnt := len(wires)
	Bxs := make([]*big.Int, wiresCnt)
	Bys := make([]*big.Int, wiresCnt)
	Baxs := make([]*big.Int, wiresCnt)
	Bays := make([]*big.Int, wiresCnt)

	for i := 0; i < wiresCnt; i++ {
		BxRaw, ByRaw, err := co.receivePoint()
		if err != nil {
			return err
		}
		Bx, By := co.curve.ScalarMult(BxRaw, ByRaw, aBytes)
		Bax, Bay := co.curve.Add(Bx, By, AaInvx, AaInvy)

		Bxs[i] = Bx
		Bys[i] = By
		Baxs[i] = Bax
		Bays[i] = Bay
	}

	for i := 0; i < wiresCnt; i++ {
		var labelData LabelData
		id := co.count + uint64(i)

		wires[i].L0.GetData(&labelData)
		e0 := xor(kdf(co.hash, Bxs[i], Bys[i], id, co.digest), labelData[:])
		if err := co.io.SendData(e0); err != nil {
			return err
		}
		wires[i].L1.GetData(&labelData)
		e1 := xor(kdf(co.hash, Baxs[i], Bays[i], id, co.digest),
			labelData[:])
		if err := co.io.SendData(e1); err != nil {
			return err
		}
	}
	co.count += uint64(wiresCnt)

	return co.io.Flush()
}

// Receive receives the wire labels with OT based on the flag values.
func (co *CO) Receive(flags []bool, result []Label) error {
	if len(result) < len(flags) {
		return fmt.Errorf("ot: result too short: %d < %d",
			len(result), len(flags))
	}
	curveParams := co.curve.Params()

	Ax, Ay, err := co.receivePoint()
	if err != nil {
		return err
	}

	flagsCnt := len(flags)
	BsBytes := make([][]byte, flagsCnt)

	for i := 0; i < flagsCnt; i++ {
		// b <= Zp
		b, err := rand.Int(co.rand, curveParams.N)
		if err != nil {
			return err
		}
		bBytes := b.Bytes()

		Bx, By := co.curve.ScalarBaseMult(bBytes)
		if flags[i] {
			Bx, By = co.curve.Add(Bx, By, Ax, Ay)
		}
		if err := co.io.SendData(Bx.Bytes()); err != nil {
			return err
		}
		if err := co.io.SendData(By.Bytes()); err != nil {
			return err
		}

		BsBytes[i] = bBytes
	}

	if err := co.io.Flush(); err != nil {
		return err
	}

	for i := 0; i < flagsCnt; i++ {
		Asx, Asy := co.curve.ScalarMult(Ax, Ay, BsBytes[i])

		// The received data is xor'ed to the digest right away since
		// the next receive may reuse the buffer.
		data := kdf(co.hash, Asx, Asy, co.count+uint64(i), co.digest)
		e0, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		if !flags[i] {
			data = xor(data, e0)
		}
		e1, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		if flags[i] {
			data = xor(data, e1)
		}
		if len(data) < len(LabelData{}) {
			return fmt.Errorf("ot: short message: %d", len(data))
		}
		result[i].SetBytes(data)
	}
	co.count += uint64(flagsCnt)

	return nil
}
