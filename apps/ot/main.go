//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/markkurossi/smpc/circuit"
	"github.com/markkurossi/smpc/ot"
	"github.com/markkurossi/smpc/p2p"
	"github.com/markkurossi/smpc/prg"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetFlags(0)

	app := cli.NewApp()
	app.Name = "ot"
	app.Usage = "Run Chou-Orlandi bit OTs over an in-memory pipe"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "count, n",
			Value: 1024,
			Usage: "number of OTs",
		},
		cli.StringFlag{
			Name:  "curve",
			Value: ot.CurveP256,
			Usage: "elliptic curve: P-256 or secp256k1",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	count := c.Int("count")
	curve, err := ot.CurveByName(c.String("curve"))
	if err != nil {
		return err
	}
	r, err := prg.NewEntropy(rand.Reader)
	if err != nil {
		return err
	}
	m0 := make([]bool, count)
	m1 := make([]bool, count)
	flags := make([]bool, count)
	for i := 0; i < count; i++ {
		m0[i] = r.Bit()
		m1[i] = r.Bit()
		flags[i] = r.Bit()
	}

	sconn, rconn := p2p.Pipe()
	sender := ot.NewCOCurve(rand.Reader, curve)
	receiver := ot.NewCOCurve(rand.Reader, curve)

	start := time.Now()

	var result []bool
	var g errgroup.Group
	g.Go(func() error {
		if err := sender.InitSender(sconn); err != nil {
			return err
		}
		return ot.SendBits(sender, m0, m1)
	})
	g.Go(func() error {
		if err := receiver.InitReceiver(rconn); err != nil {
			return err
		}
		var err error
		result, err = ot.ReceiveBits(receiver, flags)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	for i, flag := range flags {
		want := m0[i]
		if flag {
			want = m1[i]
		}
		if result[i] != want {
			return fmt.Errorf("OT %d: got %v, expected %v", i, result[i], want)
		}
	}
	fmt.Printf("%s: %d OTs in %v (%.0f OT/s), %v\n", curve.Params().Name,
		count, elapsed, float64(count)/elapsed.Seconds(),
		circuit.FileSize(sconn.Stats.Sum()+rconn.Stats.Sum()))

	sconn.Close()
	rconn.Close()
	return nil
}
