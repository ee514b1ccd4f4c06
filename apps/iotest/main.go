//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/markkurossi/smpc/bitseq"
	"github.com/markkurossi/smpc/circuit"
	"github.com/markkurossi/smpc/p2p"
	"github.com/markkurossi/smpc/prg"
	"github.com/markkurossi/smpc/sharing"
	"github.com/urfave/cli"
)

const (
	optionHost       = "host"
	optionPort       = "port"
	optionSize       = "size"
	optionChunk      = "chunk"
	optionCPUProfile = "cpuprofile"
)

func main() {
	log.SetFlags(0)

	flags := []cli.Flag{
		cli.StringFlag{
			Name:  optionHost,
			Value: "127.0.0.1",
			Usage: "server host",
		},
		cli.IntFlag{
			Name:  optionPort,
			Value: 8080,
			Usage: "server port",
		},
		cli.Int64Flag{
			Name:  optionSize,
			Value: 100 * 1000 * 1000,
			Usage: "number of bits to transfer",
		},
		cli.IntFlag{
			Name:  optionChunk,
			Value: 1 << 16,
			Usage: "share size in bits",
		},
		cli.StringFlag{
			Name:  optionCPUProfile,
			Usage: "write cpu profile to `file`",
		},
	}

	app := cli.NewApp()
	app.Name = "iotest"
	app.Usage = "Test share exchange performance over TCP"
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "receive shares",
			Flags:  flags,
			Action: profile(serve),
		},
		{
			Name:   "send",
			Usage:  "send shares",
			Flags:  flags,
			Action: profile(send),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func profile(action func(c *cli.Context) error) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		file := c.String(optionCPUProfile)
		if len(file) > 0 {
			f, err := os.Create(file)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}
		return action(c)
	}
}

func serve(c *cli.Context) error {
	fmt.Printf("Listening for connections at %s:%d\n",
		c.String(optionHost), c.Int(optionPort))

	conn, err := p2p.ServeTCP(c.String(optionHost), c.Int(optionPort))
	if err != nil {
		return err
	}
	defer conn.Close()

	start := time.Now()
	var bits int64
	for {
		share, err := sharing.ShareRecv(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		bits += int64(share.Len())
	}
	report("Received", bits, conn.Stats, time.Since(start))
	return nil
}

func send(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := p2p.DialTCP(ctx, c.String(optionHost), c.Int(optionPort))
	if err != nil {
		return err
	}
	r, err := prg.NewEntropy(rand.Reader)
	if err != nil {
		return err
	}
	chunk := c.Int(optionChunk)
	size := c.Int64(optionSize)

	start := time.Now()
	var bits int64
	for bits < size {
		share, err := bitseq.Random(r, chunk)
		if err != nil {
			return err
		}
		if err := sharing.RevealSend(conn, share); err != nil {
			return err
		}
		bits += int64(chunk)
	}
	if err := conn.Close(); err != nil {
		return err
	}
	report("Sent", bits, conn.Stats, time.Since(start))
	return nil
}

func report(label string, bits int64, stats p2p.IOStats, d time.Duration) {
	fmt.Printf("%s: %d bits, %v in %v (%.0f bits/s)\n", label, bits,
		circuit.FileSize(stats.Sum()), d, float64(bits)/d.Seconds())
}
