//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/markkurossi/smpc/env"
	"github.com/markkurossi/smpc/gmw"
	"github.com/markkurossi/smpc/protocol"
	"github.com/urfave/cli"
)

const (
	optionConfig  = "config"
	optionInput   = "input"
	optionOp      = "op"
	optionWidth   = "width"
	optionTimeout = "timeout"
	optionVerbose = "verbose"
)

func main() {
	log.SetFlags(0)

	app := cli.NewApp()
	app.Name = "smpc"
	app.Usage = "Semi-honest GMW secure multi-party computation"
	app.Version = "0.1"

	app.Commands = []cli.Command{
		{
			Name:    "run",
			Aliases: []string{"r"},
			Usage:   "compute an operation over all parties' inputs",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  optionConfig + ", c",
					Value: "party.toml",
					Usage: "party configuration file",
				},
				cli.Int64Flag{
					Name:  optionInput + ", i",
					Usage: "party's secret input",
				},
				cli.StringFlag{
					Name:  optionOp + ", o",
					Value: "add",
					Usage: "operation: add, sub, mul, div, mod, max, lt",
				},
				cli.IntFlag{
					Name:  optionWidth + ", w",
					Value: 32,
					Usage: "input width in bits",
				},
				cli.DurationFlag{
					Name:  optionTimeout,
					Value: time.Minute,
					Usage: "network connect timeout",
				},
				cli.BoolFlag{
					Name:  optionVerbose + ", v",
					Usage: "verbose output",
				},
			},
			Action: run,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	config, err := env.Load(c.String(optionConfig))
	if err != nil {
		return err
	}
	if c.Bool(optionVerbose) {
		config.Verbose = true
	}
	op := c.String(optionOp)
	width := c.Int(optionWidth)
	if err := checkOptions(op, width); err != nil {
		return err
	}

	fmt.Printf("semi-honest secure GMW protocol\n")
	fmt.Printf(" - party  : %d/%d\n", config.ID, len(config.Parties))
	fmt.Printf(" - triples: %s\n", config.TripleSource())
	fmt.Printf(" - op     : %s\n", op)

	ctx, cancel := context.WithTimeout(context.Background(),
		c.Duration(optionTimeout))
	defer cancel()

	nw, err := gmw.Connect(ctx, config, config.ID, config.Addrs())
	if err != nil {
		return err
	}
	defer nw.Close()

	p, err := protocol.New(config, nw)
	if err != nil {
		return err
	}
	defer p.Close()

	inputs := make([]protocol.Int, p.NumParties())
	for id := range inputs {
		inputs[id], err = p.InputInt(id, c.Int64(optionInput), width)
		if err != nil {
			return err
		}
	}

	if op == "lt" {
		result, err := ordered(p, inputs).Get()
		if err != nil {
			return err
		}
		fmt.Printf("Result: %v\n", result)
	} else {
		acc, err := fold(op, inputs)
		if err != nil {
			return err
		}
		result, err := acc.Get()
		if err != nil {
			return err
		}
		fmt.Printf("Result: %v\n", result)
	}
	if config.Verbose {
		fmt.Printf("Stats: %v\n", p.Stats())
	}
	p.Timing(os.Stdout)

	return nil
}

// checkOptions verifies the operation and input width before the
// parties connect.
func checkOptions(op string, width int) error {
	if _, ok := folds[op]; !ok && op != "lt" {
		return fmt.Errorf("unknown operation '%s'", op)
	}
	if width < 1 || width > 64 {
		return fmt.Errorf("invalid width %v", width)
	}
	return nil
}

var folds = map[string]func(acc, in protocol.Int) protocol.Int{
	"add": protocol.Int.Add,
	"sub": protocol.Int.Sub,
	"mul": protocol.Int.Mul,
	"div": protocol.Int.Div,
	"mod": protocol.Int.Mod,
	"max": func(acc, in protocol.Int) protocol.Int {
		return acc.Lt(in).MuxInt(in, acc)
	},
}

// fold applies the operation op left to right over the inputs.
func fold(op string, inputs []protocol.Int) (protocol.Int, error) {
	f, ok := folds[op]
	if !ok {
		return protocol.Int{}, fmt.Errorf("unknown operation '%s'", op)
	}
	acc := inputs[0]
	for _, in := range inputs[1:] {
		acc = f(acc, in)
	}
	return acc, nil
}

// ordered tests if the inputs are in strictly increasing order.
func ordered(p *protocol.Protocol, inputs []protocol.Int) protocol.Bool {
	result := p.Constant(true)
	for i := 1; i < len(inputs); i++ {
		result = result.And(inputs[i-1].Lt(inputs[i]))
	}
	return result
}
