//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/markkurossi/smpc/p2p"
)

func TestStats(t *testing.T) {
	var a, b Stats
	a[XOR] = 3
	a[AND] = 2
	b[AND] = 5
	b[SHARE] = 1

	sum := a.Add(b)
	if sum[AND] != 7 || sum[XOR] != 3 || sum[SHARE] != 1 {
		t.Errorf("Add: got %v", sum)
	}
	if a[AND] != 2 {
		t.Errorf("Add modified receiver: %v", a)
	}
	if sum.Count() != 11 {
		t.Errorf("Count: got %v, expected 11", sum.Count())
	}
	if sum.Cost() != 7 {
		t.Errorf("Cost: got %v, expected 7", sum.Cost())
	}
	expected := "XOR=3 AND=7 INV=0 SHARE=1 CONST=0"
	if sum.String() != expected {
		t.Errorf("String: got %q, expected %q", sum.String(), expected)
	}
}

func TestGateString(t *testing.T) {
	tests := []struct {
		g Gate
		s string
	}{
		{
			g: Gate{
				Input0: Wire{1, 2},
				Input1: Wire{1, 3},
				Output: Wire{1, 4},
				Op:     AND,
			},
			s: "w1.2 w1.3 AND w1.4",
		},
		{
			g: Gate{
				Input0: Wire{0, 7},
				Output: Wire{0, 8},
				Op:     INV,
			},
			s: "w0.7 INV w0.8",
		},
		{
			g: Gate{
				Output: Wire{2, 0},
				Op:     CONST,
			},
			s: "CONST w2.0",
		},
	}
	for _, test := range tests {
		if test.g.String() != test.s {
			t.Errorf("got %q, expected %q", test.g.String(), test.s)
		}
	}
	if Operation(42).String() != "{Operation 42}" {
		t.Errorf("unknown operation: %v", Operation(42))
	}
}

func TestTiming(t *testing.T) {
	timing := NewTiming()
	sample := timing.Add("Round 1", timing.Start, []string{"10", "4"})
	sample.SubSample("Triples", time.Now())
	sample.SubSample("Open", sample.End)
	timing.Add("Round 2", sample.End, []string{"3", "1"})

	stats := p2p.NewIOStats()
	stats.Sent.Add(2000)
	stats.Recvd.Add(3000)

	var buf bytes.Buffer
	timing.Print(&buf, stats)

	out := buf.String()
	for _, s := range []string{"Round 1", "Round 2", "Triples", "Total",
		"5kB"} {
		if !strings.Contains(out, s) {
			t.Errorf("report does not contain %q:\n%s", s, out)
		}
	}
}

func TestTimingMax(t *testing.T) {
	timing := NewTiming()
	timing.Max = 3
	for i := 1; i <= 5; i++ {
		timing.Add(fmt.Sprintf("Round %d", i), time.Now(), nil)
	}
	if len(timing.Samples) != 3 {
		t.Fatalf("got %d samples, expected 3", len(timing.Samples))
	}
	if timing.Dropped != 2 {
		t.Errorf("got %d dropped samples, expected 2", timing.Dropped)
	}
	if timing.Samples[0].Label != "Round 3" {
		t.Errorf("oldest sample %q, expected Round 3",
			timing.Samples[0].Label)
	}

	var buf bytes.Buffer
	timing.Print(&buf, p2p.NewIOStats())
	out := buf.String()
	for _, s := range []string{"(2 dropped)", "Round 5"} {
		if !strings.Contains(out, s) {
			t.Errorf("report does not contain %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "Round 2") {
		t.Errorf("report contains dropped sample:\n%s", out)
	}
}

func TestFileSize(t *testing.T) {
	tests := map[FileSize]string{
		12:            "12B",
		1500:          "1kB",
		2500000:       "2MB",
		3000000001:    "3GB",
		4000000000001: "4TB",
	}
	for v, s := range tests {
		if v.String() != s {
			t.Errorf("FileSize(%d): got %q, expected %q", v, v.String(), s)
		}
	}
}
