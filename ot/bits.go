//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"
)

// SendBits transfers the bit messages m0 and m1 with OT. The receiver
// learns m0[i] or m1[i] depending on its flag i.
func SendBits(o OT, m0, m1 []bool) error {
	if len(m0) != len(m1) {
		return fmt.Errorf("ot: message count mismatch: %d != %d",
			len(m0), len(m1))
	}
	wires := make([]Wire, len(m0))
	for i := range wires {
		wires[i].L0 = BitLabel(m0[i])
		wires[i].L1 = BitLabel(m1[i])
	}
	return o.Send(wires)
}

// ReceiveBits receives the bit messages selected by flags with OT.
func ReceiveBits(o OT, flags []bool) ([]bool, error) {
	labels := make([]Label, len(flags))
	if err := o.Receive(flags, labels); err != nil {
		return nil, err
	}
	result := make([]bool, len(flags))
	for i, l := range labels {
		result[i] = l.Bit()
	}
	return result, nil
}
