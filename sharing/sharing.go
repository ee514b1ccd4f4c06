//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package sharing implements XOR secret sharing of bit sequences
// between N parties.
//
// The sharing party splits its cleartext into N shares so that the
// XOR of all shares equals the cleartext and any N-1 shares are
// uniformly random. The shares are revealed by sending them to the
// receiving party which folds them together.
package sharing

import (
	"io"

	"github.com/markkurossi/smpc/bitseq"
	"github.com/markkurossi/smpc/mpcerr"
	"github.com/markkurossi/smpc/p2p"
)

// ShareSend secret shares clear to all parties. The channels are
// indexed by party ID and they include the sender's own channel. The
// function sends random sequences to the channels 1...N-1 and the
// masked cleartext to the channel 0.
func ShareSend(prg io.Reader, channels []p2p.Channel, clear *bitseq.Seq) error {
	if len(channels) == 0 {
		return mpcerr.New(mpcerr.ProtocolMisuse, "sharing.ShareSend",
			"no channels")
	}
	masked := bitseq.New(clear.Len())

	for i := 1; i < len(channels); i++ {
		share, err := bitseq.Random(prg, clear.Len())
		if err != nil {
			return mpcerr.Wrap(mpcerr.Backend, "sharing.ShareSend", err)
		}
		if err := masked.XorWith(share); err != nil {
			return err
		}
		if _, err := share.WriteTo(channels[i]); err != nil {
			return err
		}
	}
	if err := masked.XorWith(clear); err != nil {
		return err
	}
	if _, err := masked.WriteTo(channels[0]); err != nil {
		return err
	}
	return flush(channels, "sharing.ShareSend")
}

// ShareRecv receives this party's share from the channel.
func ShareRecv(ch p2p.Channel) (*bitseq.Seq, error) {
	return bitseq.Read(ch)
}

// RevealSend sends the local share to the channel.
func RevealSend(ch p2p.Channel, share *bitseq.Seq) error {
	if _, err := share.WriteTo(ch); err != nil {
		return err
	}
	return mpcerr.Wrap(mpcerr.Channel, "sharing.RevealSend", ch.Flush())
}

// RevealRecv reads one share from each channel, in channel order, and
// returns the XOR of the shares. All shares must have the length of
// the first share.
func RevealRecv(channels []p2p.Channel) (*bitseq.Seq, error) {
	var result *bitseq.Seq

	for idx, ch := range channels {
		share, err := bitseq.Read(ch)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = share
			continue
		}
		if share.Len() != result.Len() {
			return nil, mpcerr.New(mpcerr.Format, "sharing.RevealRecv",
				"share %d: length %d, expected %d",
				idx, share.Len(), result.Len())
		}
		if err := result.XorWith(share); err != nil {
			return nil, err
		}
	}
	if result == nil {
		return nil, mpcerr.New(mpcerr.ProtocolMisuse, "sharing.RevealRecv",
			"no channels")
	}
	return result, nil
}

func flush(channels []p2p.Channel, op string) error {
	for _, ch := range channels {
		if err := ch.Flush(); err != nil {
			return mpcerr.Wrap(mpcerr.Channel, op, err)
		}
	}
	return nil
}
