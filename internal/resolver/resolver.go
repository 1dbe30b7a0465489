// Package resolver converts an inscription tracker's settled moves and
// parsed candidates into ExecutionMessages, the unit the T1/T2
// executors consume.
package resolver

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/okx-clone/brc20s-indexer/internal/opcodec"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

// ExecutionMessage is a single protocol operation ready for the T1/T2
// executors, enriched with the script context a bare Candidate doesn't
// carry.
type ExecutionMessage struct {
	Txid               chainhash.Hash
	InscriptionID      tracker.InscriptionID
	InscriptionNumber  int64
	OldSatpoint        *tracker.SatPoint
	NewSatpoint        *tracker.SatPoint
	FromScript         []byte
	ToScript           []byte // nil means "redirected to coinbase"; executors substitute From
	Protocol           opcodec.ProtocolTag
	Op                 interface{}
}

// NumberLookup resolves an inscription's persisted sequence number.
type NumberLookup interface {
	InscriptionNumber(id tracker.InscriptionID) (int64, bool, error)
}

// Resolve converts one Candidate, alongside the Move it settled into,
// into an ExecutionMessage. It returns ok=false (with no error) when the
// candidate's payload doesn't parse as a recognized T1/T2 operation —
// the reference behavior of "tracked but not converted into a message".
func Resolve(txid chainhash.Hash, move tracker.Move, cand tracker.Candidate, numbers NumberLookup) (ExecutionMessage, bool, error) {
	op, proto, err := opcodec.Parse(cand.Payload)
	if err != nil {
		return ExecutionMessage{}, false, nil
	}

	number, _, err := numbers.InscriptionNumber(cand.InscriptionID)
	if err != nil {
		return ExecutionMessage{}, false, err
	}

	msg := ExecutionMessage{
		Txid:              txid,
		InscriptionID:      cand.InscriptionID,
		InscriptionNumber: number,
		OldSatpoint:       move.OldSatpoint,
		NewSatpoint:       move.NewSatpoint,
		FromScript:        cand.FromScript,
		Protocol:          proto,
		Op:                op,
	}

	// Coinbase redirect: a move whose new satpoint's outpoint txid
	// differs from the message's own txid means the inscription fell
	// through to the coinbase (lost-sat accounting); to = nil signals
	// that to the executors, which apply their own redirect rules.
	if move.NewSatpoint != nil && move.NewSatpoint.Outpoint.Hash == txid {
		// same-tx destination: ToScript is filled in by the caller,
		// which has direct access to the settling transaction's
		// outputs (the resolver itself never re-fetches a transaction
		// it has already seen this block).
	} else {
		msg.ToScript = nil
	}

	return msg, true, nil
}

// WithToScript fills in the destination script once the caller (the
// block indexer, which already holds the transaction) has looked it up
// for a same-transaction destination. Calling this for a coinbase-
// redirected message (NewSatpoint nil or cross-tx) is a no-op.
func (m ExecutionMessage) WithToScript(script []byte) ExecutionMessage {
	if m.NewSatpoint == nil || m.NewSatpoint.Outpoint.Hash != m.Txid {
		return m
	}
	m.ToScript = script
	return m
}
