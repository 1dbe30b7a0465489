// Package tracker implements inscription flotsam propagation: following
// each inscription's satoshi offset through a transaction's inputs to a
// new output, with coinbase, lost-sat, and fee accounting.
package tracker

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// InscriptionID identifies an inscription by its reveal transaction and
// the input index it was carved from.
type InscriptionID struct {
	Txid  chainhash.Hash
	Index uint32
}

func (id InscriptionID) String() string {
	return fmt.Sprintf("%si%d", id.Txid.String(), id.Index)
}

// SatPoint locates a single satoshi: an output and an offset within it.
type SatPoint struct {
	Outpoint wire.OutPoint
	Offset   uint64
}

func (sp SatPoint) String() string {
	return fmt.Sprintf("%s:%d", sp.Outpoint.String(), sp.Offset)
}

// OriginKind distinguishes a flotsam that already existed on a spent
// output (Old) from one newly carved in the current transaction (New).
type OriginKind int

const (
	OriginOld OriginKind = iota
	OriginNew
)

// Flotsam is an inscription in flight during transaction processing,
// tracked by its offset in the transaction's aggregated input-sat
// stream until it settles onto an output.
type Flotsam struct {
	InscriptionID InscriptionID
	Offset        uint64
	Origin        OriginKind

	// OldSatpoint is valid when Origin == OriginOld: the satpoint this
	// flotsam is moving away from.
	OldSatpoint SatPoint

	// Fee is valid when Origin == OriginNew: input_value - Σoutputs at
	// the moment this inscription was carved.
	Fee uint64
}

// CandidateKind distinguishes the two message-shaped events a
// transaction can produce for the resolver.
type CandidateKind int

const (
	CandidateInscribe CandidateKind = iota
	CandidateTransfer
)

// Candidate is a protocol-payload-bearing event the resolver will turn
// into an ExecutionMessage, alongside its settling flotsam.
type Candidate struct {
	Kind          CandidateKind
	InscriptionID InscriptionID
	Offset        uint64
	Payload       []byte // raw inscription content
	FromScript    []byte // Inscribe: script of the output the transaction's first input spent; Transfer: script of the inscription's birth output
}

// Move is the final settled location of one flotsam, the unit the
// resolver consumes.
type Move struct {
	InscriptionID InscriptionID
	OldSatpoint   *SatPoint // nil for a brand-new inscription
	NewSatpoint   *SatPoint // always set by the tracker: coinbase overflow lands on LostOutpoint, and fee-carried flotsam yields no Move until it settles
}
