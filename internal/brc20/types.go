// Package brc20 implements the T1 fungible-token protocol's state
// machine: Deploy, Mint, InscribeTransfer, Transfer.
package brc20

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

// MaximumSupply bounds a T1 token's deploy supply, matching the
// reference implementation's u64::MAX ceiling.
var MaximumSupply = new(big.Int).SetUint64(^uint64(0))

// TokenInfo is the persisted record created by a successful Deploy.
type TokenInfo struct {
	Tick              ordid.Tick
	InscriptionID     tracker.InscriptionID
	InscriptionNumber int64
	Decimal           uint8
	Supply            *big.Int // scaled by 10^Decimal
	LimitPerMint      *big.Int // scaled by 10^Decimal
	Minted            *big.Int // scaled by 10^Decimal
	DeployerScript    []byte
	DeployHeight      int32
	LatestMintHeight  int32
	DeployTimestamp   int64
}

// Balance is a (address, tick) account: the overall balance and the
// portion currently escrowed by a pending InscribeTransfer.
type Balance struct {
	OverallBalance      *big.Int
	TransferableBalance *big.Int
}

// Available returns the spendable (non-escrowed) balance.
func (b Balance) Available() *big.Int {
	return new(big.Int).Sub(b.OverallBalance, b.TransferableBalance)
}

// TransferableLog is the escrow record created by InscribeTransfer and
// consumed by Transfer, keyed by (owner, lower tick, inscription id).
type TransferableLog struct {
	Owner         scriptkey.ScriptKey
	Tick          ordid.LowerTick
	InscriptionID tracker.InscriptionID
	Amount        *big.Int
}

// InscribeTransferInfo maps an inscription id back to the tick/amount it
// escrowed, consulted when that inscription later moves to settle the
// transfer.
type InscribeTransferInfo struct {
	Tick   ordid.LowerTick
	Amount *big.Int
}

// EventKind distinguishes the possible events a successful message
// produces; exactly one per successful Receipt.
type EventKind int

const (
	EventDeploy EventKind = iota
	EventMint
	EventInscribeTransfer
	EventTransfer
)

// Event is the typed outcome attached to a successful Receipt.
type Event struct {
	Kind   EventKind
	Tick   ordid.Tick
	Amount *big.Int
	Msg    string // advisory note: clipped mint, coinbase redirect
}

// Receipt records the outcome of one message, successful or not, and is
// always persisted regardless of outcome.
type Receipt struct {
	Txid              chainhash.Hash
	InscriptionID     tracker.InscriptionID
	InscriptionNumber int64
	OldSatpoint       *tracker.SatPoint
	NewSatpoint       *tracker.SatPoint
	From              []byte
	To                []byte
	Event             *Event
	Err               *Error
}
