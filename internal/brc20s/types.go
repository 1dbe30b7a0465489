// Package brc20s implements the T2 staking/reward-pool protocol's state
// machine: DeployTick, DeployPool, Stake, UnStake, PassiveUnStake, Mint,
// InscribeTransfer, Transfer.
package brc20s

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

// AccumulatorScale fixes the scale at which PoolInfo.AccRewardPerShare is
// carried so that staked*acc never overflows u128 for legal stakes.
var AccumulatorScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// PoolType distinguishes the two reward-emission schedules a pool may
// run under.
type PoolType int

const (
	PoolTypeUnknown PoolType = iota
	PoolTypePool
	PoolTypeFixed
)

func (t PoolType) String() string {
	switch t {
	case PoolTypePool:
		return "pool"
	case PoolTypeFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// TickInfo is the persisted record created by the first deploy under a
// given tick id; subsequent pools under the same tick id reuse it.
type TickInfo struct {
	TickID            ordid.TickID
	Name              string
	InscriptionID     tracker.InscriptionID
	InscriptionNumber int64
	Decimal           uint8
	Supply            *big.Int // scaled by 10^Decimal; bounds an inscribe-transfer amount (pool rewards are capped per pool by DMax, not by Supply)
	DeployerScript    []byte
	DeployHeight      int32
	DeployTimestamp   int64
}

// PoolInfo is the persisted record of one staking pool.
type PoolInfo struct {
	Pid              ordid.Pid
	Type             PoolType
	TickID           ordid.TickID
	InscriptionID    tracker.InscriptionID
	Stake            ordid.PledgedTick
	ERate            *big.Int // emission per block, scaled by 10^Decimal of the pool's earn tick
	Minted           *big.Int
	Staked           *big.Int
	DMax             *big.Int
	AccRewardPerShare *big.Int // scaled by AccumulatorScale
	LastUpdateBlock  int32
	Only             bool
	DeployHeight     int32
	DeployTimestamp  int64
}

// UserInfo is a (pid, address) staking position.
type UserInfo struct {
	Pid              ordid.Pid
	Owner            scriptkey.ScriptKey
	Staked           *big.Int
	Minted           *big.Int
	PendingReward    *big.Int
	RewardDebt       *big.Int
	LatestUpdatedBlock int32
}

// StakeRef is one pool a user has capital committed to, used by
// PassiveUnStake to walk a user's positions in a pledged asset.
type StakeRef struct {
	Pid    ordid.Pid
	Only   bool
	Staked *big.Int
}

// StakeInfo is the per-(address, pledged-tick) list of pools the address
// has stake in, which PassiveUnStake walks when the pledged asset moves
// away. MaxShare and TotalOnly are refreshed on every stake change; the
// executor does not read them.
type StakeInfo struct {
	Owner     scriptkey.ScriptKey
	Pledged   ordid.PledgedTick
	Pools     []StakeRef
	MaxShare  *big.Int // max stake among shared (non-only) pools
	TotalOnly *big.Int // sum of stake among only=true pools
}

// BalanceT2 is a (address, tick id) account for a T2 earn-tick,
// mirroring T1's Balance: overall balance and the escrowed portion held
// by a pending InscribeTransfer.
type BalanceT2 struct {
	OverallBalance      *big.Int
	TransferableBalance *big.Int
}

// Available returns the spendable (non-escrowed) balance.
func (b *BalanceT2) Available() *big.Int {
	return new(big.Int).Sub(b.OverallBalance, b.TransferableBalance)
}

// TransferableLog mirrors T1's escrow record, keyed by (owner, tick id,
// inscription id).
type TransferableLog struct {
	Owner         scriptkey.ScriptKey
	TickID        ordid.TickID
	InscriptionID tracker.InscriptionID
	Amount        *big.Int
}

// InscribeTransferInfo maps an inscription id back to the tick id/amount
// it escrowed.
type InscribeTransferInfo struct {
	TickID ordid.TickID
	Amount *big.Int
}

// EventKind distinguishes the possible events a successful message
// produces.
type EventKind int

const (
	EventDeployTick EventKind = iota
	EventDeployPool
	EventStake
	EventUnStake
	EventPassiveUnStake
	EventMint
	EventInscribeTransfer
	EventTransfer
)

// Event is the typed outcome attached to a successful Receipt.
type Event struct {
	Kind   EventKind
	Pid    ordid.Pid
	TickID ordid.TickID
	Amount *big.Int
	Msg    string
}

// Receipt records the outcome of one message, successful or not.
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
