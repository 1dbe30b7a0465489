package ordid

import "strings"

// PledgedKind distinguishes what asset a T2 pool is staked against.
type PledgedKind int

const (
	PledgedUnknown PledgedKind = iota
	PledgedNative              // native BTC itself
	PledgedT1                  // a T1 (brc-20) tick
	PledgedT2                  // another T2 (brc20-s) tick id
)

// PledgedTick identifies the asset backing a T2 pool's stake: native
// BTC, a T1 tick, or another T2 tick id. The T1 case keys on LowerTick,
// not Tick: the same token can appear with varying case across
// different inscriptions (deploy, a later transfer), and stake identity
// must be case-insensitive like every other T1 balance lookup.
type PledgedTick struct {
	Kind   PledgedKind
	Tick   LowerTick // valid when Kind == PledgedT1
	TickID TickID    // valid when Kind == PledgedT2
}

// ParsePledgedTick classifies the wire "stake" field the way the
// reference implementation does: "btc" is native, a 4-byte string is a
// T1 tick, a 10-hex string is a T2 tick id, anything else is unknown.
func ParsePledgedTick(s string) PledgedTick {
	if strings.EqualFold(s, "btc") {
		return PledgedTick{Kind: PledgedNative}
	}
	if tick, err := ParseTick(s); err == nil {
		return PledgedTick{Kind: PledgedT1, Tick: tick.Lower()}
	}
	if id, err := ParseTickID(s); err == nil {
		return PledgedTick{Kind: PledgedT2, TickID: id}
	}
	return PledgedTick{Kind: PledgedUnknown}
}

// String renders the canonical wire form: "btc" for native, the
// lowercased tick text for T1, the tick-id hex for T2. Used by the call
// manager when constructing a synthetic PassiveUnStake operation.
func (p PledgedTick) String() string {
	switch p.Kind {
	case PledgedNative:
		return "btc"
	case PledgedT1:
		return p.Tick.String()
	case PledgedT2:
		return p.TickID.String()
	default:
		return ""
	}
}
