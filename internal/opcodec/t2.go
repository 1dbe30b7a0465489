package opcodec

import "fmt"

// T2 operation names, as carried in the envelope's "op" field.
const (
	T2OpDeploy         = "deploy"
	T2OpMint           = "mint"
	T2OpStake          = "stake"
	T2OpUnStake        = "unstake"
	T2OpTransfer       = "transfer"
	T2OpPassiveUnStake = "passive_unstake" // synthetic only, never parsed from content
)

// T2PoolType values, carried in the "t" field of a deploy operation.
const (
	T2PoolTypePool  = "pool"
	T2PoolTypeFixed = "fixed"
)

// T2Deploy covers both deploy-tick (first pool under a new tick id) and
// deploy-pool (an additional pool under an existing tick id) — the
// executor distinguishes them by whether a TickInfo already exists for
// the pid's tick id.
type T2Deploy struct {
	PoolID     string // "pid"
	PoolType   string // "t": "pool" | "fixed"
	Stake      string // the pledged asset: "btc", a T1 tick, or a T2 tick id
	EarnTick   string // "earn": the tick name being minted by this pool's stakers
	EarnRate   string // "erate"
	MaxSupply  string // "dmax" (pool distribution cap)
	TotalSupply string // "total": tick-wide supply cap, required only on the first deploy under a tick id
	Decimal    string // "dec", defaults to 18
	Only       bool   // "only": "1" exclusive pool, "0"/absent shared pool
}

// T2Mint is a brc20-s "mint" operation: claims accrued pending reward
// for a (pool, staker) into the staker's overall balance of the pool's
// earn tick.
type T2Mint struct {
	PoolID string // "pid"
	Amount string // "amt"
}

// T2Stake deposits stake into a pool.
type T2Stake struct {
	PoolID string // "pid"
	Amount string // "amt"
}

// T2UnStake withdraws stake from a pool.
type T2UnStake struct {
	PoolID string // "pid"
	Amount string // "amt"
}

// T2Transfer moves a T2 transferable balance (second phase of
// inscribe-transfer/transfer, mirroring T1Transfer).
type T2Transfer struct {
	TickID string // "tid"
	Amount string // "amt"
}

// T2PassiveUnStake is never parsed from inscription content; the call
// manager constructs it synthetically after a T1 or T2 Transfer event
// moves a pledged asset out from under a staker.
type T2PassiveUnStake struct {
	Stake  string // the pledged asset identifier, PledgedTick.String()
	Amount string // "amt"
}

// ParseT2Operation decodes a T2 envelope into its typed operation.
func ParseT2Operation(e Envelope) (interface{}, error) {
	if e.Protocol != ProtocolT2 {
		return nil, fmt.Errorf("opcodec: envelope is not a T2 operation")
	}
	switch e.Op {
	case T2OpDeploy:
		pid, err := requireField(e, "pid")
		if err != nil {
			return nil, err
		}
		ptype, err := requireField(e, "t")
		if err != nil {
			return nil, err
		}
		stake, err := requireField(e, "stake")
		if err != nil {
			return nil, err
		}
		earn, _ := e.field("earn")
		erate, _ := e.field("erate")
		dmax, _ := e.field("dmax")
		total, _ := e.field("total")
		dec, _ := e.field("dec")
		onlyStr, _ := e.field("only")
		return T2Deploy{
			PoolID:      pid,
			PoolType:    ptype,
			Stake:       stake,
			EarnTick:    earn,
			EarnRate:    erate,
			MaxSupply:   dmax,
			TotalSupply: total,
			Decimal:     dec,
			Only:        onlyStr == "1",
		}, nil
	case T2OpMint:
		pid, err := requireField(e, "pid")
		if err != nil {
			return nil, err
		}
		amt, err := requireField(e, "amt")
		if err != nil {
			return nil, err
		}
		return T2Mint{PoolID: pid, Amount: amt}, nil
	case T2OpStake:
		pid, err := requireField(e, "pid")
		if err != nil {
			return nil, err
		}
		amt, err := requireField(e, "amt")
		if err != nil {
			return nil, err
		}
		return T2Stake{PoolID: pid, Amount: amt}, nil
	case T2OpUnStake:
		pid, err := requireField(e, "pid")
		if err != nil {
			return nil, err
		}
		amt, err := requireField(e, "amt")
		if err != nil {
			return nil, err
		}
		return T2UnStake{PoolID: pid, Amount: amt}, nil
	case T2OpTransfer:
		tid, err := requireField(e, "tid")
		if err != nil {
			return nil, err
		}
		amt, err := requireField(e, "amt")
		if err != nil {
			return nil, err
		}
		return T2Transfer{TickID: tid, Amount: amt}, nil
	default:
		return nil, fmt.Errorf("opcodec: unrecognized T2 op %q", e.Op)
	}
}
