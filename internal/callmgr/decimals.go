// Package callmgr is the cross-protocol dispatcher: it runs a message
// against whichever executor (T1 or T2) its protocol tag selects, and
// when the resulting receipt carries a Transfer event that moves a
// pledged asset, synthesizes and executes a compensating T2
// PassiveUnStake within the same transaction.
package callmgr

import (
	"fmt"

	"github.com/okx-clone/brc20s-indexer/internal/brc20"
	"github.com/okx-clone/brc20s-indexer/internal/brc20s"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
)

// nativeDecimals is the satoshi scale: native BTC is always staked and
// settled at 8 decimal places.
const nativeDecimals = 8

// DecimalResolver implements brc20s.PledgedDecimalLookup by consulting
// whichever store actually owns the pledged asset's decimal width.
// Native BTC never needs a lookup; a T1 tick's decimal comes from its
// TokenInfo, a T2 tick id's from its TickInfo.
type DecimalResolver struct {
	T1 brc20.ReadStore
	T2 brc20s.ReadStore
}

func (d DecimalResolver) Decimals(p ordid.PledgedTick) (uint8, error) {
	switch p.Kind {
	case ordid.PledgedNative:
		return nativeDecimals, nil
	case ordid.PledgedT1:
		info, ok, err := d.T1.TokenInfo(p.Tick)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("callmgr: unknown T1 tick %q", p.Tick.String())
		}
		return info.Decimal, nil
	case ordid.PledgedT2:
		info, ok, err := d.T2.TickInfo(p.TickID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("callmgr: unknown T2 tick %q", p.TickID.String())
		}
		return info.Decimal, nil
	default:
		return 0, fmt.Errorf("callmgr: unresolvable pledged asset kind %d", p.Kind)
	}
}
