package callmgr

import (
	"fmt"
	"math/big"

	"github.com/okx-clone/brc20s-indexer/internal/brc20"
	"github.com/okx-clone/brc20s-indexer/internal/brc20s"
	"github.com/okx-clone/brc20s-indexer/internal/numeric"
	"github.com/okx-clone/brc20s-indexer/internal/opcodec"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/resolver"
)

// BlockContext is the per-block context threaded into both executors.
type BlockContext struct {
	Height    int32
	Timestamp int64
}

// Result carries every receipt a single message produced: its own
// protocol's receipt, plus zero or more T2 PassiveUnStake receipts
// cascaded from a Transfer event.
type Result struct {
	T1Receipt *brc20.Receipt
	T2Receipt *brc20s.Receipt
	Cascaded  []brc20s.Receipt
}

// Manager runs one ExecutionMessage against the protocol its tag
// selects, then cascades a synthetic PassiveUnStake into T2 whenever the
// resulting receipt's event is a Transfer: the reference behavior of
// converting the moved amount into T2's decimal representation and
// re-entering the T2 executor against the sender's stake positions. The
// cascade never recurses past its own synthetic receipt — ExecutePassive
// is never itself treated as a trigger.
type Manager struct {
	T1       *brc20.Executor
	T2       *brc20s.Executor
	Decimals *DecimalResolver
}

func (m *Manager) Execute(ctx BlockContext, msg resolver.ExecutionMessage) (Result, error) {
	switch msg.Protocol {
	case opcodec.ProtocolT1:
		return m.executeT1(ctx, msg)
	case opcodec.ProtocolT2:
		return m.executeT2(ctx, msg)
	default:
		return Result{}, fmt.Errorf("callmgr: unrecognized protocol tag %q", msg.Protocol)
	}
}

func (m *Manager) executeT1(ctx BlockContext, msg resolver.ExecutionMessage) (Result, error) {
	rcpt, err := m.T1.Execute(brc20.BlockContext{Height: ctx.Height, Timestamp: ctx.Timestamp}, msg)
	if err != nil {
		return Result{}, err
	}
	result := Result{T1Receipt: &rcpt}
	if rcpt.Event == nil || rcpt.Event.Kind != brc20.EventTransfer {
		return result, nil
	}
	pledged := ordid.PledgedTick{Kind: ordid.PledgedT1, Tick: rcpt.Event.Tick.Lower()}
	cascaded, err := m.cascade(ctx, msg, rcpt.From, pledged, rcpt.Event.Amount)
	if err != nil {
		return Result{}, err
	}
	result.Cascaded = cascaded
	return result, nil
}

func (m *Manager) executeT2(ctx BlockContext, msg resolver.ExecutionMessage) (Result, error) {
	rcpt, err := m.T2.Execute(brc20s.BlockContext{Height: ctx.Height, Timestamp: ctx.Timestamp}, msg)
	if err != nil {
		return Result{}, err
	}
	result := Result{T2Receipt: &rcpt}
	if rcpt.Event == nil || rcpt.Event.Kind != brc20s.EventTransfer {
		return result, nil
	}
	// A T2 Transfer moves a pool's earn-tick, which may itself be
	// staked as another pool's pledged asset — the one-level recursion
	// the source allows.
	pledged := ordid.PledgedTick{Kind: ordid.PledgedT2, TickID: rcpt.Event.TickID}
	cascaded, err := m.cascade(ctx, msg, rcpt.From, pledged, rcpt.Event.Amount)
	if err != nil {
		return Result{}, err
	}
	result.Cascaded = cascaded
	return result, nil
}

// cascade builds and runs the synthetic PassiveUnStake for the amount
// that just left from's balance, cloning the triggering message's
// txid/satpoints/inscription id so the cascaded receipt(s) attach to the
// same transaction. A sender with no stake in the pledged asset is a
// silent no-op: ExecutePassive itself returns zero receipts.
func (m *Manager) cascade(ctx BlockContext, msg resolver.ExecutionMessage, from []byte, pledged ordid.PledgedTick, amount *big.Int) ([]brc20s.Receipt, error) {
	dec, err := m.Decimals.Decimals(pledged)
	if err != nil {
		return nil, fmt.Errorf("callmgr: resolve pledged decimals for cascade: %w", err)
	}
	synthetic := resolver.ExecutionMessage{
		Txid:          msg.Txid,
		InscriptionID: msg.InscriptionID,
		OldSatpoint:   msg.OldSatpoint,
		NewSatpoint:   msg.NewSatpoint,
		FromScript:    from,
		Protocol:      opcodec.ProtocolT2,
	}
	op := opcodec.T2PassiveUnStake{
		Stake:  pledged.String(),
		Amount: numeric.FromScaledBigInt(amount, int(dec)).String(),
	}
	return m.T2.ExecutePassive(brc20s.BlockContext{Height: ctx.Height, Timestamp: ctx.Timestamp}, synthetic, op)
}
