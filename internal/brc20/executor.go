package brc20

import (
	"fmt"
	"math/big"

	"github.com/okx-clone/brc20s-indexer/internal/numeric"
	"github.com/okx-clone/brc20s-indexer/internal/opcodec"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/resolver"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
)

// BlockContext is the per-block context threaded into every execution.
type BlockContext struct {
	Height    int32
	Timestamp int64
}

// Executor runs the T1 state machine against a ReadWriteStore.
type Executor struct {
	Store ReadWriteStore
}

// Execute dispatches msg to the matching state transition and always
// returns a Receipt — a protocol error is recorded on it, never
// returned as the function's error. The function's error return is
// reserved for system failures (store I/O) that must abort the block.
func (ex *Executor) Execute(ctx BlockContext, msg resolver.ExecutionMessage) (Receipt, error) {
	receipt := Receipt{
		Txid:              msg.Txid,
		InscriptionID:     msg.InscriptionID,
		InscriptionNumber: msg.InscriptionNumber,
		OldSatpoint:       msg.OldSatpoint,
		NewSatpoint:       msg.NewSatpoint,
		From:              msg.FromScript,
		To:                msg.ToScript,
	}

	var event *Event
	var perr *Error
	var err error

	switch op := msg.Op.(type) {
	case opcodec.T1Deploy:
		event, perr, err = ex.processDeploy(ctx, msg, op)
	case opcodec.T1Mint:
		event, perr, err = ex.processMint(ctx, msg, op)
	case opcodec.T1Transfer:
		if msg.OldSatpoint == nil {
			event, perr, err = ex.processInscribeTransfer(ctx, msg, op)
		} else {
			event, perr, err = ex.processTransfer(ctx, msg, op)
		}
	default:
		return Receipt{}, fmt.Errorf("brc20: unexpected operation type %T", msg.Op)
	}
	if err != nil {
		return Receipt{}, err
	}

	// A receipt's `to` always redirects to `from` when a coinbase
	// destination left it nil, regardless of success/failure, matching
	// the reference's receipt-construction step.
	if receipt.To == nil {
		receipt.To = receipt.From
	}
	receipt.Event = event
	receipt.Err = perr
	return receipt, nil
}

func (ex *Executor) processDeploy(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T1Deploy) (*Event, *Error, error) {
	if msg.ToScript == nil {
		return nil, newErr(InscribeToCoinbase, ""), nil
	}
	tick, err := ordid.ParseTick(op.Tick)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}
	lower := tick.Lower()

	if _, ok, serr := ex.Store.TokenInfo(lower); serr != nil {
		return nil, nil, serr
	} else if ok {
		return nil, newErr(DuplicateTick, "%s", tick), nil
	}

	dec := uint8(18)
	if op.Decimal != "" {
		parsed, perr := numeric.ParseNum(op.Decimal)
		if perr != nil {
			return nil, newErr(InvalidNum, "%v", perr), nil
		}
		d, derr := parsed.ToU8()
		if derr != nil || d > 18 {
			return nil, newErr(DecimalsTooLarge, "%s", op.Decimal), nil
		}
		dec = d
	}
	base, _ := numeric.FromUint64(10).CheckedPowU(uint64(dec))

	supplyNum, err := numeric.ParseNum(op.Max)
	if err != nil {
		return nil, newErr(InvalidNum, "%v", err), nil
	}
	supply, perr := validateSupplyLike(supplyNum, dec, base)
	if perr != nil {
		return nil, newErr(InvalidSupply, "%s", perr), nil
	}

	limit := new(big.Int).Set(supply)
	if op.Limit != "" {
		limitNum, err := numeric.ParseNum(op.Limit)
		if err != nil {
			return nil, newErr(InvalidNum, "%v", err), nil
		}
		lim, perr := validateSupplyLike(limitNum, dec, base)
		if perr != nil {
			return nil, newErr(MintLimitOutOfRange, "%s", perr), nil
		}
		limit = lim
	}

	info := TokenInfo{
		Tick:              tick,
		InscriptionID:     msg.InscriptionID,
		InscriptionNumber: msg.InscriptionNumber,
		Decimal:           dec,
		Supply:            supply,
		LimitPerMint:      limit,
		Minted:            big.NewInt(0),
		DeployerScript:    msg.ToScript,
		DeployHeight:      ctx.Height,
		LatestMintHeight:  ctx.Height,
		DeployTimestamp:   ctx.Timestamp,
	}
	if err := ex.Store.InsertTokenInfo(lower, info); err != nil {
		return nil, nil, err
	}
	return &Event{Kind: EventDeploy, Tick: tick, Amount: supply}, nil, nil
}

// validateSupplyLike enforces the shared supply/limit grammar: scale <=
// dec, value in (0, MaximumSupply], scaled up by base to its u128 form.
func validateSupplyLike(n numeric.Num, dec uint8, base numeric.Num) (*big.Int, string) {
	if n.Scale() > int(dec) {
		return nil, "scale exceeds decimals"
	}
	if n.Sign() <= 0 {
		return nil, "must be positive"
	}
	if n.Cmp(numeric.FromBigInt(MaximumSupply)) > 0 {
		return nil, "exceeds maximum supply"
	}
	scaled, err := n.CheckedMul(base)
	if err != nil {
		return nil, err.Error()
	}
	asInt, err := scaled.TruncateToU128()
	if err != nil {
		return nil, err.Error()
	}
	return asInt, ""
}

func (ex *Executor) processMint(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T1Mint) (*Event, *Error, error) {
	if msg.ToScript == nil {
		return nil, newErr(InscribeToCoinbase, ""), nil
	}
	tick, err := ordid.ParseTick(op.Tick)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}
	lower := tick.Lower()
	info, ok, serr := ex.Store.TokenInfo(lower)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		return nil, newErr(TickNotFound, "%s", tick), nil
	}

	amtNum, err := numeric.ParseNum(op.Amount)
	if err != nil {
		return nil, newErr(InvalidNum, "%v", err), nil
	}
	if amtNum.Scale() > int(info.Decimal) {
		return nil, newErr(AmountOverflow, "scale exceeds decimals"), nil
	}
	base, _ := numeric.FromUint64(10).CheckedPowU(uint64(info.Decimal))
	scaled, err := amtNum.CheckedMul(base)
	if err != nil {
		return nil, newErr(AmountOverflow, "%v", err), nil
	}
	amount, err := scaled.TruncateToU128()
	if err != nil {
		return nil, newErr(AmountOverflow, "%v", err), nil
	}
	if amount.Sign() <= 0 {
		return nil, newErr(InvalidZeroAmount, ""), nil
	}
	if amount.Cmp(info.LimitPerMint) > 0 {
		return nil, newErr(AmountExceedLimit, ""), nil
	}
	if info.Minted.Cmp(info.Supply) >= 0 {
		return nil, newErr(TickMinted, ""), nil
	}

	advisory := ""
	remaining := new(big.Int).Sub(info.Supply, info.Minted)
	if new(big.Int).Add(info.Minted, amount).Cmp(info.Supply) > 0 {
		amount = remaining
		advisory = "mint amount clipped to remaining supply"
	}

	owner := scriptkey.FromPkScript(msg.ToScript)
	balance, _, berr := ex.Store.Balance(owner, lower)
	if berr != nil {
		return nil, nil, berr
	}
	if balance.OverallBalance == nil {
		balance.OverallBalance = big.NewInt(0)
		balance.TransferableBalance = big.NewInt(0)
	}
	balance.OverallBalance = new(big.Int).Add(balance.OverallBalance, amount)
	if err := ex.Store.UpdateBalance(owner, lower, balance); err != nil {
		return nil, nil, err
	}

	info.Minted = new(big.Int).Add(info.Minted, amount)
	info.LatestMintHeight = ctx.Height
	if err := ex.Store.UpdateMintTokenInfo(lower, info.Minted, ctx.Height); err != nil {
		return nil, nil, err
	}

	return &Event{Kind: EventMint, Tick: tick, Amount: amount, Msg: advisory}, nil, nil
}

func (ex *Executor) processInscribeTransfer(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T1Transfer) (*Event, *Error, error) {
	if msg.ToScript == nil {
		return nil, newErr(InscribeToCoinbase, ""), nil
	}
	tick, err := ordid.ParseTick(op.Tick)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}
	lower := tick.Lower()
	info, ok, serr := ex.Store.TokenInfo(lower)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		return nil, newErr(TickNotFound, "%s", tick), nil
	}

	amtNum, err := numeric.ParseNum(op.Amount)
	if err != nil {
		return nil, newErr(InvalidNum, "%v", err), nil
	}
	if amtNum.Scale() > int(info.Decimal) {
		return nil, newErr(AmountOverflow, "scale exceeds decimals"), nil
	}
	base, _ := numeric.FromUint64(10).CheckedPowU(uint64(info.Decimal))
	scaled, err := amtNum.CheckedMul(base)
	if err != nil {
		return nil, newErr(AmountOverflow, "%v", err), nil
	}
	amount, err := scaled.TruncateToU128()
	if err != nil || amount.Sign() <= 0 || amount.Cmp(info.Supply) > 0 {
		return nil, newErr(AmountOverflow, ""), nil
	}

	owner := scriptkey.FromPkScript(msg.ToScript)
	balance, _, berr := ex.Store.Balance(owner, lower)
	if berr != nil {
		return nil, nil, berr
	}
	if balance.OverallBalance == nil {
		balance.OverallBalance = big.NewInt(0)
		balance.TransferableBalance = big.NewInt(0)
	}
	available := balance.Available()
	if available.Cmp(amount) < 0 {
		return nil, newErr(InsufficientBalance, ""), nil
	}
	balance.TransferableBalance = new(big.Int).Add(balance.TransferableBalance, amount)
	if err := ex.Store.UpdateBalance(owner, lower, balance); err != nil {
		return nil, nil, err
	}

	log := TransferableLog{Owner: owner, Tick: lower, InscriptionID: msg.InscriptionID, Amount: amount}
	if err := ex.Store.InsertTransferable(owner, lower, log); err != nil {
		return nil, nil, err
	}
	if err := ex.Store.InsertInscribeTransferInscription(msg.InscriptionID, InscribeTransferInfo{Tick: lower, Amount: amount}); err != nil {
		return nil, nil, err
	}

	return &Event{Kind: EventInscribeTransfer, Tick: tick, Amount: amount}, nil, nil
}

func (ex *Executor) processTransfer(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T1Transfer) (*Event, *Error, error) {
	owner := scriptkey.FromPkScript(msg.FromScript)
	tick, err := ordid.ParseTick(op.Tick)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}
	lower := tick.Lower()

	log, ok, serr := ex.Store.TransferableByID(owner, msg.InscriptionID)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		return nil, newErr(TransferableNotFound, ""), nil
	}
	if log.Owner != owner {
		return nil, newErr(TransferableOwnerNotMatch, ""), nil
	}

	fromBalance, _, berr := ex.Store.Balance(owner, lower)
	if berr != nil {
		return nil, nil, berr
	}
	fromBalance.OverallBalance = new(big.Int).Sub(fromBalance.OverallBalance, log.Amount)
	fromBalance.TransferableBalance = new(big.Int).Sub(fromBalance.TransferableBalance, log.Amount)
	if err := ex.Store.UpdateBalance(owner, lower, fromBalance); err != nil {
		return nil, nil, err
	}

	advisory := ""
	toScript := msg.ToScript
	if toScript == nil {
		toScript = msg.FromScript
		advisory = "transfer redirected to sender: coinbase destination"
	}
	to := scriptkey.FromPkScript(toScript)
	toBalance, _, berr := ex.Store.Balance(to, lower)
	if berr != nil {
		return nil, nil, berr
	}
	if toBalance.OverallBalance == nil {
		toBalance.OverallBalance = big.NewInt(0)
		toBalance.TransferableBalance = big.NewInt(0)
	}
	toBalance.OverallBalance = new(big.Int).Add(toBalance.OverallBalance, log.Amount)
	if err := ex.Store.UpdateBalance(to, lower, toBalance); err != nil {
		return nil, nil, err
	}

	if err := ex.Store.RemoveTransferable(owner, lower, msg.InscriptionID); err != nil {
		return nil, nil, err
	}
	if err := ex.Store.RemoveInscribeTransferInscription(msg.InscriptionID); err != nil {
		return nil, nil, err
	}

	return &Event{Kind: EventTransfer, Tick: tick, Amount: log.Amount, Msg: advisory}, nil, nil
}
