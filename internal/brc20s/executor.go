package brc20s

import (
	"fmt"
	"math/big"
	"sort"

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

// PledgedDecimalLookup resolves the decimal scale of a pledged asset, as
// needed to parse Stake/UnStake/PassiveUnStake amounts. Native (raw
// satoshis) is fixed at 8; T1 and T2 pledged ticks delegate to their own
// deploy-time decimal.
type PledgedDecimalLookup interface {
	Decimals(p ordid.PledgedTick) (uint8, error)
}

// Executor runs the T2 state machine against a ReadWriteStore.
type Executor struct {
	Store     ReadWriteStore
	Decimals  PledgedDecimalLookup
}

// Execute dispatches msg to the matching state transition for every op
// kind except PassiveUnStake, which can touch more than one pool and so
// is reached only through ExecutePassive. A protocol error is recorded
// on the returned Receipt, never returned as the function's error.
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
	case opcodec.T2Deploy:
		event, perr, err = ex.processDeploy(ctx, msg, op)
	case opcodec.T2Stake:
		event, perr, err = ex.processStake(ctx, msg, op)
	case opcodec.T2UnStake:
		event, perr, err = ex.processUnStake(ctx, msg, op)
	case opcodec.T2Mint:
		event, perr, err = ex.processMint(ctx, msg, op)
	case opcodec.T2Transfer:
		if msg.OldSatpoint == nil {
			event, perr, err = ex.processInscribeTransfer(ctx, msg, op)
		} else {
			event, perr, err = ex.processTransfer(ctx, msg, op)
		}
	default:
		return Receipt{}, fmt.Errorf("brc20s: unexpected operation type %T", msg.Op)
	}
	if err != nil {
		return Receipt{}, err
	}

	if receipt.To == nil {
		receipt.To = receipt.From
	}
	receipt.Event = event
	receipt.Err = perr
	return receipt, nil
}

// ExecutePassive runs a synthetic PassiveUnStake, which may settle more
// than one pool and so returns one receipt per pool touched. This is the
// call manager's sole entry point for PassiveUnStake; it is never routed
// through Execute because it does not fit that method's one-receipt
// contract.
func (ex *Executor) ExecutePassive(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T2PassiveUnStake) ([]Receipt, error) {
	return ex.processPassiveUnStake(ctx, msg, op)
}

func (ex *Executor) processDeploy(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T2Deploy) (*Event, *Error, error) {
	if msg.ToScript == nil {
		return nil, newErr(InscribeToCoinbase, ""), nil
	}
	pid, err := ordid.ParsePid(op.PoolID)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}

	if _, ok, serr := ex.Store.PoolInfo(pid); serr != nil {
		return nil, nil, serr
	} else if ok {
		return nil, newErr(PoolAlreadyExists, "%s", pid), nil
	}

	tickID := pid.TickID()
	tick, ok, serr := ex.Store.TickInfo(tickID)
	if serr != nil {
		return nil, nil, serr
	}
	advisory := ""
	if !ok {
		dec := uint8(18)
		if op.Decimal != "" {
			parsed, perr := parseDecimal(op.Decimal)
			if perr != nil {
				return nil, perr, nil
			}
			dec = parsed
		}
		supply, perr := parseSupplyLike(op.TotalSupply, dec)
		if perr != nil {
			return nil, perr, nil
		}
		derived := ordid.DeriveTickID(op.EarnTick, dec, op.TotalSupply, msg.ToScript, msg.ToScript)
		if derived != tickID {
			return nil, newErr(TickIDMismatch, "pid prefix %s does not match derived tick id %s", tickID, derived), nil
		}
		tick = TickInfo{
			TickID:            tickID,
			Name:              op.EarnTick,
			InscriptionID:     msg.InscriptionID,
			InscriptionNumber: msg.InscriptionNumber,
			Decimal:           dec,
			Supply:            supply,
			DeployerScript:    msg.ToScript,
			DeployHeight:      ctx.Height,
			DeployTimestamp:   ctx.Timestamp,
		}
		if err := ex.Store.InsertTickInfo(tickID, tick); err != nil {
			return nil, nil, err
		}
		advisory = "deploy created tick " + string(tickID)
	}

	var ptype PoolType
	switch op.PoolType {
	case opcodec.T2PoolTypePool:
		ptype = PoolTypePool
	case opcodec.T2PoolTypeFixed:
		ptype = PoolTypeFixed
	default:
		return nil, newErr(UnknownPoolType, "%s", op.PoolType), nil
	}

	stake := ordid.ParsePledgedTick(op.Stake)
	if stake.Kind == ordid.PledgedUnknown {
		return nil, newErr(UnknownStakeType, "%s", op.Stake), nil
	}

	erate, perr := parseScaledAmount(op.EarnRate, tick.Decimal)
	if perr != nil {
		return nil, perr, nil
	}
	dmax, perr := parseScaledAmount(op.MaxSupply, tick.Decimal)
	if perr != nil {
		return nil, perr, nil
	}

	pool := PoolInfo{
		Pid:               pid,
		Type:              ptype,
		TickID:            tickID,
		InscriptionID:     msg.InscriptionID,
		Stake:             stake,
		ERate:             erate,
		Minted:            big.NewInt(0),
		Staked:            big.NewInt(0),
		DMax:              dmax,
		AccRewardPerShare: big.NewInt(0),
		LastUpdateBlock:   ctx.Height,
		Only:              op.Only,
		DeployHeight:      ctx.Height,
		DeployTimestamp:   ctx.Timestamp,
	}
	if err := ex.Store.InsertPoolInfo(pid, pool); err != nil {
		return nil, nil, err
	}
	return &Event{Kind: EventDeployPool, Pid: pid, TickID: tickID, Msg: advisory}, nil, nil
}

func parseDecimal(s string) (uint8, *Error) {
	n, err := numeric.ParseNum(s)
	if err != nil {
		return 0, newErr(InvalidNum, "%v", err)
	}
	d, derr := n.ToU8()
	if derr != nil || d > 18 {
		return 0, newErr(DecimalsTooLarge, "%s", s)
	}
	return d, nil
}

// settlePool advances acc_reward_per_share and minted to ctx height,
// before any stake mutation or reward claim reads them. Both Pool and
// Fixed pools share this update rule: the per-share accumulator already
// distributes reward pro-rata by stake share, which is the same
// "credited pro-rata to every currently staked user" outcome spec.md's
// Fixed-pool formula calls for.
func settlePool(pool *PoolInfo, height int32) {
	if height <= pool.LastUpdateBlock {
		return
	}
	elapsed := big.NewInt(int64(height - pool.LastUpdateBlock))
	pool.LastUpdateBlock = height

	remaining := new(big.Int).Sub(pool.DMax, pool.Minted)
	if remaining.Sign() <= 0 {
		return
	}
	reward := new(big.Int).Mul(elapsed, pool.ERate)
	if reward.Cmp(remaining) > 0 {
		reward = remaining
	}
	if reward.Sign() <= 0 {
		return
	}
	pool.Minted = new(big.Int).Add(pool.Minted, reward)
	if pool.Staked.Sign() > 0 {
		delta := new(big.Int).Mul(reward, AccumulatorScale)
		delta.Quo(delta, pool.Staked)
		pool.AccRewardPerShare = new(big.Int).Add(pool.AccRewardPerShare, delta)
	}
}

// settleUser returns the reward a user has accrued since their reward
// debt was last set, given the pool's current (already-settled)
// accumulator.
func settleUser(staked, acc, rewardDebt *big.Int) *big.Int {
	earned := new(big.Int).Mul(staked, acc)
	earned.Quo(earned, AccumulatorScale)
	return new(big.Int).Sub(earned, rewardDebt)
}

func rewardDebtFor(staked, acc *big.Int) *big.Int {
	debt := new(big.Int).Mul(staked, acc)
	debt.Quo(debt, AccumulatorScale)
	return debt
}

func (ex *Executor) processStake(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T2Stake) (*Event, *Error, error) {
	if msg.ToScript == nil {
		return nil, newErr(InscribeToCoinbase, ""), nil
	}
	pid, err := ordid.ParsePid(op.PoolID)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}
	pool, ok, serr := ex.Store.PoolInfo(pid)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		return nil, newErr(PoolNotFound, "%s", pid), nil
	}

	dec, derr := ex.Decimals.Decimals(pool.Stake)
	if derr != nil {
		return nil, newErr(UnknownStakeType, "%v", derr), nil
	}
	amount, perr := parseScaledAmount(op.Amount, dec)
	if perr != nil {
		return nil, perr, nil
	}
	if amount.Sign() <= 0 {
		return nil, newErr(InvalidZeroAmount, ""), nil
	}

	owner := scriptkey.FromPkScript(msg.ToScript)
	user, ok, serr := ex.Store.UserInfo(pid, owner)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		user = UserInfo{Pid: pid, Owner: owner, Staked: big.NewInt(0), Minted: big.NewInt(0), PendingReward: big.NewInt(0), RewardDebt: big.NewInt(0)}
	}

	settlePool(&pool, ctx.Height)
	user.PendingReward = new(big.Int).Add(user.PendingReward, settleUser(user.Staked, pool.AccRewardPerShare, user.RewardDebt))

	user.Staked = new(big.Int).Add(user.Staked, amount)
	pool.Staked = new(big.Int).Add(pool.Staked, amount)
	user.RewardDebt = rewardDebtFor(user.Staked, pool.AccRewardPerShare)
	user.LatestUpdatedBlock = ctx.Height

	if err := ex.Store.UpdatePoolInfo(pid, pool); err != nil {
		return nil, nil, err
	}
	if err := ex.Store.UpdateUserInfo(pid, owner, user); err != nil {
		return nil, nil, err
	}
	if err := ex.touchStakeInfo(owner, pool, user.Staked); err != nil {
		return nil, nil, err
	}
	return &Event{Kind: EventStake, Pid: pid, TickID: pool.TickID, Amount: amount}, nil, nil
}

func (ex *Executor) processUnStake(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T2UnStake) (*Event, *Error, error) {
	if msg.ToScript == nil {
		return nil, newErr(InscribeToCoinbase, ""), nil
	}
	pid, err := ordid.ParsePid(op.PoolID)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}
	pool, ok, serr := ex.Store.PoolInfo(pid)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		return nil, newErr(PoolNotFound, "%s", pid), nil
	}

	dec, derr := ex.Decimals.Decimals(pool.Stake)
	if derr != nil {
		return nil, newErr(UnknownStakeType, "%v", derr), nil
	}
	amount, perr := parseScaledAmount(op.Amount, dec)
	if perr != nil {
		return nil, perr, nil
	}

	owner := scriptkey.FromPkScript(msg.ToScript)
	user, ok, serr := ex.Store.UserInfo(pid, owner)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok || user.Staked.Cmp(amount) < 0 {
		return nil, newErr(InsufficientStaked, ""), nil
	}

	settlePool(&pool, ctx.Height)
	user.PendingReward = new(big.Int).Add(user.PendingReward, settleUser(user.Staked, pool.AccRewardPerShare, user.RewardDebt))

	user.Staked = new(big.Int).Sub(user.Staked, amount)
	pool.Staked = new(big.Int).Sub(pool.Staked, amount)
	user.RewardDebt = rewardDebtFor(user.Staked, pool.AccRewardPerShare)
	user.LatestUpdatedBlock = ctx.Height

	if err := ex.Store.UpdatePoolInfo(pid, pool); err != nil {
		return nil, nil, err
	}
	if err := ex.Store.UpdateUserInfo(pid, owner, user); err != nil {
		return nil, nil, err
	}
	if err := ex.touchStakeInfo(owner, pool, user.Staked); err != nil {
		return nil, nil, err
	}
	return &Event{Kind: EventUnStake, Pid: pid, TickID: pool.TickID, Amount: amount}, nil, nil
}

// touchStakeInfo refreshes the StakeRef for pid within owner's
// StakeInfo for the pool's pledged asset, then recomputes total_only
// and max_share over the whole set.
func (ex *Executor) touchStakeInfo(owner scriptkey.ScriptKey, pool PoolInfo, staked *big.Int) error {
	info, ok, err := ex.Store.StakeInfo(owner, pool.Stake)
	if err != nil {
		return err
	}
	if !ok {
		info = StakeInfo{Owner: owner, Pledged: pool.Stake}
	}
	found := false
	for i := range info.Pools {
		if info.Pools[i].Pid == pool.Pid {
			info.Pools[i].Staked = staked
			info.Pools[i].Only = pool.Only
			found = true
			break
		}
	}
	if !found {
		info.Pools = append(info.Pools, StakeRef{Pid: pool.Pid, Only: pool.Only, Staked: staked})
	}

	totalOnly := big.NewInt(0)
	maxShare := big.NewInt(0)
	for _, ref := range info.Pools {
		if ref.Only {
			totalOnly.Add(totalOnly, ref.Staked)
		} else if ref.Staked.Cmp(maxShare) > 0 {
			maxShare = new(big.Int).Set(ref.Staked)
		}
	}
	info.TotalOnly = totalOnly
	info.MaxShare = maxShare
	return ex.Store.UpdateStakeInfo(owner, pool.Stake, info)
}

func (ex *Executor) processPassiveUnStake(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T2PassiveUnStake) ([]Receipt, error) {
	pledged := ordid.ParsePledgedTick(op.Stake)
	owner := scriptkey.FromPkScript(msg.FromScript)

	dec, derr := ex.Decimals.Decimals(pledged)
	if derr != nil {
		return nil, fmt.Errorf("brc20s: resolve decimals for passive unstake: %w", derr)
	}
	overdraft, perr := parseScaledAmount(op.Amount, dec)
	if perr != nil {
		return nil, fmt.Errorf("brc20s: %v", perr)
	}

	info, ok, err := ex.Store.StakeInfo(owner, pledged)
	if err != nil {
		return nil, err
	}
	if !ok || len(info.Pools) == 0 {
		return nil, nil
	}

	ordered := orderPassiveUnstakePools(info.Pools)
	remaining := overdraft
	var receipts []Receipt

	for _, ref := range ordered {
		if remaining.Sign() <= 0 {
			break
		}
		pool, ok, err := ex.Store.PoolInfo(ref.Pid)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		user, ok, err := ex.Store.UserInfo(ref.Pid, owner)
		if err != nil {
			return nil, err
		}
		if !ok || user.Staked.Sign() <= 0 {
			continue
		}

		take := new(big.Int).Set(remaining)
		if user.Staked.Cmp(take) < 0 {
			take = new(big.Int).Set(user.Staked)
		}
		if take.Sign() <= 0 {
			continue
		}

		settlePool(&pool, ctx.Height)
		user.PendingReward = new(big.Int).Add(user.PendingReward, settleUser(user.Staked, pool.AccRewardPerShare, user.RewardDebt))
		user.Staked = new(big.Int).Sub(user.Staked, take)
		pool.Staked = new(big.Int).Sub(pool.Staked, take)
		user.RewardDebt = rewardDebtFor(user.Staked, pool.AccRewardPerShare)
		user.LatestUpdatedBlock = ctx.Height

		if err := ex.Store.UpdatePoolInfo(ref.Pid, pool); err != nil {
			return nil, err
		}
		if err := ex.Store.UpdateUserInfo(ref.Pid, owner, user); err != nil {
			return nil, err
		}
		if err := ex.touchStakeInfo(owner, pool, user.Staked); err != nil {
			return nil, err
		}

		remaining = new(big.Int).Sub(remaining, take)
		receipts = append(receipts, Receipt{
			Txid:              msg.Txid,
			InscriptionID:     msg.InscriptionID,
			InscriptionNumber: msg.InscriptionNumber,
			OldSatpoint:       msg.OldSatpoint,
			NewSatpoint:       msg.NewSatpoint,
			From:              msg.FromScript,
			To:                msg.FromScript,
			Event:             &Event{Kind: EventPassiveUnStake, Pid: ref.Pid, TickID: pool.TickID, Amount: take},
		})
	}
	return receipts, nil
}

// orderPassiveUnstakePools sorts a user's stake positions exclusive
// (only) pools first, then shared pools, each group ascending by pid
// bytes — resolving the deterministic ordering spec.md leaves implicit.
func orderPassiveUnstakePools(pools []StakeRef) []StakeRef {
	out := make([]StakeRef, len(pools))
	copy(out, pools)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Only != out[j].Only {
			return out[i].Only
		}
		return out[i].Pid < out[j].Pid
	})
	return out
}

func (ex *Executor) processMint(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T2Mint) (*Event, *Error, error) {
	if msg.ToScript == nil {
		return nil, newErr(InscribeToCoinbase, ""), nil
	}
	pid, err := ordid.ParsePid(op.PoolID)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}
	pool, ok, serr := ex.Store.PoolInfo(pid)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		return nil, newErr(PoolNotFound, "%s", pid), nil
	}
	tick, ok, serr := ex.Store.TickInfo(pool.TickID)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		return nil, newErr(TickNotFound, "%s", pool.TickID), nil
	}

	owner := scriptkey.FromPkScript(msg.ToScript)
	user, ok, serr := ex.Store.UserInfo(pid, owner)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		user = UserInfo{Pid: pid, Owner: owner, Staked: big.NewInt(0), Minted: big.NewInt(0), PendingReward: big.NewInt(0), RewardDebt: big.NewInt(0)}
	}

	settlePool(&pool, ctx.Height)
	user.PendingReward = new(big.Int).Add(user.PendingReward, settleUser(user.Staked, pool.AccRewardPerShare, user.RewardDebt))
	user.RewardDebt = rewardDebtFor(user.Staked, pool.AccRewardPerShare)

	amount, perr := parseScaledAmount(op.Amount, tick.Decimal)
	if perr != nil {
		return nil, perr, nil
	}
	if amount.Sign() <= 0 {
		return nil, newErr(InvalidZeroAmount, ""), nil
	}
	advisory := ""
	if amount.Cmp(user.PendingReward) > 0 {
		amount = new(big.Int).Set(user.PendingReward)
		advisory = "mint amount clipped to pending reward"
	}
	if amount.Sign() <= 0 {
		return nil, newErr(InvalidZeroAmount, "no pending reward"), nil
	}

	user.PendingReward = new(big.Int).Sub(user.PendingReward, amount)
	user.Minted = new(big.Int).Add(user.Minted, amount)
	user.LatestUpdatedBlock = ctx.Height

	balance, ok, berr := ex.Store.Balance(owner, pool.TickID)
	if berr != nil {
		return nil, nil, berr
	}
	if !ok {
		balance = &BalanceT2{OverallBalance: big.NewInt(0), TransferableBalance: big.NewInt(0)}
	}
	balance.OverallBalance = new(big.Int).Add(balance.OverallBalance, amount)

	if err := ex.Store.UpdatePoolInfo(pid, pool); err != nil {
		return nil, nil, err
	}
	if err := ex.Store.UpdateUserInfo(pid, owner, user); err != nil {
		return nil, nil, err
	}
	if err := ex.Store.UpdateBalance(owner, pool.TickID, balance); err != nil {
		return nil, nil, err
	}
	return &Event{Kind: EventMint, Pid: pid, TickID: pool.TickID, Amount: amount, Msg: advisory}, nil, nil
}

func (ex *Executor) processInscribeTransfer(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T2Transfer) (*Event, *Error, error) {
	if msg.ToScript == nil {
		return nil, newErr(InscribeToCoinbase, ""), nil
	}
	tickID, err := ordid.ParseTickID(op.TickID)
	if err != nil {
		return nil, newErr(InvalidTickLen, "%v", err), nil
	}
	tick, ok, serr := ex.Store.TickInfo(tickID)
	if serr != nil {
		return nil, nil, serr
	}
	if !ok {
		return nil, newErr(TickNotFound, "%s", tickID), nil
	}

	amount, perr := parseScaledAmount(op.Amount, tick.Decimal)
	if perr != nil {
		return nil, perr, nil
	}
	if amount.Sign() <= 0 || amount.Cmp(tick.Supply) > 0 {
		return nil, newErr(AmountExceedLimit, ""), nil
	}

	owner := scriptkey.FromPkScript(msg.ToScript)
	balance, ok, berr := ex.Store.Balance(owner, tickID)
	if berr != nil {
		return nil, nil, berr
	}
	if !ok {
		balance = &BalanceT2{OverallBalance: big.NewInt(0), TransferableBalance: big.NewInt(0)}
	}
	if balance.Available().Cmp(amount) < 0 {
		return nil, newErr(InsufficientBalance, ""), nil
	}
	balance.TransferableBalance = new(big.Int).Add(balance.TransferableBalance, amount)
	if err := ex.Store.UpdateBalance(owner, tickID, balance); err != nil {
		return nil, nil, err
	}

	log := TransferableLog{Owner: owner, TickID: tickID, InscriptionID: msg.InscriptionID, Amount: amount}
	if err := ex.Store.InsertTransferable(log); err != nil {
		return nil, nil, err
	}
	if err := ex.Store.InsertInscribeTransferInscription(msg.InscriptionID, InscribeTransferInfo{TickID: tickID, Amount: amount}); err != nil {
		return nil, nil, err
	}
	return &Event{Kind: EventInscribeTransfer, TickID: tickID, Amount: amount}, nil, nil
}

func (ex *Executor) processTransfer(ctx BlockContext, msg resolver.ExecutionMessage, op opcodec.T2Transfer) (*Event, *Error, error) {
	owner := scriptkey.FromPkScript(msg.FromScript)

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

	fromBalance, _, berr := ex.Store.Balance(owner, log.TickID)
	if berr != nil {
		return nil, nil, berr
	}
	fromBalance.OverallBalance = new(big.Int).Sub(fromBalance.OverallBalance, log.Amount)
	fromBalance.TransferableBalance = new(big.Int).Sub(fromBalance.TransferableBalance, log.Amount)
	if err := ex.Store.UpdateBalance(owner, log.TickID, fromBalance); err != nil {
		return nil, nil, err
	}

	advisory := ""
	toScript := msg.ToScript
	if toScript == nil {
		toScript = msg.FromScript
		advisory = "transfer redirected to sender: coinbase destination"
	}
	to := scriptkey.FromPkScript(toScript)
	toBalance, ok, berr := ex.Store.Balance(to, log.TickID)
	if berr != nil {
		return nil, nil, berr
	}
	if !ok {
		toBalance = &BalanceT2{OverallBalance: big.NewInt(0), TransferableBalance: big.NewInt(0)}
	}
	toBalance.OverallBalance = new(big.Int).Add(toBalance.OverallBalance, log.Amount)
	if err := ex.Store.UpdateBalance(to, log.TickID, toBalance); err != nil {
		return nil, nil, err
	}

	if err := ex.Store.RemoveTransferable(owner, msg.InscriptionID); err != nil {
		return nil, nil, err
	}
	if err := ex.Store.RemoveInscribeTransferInscription(msg.InscriptionID); err != nil {
		return nil, nil, err
	}
	return &Event{Kind: EventTransfer, TickID: log.TickID, Amount: log.Amount, Msg: advisory}, nil, nil
}
