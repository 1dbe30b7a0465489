package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/jackc/pgx/v5"
	"github.com/okx-clone/brc20s-indexer/internal/brc20s"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

func (b *T2Store) TickInfo(tickID ordid.TickID) (brc20s.TickInfo, bool, error) {
	var name, txidStr, supply string
	var idx int32
	var number int64
	var decimals int16
	var deployer []byte
	var deployHeight int32
	var deployTimestamp int64

	err := b.tx.QueryRow(b.ctx, `
		SELECT name, inscr_txid, inscr_idx, inscr_number, decimals, supply, deployer, deploy_height, deploy_timestamp
		FROM t2_ticks WHERE tick_id=$1`, string(tickID),
	).Scan(&name, &txidStr, &idx, &number, &decimals, &supply, &deployer, &deployHeight, &deployTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20s.TickInfo{}, false, nil
	}
	if err != nil {
		return brc20s.TickInfo{}, false, fmt.Errorf("store: t2 tick info: %w", err)
	}
	txid, err := parseTxid(txidStr)
	if err != nil {
		return brc20s.TickInfo{}, false, err
	}
	return brc20s.TickInfo{
		TickID:            tickID,
		Name:              name,
		InscriptionID:     tracker.InscriptionID{Txid: txid, Index: uint32(idx)},
		InscriptionNumber: number,
		Decimal:           uint8(decimals),
		Supply:            parseBig(supply),
		DeployerScript:    deployer,
		DeployHeight:      deployHeight,
		DeployTimestamp:   deployTimestamp,
	}, true, nil
}

func (b *T2Store) TickInfoByName(name string) (brc20s.TickInfo, bool, error) {
	var tickID string
	err := b.tx.QueryRow(b.ctx, `SELECT tick_id FROM t2_ticks WHERE name=$1`, name).Scan(&tickID)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20s.TickInfo{}, false, nil
	}
	if err != nil {
		return brc20s.TickInfo{}, false, fmt.Errorf("store: t2 tick info by name: %w", err)
	}
	return b.TickInfo(ordid.TickID(tickID))
}

func (b *T2Store) AllTickInfo() ([]brc20s.TickInfo, error) {
	rows, err := b.tx.Query(b.ctx, `SELECT tick_id FROM t2_ticks`)
	if err != nil {
		return nil, fmt.Errorf("store: all t2 ticks: %w", err)
	}
	defer rows.Close()

	var ids []ordid.TickID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, ordid.TickID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]brc20s.TickInfo, 0, len(ids))
	for _, id := range ids {
		info, ok, err := b.TickInfo(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, info)
		}
	}
	return out, nil
}

func (b *T2Store) PoolInfo(pid ordid.Pid) (brc20s.PoolInfo, bool, error) {
	var poolType int16
	var tickID, txidStr, stake, erate, minted, staked, dmax, acc string
	var idx int32
	var lastUpdateBlock, deployHeight int32
	var only bool
	var deployTimestamp int64

	err := b.tx.QueryRow(b.ctx, `
		SELECT pool_type, tick_id, inscr_txid, inscr_idx, stake, erate, minted, staked, dmax,
		       acc_reward_per_share, last_update_block, only_pool, deploy_height, deploy_timestamp
		FROM t2_pools WHERE pid=$1`, string(pid),
	).Scan(&poolType, &tickID, &txidStr, &idx, &stake, &erate, &minted, &staked, &dmax,
		&acc, &lastUpdateBlock, &only, &deployHeight, &deployTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20s.PoolInfo{}, false, nil
	}
	if err != nil {
		return brc20s.PoolInfo{}, false, fmt.Errorf("store: t2 pool info: %w", err)
	}
	txid, err := parseTxid(txidStr)
	if err != nil {
		return brc20s.PoolInfo{}, false, err
	}
	return brc20s.PoolInfo{
		Pid:               pid,
		Type:              brc20s.PoolType(poolType),
		TickID:            ordid.TickID(tickID),
		InscriptionID:     tracker.InscriptionID{Txid: txid, Index: uint32(idx)},
		Stake:             ordid.ParsePledgedTick(stake),
		ERate:             parseBig(erate),
		Minted:            parseBig(minted),
		Staked:            parseBig(staked),
		DMax:              parseBig(dmax),
		AccRewardPerShare: parseBig(acc),
		LastUpdateBlock:   lastUpdateBlock,
		Only:              only,
		DeployHeight:      deployHeight,
		DeployTimestamp:   deployTimestamp,
	}, true, nil
}

func (b *T2Store) PoolsByTick(tickID ordid.TickID) ([]brc20s.PoolInfo, error) {
	rows, err := b.tx.Query(b.ctx, `SELECT pid FROM t2_pools WHERE tick_id=$1`, string(tickID))
	if err != nil {
		return nil, fmt.Errorf("store: pools by tick: %w", err)
	}
	defer rows.Close()

	var pids []ordid.Pid
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		pids = append(pids, ordid.Pid(pid))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]brc20s.PoolInfo, 0, len(pids))
	for _, pid := range pids {
		info, ok, err := b.PoolInfo(pid)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, info)
		}
	}
	return out, nil
}

func (b *T2Store) UserInfo(pid ordid.Pid, owner scriptkey.ScriptKey) (brc20s.UserInfo, bool, error) {
	var staked, minted, pendingReward, rewardDebt string
	var latestUpdatedBlock int32
	err := b.tx.QueryRow(b.ctx, `
		SELECT staked, minted, pending_reward, reward_debt, latest_updated_block
		FROM t2_users WHERE pid=$1 AND owner=$2`, string(pid), string(owner),
	).Scan(&staked, &minted, &pendingReward, &rewardDebt, &latestUpdatedBlock)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20s.UserInfo{}, false, nil
	}
	if err != nil {
		return brc20s.UserInfo{}, false, fmt.Errorf("store: t2 user info: %w", err)
	}
	return brc20s.UserInfo{
		Pid: pid, Owner: owner,
		Staked: parseBig(staked), Minted: parseBig(minted),
		PendingReward: parseBig(pendingReward), RewardDebt: parseBig(rewardDebt),
		LatestUpdatedBlock: latestUpdatedBlock,
	}, true, nil
}

func (b *T2Store) StakeInfo(owner scriptkey.ScriptKey, pledged ordid.PledgedTick) (brc20s.StakeInfo, bool, error) {
	var poolsJSON []byte
	var maxShare, totalOnly string
	err := b.tx.QueryRow(b.ctx, `
		SELECT pools, max_share, total_only FROM t2_stakes WHERE owner=$1 AND pledged=$2`,
		string(owner), pledged.String(),
	).Scan(&poolsJSON, &maxShare, &totalOnly)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20s.StakeInfo{}, false, nil
	}
	if err != nil {
		return brc20s.StakeInfo{}, false, fmt.Errorf("store: t2 stake info: %w", err)
	}
	var stored []storedStakeRef
	if err := json.Unmarshal(poolsJSON, &stored); err != nil {
		return brc20s.StakeInfo{}, false, fmt.Errorf("store: decode stake refs: %w", err)
	}
	pools := make([]brc20s.StakeRef, 0, len(stored))
	for _, s := range stored {
		pools = append(pools, brc20s.StakeRef{Pid: ordid.Pid(s.Pid), Only: s.Only, Staked: parseBig(s.Staked)})
	}
	return brc20s.StakeInfo{
		Owner: owner, Pledged: pledged, Pools: pools,
		MaxShare: parseBig(maxShare), TotalOnly: parseBig(totalOnly),
	}, true, nil
}

// storedStakeRef is StakeRef's JSON wire shape: *big.Int serializes via
// its own MarshalText, but indirecting through plain strings keeps this
// package's JSON columns independent of brc20s's internal types.
type storedStakeRef struct {
	Pid    string `json:"pid"`
	Only   bool   `json:"only"`
	Staked string `json:"staked"`
}

func (b *T2Store) TransactionReceipts(txid chainhash.Hash) ([]brc20s.Receipt, error) {
	rows, err := b.tx.Query(b.ctx, `SELECT payload FROM t2_receipts WHERE txid=$1 ORDER BY seq`, txidHex(txid))
	if err != nil {
		return nil, fmt.Errorf("store: t2 receipts: %w", err)
	}
	defer rows.Close()

	var out []brc20s.Receipt
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r brc20s.Receipt
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("store: decode t2 receipt: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (b *T2Store) TransferableByID(owner scriptkey.ScriptKey, id tracker.InscriptionID) (brc20s.TransferableLog, bool, error) {
	var rowOwner, tickID, amount string
	err := b.tx.QueryRow(b.ctx, `
		SELECT owner, tick_id, amount FROM t2_transferable WHERE txid=$1 AND idx=$2`,
		txidHex(id.Txid), id.Index,
	).Scan(&rowOwner, &tickID, &amount)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && rowOwner != string(owner)) {
		return brc20s.TransferableLog{}, false, nil
	}
	if err != nil {
		return brc20s.TransferableLog{}, false, fmt.Errorf("store: t2 transferable by id: %w", err)
	}
	return brc20s.TransferableLog{
		Owner: owner, TickID: ordid.TickID(tickID), InscriptionID: id, Amount: parseBig(amount),
	}, true, nil
}

func (b *T2Store) InscribeTransferInscription(id tracker.InscriptionID) (brc20s.InscribeTransferInfo, bool, error) {
	var tickID, amount string
	err := b.tx.QueryRow(b.ctx, `
		SELECT tick_id, amount FROM t2_inscribe_transfer WHERE txid=$1 AND idx=$2`,
		txidHex(id.Txid), id.Index,
	).Scan(&tickID, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20s.InscribeTransferInfo{}, false, nil
	}
	if err != nil {
		return brc20s.InscribeTransferInfo{}, false, fmt.Errorf("store: t2 inscribe-transfer info: %w", err)
	}
	return brc20s.InscribeTransferInfo{TickID: ordid.TickID(tickID), Amount: parseBig(amount)}, true, nil
}

func (b *T2Store) Balance(owner scriptkey.ScriptKey, tickID ordid.TickID) (*brc20s.BalanceT2, bool, error) {
	var overall, transferable string
	err := b.tx.QueryRow(b.ctx, `
		SELECT overall, transferable FROM t2_balances WHERE owner=$1 AND tick_id=$2`,
		string(owner), string(tickID),
	).Scan(&overall, &transferable)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: t2 balance: %w", err)
	}
	return &brc20s.BalanceT2{OverallBalance: parseBig(overall), TransferableBalance: parseBig(transferable)}, true, nil
}

func (b *T2Store) InsertTickInfo(tickID ordid.TickID, info brc20s.TickInfo) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t2_ticks (tick_id, name, inscr_txid, inscr_idx, inscr_number, decimals, supply,
			deployer, deploy_height, deploy_timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (tick_id) DO NOTHING`,
		string(tickID), info.Name, txidHex(info.InscriptionID.Txid), info.InscriptionID.Index,
		info.InscriptionNumber, int16(info.Decimal), bigText(info.Supply),
		info.DeployerScript, info.DeployHeight, info.DeployTimestamp,
	)
	if err != nil {
		return fmt.Errorf("store: insert t2 tick info: %w", err)
	}
	return nil
}

func (b *T2Store) InsertPoolInfo(pid ordid.Pid, info brc20s.PoolInfo) error {
	return b.UpdatePoolInfo(pid, info)
}

func (b *T2Store) UpdatePoolInfo(pid ordid.Pid, info brc20s.PoolInfo) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t2_pools (pid, pool_type, tick_id, inscr_txid, inscr_idx, stake, erate, minted,
			staked, dmax, acc_reward_per_share, last_update_block, only_pool, deploy_height, deploy_timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (pid) DO UPDATE SET
			pool_type=EXCLUDED.pool_type, erate=EXCLUDED.erate, minted=EXCLUDED.minted,
			staked=EXCLUDED.staked, dmax=EXCLUDED.dmax,
			acc_reward_per_share=EXCLUDED.acc_reward_per_share,
			last_update_block=EXCLUDED.last_update_block, only_pool=EXCLUDED.only_pool`,
		string(pid), int16(info.Type), string(info.TickID), txidHex(info.InscriptionID.Txid), info.InscriptionID.Index,
		info.Stake.String(), bigText(info.ERate), bigText(info.Minted), bigText(info.Staked), bigText(info.DMax),
		bigText(info.AccRewardPerShare), info.LastUpdateBlock, info.Only, info.DeployHeight, info.DeployTimestamp,
	)
	if err != nil {
		return fmt.Errorf("store: upsert t2 pool info: %w", err)
	}
	return nil
}

func (b *T2Store) UpdateUserInfo(pid ordid.Pid, owner scriptkey.ScriptKey, info brc20s.UserInfo) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t2_users (pid, owner, staked, minted, pending_reward, reward_debt, latest_updated_block)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (pid, owner) DO UPDATE SET
			staked=EXCLUDED.staked, minted=EXCLUDED.minted, pending_reward=EXCLUDED.pending_reward,
			reward_debt=EXCLUDED.reward_debt, latest_updated_block=EXCLUDED.latest_updated_block`,
		string(pid), string(owner), bigText(info.Staked), bigText(info.Minted),
		bigText(info.PendingReward), bigText(info.RewardDebt), info.LatestUpdatedBlock,
	)
	if err != nil {
		return fmt.Errorf("store: upsert t2 user info: %w", err)
	}
	return nil
}

func (b *T2Store) UpdateStakeInfo(owner scriptkey.ScriptKey, pledged ordid.PledgedTick, info brc20s.StakeInfo) error {
	stored := make([]storedStakeRef, 0, len(info.Pools))
	for _, p := range info.Pools {
		stored = append(stored, storedStakeRef{Pid: string(p.Pid), Only: p.Only, Staked: bigText(p.Staked)})
	}
	poolsJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("store: encode stake refs: %w", err)
	}
	_, err = b.tx.Exec(b.ctx, `
		INSERT INTO t2_stakes (owner, pledged, pools, max_share, total_only) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (owner, pledged) DO UPDATE
		SET pools=EXCLUDED.pools, max_share=EXCLUDED.max_share, total_only=EXCLUDED.total_only`,
		string(owner), pledged.String(), poolsJSON, bigText(info.MaxShare), bigText(info.TotalOnly),
	)
	if err != nil {
		return fmt.Errorf("store: upsert t2 stake info: %w", err)
	}
	return nil
}

func (b *T2Store) SaveTransactionReceipts(txid chainhash.Hash, receipts []brc20s.Receipt) error {
	if _, err := b.tx.Exec(b.ctx, `DELETE FROM t2_receipts WHERE txid=$1`, txidHex(txid)); err != nil {
		return fmt.Errorf("store: clear t2 receipts: %w", err)
	}
	for _, r := range receipts {
		if err := b.AddTransactionReceipt(txid, r); err != nil {
			return err
		}
	}
	return nil
}

func (b *T2Store) AddTransactionReceipt(txid chainhash.Hash, receipt brc20s.Receipt) error {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("store: encode t2 receipt: %w", err)
	}
	if _, err := b.tx.Exec(b.ctx, `INSERT INTO t2_receipts (txid, payload) VALUES ($1,$2)`, txidHex(txid), payload); err != nil {
		return fmt.Errorf("store: add t2 receipt: %w", err)
	}
	return nil
}

func (b *T2Store) UpdateBalance(owner scriptkey.ScriptKey, tickID ordid.TickID, balance *brc20s.BalanceT2) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t2_balances (owner, tick_id, overall, transferable) VALUES ($1,$2,$3,$4)
		ON CONFLICT (owner, tick_id) DO UPDATE SET overall=EXCLUDED.overall, transferable=EXCLUDED.transferable`,
		string(owner), string(tickID), bigText(balance.OverallBalance), bigText(balance.TransferableBalance),
	)
	if err != nil {
		return fmt.Errorf("store: update t2 balance: %w", err)
	}
	return nil
}

func (b *T2Store) InsertTransferable(log brc20s.TransferableLog) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t2_transferable (txid, idx, owner, tick_id, amount) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (txid, idx) DO UPDATE
		SET owner=EXCLUDED.owner, tick_id=EXCLUDED.tick_id, amount=EXCLUDED.amount`,
		txidHex(log.InscriptionID.Txid), log.InscriptionID.Index, string(log.Owner), string(log.TickID), bigText(log.Amount),
	)
	if err != nil {
		return fmt.Errorf("store: insert t2 transferable: %w", err)
	}
	return nil
}

func (b *T2Store) RemoveTransferable(owner scriptkey.ScriptKey, id tracker.InscriptionID) error {
	_, err := b.tx.Exec(b.ctx, `DELETE FROM t2_transferable WHERE txid=$1 AND idx=$2`, txidHex(id.Txid), id.Index)
	if err != nil {
		return fmt.Errorf("store: remove t2 transferable: %w", err)
	}
	return nil
}

func (b *T2Store) InsertInscribeTransferInscription(id tracker.InscriptionID, info brc20s.InscribeTransferInfo) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t2_inscribe_transfer (txid, idx, tick_id, amount) VALUES ($1,$2,$3,$4)
		ON CONFLICT (txid, idx) DO UPDATE SET tick_id=EXCLUDED.tick_id, amount=EXCLUDED.amount`,
		txidHex(id.Txid), id.Index, string(info.TickID), bigText(info.Amount),
	)
	if err != nil {
		return fmt.Errorf("store: insert t2 inscribe-transfer info: %w", err)
	}
	return nil
}

func (b *T2Store) RemoveInscribeTransferInscription(id tracker.InscriptionID) error {
	_, err := b.tx.Exec(b.ctx, `DELETE FROM t2_inscribe_transfer WHERE txid=$1 AND idx=$2`, txidHex(id.Txid), id.Index)
	if err != nil {
		return fmt.Errorf("store: remove t2 inscribe-transfer info: %w", err)
	}
	return nil
}
