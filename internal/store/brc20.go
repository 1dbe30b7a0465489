package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/jackc/pgx/v5"
	"github.com/okx-clone/brc20s-indexer/internal/brc20"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

func bigText(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

// lowerTick rebuilds a LowerTick from its stored string form. Stored
// tick strings are already lowercase (the only representation ever
// written), so this is a plain byte copy, not a re-lowercasing.
func lowerTick(s string) ordid.LowerTick {
	var t ordid.LowerTick
	copy(t[:], s)
	return t
}

func (b *T1Store) Balances(owner scriptkey.ScriptKey) (map[ordid.LowerTick]brc20.Balance, error) {
	rows, err := b.tx.Query(b.ctx, `
		SELECT tick, overall, transferable FROM t1_balances WHERE owner=$1`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("store: t1 balances: %w", err)
	}
	defer rows.Close()

	out := make(map[ordid.LowerTick]brc20.Balance)
	for rows.Next() {
		var tick, overall, transferable string
		if err := rows.Scan(&tick, &overall, &transferable); err != nil {
			return nil, err
		}
		out[lowerTick(tick)] = brc20.Balance{
			OverallBalance:      parseBig(overall),
			TransferableBalance: parseBig(transferable),
		}
	}
	return out, rows.Err()
}

func (b *T1Store) Balance(owner scriptkey.ScriptKey, tick ordid.LowerTick) (brc20.Balance, bool, error) {
	var overall, transferable string
	err := b.tx.QueryRow(b.ctx, `
		SELECT overall, transferable FROM t1_balances WHERE owner=$1 AND tick=$2`,
		string(owner), string(tick),
	).Scan(&overall, &transferable)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20.Balance{}, false, nil
	}
	if err != nil {
		return brc20.Balance{}, false, fmt.Errorf("store: t1 balance: %w", err)
	}
	return brc20.Balance{OverallBalance: parseBig(overall), TransferableBalance: parseBig(transferable)}, true, nil
}

func (b *T1Store) TokenInfo(tick ordid.LowerTick) (brc20.TokenInfo, bool, error) {
	var displayTick, txidStr, supply, limit, minted string
	var idx int32
	var number int64
	var decimals int16
	var deployer []byte
	var deployHeight, latestMintHeight int32
	var deployTimestamp int64

	err := b.tx.QueryRow(b.ctx, `
		SELECT tick_display, inscr_txid, inscr_idx, inscr_number, decimals, supply,
		       limit_per_mint, minted, deployer, deploy_height, latest_mint_height, deploy_timestamp
		FROM t1_tokens WHERE tick=$1`, string(tick),
	).Scan(&displayTick, &txidStr, &idx, &number, &decimals, &supply,
		&limit, &minted, &deployer, &deployHeight, &latestMintHeight, &deployTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20.TokenInfo{}, false, nil
	}
	if err != nil {
		return brc20.TokenInfo{}, false, fmt.Errorf("store: t1 token info: %w", err)
	}
	txid, err := parseTxid(txidStr)
	if err != nil {
		return brc20.TokenInfo{}, false, err
	}
	displayT, err := ordid.ParseTick(displayTick)
	if err != nil {
		return brc20.TokenInfo{}, false, err
	}
	return brc20.TokenInfo{
		Tick:              displayT,
		InscriptionID:     tracker.InscriptionID{Txid: txid, Index: uint32(idx)},
		InscriptionNumber: number,
		Decimal:           uint8(decimals),
		Supply:            parseBig(supply),
		LimitPerMint:      parseBig(limit),
		Minted:            parseBig(minted),
		DeployerScript:    deployer,
		DeployHeight:      deployHeight,
		LatestMintHeight:  latestMintHeight,
		DeployTimestamp:   deployTimestamp,
	}, true, nil
}

func (b *T1Store) AllTokenInfo() ([]brc20.TokenInfo, error) {
	rows, err := b.tx.Query(b.ctx, `SELECT tick FROM t1_tokens`)
	if err != nil {
		return nil, fmt.Errorf("store: all t1 tokens: %w", err)
	}
	defer rows.Close()

	var ticks []ordid.LowerTick
	for rows.Next() {
		var tick string
		if err := rows.Scan(&tick); err != nil {
			return nil, err
		}
		ticks = append(ticks, lowerTick(tick))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]brc20.TokenInfo, 0, len(ticks))
	for _, t := range ticks {
		info, ok, err := b.TokenInfo(t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, info)
		}
	}
	return out, nil
}

func (b *T1Store) TransactionReceipts(txid chainhash.Hash) ([]brc20.Receipt, error) {
	rows, err := b.tx.Query(b.ctx, `
		SELECT payload FROM t1_receipts WHERE txid=$1 ORDER BY seq`, txidHex(txid))
	if err != nil {
		return nil, fmt.Errorf("store: t1 receipts: %w", err)
	}
	defer rows.Close()

	var out []brc20.Receipt
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r brc20.Receipt
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("store: decode t1 receipt: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (b *T1Store) Transferable(owner scriptkey.ScriptKey) ([]brc20.TransferableLog, error) {
	rows, err := b.tx.Query(b.ctx, `
		SELECT txid, idx, tick, amount FROM t1_transferable WHERE owner=$1`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("store: t1 transferable: %w", err)
	}
	return scanT1Transferable(rows, owner)
}

func (b *T1Store) TransferableByTick(owner scriptkey.ScriptKey, tick ordid.LowerTick) ([]brc20.TransferableLog, error) {
	rows, err := b.tx.Query(b.ctx, `
		SELECT txid, idx, tick, amount FROM t1_transferable WHERE owner=$1 AND tick=$2`,
		string(owner), string(tick))
	if err != nil {
		return nil, fmt.Errorf("store: t1 transferable by tick: %w", err)
	}
	return scanT1Transferable(rows, owner)
}

func scanT1Transferable(rows pgx.Rows, owner scriptkey.ScriptKey) ([]brc20.TransferableLog, error) {
	defer rows.Close()
	var out []brc20.TransferableLog
	for rows.Next() {
		var txidStr, tick, amount string
		var idx int32
		if err := rows.Scan(&txidStr, &idx, &tick, &amount); err != nil {
			return nil, err
		}
		txid, err := parseTxid(txidStr)
		if err != nil {
			return nil, err
		}
		out = append(out, brc20.TransferableLog{
			Owner:         owner,
			Tick:          lowerTick(tick),
			InscriptionID: tracker.InscriptionID{Txid: txid, Index: uint32(idx)},
			Amount:        parseBig(amount),
		})
	}
	return out, rows.Err()
}

func (b *T1Store) TransferableByID(owner scriptkey.ScriptKey, id tracker.InscriptionID) (brc20.TransferableLog, bool, error) {
	var tick, amount string
	var rowOwner string
	err := b.tx.QueryRow(b.ctx, `
		SELECT owner, tick, amount FROM t1_transferable WHERE txid=$1 AND idx=$2`,
		txidHex(id.Txid), id.Index,
	).Scan(&rowOwner, &tick, &amount)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && rowOwner != string(owner)) {
		return brc20.TransferableLog{}, false, nil
	}
	if err != nil {
		return brc20.TransferableLog{}, false, fmt.Errorf("store: t1 transferable by id: %w", err)
	}
	return brc20.TransferableLog{
		Owner: owner, Tick: lowerTick(tick), InscriptionID: id, Amount: parseBig(amount),
	}, true, nil
}

func (b *T1Store) InscribeTransferInscription(id tracker.InscriptionID) (brc20.InscribeTransferInfo, bool, error) {
	var tick, amount string
	err := b.tx.QueryRow(b.ctx, `
		SELECT tick, amount FROM t1_inscribe_transfer WHERE txid=$1 AND idx=$2`,
		txidHex(id.Txid), id.Index,
	).Scan(&tick, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return brc20.InscribeTransferInfo{}, false, nil
	}
	if err != nil {
		return brc20.InscribeTransferInfo{}, false, fmt.Errorf("store: t1 inscribe-transfer info: %w", err)
	}
	return brc20.InscribeTransferInfo{Tick: lowerTick(tick), Amount: parseBig(amount)}, true, nil
}

func (b *T1Store) UpdateBalance(owner scriptkey.ScriptKey, tick ordid.LowerTick, balance brc20.Balance) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t1_balances (owner, tick, overall, transferable) VALUES ($1,$2,$3,$4)
		ON CONFLICT (owner, tick) DO UPDATE SET overall=EXCLUDED.overall, transferable=EXCLUDED.transferable`,
		string(owner), string(tick), bigText(balance.OverallBalance), bigText(balance.TransferableBalance),
	)
	if err != nil {
		return fmt.Errorf("store: update t1 balance: %w", err)
	}
	return nil
}

func (b *T1Store) InsertTokenInfo(tick ordid.LowerTick, info brc20.TokenInfo) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t1_tokens (tick, tick_display, inscr_txid, inscr_idx, inscr_number, decimals,
			supply, limit_per_mint, minted, deployer, deploy_height, latest_mint_height, deploy_timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (tick) DO NOTHING`,
		string(tick), info.Tick.String(), txidHex(info.InscriptionID.Txid), info.InscriptionID.Index,
		info.InscriptionNumber, int16(info.Decimal), bigText(info.Supply), bigText(info.LimitPerMint),
		bigText(info.Minted), info.DeployerScript, info.DeployHeight, info.LatestMintHeight, info.DeployTimestamp,
	)
	if err != nil {
		return fmt.Errorf("store: insert t1 token info: %w", err)
	}
	return nil
}

func (b *T1Store) UpdateMintTokenInfo(tick ordid.LowerTick, minted *big.Int, mintedHeight int32) error {
	_, err := b.tx.Exec(b.ctx, `
		UPDATE t1_tokens SET minted=$1, latest_mint_height=$2 WHERE tick=$3`,
		bigText(minted), mintedHeight, string(tick),
	)
	if err != nil {
		return fmt.Errorf("store: update t1 mint info: %w", err)
	}
	return nil
}

func (b *T1Store) SaveTransactionReceipts(txid chainhash.Hash, receipts []brc20.Receipt) error {
	if _, err := b.tx.Exec(b.ctx, `DELETE FROM t1_receipts WHERE txid=$1`, txidHex(txid)); err != nil {
		return fmt.Errorf("store: clear t1 receipts: %w", err)
	}
	for _, r := range receipts {
		if err := b.AddTransactionReceipt(txid, r); err != nil {
			return err
		}
	}
	return nil
}

func (b *T1Store) AddTransactionReceipt(txid chainhash.Hash, receipt brc20.Receipt) error {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("store: encode t1 receipt: %w", err)
	}
	if _, err := b.tx.Exec(b.ctx, `
		INSERT INTO t1_receipts (txid, payload) VALUES ($1,$2)`, txidHex(txid), payload,
	); err != nil {
		return fmt.Errorf("store: add t1 receipt: %w", err)
	}
	return nil
}

func (b *T1Store) InsertTransferable(owner scriptkey.ScriptKey, tick ordid.LowerTick, log brc20.TransferableLog) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t1_transferable (txid, idx, owner, tick, amount) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (txid, idx) DO UPDATE
		SET owner=EXCLUDED.owner, tick=EXCLUDED.tick, amount=EXCLUDED.amount`,
		txidHex(log.InscriptionID.Txid), log.InscriptionID.Index, string(owner), string(tick), bigText(log.Amount),
	)
	if err != nil {
		return fmt.Errorf("store: insert t1 transferable: %w", err)
	}
	return nil
}

func (b *T1Store) RemoveTransferable(owner scriptkey.ScriptKey, tick ordid.LowerTick, id tracker.InscriptionID) error {
	_, err := b.tx.Exec(b.ctx, `DELETE FROM t1_transferable WHERE txid=$1 AND idx=$2`, txidHex(id.Txid), id.Index)
	if err != nil {
		return fmt.Errorf("store: remove t1 transferable: %w", err)
	}
	return nil
}

func (b *T1Store) InsertInscribeTransferInscription(id tracker.InscriptionID, info brc20.InscribeTransferInfo) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO t1_inscribe_transfer (txid, idx, tick, amount) VALUES ($1,$2,$3,$4)
		ON CONFLICT (txid, idx) DO UPDATE SET tick=EXCLUDED.tick, amount=EXCLUDED.amount`,
		txidHex(id.Txid), id.Index, string(info.Tick), bigText(info.Amount),
	)
	if err != nil {
		return fmt.Errorf("store: insert t1 inscribe-transfer info: %w", err)
	}
	return nil
}

func (b *T1Store) RemoveInscribeTransferInscription(id tracker.InscriptionID) error {
	_, err := b.tx.Exec(b.ctx, `DELETE FROM t1_inscribe_transfer WHERE txid=$1 AND idx=$2`, txidHex(id.Txid), id.Index)
	if err != nil {
		return fmt.Errorf("store: remove t1 inscribe-transfer info: %w", err)
	}
	return nil
}
