package store

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/jackc/pgx/v5"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

func txidHex(h chainhash.Hash) string { return h.String() }

func parseTxid(s string) (chainhash.Hash, error) {
	return chainhash.NewHashFromStr(s)
}

func (b *OrdStore) InscriptionIDBySatpoint(sp tracker.SatPoint) (tracker.InscriptionID, bool, error) {
	var txidStr string
	var idx int32
	err := b.tx.QueryRow(b.ctx, `
		SELECT txid, idx FROM satpoint_inscriptions
		WHERE sp_txid=$1 AND sp_vout=$2 AND sp_offset=$3`,
		txidHex(sp.Outpoint.Hash), sp.Outpoint.Index, sp.Offset,
	).Scan(&txidStr, &idx)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracker.InscriptionID{}, false, nil
	}
	if err != nil {
		return tracker.InscriptionID{}, false, fmt.Errorf("store: inscription by satpoint: %w", err)
	}
	txid, err := parseTxid(txidStr)
	if err != nil {
		return tracker.InscriptionID{}, false, err
	}
	return tracker.InscriptionID{Txid: txid, Index: uint32(idx)}, true, nil
}

func (b *OrdStore) SatpointByInscriptionID(id tracker.InscriptionID) (tracker.SatPoint, bool, error) {
	var spTxid string
	var vout int32
	var offset int64
	err := b.tx.QueryRow(b.ctx, `
		SELECT sp_txid, sp_vout, sp_offset FROM inscription_satpoints
		WHERE txid=$1 AND idx=$2`, txidHex(id.Txid), id.Index,
	).Scan(&spTxid, &vout, &offset)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracker.SatPoint{}, false, nil
	}
	if err != nil {
		return tracker.SatPoint{}, false, fmt.Errorf("store: satpoint by inscription: %w", err)
	}
	h, err := parseTxid(spTxid)
	if err != nil {
		return tracker.SatPoint{}, false, err
	}
	return tracker.SatPoint{Outpoint: wire.OutPoint{Hash: h, Index: uint32(vout)}, Offset: uint64(offset)}, true, nil
}

func (b *OrdStore) SetSatpoint(id tracker.InscriptionID, sp tracker.SatPoint) error {
	if _, err := b.tx.Exec(b.ctx, `
		INSERT INTO inscription_satpoints (txid, idx, sp_txid, sp_vout, sp_offset)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (txid, idx) DO UPDATE
		SET sp_txid=EXCLUDED.sp_txid, sp_vout=EXCLUDED.sp_vout, sp_offset=EXCLUDED.sp_offset`,
		txidHex(id.Txid), id.Index, txidHex(sp.Outpoint.Hash), sp.Outpoint.Index, sp.Offset,
	); err != nil {
		return fmt.Errorf("store: set satpoint: %w", err)
	}
	if _, err := b.tx.Exec(b.ctx, `
		INSERT INTO satpoint_inscriptions (sp_txid, sp_vout, sp_offset, txid, idx)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (sp_txid, sp_vout, sp_offset) DO UPDATE
		SET txid=EXCLUDED.txid, idx=EXCLUDED.idx`,
		txidHex(sp.Outpoint.Hash), sp.Outpoint.Index, sp.Offset, txidHex(id.Txid), id.Index,
	); err != nil {
		return fmt.Errorf("store: index satpoint: %w", err)
	}
	return nil
}

func (b *OrdStore) DeleteSatpointIndex(sp tracker.SatPoint) error {
	_, err := b.tx.Exec(b.ctx, `
		DELETE FROM satpoint_inscriptions WHERE sp_txid=$1 AND sp_vout=$2 AND sp_offset=$3`,
		txidHex(sp.Outpoint.Hash), sp.Outpoint.Index, sp.Offset,
	)
	if err != nil {
		return fmt.Errorf("store: delete satpoint index: %w", err)
	}
	return nil
}

func (b *OrdStore) InscriptionsAtOutpoint(op wire.OutPoint) ([]tracker.SatpointEntry, error) {
	rows, err := b.tx.Query(b.ctx, `
		SELECT sp_offset, txid, idx FROM satpoint_inscriptions
		WHERE sp_txid=$1 AND sp_vout=$2`, txidHex(op.Hash), op.Index)
	if err != nil {
		return nil, fmt.Errorf("store: inscriptions at outpoint: %w", err)
	}
	defer rows.Close()

	var out []tracker.SatpointEntry
	for rows.Next() {
		var offset int64
		var txidStr string
		var idx int32
		if err := rows.Scan(&offset, &txidStr, &idx); err != nil {
			return nil, err
		}
		txid, err := parseTxid(txidStr)
		if err != nil {
			return nil, err
		}
		out = append(out, tracker.SatpointEntry{
			Satpoint: tracker.SatPoint{Outpoint: op, Offset: uint64(offset)},
			ID:       tracker.InscriptionID{Txid: txid, Index: uint32(idx)},
		})
	}
	return out, rows.Err()
}

func (b *OrdStore) NextInscriptionNumber() (int64, error) {
	var n *int64
	err := b.tx.QueryRow(b.ctx, `SELECT max(number) FROM inscription_entries`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: next inscription number: %w", err)
	}
	if n == nil {
		return 0, nil
	}
	return *n + 1, nil
}

func (b *OrdStore) PutEntry(id tracker.InscriptionID, entry tracker.InscriptionEntry) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO inscription_entries (txid, idx, fee, height, number, sat)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (txid, idx) DO UPDATE
		SET fee=EXCLUDED.fee, height=EXCLUDED.height, number=EXCLUDED.number, sat=EXCLUDED.sat`,
		txidHex(id.Txid), id.Index, int64(entry.Fee), entry.Height, entry.Number, int64(entry.Sat),
	)
	if err != nil {
		return fmt.Errorf("store: put inscription entry: %w", err)
	}
	return nil
}

func (b *OrdStore) PutNumberToID(number int64, id tracker.InscriptionID) error {
	// denormalized onto inscription_entries; no separate table needed
	// since PutEntry always precedes this call for the same id.
	return nil
}

func (b *OrdStore) PutSatToInscriptionID(sat uint64, id tracker.InscriptionID) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO sat_to_inscription (sat, txid, idx) VALUES ($1,$2,$3)
		ON CONFLICT (sat) DO UPDATE SET txid=EXCLUDED.txid, idx=EXCLUDED.idx`,
		int64(sat), txidHex(id.Txid), id.Index,
	)
	if err != nil {
		return fmt.Errorf("store: put sat to inscription: %w", err)
	}
	return nil
}

func (b *OrdStore) InscriptionNumber(id tracker.InscriptionID) (int64, bool, error) {
	var n int64
	err := b.tx.QueryRow(b.ctx, `
		SELECT number FROM inscription_entries WHERE txid=$1 AND idx=$2`,
		txidHex(id.Txid), id.Index,
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: inscription number: %w", err)
	}
	return n, true, nil
}

func (b *OrdStore) CacheOutpointValue(op wire.OutPoint, value int64) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO outpoint_values (txid, vout, value) VALUES ($1,$2,$3)
		ON CONFLICT (txid, vout) DO UPDATE SET value=EXCLUDED.value`,
		txidHex(op.Hash), op.Index, value,
	)
	if err != nil {
		return fmt.Errorf("store: cache outpoint value: %w", err)
	}
	return nil
}

func (b *OrdStore) TakeOutpointValue(op wire.OutPoint) (int64, bool, error) {
	var value int64
	err := b.tx.QueryRow(b.ctx, `
		DELETE FROM outpoint_values WHERE txid=$1 AND vout=$2 RETURNING value`,
		txidHex(op.Hash), op.Index,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: take outpoint value: %w", err)
	}
	return value, true, nil
}
