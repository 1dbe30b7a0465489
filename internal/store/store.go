// Package store is the Postgres-backed persistence layer: one BlockTx
// wraps a single pgx.Tx, and its three views (Ord, T1, T2) implement the
// table interfaces the indexer's collaborators need (tracker.Store,
// brc20.ReadWriteStore, brc20s.ReadWriteStore), so one block's worth of
// writes commits or rolls back atomically.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store owns the connection pool; callers open one BlockTx per block.
type Store struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// InitSchema creates every table this package reads and writes, if they
// don't already exist.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}

// BlockTx is a unit of work scoped to one block: every view onto it
// (Ord, T1, T2) rides the same underlying pgx.Tx, committed or rolled
// back together by the indexer once the block's messages have all
// executed. The three views are distinct Go types, not one type
// implementing all three table interfaces directly, because brc20 and
// brc20s each declare same-named methods (TransferableByID, Balance,
// AddTransactionReceipt, ...) with different result types — Go has no
// overloading, so a single receiver type cannot satisfy both.
type BlockTx struct {
	ctx context.Context
	tx  pgx.Tx
}

// Begin opens a fresh transaction-scoped store for one block.
func (s *Store) Begin(ctx context.Context) (*BlockTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: begin: %w", err)
	}
	return &BlockTx{ctx: ctx, tx: tx}, nil
}

// OrdStore is the tracker.Store view onto a BlockTx.
type OrdStore struct{ *BlockTx }

// T1Store is the brc20.ReadWriteStore view onto a BlockTx.
type T1Store struct{ *BlockTx }

// T2Store is the brc20s.ReadWriteStore view onto a BlockTx.
type T2Store struct{ *BlockTx }

func (b *BlockTx) Ord() *OrdStore { return &OrdStore{b} }
func (b *BlockTx) T1() *T1Store   { return &T1Store{b} }
func (b *BlockTx) T2() *T2Store   { return &T2Store{b} }

func (b *BlockTx) Commit() error {
	if err := b.tx.Commit(b.ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (b *BlockTx) Rollback() error {
	return b.tx.Rollback(b.ctx)
}

// LastIndexedHeight reports the height of the most recently committed
// block, or ok=false before the first block has ever been indexed.
func (s *Store) LastIndexedHeight(ctx context.Context) (int64, bool, error) {
	var h int64
	err := s.pool.QueryRow(ctx, `SELECT last_height FROM indexer_state WHERE id=1`).Scan(&h)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("store: last indexed height: %w", err)
	}
	return h, true, nil
}

// SetLastIndexedHeight records height as the resume point, inside the
// same block transaction whose other writes it commits alongside.
func (b *BlockTx) SetLastIndexedHeight(height int64) error {
	_, err := b.tx.Exec(b.ctx, `
		INSERT INTO indexer_state (id, last_height) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_height=EXCLUDED.last_height`, height)
	if err != nil {
		return fmt.Errorf("store: set last indexed height: %w", err)
	}
	return nil
}

// MaxInscriptionNumber reports the highest persisted inscription
// number, or ok=false on an empty table. The indexer does not call it:
// each block's tracker.NewUpdater is seeded from
// OrdStore.NextInscriptionNumber.
func (s *Store) MaxInscriptionNumber(ctx context.Context) (int64, bool, error) {
	var n *int64
	err := s.pool.QueryRow(ctx, `SELECT max(number) FROM inscription_entries`).Scan(&n)
	if err != nil {
		return 0, false, fmt.Errorf("store: max inscription number: %w", err)
	}
	if n == nil {
		return 0, false, nil
	}
	return *n, true, nil
}
