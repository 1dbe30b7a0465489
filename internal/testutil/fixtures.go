// Package testutil generates deterministic-looking fixture identifiers
// for tests: fake txids and outpoints that look like real chain data
// without the test author hand-picking byte patterns. Never used on a
// path the protocol executors touch — execution must stay fully
// deterministic, so randomness is confined to test setup.
package testutil

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
)

// NewTxid returns a fresh, distinct transaction hash suitable for test
// fixtures that only need identity, not a real chain history.
func NewTxid() chainhash.Hash {
	var h chainhash.Hash
	a, b := uuid.New(), uuid.New()
	copy(h[:16], a[:])
	copy(h[16:], b[:])
	return h
}

// NewOutPoint returns a fresh outpoint at the given output index on a
// fresh txid.
func NewOutPoint(index uint32) wire.OutPoint {
	return wire.OutPoint{Hash: NewTxid(), Index: index}
}
