package tracker

import (
	"github.com/btcsuite/btcd/wire"
)

// InscriptionEntry is the persisted per-inscription metadata row.
type InscriptionEntry struct {
	Fee       uint64
	Height    int32
	Number    int64
	Sat       uint64
	Timestamp int64
}

// SatpointEntry pairs a currently-held satpoint with the inscription
// sitting on it, the shape returned by a spent-outpoint lookup.
type SatpointEntry struct {
	Satpoint SatPoint
	ID       InscriptionID
}

// Store is the persisted-table collaborator for ordinals bookkeeping:
// satpoint<->inscription_id, number->id, sat->id, and the
// outpoint->value cache. Implemented by internal/store against
// Postgres; a block's worth of calls all ride the same transaction.
type Store interface {
	InscriptionIDBySatpoint(sp SatPoint) (InscriptionID, bool, error)
	SatpointByInscriptionID(id InscriptionID) (SatPoint, bool, error)
	SetSatpoint(id InscriptionID, sp SatPoint) error
	DeleteSatpointIndex(sp SatPoint) error
	// InscriptionsAtOutpoint returns every inscription currently
	// located somewhere on op, keyed by their satpoint offset within it.
	InscriptionsAtOutpoint(op wire.OutPoint) ([]SatpointEntry, error)

	NextInscriptionNumber() (int64, error)
	PutEntry(id InscriptionID, entry InscriptionEntry) error
	PutNumberToID(number int64, id InscriptionID) error
	PutSatToInscriptionID(sat uint64, id InscriptionID) error

	// InscriptionNumber looks up a persisted inscription's sequence
	// number, satisfying resolver.NumberLookup directly: a message
	// settling an inscription carved in an earlier block needs its
	// number from storage, not from the current block's counter.
	InscriptionNumber(id InscriptionID) (int64, bool, error)

	// CacheOutpointValue persists an output's value, consulted on a
	// later transaction that spends it without the in-memory cache
	// having it on hand.
	CacheOutpointValue(op wire.OutPoint, value int64) error
	// TakeOutpointValue looks up and removes a persisted output value;
	// the tracker consumes each entry at most once.
	TakeOutpointValue(op wire.OutPoint) (int64, bool, error)
}

// TxFetcher retrieves a full transaction by txid, used to recover a
// moved inscription's birth transaction when it isn't already cached.
type TxFetcher interface {
	FetchTransaction(txid [32]byte) (*wire.MsgTx, error)
}

// SatRangeResolver supplies the first sat number of a not-yet-spent
// output, letting the tracker derive the absolute sat number under a
// newly carved inscription's offset. The full ordinal sat-range ledger
// (first-sat-of-every-UTXO bookkeeping across the whole chain) is the
// embedded index's own concern — out of scope per spec's "embedded
// key-value store engine" non-goal — so this is modeled as a narrow
// collaborator rather than reimplemented here.
type SatRangeResolver interface {
	FirstSatOfOutpoint(op wire.OutPoint) (uint64, bool, error)
}

// OutpointValue pairs an output with its value, the payload carried on
// the blocking value-receiver channel (spec.md §4.3 step 2, §5).
type OutpointValue struct {
	Outpoint wire.OutPoint
	Value    int64
}
