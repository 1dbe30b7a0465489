package brc20

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

// ReadStore is the read-only half of the T1 persisted tables, split
// from ReadWriteStore the way the reference implementation splits
// DataStoreReadOnly/DataStoreReadWrite.
type ReadStore interface {
	Balances(owner scriptkey.ScriptKey) (map[ordid.LowerTick]Balance, error)
	Balance(owner scriptkey.ScriptKey, tick ordid.LowerTick) (Balance, bool, error)

	TokenInfo(tick ordid.LowerTick) (TokenInfo, bool, error)
	AllTokenInfo() ([]TokenInfo, error)

	TransactionReceipts(txid chainhash.Hash) ([]Receipt, error)

	Transferable(owner scriptkey.ScriptKey) ([]TransferableLog, error)
	TransferableByTick(owner scriptkey.ScriptKey, tick ordid.LowerTick) ([]TransferableLog, error)
	TransferableByID(owner scriptkey.ScriptKey, id tracker.InscriptionID) (TransferableLog, bool, error)

	InscribeTransferInscription(id tracker.InscriptionID) (InscribeTransferInfo, bool, error)
}

// ReadWriteStore adds the mutating half.
type ReadWriteStore interface {
	ReadStore

	UpdateBalance(owner scriptkey.ScriptKey, tick ordid.LowerTick, balance Balance) error
	InsertTokenInfo(tick ordid.LowerTick, info TokenInfo) error
	UpdateMintTokenInfo(tick ordid.LowerTick, minted *big.Int, mintedHeight int32) error

	SaveTransactionReceipts(txid chainhash.Hash, receipts []Receipt) error
	AddTransactionReceipt(txid chainhash.Hash, receipt Receipt) error

	InsertTransferable(owner scriptkey.ScriptKey, tick ordid.LowerTick, log TransferableLog) error
	RemoveTransferable(owner scriptkey.ScriptKey, tick ordid.LowerTick, id tracker.InscriptionID) error

	InsertInscribeTransferInscription(id tracker.InscriptionID, info InscribeTransferInfo) error
	RemoveInscribeTransferInscription(id tracker.InscriptionID) error
}
