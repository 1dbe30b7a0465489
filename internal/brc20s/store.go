package brc20s

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

// ReadStore is the read-only half of the T2 persisted tables.
type ReadStore interface {
	TickInfo(tickID ordid.TickID) (TickInfo, bool, error)
	TickInfoByName(name string) (TickInfo, bool, error)
	AllTickInfo() ([]TickInfo, error)

	PoolInfo(pid ordid.Pid) (PoolInfo, bool, error)
	PoolsByTick(tickID ordid.TickID) ([]PoolInfo, error)

	UserInfo(pid ordid.Pid, owner scriptkey.ScriptKey) (UserInfo, bool, error)

	StakeInfo(owner scriptkey.ScriptKey, pledged ordid.PledgedTick) (StakeInfo, bool, error)

	TransactionReceipts(txid chainhash.Hash) ([]Receipt, error)

	TransferableByID(owner scriptkey.ScriptKey, id tracker.InscriptionID) (TransferableLog, bool, error)
	InscribeTransferInscription(id tracker.InscriptionID) (InscribeTransferInfo, bool, error)

	Balance(owner scriptkey.ScriptKey, tickID ordid.TickID) (*BalanceT2, bool, error)
}

// ReadWriteStore adds the mutating half.
type ReadWriteStore interface {
	ReadStore

	InsertTickInfo(tickID ordid.TickID, info TickInfo) error
	InsertPoolInfo(pid ordid.Pid, info PoolInfo) error
	UpdatePoolInfo(pid ordid.Pid, info PoolInfo) error

	UpdateUserInfo(pid ordid.Pid, owner scriptkey.ScriptKey, info UserInfo) error

	UpdateStakeInfo(owner scriptkey.ScriptKey, pledged ordid.PledgedTick, info StakeInfo) error

	SaveTransactionReceipts(txid chainhash.Hash, receipts []Receipt) error
	AddTransactionReceipt(txid chainhash.Hash, receipt Receipt) error

	UpdateBalance(owner scriptkey.ScriptKey, tickID ordid.TickID, balance *BalanceT2) error
	InsertTransferable(log TransferableLog) error
	RemoveTransferable(owner scriptkey.ScriptKey, id tracker.InscriptionID) error

	InsertInscribeTransferInscription(id tracker.InscriptionID, info InscribeTransferInfo) error
	RemoveInscribeTransferInscription(id tracker.InscriptionID) error
}
