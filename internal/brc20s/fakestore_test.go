package brc20s

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

type userKey struct {
	pid   ordid.Pid
	owner scriptkey.ScriptKey
}

type stakeKey struct {
	owner   scriptkey.ScriptKey
	pledged ordid.PledgedTick
}

type balanceKeyT2 struct {
	owner  scriptkey.ScriptKey
	tickID ordid.TickID
}

type fakeStore struct {
	ticks        map[ordid.TickID]TickInfo
	pools        map[ordid.Pid]PoolInfo
	users        map[userKey]UserInfo
	stakes       map[stakeKey]StakeInfo
	balances     map[balanceKeyT2]*BalanceT2
	transferable map[tracker.InscriptionID]TransferableLog
	inscribeInfo map[tracker.InscriptionID]InscribeTransferInfo
	receipts     map[chainhash.Hash][]Receipt
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ticks:        make(map[ordid.TickID]TickInfo),
		pools:        make(map[ordid.Pid]PoolInfo),
		users:        make(map[userKey]UserInfo),
		stakes:       make(map[stakeKey]StakeInfo),
		balances:     make(map[balanceKeyT2]*BalanceT2),
		transferable: make(map[tracker.InscriptionID]TransferableLog),
		inscribeInfo: make(map[tracker.InscriptionID]InscribeTransferInfo),
		receipts:     make(map[chainhash.Hash][]Receipt),
	}
}

func (s *fakeStore) TickInfo(tickID ordid.TickID) (TickInfo, bool, error) {
	t, ok := s.ticks[tickID]
	return t, ok, nil
}

func (s *fakeStore) TickInfoByName(name string) (TickInfo, bool, error) {
	for _, t := range s.ticks {
		if t.Name == name {
			return t, true, nil
		}
	}
	return TickInfo{}, false, nil
}

func (s *fakeStore) AllTickInfo() ([]TickInfo, error) {
	var out []TickInfo
	for _, t := range s.ticks {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) PoolInfo(pid ordid.Pid) (PoolInfo, bool, error) {
	p, ok := s.pools[pid]
	return p, ok, nil
}

func (s *fakeStore) PoolsByTick(tickID ordid.TickID) ([]PoolInfo, error) {
	var out []PoolInfo
	for _, p := range s.pools {
		if p.TickID == tickID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) UserInfo(pid ordid.Pid, owner scriptkey.ScriptKey) (UserInfo, bool, error) {
	u, ok := s.users[userKey{pid, owner}]
	return u, ok, nil
}

func (s *fakeStore) StakeInfo(owner scriptkey.ScriptKey, pledged ordid.PledgedTick) (StakeInfo, bool, error) {
	i, ok := s.stakes[stakeKey{owner, pledged}]
	return i, ok, nil
}

func (s *fakeStore) TransactionReceipts(txid chainhash.Hash) ([]Receipt, error) {
	return s.receipts[txid], nil
}

func (s *fakeStore) TransferableByID(owner scriptkey.ScriptKey, id tracker.InscriptionID) (TransferableLog, bool, error) {
	t, ok := s.transferable[id]
	if !ok || t.Owner != owner {
		return TransferableLog{}, false, nil
	}
	return t, true, nil
}

func (s *fakeStore) InscribeTransferInscription(id tracker.InscriptionID) (InscribeTransferInfo, bool, error) {
	info, ok := s.inscribeInfo[id]
	return info, ok, nil
}

func (s *fakeStore) Balance(owner scriptkey.ScriptKey, tickID ordid.TickID) (*BalanceT2, bool, error) {
	b, ok := s.balances[balanceKeyT2{owner, tickID}]
	return b, ok, nil
}

func (s *fakeStore) InsertTickInfo(tickID ordid.TickID, info TickInfo) error {
	s.ticks[tickID] = info
	return nil
}

func (s *fakeStore) InsertPoolInfo(pid ordid.Pid, info PoolInfo) error {
	s.pools[pid] = info
	return nil
}

func (s *fakeStore) UpdatePoolInfo(pid ordid.Pid, info PoolInfo) error {
	s.pools[pid] = info
	return nil
}

func (s *fakeStore) UpdateUserInfo(pid ordid.Pid, owner scriptkey.ScriptKey, info UserInfo) error {
	s.users[userKey{pid, owner}] = info
	return nil
}

func (s *fakeStore) UpdateStakeInfo(owner scriptkey.ScriptKey, pledged ordid.PledgedTick, info StakeInfo) error {
	s.stakes[stakeKey{owner, pledged}] = info
	return nil
}

func (s *fakeStore) SaveTransactionReceipts(txid chainhash.Hash, receipts []Receipt) error {
	s.receipts[txid] = receipts
	return nil
}

func (s *fakeStore) AddTransactionReceipt(txid chainhash.Hash, receipt Receipt) error {
	s.receipts[txid] = append(s.receipts[txid], receipt)
	return nil
}

func (s *fakeStore) UpdateBalance(owner scriptkey.ScriptKey, tickID ordid.TickID, balance *BalanceT2) error {
	s.balances[balanceKeyT2{owner, tickID}] = balance
	return nil
}

func (s *fakeStore) InsertTransferable(log TransferableLog) error {
	s.transferable[log.InscriptionID] = log
	return nil
}

func (s *fakeStore) RemoveTransferable(owner scriptkey.ScriptKey, id tracker.InscriptionID) error {
	delete(s.transferable, id)
	return nil
}

func (s *fakeStore) InsertInscribeTransferInscription(id tracker.InscriptionID, info InscribeTransferInfo) error {
	s.inscribeInfo[id] = info
	return nil
}

func (s *fakeStore) RemoveInscribeTransferInscription(id tracker.InscriptionID) error {
	delete(s.inscribeInfo, id)
	return nil
}

// fakeDecimals resolves every pledged asset to 0 decimals, matching the
// whole-number amounts the tests use.
type fakeDecimals struct{}

func (fakeDecimals) Decimals(p ordid.PledgedTick) (uint8, error) {
	return 0, nil
}
