package callmgr

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/okx-clone/brc20s-indexer/internal/brc20"
	"github.com/okx-clone/brc20s-indexer/internal/brc20s"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

type t1BalanceKey struct {
	owner scriptkey.ScriptKey
	tick  ordid.LowerTick
}

type fakeT1Store struct {
	tokens        map[ordid.LowerTick]brc20.TokenInfo
	balances      map[t1BalanceKey]brc20.Balance
	transferable  map[tracker.InscriptionID]brc20.TransferableLog
	inscribeInfo  map[tracker.InscriptionID]brc20.InscribeTransferInfo
	receipts      map[chainhash.Hash][]brc20.Receipt
}

func newFakeT1Store() *fakeT1Store {
	return &fakeT1Store{
		tokens:       make(map[ordid.LowerTick]brc20.TokenInfo),
		balances:     make(map[t1BalanceKey]brc20.Balance),
		transferable: make(map[tracker.InscriptionID]brc20.TransferableLog),
		inscribeInfo: make(map[tracker.InscriptionID]brc20.InscribeTransferInfo),
		receipts:     make(map[chainhash.Hash][]brc20.Receipt),
	}
}

func (s *fakeT1Store) Balances(owner scriptkey.ScriptKey) (map[ordid.LowerTick]brc20.Balance, error) {
	out := make(map[ordid.LowerTick]brc20.Balance)
	for k, v := range s.balances {
		if k.owner == owner {
			out[k.tick] = v
		}
	}
	return out, nil
}

func (s *fakeT1Store) Balance(owner scriptkey.ScriptKey, tick ordid.LowerTick) (brc20.Balance, bool, error) {
	b, ok := s.balances[t1BalanceKey{owner, tick}]
	return b, ok, nil
}

func (s *fakeT1Store) TokenInfo(tick ordid.LowerTick) (brc20.TokenInfo, bool, error) {
	t, ok := s.tokens[tick]
	return t, ok, nil
}

func (s *fakeT1Store) AllTokenInfo() ([]brc20.TokenInfo, error) {
	var out []brc20.TokenInfo
	for _, t := range s.tokens {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeT1Store) TransactionReceipts(txid chainhash.Hash) ([]brc20.Receipt, error) {
	return s.receipts[txid], nil
}

func (s *fakeT1Store) Transferable(owner scriptkey.ScriptKey) ([]brc20.TransferableLog, error) {
	var out []brc20.TransferableLog
	for _, t := range s.transferable {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeT1Store) TransferableByTick(owner scriptkey.ScriptKey, tick ordid.LowerTick) ([]brc20.TransferableLog, error) {
	var out []brc20.TransferableLog
	for _, t := range s.transferable {
		if t.Owner == owner && t.Tick == tick {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeT1Store) TransferableByID(owner scriptkey.ScriptKey, id tracker.InscriptionID) (brc20.TransferableLog, bool, error) {
	t, ok := s.transferable[id]
	if !ok || t.Owner != owner {
		return brc20.TransferableLog{}, false, nil
	}
	return t, true, nil
}

func (s *fakeT1Store) InscribeTransferInscription(id tracker.InscriptionID) (brc20.InscribeTransferInfo, bool, error) {
	info, ok := s.inscribeInfo[id]
	return info, ok, nil
}

func (s *fakeT1Store) UpdateBalance(owner scriptkey.ScriptKey, tick ordid.LowerTick, balance brc20.Balance) error {
	s.balances[t1BalanceKey{owner, tick}] = balance
	return nil
}

func (s *fakeT1Store) InsertTokenInfo(tick ordid.LowerTick, info brc20.TokenInfo) error {
	s.tokens[tick] = info
	return nil
}

func (s *fakeT1Store) UpdateMintTokenInfo(tick ordid.LowerTick, minted *big.Int, mintedHeight int32) error {
	info := s.tokens[tick]
	info.Minted = minted
	info.LatestMintHeight = mintedHeight
	s.tokens[tick] = info
	return nil
}

func (s *fakeT1Store) SaveTransactionReceipts(txid chainhash.Hash, receipts []brc20.Receipt) error {
	s.receipts[txid] = receipts
	return nil
}

func (s *fakeT1Store) AddTransactionReceipt(txid chainhash.Hash, receipt brc20.Receipt) error {
	s.receipts[txid] = append(s.receipts[txid], receipt)
	return nil
}

func (s *fakeT1Store) InsertTransferable(owner scriptkey.ScriptKey, tick ordid.LowerTick, log brc20.TransferableLog) error {
	s.transferable[log.InscriptionID] = log
	return nil
}

func (s *fakeT1Store) RemoveTransferable(owner scriptkey.ScriptKey, tick ordid.LowerTick, id tracker.InscriptionID) error {
	delete(s.transferable, id)
	return nil
}

func (s *fakeT1Store) InsertInscribeTransferInscription(id tracker.InscriptionID, info brc20.InscribeTransferInfo) error {
	s.inscribeInfo[id] = info
	return nil
}

func (s *fakeT1Store) RemoveInscribeTransferInscription(id tracker.InscriptionID) error {
	delete(s.inscribeInfo, id)
	return nil
}

type t2UserKey struct {
	pid   ordid.Pid
	owner scriptkey.ScriptKey
}

type t2StakeKey struct {
	owner   scriptkey.ScriptKey
	pledged ordid.PledgedTick
}

type t2BalanceKey struct {
	owner  scriptkey.ScriptKey
	tickID ordid.TickID
}

type fakeT2Store struct {
	ticks        map[ordid.TickID]brc20s.TickInfo
	pools        map[ordid.Pid]brc20s.PoolInfo
	users        map[t2UserKey]brc20s.UserInfo
	stakes       map[t2StakeKey]brc20s.StakeInfo
	balances     map[t2BalanceKey]*brc20s.BalanceT2
	transferable map[tracker.InscriptionID]brc20s.TransferableLog
	inscribeInfo map[tracker.InscriptionID]brc20s.InscribeTransferInfo
	receipts     map[chainhash.Hash][]brc20s.Receipt
}

func newFakeT2Store() *fakeT2Store {
	return &fakeT2Store{
		ticks:        make(map[ordid.TickID]brc20s.TickInfo),
		pools:        make(map[ordid.Pid]brc20s.PoolInfo),
		users:        make(map[t2UserKey]brc20s.UserInfo),
		stakes:       make(map[t2StakeKey]brc20s.StakeInfo),
		balances:     make(map[t2BalanceKey]*brc20s.BalanceT2),
		transferable: make(map[tracker.InscriptionID]brc20s.TransferableLog),
		inscribeInfo: make(map[tracker.InscriptionID]brc20s.InscribeTransferInfo),
		receipts:     make(map[chainhash.Hash][]brc20s.Receipt),
	}
}

func (s *fakeT2Store) TickInfo(tickID ordid.TickID) (brc20s.TickInfo, bool, error) {
	t, ok := s.ticks[tickID]
	return t, ok, nil
}

func (s *fakeT2Store) TickInfoByName(name string) (brc20s.TickInfo, bool, error) {
	for _, t := range s.ticks {
		if t.Name == name {
			return t, true, nil
		}
	}
	return brc20s.TickInfo{}, false, nil
}

func (s *fakeT2Store) AllTickInfo() ([]brc20s.TickInfo, error) {
	var out []brc20s.TickInfo
	for _, t := range s.ticks {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeT2Store) PoolInfo(pid ordid.Pid) (brc20s.PoolInfo, bool, error) {
	p, ok := s.pools[pid]
	return p, ok, nil
}

func (s *fakeT2Store) PoolsByTick(tickID ordid.TickID) ([]brc20s.PoolInfo, error) {
	var out []brc20s.PoolInfo
	for _, p := range s.pools {
		if p.TickID == tickID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeT2Store) UserInfo(pid ordid.Pid, owner scriptkey.ScriptKey) (brc20s.UserInfo, bool, error) {
	u, ok := s.users[t2UserKey{pid, owner}]
	return u, ok, nil
}

func (s *fakeT2Store) StakeInfo(owner scriptkey.ScriptKey, pledged ordid.PledgedTick) (brc20s.StakeInfo, bool, error) {
	i, ok := s.stakes[t2StakeKey{owner, pledged}]
	return i, ok, nil
}

func (s *fakeT2Store) TransactionReceipts(txid chainhash.Hash) ([]brc20s.Receipt, error) {
	return s.receipts[txid], nil
}

func (s *fakeT2Store) TransferableByID(owner scriptkey.ScriptKey, id tracker.InscriptionID) (brc20s.TransferableLog, bool, error) {
	t, ok := s.transferable[id]
	if !ok || t.Owner != owner {
		return brc20s.TransferableLog{}, false, nil
	}
	return t, true, nil
}

func (s *fakeT2Store) InscribeTransferInscription(id tracker.InscriptionID) (brc20s.InscribeTransferInfo, bool, error) {
	info, ok := s.inscribeInfo[id]
	return info, ok, nil
}

func (s *fakeT2Store) Balance(owner scriptkey.ScriptKey, tickID ordid.TickID) (*brc20s.BalanceT2, bool, error) {
	b, ok := s.balances[t2BalanceKey{owner, tickID}]
	return b, ok, nil
}

func (s *fakeT2Store) InsertTickInfo(tickID ordid.TickID, info brc20s.TickInfo) error {
	s.ticks[tickID] = info
	return nil
}

func (s *fakeT2Store) InsertPoolInfo(pid ordid.Pid, info brc20s.PoolInfo) error {
	s.pools[pid] = info
	return nil
}

func (s *fakeT2Store) UpdatePoolInfo(pid ordid.Pid, info brc20s.PoolInfo) error {
	s.pools[pid] = info
	return nil
}

func (s *fakeT2Store) UpdateUserInfo(pid ordid.Pid, owner scriptkey.ScriptKey, info brc20s.UserInfo) error {
	s.users[t2UserKey{pid, owner}] = info
	return nil
}

func (s *fakeT2Store) UpdateStakeInfo(owner scriptkey.ScriptKey, pledged ordid.PledgedTick, info brc20s.StakeInfo) error {
	s.stakes[t2StakeKey{owner, pledged}] = info
	return nil
}

func (s *fakeT2Store) SaveTransactionReceipts(txid chainhash.Hash, receipts []brc20s.Receipt) error {
	s.receipts[txid] = receipts
	return nil
}

func (s *fakeT2Store) AddTransactionReceipt(txid chainhash.Hash, receipt brc20s.Receipt) error {
	s.receipts[txid] = append(s.receipts[txid], receipt)
	return nil
}

func (s *fakeT2Store) UpdateBalance(owner scriptkey.ScriptKey, tickID ordid.TickID, balance *brc20s.BalanceT2) error {
	s.balances[t2BalanceKey{owner, tickID}] = balance
	return nil
}

func (s *fakeT2Store) InsertTransferable(log brc20s.TransferableLog) error {
	s.transferable[log.InscriptionID] = log
	return nil
}

func (s *fakeT2Store) RemoveTransferable(owner scriptkey.ScriptKey, id tracker.InscriptionID) error {
	delete(s.transferable, id)
	return nil
}

func (s *fakeT2Store) InsertInscribeTransferInscription(id tracker.InscriptionID, info brc20s.InscribeTransferInfo) error {
	s.inscribeInfo[id] = info
	return nil
}

func (s *fakeT2Store) RemoveInscribeTransferInscription(id tracker.InscriptionID) error {
	delete(s.inscribeInfo, id)
	return nil
}
