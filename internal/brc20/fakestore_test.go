package brc20

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

type balanceKey struct {
	owner scriptkey.ScriptKey
	tick  ordid.LowerTick
}

type fakeStore struct {
	tokens       map[ordid.LowerTick]TokenInfo
	balances     map[balanceKey]Balance
	transferable map[tracker.InscriptionID]TransferableLog
	inscribeInfo map[tracker.InscriptionID]InscribeTransferInfo
	receipts     map[chainhash.Hash][]Receipt
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tokens:       make(map[ordid.LowerTick]TokenInfo),
		balances:     make(map[balanceKey]Balance),
		transferable: make(map[tracker.InscriptionID]TransferableLog),
		inscribeInfo: make(map[tracker.InscriptionID]InscribeTransferInfo),
		receipts:     make(map[chainhash.Hash][]Receipt),
	}
}

func (s *fakeStore) Balances(owner scriptkey.ScriptKey) (map[ordid.LowerTick]Balance, error) {
	out := make(map[ordid.LowerTick]Balance)
	for k, v := range s.balances {
		if k.owner == owner {
			out[k.tick] = v
		}
	}
	return out, nil
}

func (s *fakeStore) Balance(owner scriptkey.ScriptKey, tick ordid.LowerTick) (Balance, bool, error) {
	b, ok := s.balances[balanceKey{owner, tick}]
	return b, ok, nil
}

func (s *fakeStore) TokenInfo(tick ordid.LowerTick) (TokenInfo, bool, error) {
	t, ok := s.tokens[tick]
	return t, ok, nil
}

func (s *fakeStore) AllTokenInfo() ([]TokenInfo, error) {
	var out []TokenInfo
	for _, t := range s.tokens {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) TransactionReceipts(txid chainhash.Hash) ([]Receipt, error) {
	return s.receipts[txid], nil
}

func (s *fakeStore) Transferable(owner scriptkey.ScriptKey) ([]TransferableLog, error) {
	var out []TransferableLog
	for _, t := range s.transferable {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) TransferableByTick(owner scriptkey.ScriptKey, tick ordid.LowerTick) ([]TransferableLog, error) {
	var out []TransferableLog
	for _, t := range s.transferable {
		if t.Owner == owner && t.Tick == tick {
			out = append(out, t)
		}
	}
	return out, nil
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

func (s *fakeStore) UpdateBalance(owner scriptkey.ScriptKey, tick ordid.LowerTick, balance Balance) error {
	s.balances[balanceKey{owner, tick}] = balance
	return nil
}

func (s *fakeStore) InsertTokenInfo(tick ordid.LowerTick, info TokenInfo) error {
	s.tokens[tick] = info
	return nil
}

func (s *fakeStore) UpdateMintTokenInfo(tick ordid.LowerTick, minted *big.Int, mintedHeight int32) error {
	t := s.tokens[tick]
	t.Minted = minted
	t.LatestMintHeight = mintedHeight
	s.tokens[tick] = t
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

func (s *fakeStore) InsertTransferable(owner scriptkey.ScriptKey, tick ordid.LowerTick, log TransferableLog) error {
	s.transferable[log.InscriptionID] = log
	return nil
}

func (s *fakeStore) RemoveTransferable(owner scriptkey.ScriptKey, tick ordid.LowerTick, id tracker.InscriptionID) error {
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
