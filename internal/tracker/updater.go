package tracker

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/okx-clone/brc20s-indexer/internal/opcodec"
)

// ContentExtractor recovers an inscription's raw content bytes (if any)
// from the reveal transaction's witness envelope. Parsing the taproot
// script-path envelope itself is the embedded ordinals index's own
// concern (spec.md §1's "embedded key-value store engine" non-goal);
// the tracker only needs the resulting bytes, so that parsing is a
// narrow injected collaborator rather than reimplemented here.
type ContentExtractor interface {
	// ExtractContent returns the content carved by the reveal input at
	// the given index, or ok=false if that input carves no inscription.
	ExtractContent(tx *wire.MsgTx, inputIndex uint32) (content []byte, ok bool)
}

// LostOutpoint is the virtual destination satoshis are recorded against
// when they fall off the end of a coinbase transaction's outputs.
var LostOutpoint = wire.OutPoint{Hash: chainhash.Hash{}, Index: 0xffffffff}

// Updater carries the per-block mutable state threaded across every
// transaction in the block: the carried-forward flotsam queue, the
// lost-sats and fee-reward counters, and the shared caches. One Updater
// serves exactly one block; the indexer constructs a fresh one per
// block via NewUpdater.
type Updater struct {
	Store     Store
	Fetcher   TxFetcher
	SatRanges SatRangeResolver
	Content   ContentExtractor

	// ValueReceiver is the blocking fallback value source (spec.md §5):
	// consulted only after the in-memory and persistent value caches
	// both miss.
	ValueReceiver <-chan OutpointValue

	Height          int32
	CoinbaseSubsidy uint64
	CoinbaseFirstSat uint64 // first sat of this block's subsidy range

	valueCache map[wire.OutPoint]int64
	txCache    map[chainhash.Hash]*wire.MsgTx

	nextNumber   int64
	lostSats     uint64
	reward       uint64
	flotsamCarry []Flotsam
}

// NewUpdater constructs the per-block tracker state. startingNumber is
// 1 + the maximum inscription number persisted so far.
func NewUpdater(store Store, fetcher TxFetcher, ranges SatRangeResolver, content ContentExtractor,
	valueReceiver <-chan OutpointValue, height int32, coinbaseSubsidy, coinbaseFirstSat uint64, startingNumber int64) *Updater {
	return &Updater{
		Store:            store,
		Fetcher:          fetcher,
		SatRanges:        ranges,
		Content:          content,
		ValueReceiver:    valueReceiver,
		Height:           height,
		CoinbaseSubsidy:  coinbaseSubsidy,
		CoinbaseFirstSat: coinbaseFirstSat,
		valueCache:       make(map[wire.OutPoint]int64),
		txCache:          make(map[chainhash.Hash]*wire.MsgTx),
		nextNumber:       startingNumber,
	}
}

type inputRange struct {
	start, end uint64
	firstSat   uint64
	ok         bool
}

func satAtOffset(ranges []inputRange, offset uint64) (uint64, bool) {
	for _, r := range ranges {
		if offset >= r.start && offset < r.end {
			if !r.ok {
				return 0, false
			}
			return r.firstSat + (offset - r.start), true
		}
	}
	return 0, false
}

// resolveValue looks up a spent outpoint's value through the three-tier
// fallback chain: in-memory cache, persistent outpoint->value table
// (consumed on hit), and finally the blocking channel.
func (u *Updater) resolveValue(op wire.OutPoint) (int64, error) {
	if v, ok := u.valueCache[op]; ok {
		delete(u.valueCache, op)
		return v, nil
	}
	if v, ok, err := u.Store.TakeOutpointValue(op); err != nil {
		return 0, fmt.Errorf("tracker: outpoint value lookup: %w", err)
	} else if ok {
		return v, nil
	}
	for ov := range u.ValueReceiver {
		u.valueCache[ov.Outpoint] = ov.Value
		if ov.Outpoint == op {
			delete(u.valueCache, op)
			return ov.Value, nil
		}
	}
	return 0, fmt.Errorf("tracker: value channel closed before resolving %s", op.String())
}

func (u *Updater) fetchTx(txid chainhash.Hash) (*wire.MsgTx, error) {
	if tx, ok := u.txCache[txid]; ok {
		return tx, nil
	}
	tx, err := u.Fetcher.FetchTransaction(txid)
	if err != nil {
		return nil, fmt.Errorf("tracker: fetch transaction %s: %w", txid.String(), err)
	}
	u.txCache[txid] = tx
	return tx, nil
}

// resolveInputScript fetches the output script an input spends, the
// same tx lookup used for the birth-satpoint Transfer-candidate case,
// so every Inscribe-kind candidate can carry a real FromScript too.
func (u *Updater) resolveInputScript(op wire.OutPoint) ([]byte, error) {
	spentTx, err := u.fetchTx(op.Hash)
	if err != nil {
		return nil, err
	}
	if int(op.Index) >= len(spentTx.TxOut) {
		return nil, fmt.Errorf("tracker: previous outpoint %s references output %d beyond tx", op.Hash.String(), op.Index)
	}
	return spentTx.TxOut[op.Index].PkScript, nil
}

func isBirthSatpoint(sp SatPoint, id InscriptionID) bool {
	return sp.Offset == 0 && sp.Outpoint.Hash == id.Txid && sp.Outpoint.Index == id.Index
}

// IndexTransactionInscriptions runs the per-transaction flotsam
// propagation algorithm and returns the moves settled this transaction
// plus any protocol-payload candidates for the resolver. Callers invoke
// this once per transaction: the block's non-coinbase transactions in
// block order, then the coinbase last (isCoinbase=true), so it absorbs
// the flotsam they carried forward as fee reward.
func (u *Updater) IndexTransactionInscriptions(tx *wire.MsgTx, txid chainhash.Hash, isCoinbase bool) ([]Move, []Candidate, error) {
	var flotsam []Flotsam
	var candidates []Candidate
	var ranges []inputRange

	var inputValue uint64
	if isCoinbase {
		ranges = append(ranges, inputRange{start: 0, end: u.CoinbaseSubsidy, firstSat: u.CoinbaseFirstSat, ok: true})
		inputValue = u.CoinbaseSubsidy
	} else {
		for _, in := range tx.TxIn {
			op := in.PreviousOutPoint
			entries, err := u.Store.InscriptionsAtOutpoint(op)
			if err != nil {
				return nil, nil, err
			}
			for _, e := range entries {
				offset := inputValue + e.Satpoint.Offset
				flotsam = append(flotsam, Flotsam{
					InscriptionID: e.ID,
					Offset:        offset,
					Origin:        OriginOld,
					OldSatpoint:   e.Satpoint,
				})
				if isBirthSatpoint(e.Satpoint, e.ID) {
					birthTx, err := u.fetchTx(e.ID.Txid)
					if err != nil {
						return nil, nil, err
					}
					if content, ok := u.Content.ExtractContent(birthTx, e.ID.Index); ok {
						if int(e.ID.Index) < len(birthTx.TxOut) {
							candidates = append(candidates, Candidate{
								Kind:          CandidateTransfer,
								InscriptionID: e.ID,
								Offset:        offset,
								Payload:       content,
								FromScript:    birthTx.TxOut[e.ID.Index].PkScript,
							})
						}
					}
				}
			}

			value, firstSat, satOK, err := u.spentOutputValueAndSat(op)
			if err != nil {
				return nil, nil, err
			}
			ranges = append(ranges, inputRange{start: inputValue, end: inputValue + value, firstSat: firstSat, ok: satOK})
			inputValue += value
		}
	}

	var outputValue uint64
	for _, out := range tx.TxOut {
		outputValue += uint64(out.Value)
	}

	hasFlotsamAtZero := false
	for _, f := range flotsam {
		if f.Offset == 0 {
			hasFlotsamAtZero = true
			break
		}
	}

	if !isCoinbase && !hasFlotsamAtZero {
		if content, ok := u.Content.ExtractContent(tx, 0); ok {
			fee := inputValue - outputValue
			id := InscriptionID{Txid: txid, Index: 0}
			flotsam = append(flotsam, Flotsam{
				InscriptionID: id,
				Offset:        0,
				Origin:        OriginNew,
				Fee:           fee,
			})
			if _, _, err := opcodec.Parse(content); err == nil {
				fromScript, err := u.resolveInputScript(tx.TxIn[0].PreviousOutPoint)
				if err != nil {
					return nil, nil, err
				}
				candidates = append(candidates, Candidate{
					Kind:          CandidateInscribe,
					InscriptionID: id,
					Offset:        0,
					Payload:       content,
					FromScript:    fromScript,
				})
			}
		}
	}

	if isCoinbase {
		flotsam = append(u.flotsamCarry, flotsam...)
		u.flotsamCarry = nil
	}

	sort.SliceStable(flotsam, func(i, j int) bool { return flotsam[i].Offset < flotsam[j].Offset })
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Offset < candidates[j].Offset })

	var moves []Move
	var carried []Flotsam

	var runningOutput uint64
	idx := 0
	for voutIdx, out := range tx.TxOut {
		end := runningOutput + uint64(out.Value)
		op := wire.OutPoint{Hash: txid, Index: uint32(voutIdx)}
		if err := u.Store.CacheOutpointValue(op, out.Value); err != nil {
			return nil, nil, err
		}
		for idx < len(flotsam) && flotsam[idx].Offset < end {
			f := flotsam[idx]
			newSP := SatPoint{Outpoint: op, Offset: f.Offset - runningOutput}
			if err := u.settle(f, newSP, ranges); err != nil {
				return nil, nil, err
			}
			mv := Move{InscriptionID: f.InscriptionID, NewSatpoint: &newSP}
			if f.Origin == OriginOld {
				osp := f.OldSatpoint
				mv.OldSatpoint = &osp
			}
			moves = append(moves, mv)
			idx++
		}
		runningOutput = end
	}

	if isCoinbase {
		lostAmount := uint64(0)
		if inputValue > outputValue {
			lostAmount = inputValue - outputValue
		}
		for ; idx < len(flotsam); idx++ {
			f := flotsam[idx]
			newSP := SatPoint{Outpoint: LostOutpoint, Offset: u.lostSats + (f.Offset - outputValue)}
			if err := u.settle(f, newSP, ranges); err != nil {
				return nil, nil, err
			}
			mv := Move{InscriptionID: f.InscriptionID, NewSatpoint: &newSP}
			if f.Origin == OriginOld {
				osp := f.OldSatpoint
				mv.OldSatpoint = &osp
			}
			moves = append(moves, mv)
		}
		u.lostSats += lostAmount
	} else {
		feeAmount := uint64(0)
		if inputValue > outputValue {
			feeAmount = inputValue - outputValue
		}
		for ; idx < len(flotsam); idx++ {
			f := flotsam[idx]
			f.Offset = u.reward + (f.Offset - outputValue)
			carried = append(carried, f)
		}
		u.reward += feeAmount
	}
	u.flotsamCarry = append(u.flotsamCarry, carried...)

	return moves, candidates, nil
}

// settle persists the final location of a flotsam: a fresh inscription
// gets a number, an entry row, and a sat-number lookup; a moved
// inscription only needs its satpoint index flipped.
func (u *Updater) settle(f Flotsam, newSatpoint SatPoint, ranges []inputRange) error {
	if err := u.Store.SetSatpoint(f.InscriptionID, newSatpoint); err != nil {
		return err
	}
	if f.Origin == OriginOld {
		if err := u.Store.DeleteSatpointIndex(f.OldSatpoint); err != nil {
			return err
		}
		return nil
	}

	number := u.nextNumber
	u.nextNumber++
	sat, _ := satAtOffset(ranges, f.Offset)
	if err := u.Store.PutEntry(f.InscriptionID, InscriptionEntry{
		Fee:    f.Fee,
		Height: u.Height,
		Number: number,
		Sat:    sat,
	}); err != nil {
		return err
	}
	if err := u.Store.PutNumberToID(number, f.InscriptionID); err != nil {
		return err
	}
	if sat != 0 {
		if err := u.Store.PutSatToInscriptionID(sat, f.InscriptionID); err != nil {
			return err
		}
	}
	return nil
}

// spentOutputValueAndSat resolves both the value and first-sat of a
// spent outpoint. Value resolution follows the three-tier fallback;
// first-sat resolution is best-effort via SatRanges and simply yields
// ok=false on a miss (sat numbering degrades gracefully rather than
// blocking the block write, since it is purely informational).
func (u *Updater) spentOutputValueAndSat(op wire.OutPoint) (value int64, firstSat uint64, satOK bool, err error) {
	value, err = u.resolveValue(op)
	if err != nil {
		return 0, 0, false, err
	}
	if u.SatRanges != nil {
		if fs, ok, serr := u.SatRanges.FirstSatOfOutpoint(op); serr == nil && ok {
			return value, fs, true, nil
		}
	}
	return value, 0, false, nil
}
