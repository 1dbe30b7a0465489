package brc20

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/okx-clone/brc20s-indexer/internal/opcodec"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/resolver"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

func inscriptionID(b byte, index uint32) tracker.InscriptionID {
	var h chainhash.Hash
	h[0] = b
	return tracker.InscriptionID{Txid: h, Index: index}
}

func satpoint(b byte, offset uint64) *tracker.SatPoint {
	var h chainhash.Hash
	h[0] = b
	return &tracker.SatPoint{Outpoint: wire.OutPoint{Hash: h, Index: 0}, Offset: offset}
}

func deployMsg(tick string, max, limit, decimal string, to []byte, id tracker.InscriptionID) resolver.ExecutionMessage {
	return resolver.ExecutionMessage{
		Txid:          id.Txid,
		InscriptionID: id,
		NewSatpoint:   satpoint(id.Txid[0], 0),
		ToScript:      to,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Deploy{Tick: tick, Max: max, Limit: limit, Decimal: decimal},
	}
}

func mintMsg(tick, amount string, to []byte, id tracker.InscriptionID) resolver.ExecutionMessage {
	return resolver.ExecutionMessage{
		Txid:          id.Txid,
		InscriptionID: id,
		NewSatpoint:   satpoint(id.Txid[0], 0),
		ToScript:      to,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Mint{Tick: tick, Amount: amount},
	}
}

func inscribeTransferMsg(tick, amount string, to []byte, id tracker.InscriptionID) resolver.ExecutionMessage {
	return resolver.ExecutionMessage{
		Txid:          id.Txid,
		InscriptionID: id,
		NewSatpoint:   satpoint(id.Txid[0], 0),
		ToScript:      to,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Transfer{Tick: tick, Amount: amount},
	}
}

func transferMsg(tick, amount string, from, to []byte, id tracker.InscriptionID, sameTx bool) resolver.ExecutionMessage {
	old := satpoint(id.Txid[0], 0)
	msg := resolver.ExecutionMessage{
		Txid:          id.Txid,
		InscriptionID: id,
		OldSatpoint:   old,
		FromScript:    from,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Transfer{Tick: tick, Amount: amount},
	}
	if sameTx {
		msg.ToScript = to
	}
	return msg
}

var (
	aliceScript = []byte{0x51, 0x01}
	bobScript   = []byte{0x51, 0x02}
)

func TestDeployAndMintWithClippingAndTickMinted(t *testing.T) {
	store := newFakeStore()
	ex := &Executor{Store: store}
	ctx := BlockContext{Height: 100, Timestamp: 1000}

	deployID := inscriptionID(0x01, 0)
	rcpt, err := ex.Execute(ctx, deployMsg("ordi", "100", "60", "0", aliceScript, deployID))
	if err != nil {
		t.Fatalf("deploy: unexpected system error: %v", err)
	}
	if rcpt.Err != nil {
		t.Fatalf("deploy: unexpected protocol error: %v", rcpt.Err)
	}
	if rcpt.Event == nil || rcpt.Event.Kind != EventDeploy {
		t.Fatalf("deploy: expected deploy event, got %+v", rcpt.Event)
	}

	mint1ID := inscriptionID(0x02, 0)
	rcpt, err = ex.Execute(ctx, mintMsg("ordi", "60", aliceScript, mint1ID))
	if err != nil {
		t.Fatalf("mint1: unexpected system error: %v", err)
	}
	if rcpt.Err != nil {
		t.Fatalf("mint1: unexpected protocol error: %v", rcpt.Err)
	}
	if rcpt.Event.Amount.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("mint1: expected amount 60, got %s", rcpt.Event.Amount)
	}

	mint2ID := inscriptionID(0x03, 0)
	rcpt, err = ex.Execute(ctx, mintMsg("ordi", "60", aliceScript, mint2ID))
	if err != nil {
		t.Fatalf("mint2: unexpected system error: %v", err)
	}
	if rcpt.Err != nil {
		t.Fatalf("mint2: unexpected protocol error: %v", rcpt.Err)
	}
	if rcpt.Event.Amount.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("mint2: expected clipped amount 40, got %s", rcpt.Event.Amount)
	}
	if rcpt.Event.Msg == "" {
		t.Fatalf("mint2: expected clipping advisory message")
	}

	owner := scriptkey.FromPkScript(aliceScript)
	bal, ok, err := store.Balance(owner, mustLowerTick(t, "ordi"))
	if err != nil || !ok {
		t.Fatalf("balance lookup failed: ok=%v err=%v", ok, err)
	}
	if bal.OverallBalance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected overall balance 100, got %s", bal.OverallBalance)
	}

	mint3ID := inscriptionID(0x04, 0)
	rcpt, err = ex.Execute(ctx, mintMsg("ordi", "1", aliceScript, mint3ID))
	if err != nil {
		t.Fatalf("mint3: unexpected system error: %v", err)
	}
	if rcpt.Err == nil || rcpt.Err.Code != TickMinted {
		t.Fatalf("mint3: expected TickMinted, got %+v", rcpt.Err)
	}
}

func TestInscribeTransferThenTransferMovesBalance(t *testing.T) {
	store := newFakeStore()
	ex := &Executor{Store: store}
	ctx := BlockContext{Height: 1, Timestamp: 1}

	deployID := inscriptionID(0x10, 0)
	if _, err := ex.Execute(ctx, deployMsg("test", "1000", "1000", "0", aliceScript, deployID)); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	mintID := inscriptionID(0x11, 0)
	rcpt, err := ex.Execute(ctx, mintMsg("test", "500", aliceScript, mintID))
	if err != nil || rcpt.Err != nil {
		t.Fatalf("mint: err=%v rcpt.Err=%v", err, rcpt.Err)
	}

	inscribeID := inscriptionID(0x12, 0)
	rcpt, err = ex.Execute(ctx, inscribeTransferMsg("test", "200", aliceScript, inscribeID))
	if err != nil {
		t.Fatalf("inscribe-transfer: system error: %v", err)
	}
	if rcpt.Err != nil {
		t.Fatalf("inscribe-transfer: protocol error: %v", rcpt.Err)
	}
	if rcpt.Event.Kind != EventInscribeTransfer {
		t.Fatalf("expected EventInscribeTransfer, got %v", rcpt.Event.Kind)
	}

	owner := scriptkey.FromPkScript(aliceScript)
	lower := mustLowerTick(t, "test")
	bal, _, _ := store.Balance(owner, lower)
	if bal.Available().Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected available 300 after escrow, got %s", bal.Available())
	}

	rcpt, err = ex.Execute(ctx, transferMsg("test", "200", aliceScript, bobScript, inscribeID, true))
	if err != nil {
		t.Fatalf("transfer: system error: %v", err)
	}
	if rcpt.Err != nil {
		t.Fatalf("transfer: protocol error: %v", rcpt.Err)
	}
	if rcpt.Event.Kind != EventTransfer {
		t.Fatalf("expected EventTransfer, got %v", rcpt.Event.Kind)
	}

	aliceBal, _, _ := store.Balance(owner, lower)
	if aliceBal.OverallBalance.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected alice overall balance 300, got %s", aliceBal.OverallBalance)
	}
	if aliceBal.TransferableBalance.Sign() != 0 {
		t.Fatalf("expected alice transferable balance 0, got %s", aliceBal.TransferableBalance)
	}

	bobOwner := scriptkey.FromPkScript(bobScript)
	bobBal, _, _ := store.Balance(bobOwner, lower)
	if bobBal.OverallBalance.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("expected bob overall balance 200, got %s", bobBal.OverallBalance)
	}

	if _, ok, _ := store.TransferableByID(owner, inscribeID); ok {
		t.Fatalf("expected transferable log removed after settlement")
	}
}

func TestTransferToCoinbaseRedirectsToSender(t *testing.T) {
	store := newFakeStore()
	ex := &Executor{Store: store}
	ctx := BlockContext{Height: 1, Timestamp: 1}

	deployID := inscriptionID(0x20, 0)
	if _, err := ex.Execute(ctx, deployMsg("cbtk", "1000", "1000", "0", aliceScript, deployID)); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	mintID := inscriptionID(0x21, 0)
	if _, err := ex.Execute(ctx, mintMsg("cbtk", "500", aliceScript, mintID)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	inscribeID := inscriptionID(0x22, 0)
	rcpt, err := ex.Execute(ctx, inscribeTransferMsg("cbtk", "50", aliceScript, inscribeID))
	if err != nil || rcpt.Err != nil {
		t.Fatalf("inscribe-transfer: err=%v rcpt.Err=%v", err, rcpt.Err)
	}

	rcpt, err = ex.Execute(ctx, transferMsg("cbtk", "50", aliceScript, nil, inscribeID, false))
	if err != nil {
		t.Fatalf("transfer: system error: %v", err)
	}
	if rcpt.Err != nil {
		t.Fatalf("transfer: protocol error: %v", rcpt.Err)
	}
	if rcpt.Event.Msg == "" {
		t.Fatalf("expected coinbase-redirect advisory message")
	}
	if string(rcpt.To) != string(aliceScript) {
		t.Fatalf("expected receipt.To redirected to sender, got %x", rcpt.To)
	}

	owner := scriptkey.FromPkScript(aliceScript)
	lower := mustLowerTick(t, "cbtk")
	bal, _, _ := store.Balance(owner, lower)
	if bal.OverallBalance.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected alice balance unchanged at 500 after self-redirect, got %s", bal.OverallBalance)
	}
}

func TestDeployRejectsInscribeToCoinbase(t *testing.T) {
	store := newFakeStore()
	ex := &Executor{Store: store}
	ctx := BlockContext{Height: 1, Timestamp: 1}

	id := inscriptionID(0x30, 0)
	rcpt, err := ex.Execute(ctx, deployMsg("cbtk", "100", "", "0", nil, id))
	if err != nil {
		t.Fatalf("unexpected system error: %v", err)
	}
	if rcpt.Err == nil || rcpt.Err.Code != InscribeToCoinbase {
		t.Fatalf("expected InscribeToCoinbase, got %+v", rcpt.Err)
	}
}

func mustLowerTick(t *testing.T, s string) ordid.LowerTick {
	tick, err := ordid.ParseTick(s)
	if err != nil {
		t.Fatalf("parse tick %q: %v", s, err)
	}
	return tick.Lower()
}
