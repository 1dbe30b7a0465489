package callmgr

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/okx-clone/brc20s-indexer/internal/brc20"
	"github.com/okx-clone/brc20s-indexer/internal/brc20s"
	"github.com/okx-clone/brc20s-indexer/internal/opcodec"
	"github.com/okx-clone/brc20s-indexer/internal/ordid"
	"github.com/okx-clone/brc20s-indexer/internal/resolver"
	"github.com/okx-clone/brc20s-indexer/internal/scriptkey"
	"github.com/okx-clone/brc20s-indexer/internal/tracker"
)

var (
	aliceScript = []byte{0x51, 0x01}
	bobScript   = []byte{0x51, 0x02}
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

func newTestManager() (*Manager, *fakeT1Store, *fakeT2Store) {
	t1Store := newFakeT1Store()
	t2Store := newFakeT2Store()
	dec := &DecimalResolver{T1: t1Store, T2: t2Store}
	return &Manager{
		T1:       &brc20.Executor{Store: t1Store},
		T2:       &brc20s.Executor{Store: t2Store, Decimals: dec},
		Decimals: dec,
	}, t1Store, t2Store
}

// TestTransferCascadesPassiveUnstake reproduces the reference scenario:
// Alice has 100 staked in a T2 pool pledged on T1 tick "ordi" and sends
// 30 ordi to Bob. The transfer's own receipt is followed by a cascaded
// PassiveUnStake receipt draining exactly 30 from Alice's stake.
func TestTransferCascadesPassiveUnstake(t *testing.T) {
	mgr, _, t2Store := newTestManager()
	ctx := BlockContext{Height: 100, Timestamp: 1000}

	deployID := inscriptionID(0x01, 0)
	if _, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          deployID.Txid,
		InscriptionID: deployID,
		NewSatpoint:   satpoint(deployID.Txid[0], 0),
		ToScript:      aliceScript,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Deploy{Tick: "ordi", Max: "1000000", Decimal: "0"},
	}); err != nil {
		t.Fatalf("deploy t1: %v", err)
	}

	mintID := inscriptionID(0x02, 0)
	if _, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          mintID.Txid,
		InscriptionID: mintID,
		NewSatpoint:   satpoint(mintID.Txid[0], 0),
		ToScript:      aliceScript,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Mint{Tick: "ordi", Amount: "130"},
	}); err != nil {
		t.Fatalf("mint t1: %v", err)
	}

	deployPoolID := inscriptionID(0x03, 0)
	poolPid := newTestPid("xyz", aliceScript)
	if _, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          deployPoolID.Txid,
		InscriptionID: deployPoolID,
		NewSatpoint:   satpoint(deployPoolID.Txid[0], 0),
		ToScript:      aliceScript,
		Protocol:      opcodec.ProtocolT2,
		Op: opcodec.T2Deploy{
			PoolID: poolPid, PoolType: "pool", Stake: "ordi", EarnTick: "xyz",
			EarnRate: "1", MaxSupply: "1000", TotalSupply: "1000000", Decimal: "0",
		},
	}); err != nil {
		t.Fatalf("deploy pool: %v", err)
	}

	stakeID := inscriptionID(0x04, 0)
	if _, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          stakeID.Txid,
		InscriptionID: stakeID,
		NewSatpoint:   satpoint(stakeID.Txid[0], 0),
		ToScript:      aliceScript,
		Protocol:      opcodec.ProtocolT2,
		Op:            opcodec.T2Stake{PoolID: poolPid, Amount: "100"},
	}); err != nil {
		t.Fatalf("stake: %v", err)
	}

	transferID := inscriptionID(0x05, 0)
	if _, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          transferID.Txid,
		InscriptionID: transferID,
		NewSatpoint:   satpoint(transferID.Txid[0], 0),
		ToScript:      aliceScript,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Transfer{Tick: "ordi", Amount: "30"},
	}); err != nil {
		t.Fatalf("inscribe-transfer: %v", err)
	}

	result, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          transferID.Txid,
		InscriptionID: transferID,
		OldSatpoint:   satpoint(transferID.Txid[0], 0),
		NewSatpoint:   satpoint(transferID.Txid[0], 100),
		FromScript:    aliceScript,
		ToScript:      bobScript,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Transfer{Tick: "ordi", Amount: "30"},
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if result.T1Receipt == nil || result.T1Receipt.Err != nil {
		t.Fatalf("expected successful T1 transfer, got %+v", result.T1Receipt)
	}
	if result.T1Receipt.Event.Kind != brc20.EventTransfer {
		t.Fatalf("expected EventTransfer, got %v", result.T1Receipt.Event.Kind)
	}
	if len(result.Cascaded) != 1 {
		t.Fatalf("expected exactly one cascaded passive-unstake receipt, got %d", len(result.Cascaded))
	}
	cascaded := result.Cascaded[0]
	if cascaded.Err != nil {
		t.Fatalf("unexpected cascaded protocol error: %v", cascaded.Err)
	}
	if cascaded.Event.Kind != brc20s.EventPassiveUnStake {
		t.Fatalf("expected EventPassiveUnStake, got %v", cascaded.Event.Kind)
	}
	if cascaded.Event.Amount.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("expected cascaded amount 30, got %s", cascaded.Event.Amount)
	}

	pid, _ := ordid.ParsePid(poolPid)
	owner := scriptkey.FromPkScript(aliceScript)
	user, ok, _ := t2Store.UserInfo(pid, owner)
	if !ok || user.Staked.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("expected alice's remaining stake 70, got %+v", user)
	}
}

// TestTransferWithNoStakeDoesNotCascade confirms a Transfer of an asset
// nobody has staked produces no cascaded receipts at all.
func TestTransferWithNoStakeDoesNotCascade(t *testing.T) {
	mgr, _, _ := newTestManager()
	ctx := BlockContext{Height: 1, Timestamp: 1}

	deployID := inscriptionID(0x10, 0)
	if _, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          deployID.Txid,
		InscriptionID: deployID,
		NewSatpoint:   satpoint(deployID.Txid[0], 0),
		ToScript:      aliceScript,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Deploy{Tick: "abcd", Max: "1000", Decimal: "0"},
	}); err != nil {
		t.Fatalf("deploy: %v", err)
	}
	mintID := inscriptionID(0x11, 0)
	if _, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          mintID.Txid,
		InscriptionID: mintID,
		NewSatpoint:   satpoint(mintID.Txid[0], 0),
		ToScript:      aliceScript,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Mint{Tick: "abcd", Amount: "50"},
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	transferID := inscriptionID(0x12, 0)
	if _, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          transferID.Txid,
		InscriptionID: transferID,
		NewSatpoint:   satpoint(transferID.Txid[0], 0),
		ToScript:      aliceScript,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Transfer{Tick: "abcd", Amount: "50"},
	}); err != nil {
		t.Fatalf("inscribe-transfer: %v", err)
	}

	result, err := mgr.Execute(ctx, resolver.ExecutionMessage{
		Txid:          transferID.Txid,
		InscriptionID: transferID,
		OldSatpoint:   satpoint(transferID.Txid[0], 0),
		NewSatpoint:   satpoint(transferID.Txid[0], 50),
		FromScript:    aliceScript,
		ToScript:      bobScript,
		Protocol:      opcodec.ProtocolT1,
		Op:            opcodec.T1Transfer{Tick: "abcd", Amount: "50"},
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if len(result.Cascaded) != 0 {
		t.Fatalf("expected no cascaded receipts, got %d", len(result.Cascaded))
	}
}

func newTestPid(earnTick string, deployer []byte) string {
	tickID := ordid.DeriveTickID(earnTick, 0, "1000000", deployer, deployer)
	return tickID.String() + "#01"
}
