package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/okx-clone/brc20s-indexer/internal/bitcoin"
	"github.com/okx-clone/brc20s-indexer/internal/indexer"
	"github.com/okx-clone/brc20s-indexer/internal/store"
)

func main() {
	log.Println("Starting BRC-20/BRC-20S Indexer...")

	// ─── Required Environment Variables ─────────────────────────────────
	// All credentials MUST come from environment variables. No fallback
	// defaults for security-sensitive values.
	// ────────────────────────────────────────────────────────────────────

	dbUrl := requireEnv("DATABASE_URL")

	ctx := context.Background()
	st, err := store.Connect(ctx, dbUrl)
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to PostgreSQL: %v", err)
	}
	defer st.Close()
	if err := st.InitSchema(ctx); err != nil {
		log.Fatalf("FATAL: DB schema init failed: %v", err)
	}

	btcHost := getEnvOrDefault("BTC_RPC_HOST", "localhost:8332")
	btcUser := requireEnv("BTC_RPC_USER")
	btcPass := requireEnv("BTC_RPC_PASS")

	btcClient, err := bitcoin.NewClient(bitcoin.Config{Host: btcHost, User: btcUser, Pass: btcPass})
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to Bitcoin RPC: %v", err)
	}
	defer btcClient.Shutdown()

	gates := indexer.HeightGates{
		Inscription: int32(getEnvOrDefaultInt("FIRST_INSCRIPTION_HEIGHT", 0)),
		T1:          int32(getEnvOrDefaultInt("FIRST_T1_HEIGHT", 0)),
		T2:          int32(getEnvOrDefaultInt("FIRST_T2_HEIGHT", 0)),
	}

	// Content is left unset: parsing the taproot script-path witness
	// envelope is the embedded ordinals index's own concern, injected
	// here by whatever deployment wires a concrete implementation in.
	ix := indexer.New(btcClient, st, nil, nil, gates)

	start, err := ix.ResumeHeight(ctx)
	if err != nil {
		log.Fatalf("FATAL: failed to determine resume height: %v", err)
	}

	info, err := btcClient.GetBlockChainInfo()
	if err != nil {
		log.Fatalf("FATAL: failed to query chain tip: %v", err)
	}
	end := int64(info.Blocks)

	log.Printf("Resuming index at height %d, chain tip at %d", start, end)
	if err := ix.Run(ctx, start, end); err != nil {
		log.Fatalf("FATAL: indexing aborted: %v", err)
	}
}

// requireEnv reads a required environment variable and exits if it is not set.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set.", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvOrDefaultInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("FATAL: environment variable %s must be an integer, got %q", key, val)
	}
	return n
}
