package bitcoin

import (
	"log"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
)

// Client wraps a single Bitcoin Core RPC connection with the narrow
// surface the indexer actually drives: chain tip discovery, block
// fetch, and ad-hoc transaction lookup for inscriptions whose birth
// transaction fell outside the block currently being scanned.
type Client struct {
	RPC    *rpcclient.Client
	Config Config
}

type Config struct {
	Host string
	User string
	Pass string
}

func NewClient(cfg Config) (*Client, error) {
	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}

	log.Printf("Connecting to Bitcoin RPC at %s...", cfg.Host)
	client, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, err
	}

	blockCount, err := client.GetBlockCount()
	if err != nil {
		client.Shutdown()
		return nil, err
	}
	log.Printf("Connected to Bitcoin Node. Current block height: %d", blockCount)

	return &Client{RPC: client, Config: cfg}, nil
}

func (c *Client) Shutdown() {
	c.RPC.Shutdown()
}

// GetBlockChainInfo reports the node's current sync state, consulted
// at startup to find where a resumed index run should catch up to.
func (c *Client) GetBlockChainInfo() (*btcjson.GetBlockChainInfoResult, error) {
	return c.RPC.GetBlockChainInfo()
}

func (c *Client) GetBlockHash(height int64) (*chainhash.Hash, error) {
	return c.RPC.GetBlockHash(height)
}

// GetBlock fetches the full wire-decoded block, witness data included:
// the indexer needs the taproot script-path witnesses to recover
// inscription envelopes, which the JSON-RPC verbose encodings omit.
func (c *Client) GetBlock(hash *chainhash.Hash) (*wire.MsgBlock, error) {
	return c.RPC.GetBlock(hash)
}

// GetRawTransaction fetches a single transaction by id, used to recover
// a moved inscription's birth transaction when it isn't in the current
// block (tracker.TxFetcher).
func (c *Client) GetRawTransaction(txid *chainhash.Hash) (*wire.MsgTx, error) {
	tx, err := c.RPC.GetRawTransaction(txid)
	if err != nil {
		return nil, err
	}
	return tx.MsgTx(), nil
}
