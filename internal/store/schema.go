package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS inscription_entries (
	txid       TEXT NOT NULL,
	idx        INT  NOT NULL,
	fee        BIGINT NOT NULL,
	height     INT NOT NULL,
	number     BIGINT NOT NULL UNIQUE,
	sat        BIGINT NOT NULL,
	PRIMARY KEY (txid, idx)
);

CREATE TABLE IF NOT EXISTS inscription_satpoints (
	txid   TEXT NOT NULL,
	idx    INT  NOT NULL,
	sp_txid TEXT NOT NULL,
	sp_vout INT NOT NULL,
	sp_offset BIGINT NOT NULL,
	PRIMARY KEY (txid, idx)
);

CREATE TABLE IF NOT EXISTS satpoint_inscriptions (
	sp_txid TEXT NOT NULL,
	sp_vout INT NOT NULL,
	sp_offset BIGINT NOT NULL,
	txid TEXT NOT NULL,
	idx  INT NOT NULL,
	PRIMARY KEY (sp_txid, sp_vout, sp_offset)
);

CREATE TABLE IF NOT EXISTS sat_to_inscription (
	sat  BIGINT PRIMARY KEY,
	txid TEXT NOT NULL,
	idx  INT NOT NULL
);

CREATE TABLE IF NOT EXISTS outpoint_values (
	txid  TEXT NOT NULL,
	vout  INT NOT NULL,
	value BIGINT NOT NULL,
	PRIMARY KEY (txid, vout)
);

CREATE TABLE IF NOT EXISTS t1_tokens (
	tick TEXT PRIMARY KEY,
	tick_display TEXT NOT NULL,
	inscr_txid TEXT NOT NULL,
	inscr_idx  INT NOT NULL,
	inscr_number BIGINT NOT NULL,
	decimals SMALLINT NOT NULL,
	supply TEXT NOT NULL,
	limit_per_mint TEXT NOT NULL,
	minted TEXT NOT NULL,
	deployer BYTEA NOT NULL,
	deploy_height INT NOT NULL,
	latest_mint_height INT NOT NULL,
	deploy_timestamp BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS t1_balances (
	owner TEXT NOT NULL,
	tick  TEXT NOT NULL,
	overall TEXT NOT NULL,
	transferable TEXT NOT NULL,
	PRIMARY KEY (owner, tick)
);

CREATE TABLE IF NOT EXISTS t1_transferable (
	txid TEXT NOT NULL,
	idx  INT NOT NULL,
	owner TEXT NOT NULL,
	tick  TEXT NOT NULL,
	amount TEXT NOT NULL,
	PRIMARY KEY (txid, idx)
);

CREATE TABLE IF NOT EXISTS t1_inscribe_transfer (
	txid TEXT NOT NULL,
	idx  INT NOT NULL,
	tick TEXT NOT NULL,
	amount TEXT NOT NULL,
	PRIMARY KEY (txid, idx)
);

CREATE TABLE IF NOT EXISTS t1_receipts (
	txid TEXT NOT NULL,
	seq  SERIAL,
	payload JSONB NOT NULL,
	PRIMARY KEY (txid, seq)
);

CREATE TABLE IF NOT EXISTS t2_ticks (
	tick_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	inscr_txid TEXT NOT NULL,
	inscr_idx  INT NOT NULL,
	inscr_number BIGINT NOT NULL,
	decimals SMALLINT NOT NULL,
	supply TEXT NOT NULL,
	deployer BYTEA NOT NULL,
	deploy_height INT NOT NULL,
	deploy_timestamp BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS t2_pools (
	pid TEXT PRIMARY KEY,
	pool_type SMALLINT NOT NULL,
	tick_id TEXT NOT NULL,
	inscr_txid TEXT NOT NULL,
	inscr_idx  INT NOT NULL,
	stake TEXT NOT NULL,
	erate TEXT NOT NULL,
	minted TEXT NOT NULL,
	staked TEXT NOT NULL,
	dmax TEXT NOT NULL,
	acc_reward_per_share TEXT NOT NULL,
	last_update_block INT NOT NULL,
	only_pool BOOLEAN NOT NULL,
	deploy_height INT NOT NULL,
	deploy_timestamp BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS t2_users (
	pid TEXT NOT NULL,
	owner TEXT NOT NULL,
	staked TEXT NOT NULL,
	minted TEXT NOT NULL,
	pending_reward TEXT NOT NULL,
	reward_debt TEXT NOT NULL,
	latest_updated_block INT NOT NULL,
	PRIMARY KEY (pid, owner)
);

CREATE TABLE IF NOT EXISTS t2_stakes (
	owner TEXT NOT NULL,
	pledged TEXT NOT NULL,
	pools JSONB NOT NULL,
	max_share TEXT NOT NULL,
	total_only TEXT NOT NULL,
	PRIMARY KEY (owner, pledged)
);

CREATE TABLE IF NOT EXISTS t2_balances (
	owner TEXT NOT NULL,
	tick_id TEXT NOT NULL,
	overall TEXT NOT NULL,
	transferable TEXT NOT NULL,
	PRIMARY KEY (owner, tick_id)
);

CREATE TABLE IF NOT EXISTS t2_transferable (
	txid TEXT NOT NULL,
	idx  INT NOT NULL,
	owner TEXT NOT NULL,
	tick_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	PRIMARY KEY (txid, idx)
);

CREATE TABLE IF NOT EXISTS t2_inscribe_transfer (
	txid TEXT NOT NULL,
	idx  INT NOT NULL,
	tick_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	PRIMARY KEY (txid, idx)
);

CREATE TABLE IF NOT EXISTS t2_receipts (
	txid TEXT NOT NULL,
	seq  SERIAL,
	payload JSONB NOT NULL,
	PRIMARY KEY (txid, seq)
);

CREATE TABLE IF NOT EXISTS indexer_state (
	id SMALLINT PRIMARY KEY DEFAULT 1,
	last_height BIGINT NOT NULL,
	CHECK (id = 1)
);
`
