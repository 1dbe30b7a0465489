// Package scriptkey defines the address-like key both token protocols
// use to index balances: the raw output script, hex-encoded so it can
// serve as a map/SQL key.
package scriptkey

import "encoding/hex"

// ScriptKey is the canonical per-owner storage key: the hex encoding of
// a transaction output's pkScript.
type ScriptKey string

// FromPkScript builds a ScriptKey from a raw output script.
func FromPkScript(pkScript []byte) ScriptKey {
	return ScriptKey(hex.EncodeToString(pkScript))
}

func (k ScriptKey) String() string { return string(k) }
