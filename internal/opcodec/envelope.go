// Package opcodec parses the JSON operation envelopes carried inside
// inscription content: T1 ("brc-20") and T2 ("brc20-s") deploy, mint,
// stake/unstake, and transfer operations.
package opcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProtocolTag identifies which protocol a "p" field selects.
type ProtocolTag string

const (
	ProtocolT1 ProtocolTag = "brc-20"
	ProtocolT2 ProtocolTag = "brc20-s"
)

// decodeFields walks the top-level JSON object token-by-token, reading
// every value as a JSON string. A duplicate object key keeps its LAST
// value (as json.Unmarshal into a map also does), matching how the
// reference indexer's own JSON library treats duplicate keys in
// inscription content.
func decodeFields(raw []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("opcodec: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, fmt.Errorf("opcodec: expected a JSON object")
	}

	fields := make(map[string]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("opcodec: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("opcodec: expected string object key")
		}

		var val string
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("opcodec: field %q is not a string: %w", key, err)
		}
		// Map assignment naturally keeps the last value seen for a
		// repeated key.
		fields[key] = val
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, fmt.Errorf("opcodec: %w", err)
	}
	return fields, nil
}

// Envelope is the protocol-tagged, last-key-wins field set extracted
// from inscription content.
type Envelope struct {
	Protocol ProtocolTag
	Op       string
	Fields   map[string]string
}

// ErrNotAnOperation is returned when the content isn't recognized
// protocol JSON at all (wrong "p" tag, not valid JSON). This is not a
// protocol error — it just means the inscription carries unrelated
// content and is silently ignored by the resolver.
var ErrNotAnOperation = fmt.Errorf("opcodec: not a recognized operation envelope")

// ParseEnvelope extracts the protocol tag, op name, and field map from
// raw inscription content.
func ParseEnvelope(raw []byte) (Envelope, error) {
	fields, err := decodeFields(raw)
	if err != nil {
		return Envelope{}, ErrNotAnOperation
	}
	p := ProtocolTag(fields["p"])
	if p != ProtocolT1 && p != ProtocolT2 {
		return Envelope{}, ErrNotAnOperation
	}
	op, ok := fields["op"]
	if !ok || op == "" {
		return Envelope{}, ErrNotAnOperation
	}
	return Envelope{Protocol: p, Op: op, Fields: fields}, nil
}

// Parse extracts the envelope from raw content and decodes it into the
// protocol-specific typed operation in one step.
func Parse(content []byte) (interface{}, ProtocolTag, error) {
	env, err := ParseEnvelope(content)
	if err != nil {
		return nil, "", err
	}
	switch env.Protocol {
	case ProtocolT1:
		op, err := ParseT1Operation(env)
		return op, ProtocolT1, err
	case ProtocolT2:
		op, err := ParseT2Operation(env)
		return op, ProtocolT2, err
	default:
		return nil, "", ErrNotAnOperation
	}
}

func (e Envelope) field(name string) (string, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

// requireField returns a missing-field error shaped like the protocol
// errors the executors report, since a missing required field is itself
// a protocol-level defect in the inscription, not a system error.
func requireField(e Envelope, name string) (string, error) {
	v, ok := e.field(name)
	if !ok || v == "" {
		return "", fmt.Errorf("opcodec: missing required field %q", name)
	}
	return v, nil
}
