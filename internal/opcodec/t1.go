package opcodec

import "fmt"

// T1 operation names, as carried in the envelope's "op" field.
const (
	T1OpDeploy   = "deploy"
	T1OpMint     = "mint"
	T1OpTransfer = "transfer"
)

// T1Deploy is a brc-20 "deploy" operation.
type T1Deploy struct {
	Tick    string
	Max     string
	Limit   string // "lim"; empty means "defaults to Max"
	Decimal string // "dec"; empty means "defaults to 18"
}

// T1Mint is a brc-20 "mint" operation.
type T1Mint struct {
	Tick   string
	Amount string // "amt"
}

// T1Transfer covers both brc-20 "transfer" (inscribe-transfer, the
// first phase) and the second-phase send that moves a transferable
// balance; the resolver distinguishes the phase by whether the
// inscription is new or being moved, not by op name, matching the
// reference protocol.
type T1Transfer struct {
	Tick   string
	Amount string // "amt"
}

// ParseT1Operation decodes a T1 envelope into its typed operation.
func ParseT1Operation(e Envelope) (interface{}, error) {
	if e.Protocol != ProtocolT1 {
		return nil, fmt.Errorf("opcodec: envelope is not a T1 operation")
	}
	tick, err := requireField(e, "tick")
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case T1OpDeploy:
		max, err := requireField(e, "max")
		if err != nil {
			return nil, err
		}
		lim, _ := e.field("lim")
		dec, _ := e.field("dec")
		return T1Deploy{Tick: tick, Max: max, Limit: lim, Decimal: dec}, nil
	case T1OpMint:
		amt, err := requireField(e, "amt")
		if err != nil {
			return nil, err
		}
		return T1Mint{Tick: tick, Amount: amt}, nil
	case T1OpTransfer:
		amt, err := requireField(e, "amt")
		if err != nil {
			return nil, err
		}
		return T1Transfer{Tick: tick, Amount: amt}, nil
	default:
		return nil, fmt.Errorf("opcodec: unrecognized T1 op %q", e.Op)
	}
}
