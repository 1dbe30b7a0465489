package brc20s

import (
	"math/big"

	"github.com/okx-clone/brc20s-indexer/internal/numeric"
)

// maximumSupply bounds a T2 tick's total supply, matching T1's u64::MAX
// ceiling.
var maximumSupply = new(big.Int).SetUint64(^uint64(0))

// parseScaledAmount parses s as a decimal with scale <= dec and returns
// its value scaled to an integer by 10^dec. A malformed number fails with
// InvalidNum, a scale above dec with InvalidInteger, and a scaled value
// that does not fit in u128 with Overflow.
func parseScaledAmount(s string, dec uint8) (*big.Int, *Error) {
	n, err := numeric.ParseNum(s)
	if err != nil {
		return nil, newErr(InvalidNum, "%v", err)
	}
	if n.Scale() > int(dec) {
		return nil, newErr(InvalidInteger, "scale exceeds decimals")
	}
	base, _ := numeric.FromUint64(10).CheckedPowU(uint64(dec))
	scaled, err := n.CheckedMul(base)
	if err != nil {
		return nil, newErr(Overflow, "%v", err)
	}
	v, err := scaled.TruncateToU128()
	if err != nil {
		return nil, newErr(Overflow, "%v", err)
	}
	return v, nil
}

// parseSupplyLike parses s the way parseScaledAmount does, additionally
// requiring the unscaled value to be positive and within maximumSupply —
// the same grammar T1 applies to a deploy's supply/limit fields.
func parseSupplyLike(s string, dec uint8) (*big.Int, *Error) {
	n, err := numeric.ParseNum(s)
	if err != nil {
		return nil, newErr(InvalidNum, "%v", err)
	}
	if n.Scale() > int(dec) {
		return nil, newErr(InvalidInteger, "scale exceeds decimals")
	}
	if n.Sign() <= 0 {
		return nil, newErr(InvalidSupply, "must be positive")
	}
	if n.Cmp(numeric.FromBigInt(maximumSupply)) > 0 {
		return nil, newErr(InvalidSupply, "exceeds maximum supply")
	}
	base, _ := numeric.FromUint64(10).CheckedPowU(uint64(dec))
	scaled, err := n.CheckedMul(base)
	if err != nil {
		return nil, newErr(Overflow, "%v", err)
	}
	v, err := scaled.TruncateToU128()
	if err != nil {
		return nil, newErr(Overflow, "%v", err)
	}
	return v, nil
}
