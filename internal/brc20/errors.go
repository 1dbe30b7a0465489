package brc20

import "fmt"

// Code enumerates the T1 protocol error kinds, each recorded on a
// Receipt instead of failing the block.
type Code int

const (
	InscribeToCoinbase Code = iota
	DuplicateTick
	TickNotFound
	DecimalsTooLarge
	InvalidSupply
	MintLimitOutOfRange
	AmountOverflow
	InvalidZeroAmount
	TickMinted
	AmountExceedLimit
	InsufficientBalance
	TransferableNotFound
	TransferableOwnerNotMatch
	InvalidTickLen
	InvalidNum
	InternalError
)

// Error is a protocol-level failure: expected history, not a fault.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("brc20: %s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("brc20: %s", e.Code)
}

func (c Code) String() string {
	switch c {
	case InscribeToCoinbase:
		return "InscribeToCoinbase"
	case DuplicateTick:
		return "DuplicateTick"
	case TickNotFound:
		return "TickNotFound"
	case DecimalsTooLarge:
		return "DecimalsTooLarge"
	case InvalidSupply:
		return "InvalidSupply"
	case MintLimitOutOfRange:
		return "MintLimitOutOfRange"
	case AmountOverflow:
		return "AmountOverflow"
	case InvalidZeroAmount:
		return "InvalidZeroAmount"
	case TickMinted:
		return "TickMinted"
	case AmountExceedLimit:
		return "AmountExceedLimit"
	case InsufficientBalance:
		return "InsufficientBalance"
	case TransferableNotFound:
		return "TransferableNotFound"
	case TransferableOwnerNotMatch:
		return "TransferableOwnerNotMatch"
	case InvalidTickLen:
		return "InvalidTickLen"
	case InvalidNum:
		return "InvalidNum"
	case InternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

func newErr(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
