package brc20s

import "fmt"

// Code enumerates the T2 protocol error kinds, each recorded on a
// Receipt instead of failing the block.
type Code int

const (
	InscribeToCoinbase Code = iota
	TickNotFound
	DuplicateTick
	TickIDMismatch
	DecimalsTooLarge
	InvalidSupply
	InvalidTickLen
	UnknownStakeType
	UnknownPoolType
	PoolNotFound
	PoolAlreadyExists
	Overflow
	DivedZero
	InvalidInteger
	InvalidNum
	InvalidZeroAmount
	AmountExceedLimit
	InsufficientStaked
	InsufficientBalance
	TransferableNotFound
	TransferableOwnerNotMatch
	InternalError
)

// Error is a protocol-level failure: expected history, not a fault.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("brc20s: %s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("brc20s: %s", e.Code)
}

func (c Code) String() string {
	switch c {
	case InscribeToCoinbase:
		return "InscribeToCoinbase"
	case TickNotFound:
		return "TickNotFound"
	case DuplicateTick:
		return "DuplicateTick"
	case TickIDMismatch:
		return "TickIDMismatch"
	case DecimalsTooLarge:
		return "DecimalsTooLarge"
	case InvalidSupply:
		return "InvalidSupply"
	case InvalidTickLen:
		return "InvalidTickLen"
	case UnknownStakeType:
		return "UnknownStakeType"
	case UnknownPoolType:
		return "UnknownPoolType"
	case PoolNotFound:
		return "PoolNotFound"
	case PoolAlreadyExists:
		return "PoolAlreadyExists"
	case Overflow:
		return "Overflow"
	case DivedZero:
		return "DivedZero"
	case InvalidInteger:
		return "InvalidInteger"
	case InvalidNum:
		return "InvalidNum"
	case InvalidZeroAmount:
		return "InvalidZeroAmount"
	case AmountExceedLimit:
		return "AmountExceedLimit"
	case InsufficientStaked:
		return "InsufficientStaked"
	case InsufficientBalance:
		return "InsufficientBalance"
	case TransferableNotFound:
		return "TransferableNotFound"
	case TransferableOwnerNotMatch:
		return "TransferableOwnerNotMatch"
	case InternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

func newErr(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
