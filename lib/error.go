package lib

import (
	"fmt"
	"math"
)

// ErrorI is the error type threaded through every module of the node;
// it carries a machine readable code and the module that produced it
type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code, and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeJSONMarshal     ErrorCode = 1
	CodeJSONUnmarshal   ErrorCode = 2
	CodeUnmarshal       ErrorCode = 3
	CodeMarshal         ErrorCode = 4
	CodeStringToBytes   ErrorCode = 5
	CodeWriteFile       ErrorCode = 6
	CodeReadFile        ErrorCode = 7
	CodeInvalidArgument ErrorCode = 8
	CodeNilBlock        ErrorCode = 9
	CodeNilBlockHeader  ErrorCode = 10
	CodeInvalidAmount   ErrorCode = 11
	CodePrecisionLoss   ErrorCode = 12
	CodeNegativeAmount  ErrorCode = 13
	CodeAmountOverflow  ErrorCode = 14
	CodeInvalidKey      ErrorCode = 15

	// State Machine Module
	StateMachineModule ErrorModule = "state_machine"

	// State Machine Module Error Codes
	CodeReadGenesisFile       ErrorCode = 1
	CodeUnmarshalGenesis      ErrorCode = 2
	CodeNoSuchToken           ErrorCode = 3
	CodeNoSuchPool            ErrorCode = 4
	CodeNoSuchOrder           ErrorCode = 5
	CodeZeroOrNegativeAmount  ErrorCode = 6
	CodeAmountExceedsAvail    ErrorCode = 7
	CodeNotOwner              ErrorCode = 8
	CodePoolAlreadyExists     ErrorCode = 9
	CodeOrderAlreadyClosed    ErrorCode = 10
	CodeSingleAssetNotAllowed ErrorCode = 11
	CodeBelowMinimumLiquidity ErrorCode = 12
	CodeInsufficientAmount    ErrorCode = 13
	CodeInsufficientFunds     ErrorCode = 14
	CodeTokenAlreadyExists    ErrorCode = 15
	CodeAddressEmpty          ErrorCode = 16
	CodeAddressSize           ErrorCode = 17
	CodeUnknownMessage        ErrorCode = 18
	CodeInvalidCommission     ErrorCode = 19
	CodeInvalidTokenSymbol    ErrorCode = 20
	CodeIdenticalTokens       ErrorCode = 21
	CodeInvalidOrderPrice     ErrorCode = 22
	CodePoolNotActive         ErrorCode = 23
	CodeWrongStoreType        ErrorCode = 24
	CodeInvalidPoolId         ErrorCode = 25

	// Store Module
	StoreModule ErrorModule = "store"

	// Store Module Error Codes
	CodeOpenDB            ErrorCode = 1
	CodeCloseDB           ErrorCode = 2
	CodeStoreSet          ErrorCode = 3
	CodeStoreGet          ErrorCode = 4
	CodeStoreDelete       ErrorCode = 5
	CodeStoreIter         ErrorCode = 6
	CodeCommitDB          ErrorCode = 7
	CodeNoDiffForHeight   ErrorCode = 8
	CodeHashMismatch      ErrorCode = 9
	CodeReadOnlyStore     ErrorCode = 11
	CodeRollbackAtGenesis ErrorCode = 12

	// Controller Module
	ControllerModule ErrorModule = "controller"

	// Controller Module Error Codes
	CodeWrongBlockHeight  ErrorCode = 1
	CodeBrokenBlockLink   ErrorCode = 2
	CodeNotTipBlock       ErrorCode = 3
	CodeDuplicateTx       ErrorCode = 4
	CodeEmptyBlockHash    ErrorCode = 5
	CodeFailedTxInBlock   ErrorCode = 6
	CodeDisconnectGenesis ErrorCode = 7
	CodeUnknownForkPoint  ErrorCode = 8

	// RPC Module
	RPCModule ErrorModule = "rpc"

	// RPC Module Error Codes
	CodeInvalidRequest ErrorCode = 1
	CodeServerTimeout  ErrorCode = 2
)

// generic lib level error constructors below

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("json marshal failed with err: %s", err.Error()))
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("json unmarshal failed with err: %s", err.Error()))
}

func ErrMarshal(err error) ErrorI {
	return NewError(CodeMarshal, MainModule, fmt.Sprintf("marshal failed with err: %s", err.Error()))
}

func ErrUnmarshal(err error) ErrorI {
	return NewError(CodeUnmarshal, MainModule, fmt.Sprintf("unmarshal failed with err: %s", err.Error()))
}

func ErrStringToBytes(err error) ErrorI {
	return NewError(CodeStringToBytes, MainModule, fmt.Sprintf("stringToBytes failed with err: %s", err.Error()))
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("write file failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("read file failed with err: %s", err.Error()))
}

func ErrInvalidArgument() ErrorI {
	return NewError(CodeInvalidArgument, MainModule, "the argument is invalid")
}

func ErrNilBlock() ErrorI {
	return NewError(CodeNilBlock, MainModule, "block is nil")
}

func ErrNilBlockHeader() ErrorI {
	return NewError(CodeNilBlockHeader, MainModule, "block header is nil")
}

func ErrInvalidAmount(s string) ErrorI {
	return NewError(CodeInvalidAmount, MainModule, fmt.Sprintf("invalid amount: %s", s))
}

func ErrPrecisionLoss(s string) ErrorI {
	return NewError(CodePrecisionLoss, MainModule, fmt.Sprintf("amount %s exceeds 8 fractional digits", s))
}

func ErrNegativeAmount(s string) ErrorI {
	return NewError(CodeNegativeAmount, MainModule, fmt.Sprintf("amount %s is negative", s))
}

func ErrAmountOverflow(s string) ErrorI {
	return NewError(CodeAmountOverflow, MainModule, fmt.Sprintf("amount %s overflows the fixed point range", s))
}

func ErrInvalidStateKey(k []byte) ErrorI {
	return NewError(CodeInvalidKey, MainModule, fmt.Sprintf("invalid state key: %x", k))
}
