package fsm

import (
	"fmt"

	"github.com/meridian-network/meridian/lib"
)

// state machine error constructors below

func ErrReadGenesisFile(err error) lib.ErrorI {
	return lib.NewError(lib.CodeReadGenesisFile, lib.StateMachineModule, fmt.Sprintf("read genesis file failed with err: %s", err.Error()))
}

func ErrNoSuchToken(id any) lib.ErrorI {
	return lib.NewError(lib.CodeNoSuchToken, lib.StateMachineModule, fmt.Sprintf("no such token: %v", id))
}

func ErrNoSuchPool(id uint64) lib.ErrorI {
	return lib.NewError(lib.CodeNoSuchPool, lib.StateMachineModule, fmt.Sprintf("no such pool: %d", id))
}

func ErrNoSuchOrder(id []byte) lib.ErrorI {
	return lib.NewError(lib.CodeNoSuchOrder, lib.StateMachineModule, fmt.Sprintf("no such order: %x", id))
}

func ErrZeroOrNegativeAmount() lib.ErrorI {
	return lib.NewError(lib.CodeZeroOrNegativeAmount, lib.StateMachineModule, "amount must be positive")
}

func ErrAmountExceedsAvailable(want, have lib.Amount) lib.ErrorI {
	return lib.NewError(lib.CodeAmountExceedsAvail, lib.StateMachineModule, fmt.Sprintf("amount %s exceeds available %s", want, have))
}

func ErrNotOwner(address []byte) lib.ErrorI {
	return lib.NewError(lib.CodeNotOwner, lib.StateMachineModule, fmt.Sprintf("address %x is not the owner", address))
}

func ErrPoolAlreadyExists(tokenA, tokenB uint64) lib.ErrorI {
	return lib.NewError(lib.CodePoolAlreadyExists, lib.StateMachineModule, fmt.Sprintf("a pool for pair (%d, %d) already exists", tokenA, tokenB))
}

func ErrOrderAlreadyClosed(id []byte) lib.ErrorI {
	return lib.NewError(lib.CodeOrderAlreadyClosed, lib.StateMachineModule, fmt.Sprintf("order %x is already closed", id))
}

func ErrSingleAssetNotAllowed() lib.ErrorI {
	return lib.NewError(lib.CodeSingleAssetNotAllowed, lib.StateMachineModule, "liquidity must be provided on both sides of the pair")
}

func ErrBelowMinimumLiquidity(minimum lib.Amount) lib.ErrorI {
	return lib.NewError(lib.CodeBelowMinimumLiquidity, lib.StateMachineModule, fmt.Sprintf("liquidity may not drop below the minimum of %s", minimum))
}

func ErrInsufficientAmount() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientAmount, lib.StateMachineModule, "the amount is too small to produce a result")
}

func ErrInsufficientFunds(address []byte, tokenId uint64) lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientFunds, lib.StateMachineModule, fmt.Sprintf("address %x holds insufficient funds of token %d", address, tokenId))
}

func ErrTokenAlreadyExists(symbol string) lib.ErrorI {
	return lib.NewError(lib.CodeTokenAlreadyExists, lib.StateMachineModule, fmt.Sprintf("token %s already exists", symbol))
}

func ErrAddressEmpty() lib.ErrorI {
	return lib.NewError(lib.CodeAddressEmpty, lib.StateMachineModule, "address is empty")
}

func ErrAddressSize(address []byte) lib.ErrorI {
	return lib.NewError(lib.CodeAddressSize, lib.StateMachineModule, fmt.Sprintf("address %x has an invalid size", address))
}

func ErrUnknownMessage(name string) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownMessage, lib.StateMachineModule, fmt.Sprintf("unknown message type: %s", name))
}

func ErrInvalidCommission(bp uint64) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidCommission, lib.StateMachineModule, fmt.Sprintf("commission of %d basis points is out of range", bp))
}

func ErrInvalidTokenSymbol(symbol string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidTokenSymbol, lib.StateMachineModule, fmt.Sprintf("invalid token symbol: %q", symbol))
}

func ErrIdenticalTokens(id uint64) lib.ErrorI {
	return lib.NewError(lib.CodeIdenticalTokens, lib.StateMachineModule, fmt.Sprintf("both sides of the pair are token %d", id))
}

func ErrInvalidOrderPrice() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidOrderPrice, lib.StateMachineModule, "order price must be positive")
}

func ErrPoolNotActive(id uint64) lib.ErrorI {
	return lib.NewError(lib.CodePoolNotActive, lib.StateMachineModule, fmt.Sprintf("pool %d is paused", id))
}

func ErrWrongStoreType() lib.ErrorI {
	return lib.NewError(lib.CodeWrongStoreType, lib.StateMachineModule, "the store type does not support this operation")
}

func ErrInvalidPoolId() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidPoolId, lib.StateMachineModule, "invalid pool id")
}
