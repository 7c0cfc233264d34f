package controller

import (
	"fmt"

	"github.com/meridian-network/meridian/lib"
)

// controller error constructors below

func ErrWrongBlockHeight(got, want uint64) lib.ErrorI {
	return lib.NewError(lib.CodeWrongBlockHeight, lib.ControllerModule, fmt.Sprintf("block height %d does not follow the chain at %d", got, want))
}

func ErrBrokenBlockLink(want, got []byte) lib.ErrorI {
	return lib.NewError(lib.CodeBrokenBlockLink, lib.ControllerModule, fmt.Sprintf("block links to %x but the tip is %x", got, want))
}

func ErrNotTipBlock(hash []byte) lib.ErrorI {
	return lib.NewError(lib.CodeNotTipBlock, lib.ControllerModule, fmt.Sprintf("block %x is not the tip of the chain", hash))
}

func ErrDuplicateTx(hash []byte) lib.ErrorI {
	return lib.NewError(lib.CodeDuplicateTx, lib.ControllerModule, fmt.Sprintf("transaction %x was already connected", hash))
}

func ErrEmptyBlockHash() lib.ErrorI {
	return lib.NewError(lib.CodeEmptyBlockHash, lib.ControllerModule, "block hash is empty")
}

func ErrFailedTxInBlock(err lib.ErrorI) lib.ErrorI {
	return lib.NewError(lib.CodeFailedTxInBlock, lib.ControllerModule, fmt.Sprintf("block rejected, a transaction failed: %s", err.Error()))
}

func ErrDisconnectGenesis() lib.ErrorI {
	return lib.NewError(lib.CodeDisconnectGenesis, lib.ControllerModule, "the genesis block cannot be disconnected")
}

func ErrUnknownForkPoint(hash []byte) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownForkPoint, lib.ControllerModule, fmt.Sprintf("block %x is not on the current chain", hash))
}
