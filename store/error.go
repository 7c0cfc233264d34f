package store

import (
	"fmt"

	"github.com/meridian-network/meridian/lib"
)

// store module error constructors below

func ErrOpenDB(err error) lib.ErrorI {
	return lib.NewError(lib.CodeOpenDB, lib.StoreModule, fmt.Sprintf("openDB failed with err: %s", err.Error()))
}

func ErrCloseDB(err error) lib.ErrorI {
	return lib.NewError(lib.CodeCloseDB, lib.StoreModule, fmt.Sprintf("closeDB failed with err: %s", err.Error()))
}

func ErrStoreSet(err error) lib.ErrorI {
	return lib.NewError(lib.CodeStoreSet, lib.StoreModule, fmt.Sprintf("store set failed with err: %s", err.Error()))
}

func ErrStoreGet(err error) lib.ErrorI {
	return lib.NewError(lib.CodeStoreGet, lib.StoreModule, fmt.Sprintf("store get failed with err: %s", err.Error()))
}

func ErrStoreDelete(err error) lib.ErrorI {
	return lib.NewError(lib.CodeStoreDelete, lib.StoreModule, fmt.Sprintf("store delete failed with err: %s", err.Error()))
}

func ErrStoreIter(err error) lib.ErrorI {
	return lib.NewError(lib.CodeStoreIter, lib.StoreModule, fmt.Sprintf("store iterator failed with err: %s", err.Error()))
}

func ErrCommitDB(err error) lib.ErrorI {
	return lib.NewError(lib.CodeCommitDB, lib.StoreModule, fmt.Sprintf("commitDB failed with err: %s", err.Error()))
}

func ErrNoDiffForHeight(height uint64) lib.ErrorI {
	return lib.NewError(lib.CodeNoDiffForHeight, lib.StoreModule, fmt.Sprintf("no undo diff recorded for height %d", height))
}

func ErrHashMismatch(expected, got []byte) lib.ErrorI {
	return lib.NewError(lib.CodeHashMismatch, lib.StoreModule, fmt.Sprintf("block hash mismatch: expected %x got %x", expected, got))
}

func ErrReadOnlyStore() lib.ErrorI {
	return lib.NewError(lib.CodeReadOnlyStore, lib.StoreModule, "store is read only")
}

func ErrRollbackAtGenesis() lib.ErrorI {
	return lib.NewError(lib.CodeRollbackAtGenesis, lib.StoreModule, "cannot rollback the genesis version")
}
