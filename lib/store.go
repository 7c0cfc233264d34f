package lib

/*
	The interfaces below define the persistence contract between the state
	machine and the versioned ledger store. The state machine only ever sees
	RWStoreI; the controller sees the full StoreI with commit, rollback, and
	nested transaction support.
*/

// RStoreI is the read interface of a key value store
type RStoreI interface {
	Get(key []byte) ([]byte, ErrorI)
}

// WStoreI is the write interface of a key value store
type WStoreI interface {
	Set(key, value []byte) ErrorI
	Delete(key []byte) ErrorI
}

// RWStoreI combines reads, writes, and ordered iteration
type RWStoreI interface {
	RStoreI
	WStoreI
	Iterator(prefix []byte) (IteratorI, ErrorI)
	RevIterator(prefix []byte) (IteratorI, ErrorI)
}

// IteratorI walks keys in lexicographical byte order
type IteratorI interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Close()
}

// StoreTxnI is a discardable overlay on a parent store; writes are buffered
// in memory until Write() applies them to the parent
type StoreTxnI interface {
	RWStoreI
	Write() ErrorI
	Discard()
}

// ReadOnlyStoreI is a snapshot of the ledger at a specific committed version
type ReadOnlyStoreI interface {
	RWStoreI
	Version() uint64
	Discard()
}

// StoreI is the full ledger store as seen by the block coordinator
type StoreI interface {
	RWStoreI

	// Version() returns the number of committed versions (0 for a fresh store)
	Version() uint64
	// LastBlockHash() returns the hash recorded with the latest commit
	LastBlockHash() []byte

	// NewTxn() opens a discardable overlay for per transaction isolation
	NewTxn() StoreTxnI
	// NewReadOnly() opens a read snapshot of the latest committed version
	NewReadOnly() (ReadOnlyStoreI, ErrorI)

	// Commit() atomically persists the working set as the next version,
	// recording the block hash and the per key before and after diff
	Commit(blockHash []byte) ErrorI
	// Rollback() restores every key touched by the latest version to its
	// prior bytes; blockHash must match the hash recorded at commit
	Rollback(blockHash []byte) ErrorI

	// Reset() abandons the uncommitted working set
	Reset()
	// Discard() abandons the working set without reopening
	Discard()
	Close() ErrorI
}
