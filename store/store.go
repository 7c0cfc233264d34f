package store

import (
	"bytes"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/meridian-network/meridian/lib"
)

var _ lib.StoreI = &Store{}

/*
	Store is the versioned ledger store. All reads and writes flow through a
	single long lived badger write transaction (the working set); Commit()
	persists the working set atomically as the next version and Rollback()
	restores the previous version byte for byte.

	Undo information is captured inline: the first time a key is touched
	since the last commit its prior bytes (or absence) are recorded, and at
	commit time the per key before/after pairs are persisted alongside the
	state as the block's undo diff. Rollback replays the 'before' side of
	that diff verbatim, so disconnecting a block never re-derives state.

	Partitions of the underlying keyspace:
		s/ -> ledger state (the only keys the state machine sees)
		d/ -> per version undo diffs, keyed by big endian height
		c/ -> per version commit records (height + block hash)
*/

var (
	statePrefix     = []byte("s/") // ledger state partition
	diffPrefix      = []byte("d/") // undo diff partition
	commitPrefix    = []byte("c/") // commit record partition
	latestCommitKey = []byte("c/latest")
)

// Store is the badger backed implementation of the versioned ledger store
type Store struct {
	config  lib.Config
	db      *badger.DB
	writer  *TxnWrapper               // working set state view (s/ partition)
	meta    *TxnWrapper               // working set meta view (unprefixed)
	version uint64                    // number of committed versions
	last    []byte                    // block hash recorded with the latest commit
	touched map[string]*lib.ValueDiff // undo info for keys touched since the last commit
	log     lib.LoggerI
}

// New() opens the database under the configured data directory and loads the latest commit record
func New(config lib.Config, log lib.LoggerI) (*Store, lib.ErrorI) {
	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(config.DataDirPath, config.DBName))
	}
	db, err := badger.Open(opts.WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	s := &Store{
		config:  config,
		db:      db,
		touched: make(map[string]*lib.ValueDiff),
		log:     log,
	}
	s.newWorkingTxn()
	// load the latest commit record, if any
	id := new(lib.CommitID)
	bz, e := s.meta.Get(latestCommitKey)
	if e != nil {
		return nil, e
	}
	if bz != nil {
		if e = lib.Unmarshal(bz, id); e != nil {
			return nil, e
		}
		s.version, s.last = id.Height, id.BlockHash
	}
	return s, nil
}

// NewTestStore() opens an ephemeral in-memory store for unit tests
func NewTestStore() (*Store, lib.ErrorI) {
	config := lib.DefaultConfig()
	config.InMemory = true
	return New(config, lib.NewNullLogger())
}

// Version() returns the number of committed versions
func (s *Store) Version() uint64 { return s.version }

// LastBlockHash() returns the block hash recorded with the latest commit
func (s *Store) LastBlockHash() []byte { return s.last }

// Get() reads a state key through the working set
func (s *Store) Get(key []byte) ([]byte, lib.ErrorI) { return s.writer.Get(key) }

// Set() writes a state key into the working set, capturing undo info on first touch
func (s *Store) Set(key, value []byte) lib.ErrorI {
	if err := s.capture(key); err != nil {
		return err
	}
	d := s.touched[string(key)]
	d.After, d.AfterExists = bytes.Clone(value), true
	return s.writer.Set(key, value)
}

// Delete() removes a state key from the working set, capturing undo info on first touch
func (s *Store) Delete(key []byte) lib.ErrorI {
	if err := s.capture(key); err != nil {
		return err
	}
	d := s.touched[string(key)]
	d.After, d.AfterExists = nil, false
	return s.writer.Delete(key)
}

// Iterator() iterates the state partition of the working set for the given prefix
func (s *Store) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return s.writer.Iterator(prefix)
}

// RevIterator() reverse iterates the state partition of the working set for the given prefix
func (s *Store) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return s.writer.RevIterator(prefix)
}

// NewTxn() opens a discardable overlay on the store for per transaction isolation
func (s *Store) NewTxn() lib.StoreTxnI { return NewTxn(s) }

// NewReadOnly() opens a read snapshot of the latest committed version
func (s *Store) NewReadOnly() (lib.ReadOnlyStoreI, lib.ErrorI) {
	return &ReadOnlyStore{
		reader:  NewTxnWrapper(s.db.NewTransaction(false), s.log, statePrefix),
		version: s.version,
	}, nil
}

// Commit() atomically persists the working set as the next version together
// with its commit record and undo diff
func (s *Store) Commit(blockHash []byte) lib.ErrorI {
	if len(blockHash) == 0 {
		return ErrHashMismatch(nil, blockHash)
	}
	nextVersion := s.version + 1
	// persist the undo diff for this version
	diffBz, err := lib.Marshal(s.blockDiff(nextVersion, blockHash))
	if err != nil {
		return err
	}
	if err = s.meta.Set(diffKey(nextVersion), diffBz); err != nil {
		return err
	}
	// persist the commit record and update the latest pointer
	idBz, err := lib.Marshal(&lib.CommitID{Height: nextVersion, BlockHash: blockHash})
	if err != nil {
		return err
	}
	if err = s.meta.Set(commitKey(nextVersion), idBz); err != nil {
		return err
	}
	if err = s.meta.Set(latestCommitKey, idBz); err != nil {
		return err
	}
	if e := s.writer.db.Commit(); e != nil {
		return ErrCommitDB(e)
	}
	s.version, s.last = nextVersion, bytes.Clone(blockHash)
	s.newWorkingTxn()
	return nil
}

// Rollback() restores every key touched by the latest version to its prior
// bytes; blockHash must match the hash recorded at commit. Any uncommitted
// working set is abandoned first.
func (s *Store) Rollback(blockHash []byte) lib.ErrorI {
	if s.version <= 1 {
		return ErrRollbackAtGenesis()
	}
	s.Reset()
	diff, err := s.DiffAt(s.version)
	if err != nil {
		return err
	}
	if !bytes.Equal(diff.BlockHash, blockHash) {
		return ErrHashMismatch(diff.BlockHash, blockHash)
	}
	// replay the 'before' side of the diff verbatim
	for _, d := range diff.Diffs {
		if d.BeforeExists {
			if err = s.writer.Set(d.Key, d.Before); err != nil {
				return err
			}
		} else {
			if err = s.writer.Delete(d.Key); err != nil {
				return err
			}
		}
	}
	// drop this version's records and point latest at the parent
	if err = s.meta.Delete(diffKey(s.version)); err != nil {
		return err
	}
	if err = s.meta.Delete(commitKey(s.version)); err != nil {
		return err
	}
	prevBz, err := s.meta.Get(commitKey(s.version - 1))
	if err != nil {
		return err
	}
	if prevBz == nil {
		return ErrNoDiffForHeight(s.version - 1)
	}
	prev := new(lib.CommitID)
	if err = lib.Unmarshal(prevBz, prev); err != nil {
		return err
	}
	if err = s.meta.Set(latestCommitKey, prevBz); err != nil {
		return err
	}
	if e := s.writer.db.Commit(); e != nil {
		return ErrCommitDB(e)
	}
	s.version, s.last = prev.Height, prev.BlockHash
	s.newWorkingTxn()
	return nil
}

// DiffAt() loads the undo diff recorded for the given committed version
func (s *Store) DiffAt(height uint64) (*lib.BlockDiff, lib.ErrorI) {
	bz, err := s.meta.Get(diffKey(height))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, ErrNoDiffForHeight(height)
	}
	diff := new(lib.BlockDiff)
	if err = lib.Unmarshal(bz, diff); err != nil {
		return nil, err
	}
	return diff, nil
}

// CommitIDAt() loads the commit record for the given committed version
func (s *Store) CommitIDAt(height uint64) (*lib.CommitID, lib.ErrorI) {
	bz, err := s.meta.Get(commitKey(height))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, ErrNoDiffForHeight(height)
	}
	id := new(lib.CommitID)
	if err = lib.Unmarshal(bz, id); err != nil {
		return nil, err
	}
	return id, nil
}

// Reset() abandons the uncommitted working set
func (s *Store) Reset() {
	s.writer.Close()
	s.newWorkingTxn()
}

// Discard() abandons the working set without reopening
func (s *Store) Discard() {
	s.writer.Close()
	s.touched = make(map[string]*lib.ValueDiff)
}

// Close() discards the working set and closes the database
func (s *Store) Close() lib.ErrorI {
	s.Discard()
	if err := s.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}

// capture() records the pre-image of a state key the first time it is
// touched since the last commit
func (s *Store) capture(key []byte) lib.ErrorI {
	k := string(key)
	if _, found := s.touched[k]; found {
		return nil
	}
	before, exists, err := s.getEntry(key)
	if err != nil {
		return err
	}
	s.touched[k] = &lib.ValueDiff{
		Key:          bytes.Clone(key),
		Before:       before,
		BeforeExists: exists,
	}
	return nil
}

// getEntry() reads a state key distinguishing 'absent' from 'present with empty bytes'
func (s *Store) getEntry(key []byte) ([]byte, bool, lib.ErrorI) {
	item, err := s.writer.db.Get(lib.Append(statePrefix, key))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, ErrStoreGet(err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, ErrStoreGet(err)
	}
	return val, true, nil
}

// blockDiff() assembles the undo diff for the keys touched since the last
// commit, sorted by key for a deterministic encoding
func (s *Store) blockDiff(height uint64, blockHash []byte) *lib.BlockDiff {
	keys := make([]string, 0, len(s.touched))
	for k := range s.touched {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	diff := &lib.BlockDiff{Height: height, BlockHash: blockHash}
	for _, k := range keys {
		diff.Diffs = append(diff.Diffs, *s.touched[k])
	}
	return diff
}

// newWorkingTxn() opens a fresh write transaction and clears the undo capture
func (s *Store) newWorkingTxn() {
	txn := s.db.NewTransaction(true)
	s.writer = NewTxnWrapper(txn, s.log, statePrefix)
	s.meta = NewTxnWrapper(txn, s.log, nil)
	s.touched = make(map[string]*lib.ValueDiff)
}

// diffKey() returns the undo diff key for a version
func diffKey(height uint64) []byte { return lib.Append(diffPrefix, lib.FormatUint64(height)) }

// commitKey() returns the commit record key for a version
func commitKey(height uint64) []byte { return lib.Append(commitPrefix, lib.FormatUint64(height)) }

// enforce the ReadOnlyStoreI interface
var _ lib.ReadOnlyStoreI = &ReadOnlyStore{}

// ReadOnlyStore is a snapshot of the ledger state at the version it was opened at
type ReadOnlyStore struct {
	reader  *TxnWrapper
	version uint64
}

// Version() returns the committed version the snapshot was opened at
func (r *ReadOnlyStore) Version() uint64 { return r.version }

// Get() reads a state key from the snapshot
func (r *ReadOnlyStore) Get(key []byte) ([]byte, lib.ErrorI) { return r.reader.Get(key) }

// Set() is rejected; the snapshot is immutable
func (r *ReadOnlyStore) Set(_, _ []byte) lib.ErrorI { return ErrReadOnlyStore() }

// Delete() is rejected; the snapshot is immutable
func (r *ReadOnlyStore) Delete(_ []byte) lib.ErrorI { return ErrReadOnlyStore() }

// Iterator() iterates the snapshot for the given prefix
func (r *ReadOnlyStore) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return r.reader.Iterator(prefix)
}

// RevIterator() reverse iterates the snapshot for the given prefix
func (r *ReadOnlyStore) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return r.reader.RevIterator(prefix)
}

// Discard() releases the snapshot
func (r *ReadOnlyStore) Discard() { r.reader.Close() }
