package fsm

import (
	"github.com/meridian-network/meridian/lib"
)

/*
	StateMachine is the deterministic transition function of the ledger: it
	reads and writes state exclusively through the store handle it is given,
	so the same blocks applied to the same store always produce the same
	bytes. Handing it a nested store txn scopes its writes to a single
	transaction; handing it a read snapshot makes it a pure query surface.
*/

type StateMachine struct {
	store  lib.RWStoreI
	height uint64
	Config lib.Config
	log    lib.LoggerI
}

// New() creates a StateMachine over the given store handle
func New(config lib.Config, store lib.RWStoreI, log lib.LoggerI) *StateMachine {
	return &StateMachine{
		store:  store,
		Config: config,
		log:    log,
	}
}

// Height() returns the height of the block currently being applied
func (s *StateMachine) Height() uint64 { return s.height }

// Store() returns the current store handle
func (s *StateMachine) Store() lib.RWStoreI { return s.store }

// SetStore() swaps the store handle; used to wrap and unwrap nested txns
func (s *StateMachine) SetStore(store lib.RWStoreI) { s.store = store }

// TxnWrap() wraps the store in a discardable nested txn and points the state
// machine at it; the caller writes or discards and restores the parent
func (s *StateMachine) TxnWrap() (lib.StoreTxnI, lib.ErrorI) {
	st, ok := s.store.(lib.StoreI)
	if !ok {
		return nil, ErrWrongStoreType()
	}
	txn := st.NewTxn()
	s.store = txn
	return txn, nil
}

// ApplyBlock() runs the full transition for one block: BeginBlock, every
// transaction in order (each inside its own nested txn so a failing
// transaction leaves zero mutations), then EndBlock
func (s *StateMachine) ApplyBlock(block *lib.Block) lib.ErrorI {
	if err := block.Check(); err != nil {
		return err
	}
	s.height = block.BlockHeader.Height
	if err := s.BeginBlock(block.BlockHeader); err != nil {
		return err
	}
	for _, tx := range block.Transactions {
		parent := s.store
		txn, err := s.TxnWrap()
		if err != nil {
			return err
		}
		err = s.ApplyTransaction(tx)
		s.SetStore(parent)
		if err != nil {
			txn.Discard()
			return err
		}
		if err = txn.Write(); err != nil {
			return err
		}
	}
	return s.EndBlock()
}

// ApplyTransaction() validates and executes a single transaction
func (s *StateMachine) ApplyTransaction(tx *lib.Transaction) lib.ErrorI {
	if err := checkAddress(tx.Signer); err != nil {
		return err
	}
	hash, err := tx.Hash()
	if err != nil {
		return err
	}
	msg, err := newMessageForType(tx.Type)
	if err != nil {
		return err
	}
	if err = lib.Unmarshal(tx.Msg, msg); err != nil {
		return err
	}
	if err = msg.Check(); err != nil {
		return err
	}
	return s.handleMessage(tx.Signer, msg, hash)
}

// store passthroughs below

// Get() reads a key from state
func (s *StateMachine) Get(key []byte) ([]byte, lib.ErrorI) { return s.store.Get(key) }

// Set() writes a key to state
func (s *StateMachine) Set(key, value []byte) lib.ErrorI { return s.store.Set(key, value) }

// Delete() removes a key from state
func (s *StateMachine) Delete(key []byte) lib.ErrorI { return s.store.Delete(key) }

// Iterator() iterates state for the given prefix
func (s *StateMachine) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return s.store.Iterator(prefix)
}

// RevIterator() reverse iterates state for the given prefix
func (s *StateMachine) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return s.store.RevIterator(prefix)
}

// IterateAndExecute() runs the callback for every entry under the prefix
func (s *StateMachine) IterateAndExecute(prefix []byte, callback func(key, value []byte) lib.ErrorI) lib.ErrorI {
	it, err := s.Iterator(prefix)
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if err = callback(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return nil
}

// GetObject() reads and unmarshals a state record; found is false when absent
func (s *StateMachine) GetObject(key []byte, ptr any) (found bool, err lib.ErrorI) {
	bz, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if bz == nil {
		return false, nil
	}
	return true, lib.Unmarshal(bz, ptr)
}

// SetObject() marshals and writes a state record
func (s *StateMachine) SetObject(key []byte, obj any) lib.ErrorI {
	bz, err := lib.Marshal(obj)
	if err != nil {
		return err
	}
	return s.Set(key, bz)
}

// AddressSize is the fixed byte length of every account address
const AddressSize = 20

// checkAddress() validates the shape of an account address
func checkAddress(address []byte) lib.ErrorI {
	if len(address) == 0 {
		return ErrAddressEmpty()
	}
	if len(address) != AddressSize {
		return ErrAddressSize(address)
	}
	return nil
}
