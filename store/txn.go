package store

import (
	"bytes"
	"sort"
	"strings"

	"github.com/meridian-network/meridian/lib"
)

// enforce the StoreTxnI interface
var _ lib.StoreTxnI = &Txn{}

/*
	Txn buffers set/del operations in memory on top of a parent store and lets
	the caller Write() them down or Discard() them. Reads and iteration merge
	the buffer with the parent as if Write() had already happened.

	This is how a single transaction gets all-or-nothing semantics inside a
	block: the state machine applies each transaction into a Txn and only
	writes it down if every check passed, so a failing transaction leaves
	zero mutations behind.

	CONTRACT:
	- not thread safe
	- deleted values read back as nil through the overlay
	- nesting works but iteration cost grows per level
*/

type Txn struct {
	parent lib.RWStoreI // store to Write() to
	txn
}

// internal txn structure maintains the buffered operations sorted lexicographically by key
type txn struct {
	ops       map[string]op // [string(key)] -> buffered set/del operation
	sorted    []string      // ops keys in lexicographical order; needed for iteration
	sortedLen int           // len(sorted)
}

// op holds the value portion of a buffered operation and whether it is a delete
type op struct {
	value  []byte
	delete bool
}

// NewTxn() creates a new buffered overlay on the given parent store
func NewTxn(parent lib.RWStoreI) *Txn {
	return &Txn{parent: parent, txn: txn{ops: make(map[string]op), sorted: make([]string, 0)}}
}

// Get() returns the buffered value if the key was touched, else reads through to the parent
func (c *Txn) Get(key []byte) ([]byte, lib.ErrorI) {
	if v, found := c.ops[string(key)]; found {
		return v.value, nil
	}
	return c.parent.Get(key)
}

// Set() buffers a write for the key
func (c *Txn) Set(key, value []byte) lib.ErrorI { c.update(string(key), value, false); return nil }

// Delete() buffers a delete for the key
func (c *Txn) Delete(key []byte) lib.ErrorI { c.update(string(key), nil, true); return nil }

// update() records the operation and keeps the sorted key list in order
func (c *Txn) update(key string, v []byte, delete bool) {
	if _, found := c.ops[key]; !found {
		c.addToSorted(key)
	}
	c.ops[key] = op{value: v, delete: delete}
}

// addToSorted() inserts a key into the sorted list preserving lexicographical order
func (c *Txn) addToSorted(key string) {
	i := sort.Search(c.sortedLen, func(i int) bool { return c.sorted[i] >= key })
	c.sorted = append(c.sorted, "")
	copy(c.sorted[i+1:], c.sorted[i:])
	c.sorted[i] = key
	c.sortedLen++
}

// Iterator() returns a merged iterator over the buffer and the parent for the given prefix
func (c *Txn) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent, err := c.parent.Iterator(prefix)
	if err != nil {
		return nil, err
	}
	return newTxnIterator(parent, c.txn, prefix, false), nil
}

// RevIterator() returns a merged reverse iterator over the buffer and the parent for the given prefix
func (c *Txn) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent, err := c.parent.RevIterator(prefix)
	if err != nil {
		return nil, err
	}
	return newTxnIterator(parent, c.txn, prefix, true), nil
}

// Discard() drops all buffered operations
func (c *Txn) Discard() { c.ops, c.sorted, c.sortedLen = nil, nil, 0 }

// Write() applies the buffered operations to the parent store in sorted key
// order and resets the buffer
func (c *Txn) Write() (err lib.ErrorI) {
	for _, k := range c.sorted {
		if v := c.ops[k]; v.delete {
			if err = c.parent.Delete([]byte(k)); err != nil {
				return
			}
		} else {
			if err = c.parent.Set([]byte(k), v.value); err != nil {
				return
			}
		}
	}
	c.ops, c.sorted, c.sortedLen = make(map[string]op), make([]string, 0), 0
	return
}

// enforce the Iterator interface
var _ lib.IteratorI = &TxnIterator{}

// TxnIterator is a reversible, merged iterator of the parent and the buffered operations
type TxnIterator struct {
	parent lib.IteratorI
	txn
	prefix  string
	index   int
	reverse bool
	invalid bool
	useTxn  bool
}

// newTxnIterator() initializes a merged iterator positioned at the first valid entry
func newTxnIterator(parent lib.IteratorI, t txn, prefix []byte, reverse bool) *TxnIterator {
	it := &TxnIterator{parent: parent, txn: t, prefix: string(prefix), reverse: reverse}
	if reverse {
		return it.revSeek()
	}
	return it.seek()
}

// Close() closes the merged iterator
func (c *TxnIterator) Close() { c.parent.Close() }

// Next() advances the iterator, choosing between buffered and parent entries
func (c *TxnIterator) Next() {
	// if the parent is exhausted advance the buffer, and vice versa
	if !c.parent.Valid() {
		c.txnNext()
		return
	}
	if c.txnInvalid() {
		c.parent.Next()
		return
	}
	// both sides are live; the smaller key (direction adjusted) moves first
	switch c.compare(c.txnKey(), c.parent.Key()) {
	case 1: // use parent
		c.parent.Next()
	case 0: // use both
		c.parent.Next()
		c.txnNext()
	case -1: // use txn
		c.txnNext()
	}
}

// Key() returns the current key from either side of the merge
func (c *TxnIterator) Key() []byte {
	if c.useTxn {
		return c.txnKey()
	}
	return c.parent.Key()
}

// Value() returns the current value from either side of the merge
func (c *TxnIterator) Value() []byte {
	if c.useTxn {
		return c.txnValue().value
	}
	return c.parent.Value()
}

// Valid() checks if the current position is a live entry, skipping buffered deletes
// and letting buffered writes shadow the parent on equal keys
func (c *TxnIterator) Valid() bool {
	for {
		if !c.parent.Valid() {
			// only the buffer remains; skip deletes until live or exhausted
			c.txnFastForward()
			c.useTxn = true
			break
		}
		if c.txnInvalid() {
			c.useTxn = false
			break
		}
		cKey, pKey := c.txnKey(), c.parent.Key()
		switch c.compare(cKey, pKey) {
		case 1: // use parent
			c.useTxn = false
		case 0: // when equal the buffer shadows the parent
			if c.txnValue().delete {
				c.parent.Next()
				c.txnNext()
				continue
			}
			c.useTxn = true
		case -1: // use txn
			if c.txnValue().delete {
				c.txnNext()
				continue
			}
			c.useTxn = true
		}
		break
	}
	return !c.txnInvalid() || c.parent.Valid()
}

// txnFastForward() skips buffered deletes; returns positioned on a live entry or invalid
func (c *TxnIterator) txnFastForward() {
	for {
		if c.txnInvalid() || !c.txnValue().delete {
			return
		}
		c.txnNext()
	}
}

// txnInvalid() determines if the buffered side of the merge is exhausted
func (c *TxnIterator) txnInvalid() bool {
	if c.invalid {
		return c.invalid
	}
	c.invalid = true
	if c.reverse {
		if c.index < 0 {
			return c.invalid
		}
	} else {
		if c.index >= c.sortedLen {
			return c.invalid
		}
	}
	if !strings.HasPrefix(c.sorted[c.index], c.prefix) {
		return c.invalid
	}
	c.invalid = false
	return c.invalid
}

// txnKey() returns the key of the current buffered operation
func (c *TxnIterator) txnKey() []byte { return []byte(c.sorted[c.index]) }

// txnValue() returns the current buffered operation
func (c *TxnIterator) txnValue() op { return c.ops[c.sorted[c.index]] }

// compare() compares two keys, inverted for reverse iteration
func (c *TxnIterator) compare(a, b []byte) int {
	if c.reverse {
		return bytes.Compare(a, b) * -1
	}
	return bytes.Compare(a, b)
}

// txnNext() advances the buffered index in the iteration direction
func (c *TxnIterator) txnNext() {
	if c.reverse {
		c.index--
	} else {
		c.index++
	}
}

// seek() positions the iterator at the first buffered key matching the prefix
func (c *TxnIterator) seek() *TxnIterator {
	c.index = sort.Search(c.sortedLen, func(i int) bool { return c.sorted[i] >= c.prefix })
	return c
}

// revSeek() positions the iterator at the last buffered key matching the prefix
func (c *TxnIterator) revSeek() *TxnIterator {
	endPrefix := string(prefixEnd([]byte(c.prefix)))
	c.index = sort.Search(c.sortedLen, func(i int) bool { return c.sorted[i] >= endPrefix }) - 1
	return c
}
