package lib

import (
	"bytes"
	"encoding/json"
)

/* This file defines the block, transaction, and undo diff structures shared between the store, state machine, and controller */

// BlockHeader links a block into the chain and stamps its position
type BlockHeader struct {
	Height        uint64   `json:"height"`        // the chain position of the block; genesis occupies height 1
	Hash          HexBytes `json:"hash"`          // the unique identifier of the block
	LastBlockHash HexBytes `json:"lastBlockHash"` // the hash of the parent block
	Time          uint64   `json:"time"`          // unix micro timestamp set by the proposer
}

// Block is a header plus an ordered list of transactions
type Block struct {
	BlockHeader  *BlockHeader   `json:"blockHeader"`
	Transactions []*Transaction `json:"transactions"`
}

// Check() performs stateless validity checks on the block structure
func (b *Block) Check() ErrorI {
	if b == nil {
		return ErrNilBlock()
	}
	if b.BlockHeader == nil {
		return ErrNilBlockHeader()
	}
	if len(b.BlockHeader.Hash) != HashSize {
		return ErrInvalidArgument()
	}
	return nil
}

// Transaction is a single signed state transition request; the payload is
// kept as raw canonical JSON so the envelope stays independent of the
// message catalogue
type Transaction struct {
	Type   string          `json:"type"`   // the message type discriminator
	Msg    json.RawMessage `json:"msg"`    // the canonical JSON encoded payload
	Signer HexBytes        `json:"signer"` // the 20 byte address authorizing the transition
	Nonce  uint64          `json:"nonce"`  // caller supplied uniqueness salt
}

// Hash() returns the sha256 of the canonical encoding; used as the tx id
// and as the id of any order the tx creates
func (t *Transaction) Hash() ([]byte, ErrorI) {
	bz, err := Marshal(t)
	if err != nil {
		return nil, err
	}
	return Hash(bz), nil
}

// ValueDiff records the before and after bytes of a single key touched by a
// block; Existed flags distinguish 'absent' from 'present with empty bytes'
type ValueDiff struct {
	Key          HexBytes `json:"key"`
	Before       HexBytes `json:"before"`
	After        HexBytes `json:"after"`
	BeforeExists bool     `json:"beforeExists"`
	AfterExists  bool     `json:"afterExists"`
}

// BlockDiff is the exact undo record for one committed version
type BlockDiff struct {
	Height    uint64      `json:"height"`
	BlockHash HexBytes    `json:"blockHash"`
	Diffs     []ValueDiff `json:"diffs"`
}

// CommitID pairs a committed version with the block hash that produced it
type CommitID struct {
	Height    uint64   `json:"height"`
	BlockHash HexBytes `json:"blockHash"`
}

// Equals() compares two commit ids byte for byte
func (c *CommitID) Equals(other *CommitID) bool {
	if c == nil || other == nil {
		return false
	}
	return c.Height == other.Height && bytes.Equal(c.BlockHash, other.BlockHash)
}
