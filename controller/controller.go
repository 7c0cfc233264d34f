package controller

import (
	"bytes"
	"sync"

	"github.com/meridian-network/meridian/fsm"
	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/store"
)

/*
	Controller is the reorg coordinator: the single writer over the ledger.
	ConnectBlock applies one block as an atomic unit and DisconnectBlock
	undoes the tip exactly from its recorded diff; a chain reorganization is
	nothing but disconnects down to the fork point followed by connects of
	the heavier branch, and the result is byte identical to replaying the
	new branch from genesis.

	Consensus, networking, and signature validation live outside this
	process boundary: blocks arrive here already ordered and authorized.
*/

type Controller struct {
	FSM    *fsm.StateMachine
	store  *store.Store
	Config lib.Config
	log    lib.LoggerI
	mutex  sync.Mutex
}

// New() creates a Controller over an opened store
func New(config lib.Config, db *store.Store, log lib.LoggerI) *Controller {
	return &Controller{
		FSM:    fsm.New(config, db, log),
		store:  db,
		Config: config,
		log:    log,
	}
}

// Height() returns the number of connected blocks (the committed version)
func (c *Controller) Height() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.store.Version()
}

// LastBlockHash() returns the hash of the chain tip
func (c *Controller) LastBlockHash() []byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.store.LastBlockHash()
}

// InitGenesis() applies the genesis state and commits it as height 1; the
// genesis block hash is the hash of the canonical genesis encoding
func (c *Controller) InitGenesis(genesis *fsm.GenesisState) lib.ErrorI {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.store.Version() != 0 {
		// already initialized; nothing to do
		return nil
	}
	bz, err := lib.Marshal(genesis)
	if err != nil {
		return err
	}
	if err = c.FSM.ApplyGenesisState(genesis); err != nil {
		c.store.Reset()
		return err
	}
	hash := lib.Hash(bz)
	if err = c.store.Commit(hash); err != nil {
		c.store.Reset()
		return err
	}
	c.log.Infof("initialized chain from genesis, hash %x", hash)
	return nil
}

// ConnectBlock() validates the block's chain position and applies it as one
// atomic unit: either every mutation of every transaction lands together
// with the block's undo diff, or the store is untouched
func (c *Controller) ConnectBlock(block *lib.Block) lib.ErrorI {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connectBlock(block)
}

func (c *Controller) connectBlock(block *lib.Block) lib.ErrorI {
	if err := block.Check(); err != nil {
		return err
	}
	header := block.BlockHeader
	if want := c.store.Version() + 1; header.Height != want {
		return ErrWrongBlockHeight(header.Height, want)
	}
	if tip := c.store.LastBlockHash(); !bytes.Equal(header.LastBlockHash, tip) {
		return ErrBrokenBlockLink(tip, header.LastBlockHash)
	}
	// a transaction connects at most once, ever: not twice across blocks and
	// not twice within this block
	hashes := make([][]byte, len(block.Transactions))
	seen := make(map[string]struct{}, len(block.Transactions))
	for i, tx := range block.Transactions {
		hash, err := tx.Hash()
		if err != nil {
			return err
		}
		if _, dup := seen[string(hash)]; dup {
			return ErrDuplicateTx(hash)
		}
		seen[string(hash)] = struct{}{}
		if indexed, err := c.store.Get(fsm.KeyForTxIndex(hash)); err != nil {
			return err
		} else if indexed != nil {
			return ErrDuplicateTx(hash)
		}
		hashes[i] = hash
	}
	if err := c.FSM.ApplyBlock(block); err != nil {
		c.store.Reset()
		return ErrFailedTxInBlock(err)
	}
	// the block record and tx index are state too, so a disconnect
	// removes them with everything else
	if err := c.indexBlock(block, hashes); err != nil {
		c.store.Reset()
		return err
	}
	if err := c.store.Commit(header.Hash); err != nil {
		c.store.Reset()
		return err
	}
	c.log.Infof("connected block %s at height %d (%d txs)", header.Hash, header.Height, len(block.Transactions))
	return nil
}

// DisconnectBlock() undoes the tip block by replaying its recorded undo
// diff; hash must name the tip
func (c *Controller) DisconnectBlock(hash []byte) lib.ErrorI {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.disconnectBlock(hash)
}

func (c *Controller) disconnectBlock(hash []byte) lib.ErrorI {
	if len(hash) == 0 {
		return ErrEmptyBlockHash()
	}
	if c.store.Version() <= 1 {
		return ErrDisconnectGenesis()
	}
	if tip := c.store.LastBlockHash(); !bytes.Equal(hash, tip) {
		return ErrNotTipBlock(hash)
	}
	height := c.store.Version()
	if err := c.store.Rollback(hash); err != nil {
		return err
	}
	c.log.Infof("disconnected block %x at height %d", hash, height)
	return nil
}

// Reorg() switches to a heavier branch: disconnects down to the branch's
// fork point, then connects its blocks in order. The branch must fork off
// the current chain, and its first block names the fork point by parent;
// an unknown fork point is rejected before anything is popped.
func (c *Controller) Reorg(branch []*lib.Block) lib.ErrorI {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(branch) == 0 {
		return lib.ErrInvalidArgument()
	}
	if err := branch[0].Check(); err != nil {
		return err
	}
	forkHeight, err := c.commitHeightOf(branch[0].BlockHeader.LastBlockHash)
	if err != nil {
		return err
	}
	for c.store.Version() > forkHeight {
		if err = c.disconnectBlock(c.store.LastBlockHash()); err != nil {
			return err
		}
	}
	for _, block := range branch {
		if err = c.connectBlock(block); err != nil {
			return err
		}
	}
	return nil
}

// commitHeightOf() resolves a block hash to the height it was committed at,
// walking the commit records down from the tip
func (c *Controller) commitHeightOf(hash []byte) (uint64, lib.ErrorI) {
	for height := c.store.Version(); height >= 1; height-- {
		id, err := c.store.CommitIDAt(height)
		if err != nil {
			return 0, err
		}
		if id.Equals(&lib.CommitID{Height: height, BlockHash: hash}) {
			return height, nil
		}
	}
	return 0, ErrUnknownForkPoint(hash)
}

// GetBlockByHeight() loads a connected block record
func (c *Controller) GetBlockByHeight(height uint64) (*lib.Block, lib.ErrorI) {
	bz, err := c.store.Get(fsm.KeyForBlock(height))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, lib.ErrNilBlock()
	}
	block := new(lib.Block)
	if err = lib.Unmarshal(bz, block); err != nil {
		return nil, err
	}
	return block, nil
}

// SnapshotFSM() returns a read-only state machine over the latest committed
// version for concurrent queries; callers must invoke the returned release
// function when done
func (c *Controller) SnapshotFSM() (*fsm.StateMachine, func(), lib.ErrorI) {
	snap, err := c.store.NewReadOnly()
	if err != nil {
		return nil, nil, err
	}
	return fsm.New(c.Config, snap, c.log), snap.Discard, nil
}

// indexBlock() persists the block record and its tx index entries as state
func (c *Controller) indexBlock(block *lib.Block, txHashes [][]byte) lib.ErrorI {
	bz, err := lib.Marshal(block)
	if err != nil {
		return err
	}
	if err = c.store.Set(fsm.KeyForBlock(block.BlockHeader.Height), bz); err != nil {
		return err
	}
	heightBz := lib.FormatUint64(block.BlockHeader.Height)
	for _, hash := range txHashes {
		if err = c.store.Set(fsm.KeyForTxIndex(hash), heightBz); err != nil {
			return err
		}
	}
	return nil
}
