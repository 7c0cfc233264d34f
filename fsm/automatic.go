package fsm

import (
	"github.com/meridian-network/meridian/lib"
)

/* This file implements the transitions that run automatically at the edges of every block, without any transaction driving them */

// BeginBlock() runs before any transaction of the block is applied
func (s *StateMachine) BeginBlock(header *lib.BlockHeader) lib.ErrorI {
	if header == nil {
		return lib.ErrNilBlockHeader()
	}
	s.log.Debugf("applying block %s at height %d", header.Hash, header.Height)
	return nil
}

// EndBlock() runs after the last transaction of the block; height based
// order expiry happens here and only here
func (s *StateMachine) EndBlock() lib.ErrorI {
	return s.ExpireOrders()
}
