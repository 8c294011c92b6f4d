package inode_service

import (
	as "github.com/AnishMulay/fatstore/internal/allocator_service"
	bs "github.com/AnishMulay/fatstore/internal/block_service"
)

const DefaultInodeCount = 1000

// RootInode is reserved at format for the root directory.
const RootInode = 0

// Inode roots one file's block chain. HeadBlock is block_service.NoBlock
// exactly when BlockCount is zero.
type Inode struct {
	Index      int
	Used       bool
	HeadBlock  int
	BlockCount int
}

func (i Inode) Empty() bool {
	return i.HeadBlock == bs.NoBlock
}

type InodeService interface {
	Len() int
	IsFree(index int) bool
	UsedCount() int
	Get(index int) (Inode, error)

	// Reserve claims the inode alloc picks and resets it to an empty file.
	// A pick that another caller claimed first is retried.
	Reserve(alloc as.Allocator) (int, error)
	// ReserveIndex claims a specific inode.
	ReserveIndex(index int) error
	// Release returns an inode to the free pool. Only rollback paths call it.
	Release(index int) error
	// Bind records the chain an inode owns once the chain is complete.
	Bind(index int, headBlock int, blockCount int) error

	Reset()
}
