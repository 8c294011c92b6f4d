package linear

import (
	as "github.com/AnishMulay/fatstore/internal/allocator_service"
)

// FirstFree scans m from index 0 and returns the lowest free index.
func FirstFree(m as.FreeMap) (int, bool) {
	n := m.Len()
	for i := 0; i < n; i++ {
		if m.IsFree(i) {
			return i, true
		}
	}
	return 0, false
}

// LinearAllocator restarts every scan at index 0, so allocation is always
// lowest-available-index and reproducible for a given table state.
type LinearAllocator struct {
	blocks as.FreeMap
	inodes as.FreeMap
}

func NewLinearAllocator(blocks, inodes as.FreeMap) *LinearAllocator {
	return &LinearAllocator{
		blocks: blocks,
		inodes: inodes,
	}
}

func (a *LinearAllocator) FindFreeBlock() (int, bool) {
	return FirstFree(a.blocks)
}

func (a *LinearAllocator) FindFreeInode() (int, bool) {
	return FirstFree(a.inodes)
}

var _ as.Allocator = (*LinearAllocator)(nil)
