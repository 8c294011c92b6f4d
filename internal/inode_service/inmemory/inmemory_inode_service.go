package inmemory

import (
	"errors"
	"fmt"
	"sync"

	as "github.com/AnishMulay/fatstore/internal/allocator_service"
	bs "github.com/AnishMulay/fatstore/internal/block_service"
	is "github.com/AnishMulay/fatstore/internal/inode_service"
	"github.com/AnishMulay/fatstore/internal/log_service"
)

type InMemoryInodeService struct {
	mu     sync.RWMutex
	inodes []is.Inode
	used   int
	ls     log_service.LogService
}

func NewInMemoryInodeService(capacity int, ls log_service.LogService) (*InMemoryInodeService, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("inode capacity must be positive, got %d", capacity)
	}
	s := &InMemoryInodeService{
		inodes: make([]is.Inode, capacity),
		ls:     ls,
	}
	s.Reset()
	return s, nil
}

func (s *InMemoryInodeService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.inodes {
		s.inodes[i] = emptyInode(i)
	}
	s.used = 0
}

func emptyInode(index int) is.Inode {
	return is.Inode{Index: index, HeadBlock: bs.NoBlock}
}

func (s *InMemoryInodeService) Len() int {
	return len(s.inodes)
}

func (s *InMemoryInodeService) IsFree(index int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bs.InRange(index, len(s.inodes)) && !s.inodes[index].Used
}

func (s *InMemoryInodeService) UsedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

func (s *InMemoryInodeService) Get(index int) (is.Inode, error) {
	if !bs.InRange(index, len(s.inodes)) {
		return is.Inode{}, fmt.Errorf("inode %d: %w", index, is.ErrOutOfRange)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inodes[index], nil
}

func (s *InMemoryInodeService) Reserve(alloc as.Allocator) (int, error) {
	for {
		index, ok := alloc.FindFreeInode()
		if !ok {
			s.ls.Warn(log_service.LogEvent{
				Message:  "No free inode",
				Metadata: map[string]any{"capacity": len(s.inodes)},
			})
			return 0, is.ErrExhausted
		}
		err := s.ReserveIndex(index)
		if errors.Is(err, is.ErrInUse) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return index, nil
	}
}

func (s *InMemoryInodeService) ReserveIndex(index int) error {
	if !bs.InRange(index, len(s.inodes)) {
		return fmt.Errorf("reserve inode %d: %w", index, is.ErrOutOfRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inodes[index].Used {
		return fmt.Errorf("reserve inode %d: %w", index, is.ErrInUse)
	}
	s.claim(index)
	return nil
}

// claim must be called with the write lock held.
func (s *InMemoryInodeService) claim(index int) {
	s.inodes[index] = emptyInode(index)
	s.inodes[index].Used = true
	s.used++
}

func (s *InMemoryInodeService) Release(index int) error {
	if !bs.InRange(index, len(s.inodes)) {
		return fmt.Errorf("release inode %d: %w", index, is.ErrOutOfRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inodes[index].Used {
		return fmt.Errorf("release inode %d: %w", index, is.ErrNotUsed)
	}
	s.inodes[index] = emptyInode(index)
	s.used--
	return nil
}

func (s *InMemoryInodeService) Bind(index int, headBlock int, blockCount int) error {
	if !bs.InRange(index, len(s.inodes)) {
		return fmt.Errorf("bind inode %d: %w", index, is.ErrOutOfRange)
	}
	if blockCount < 0 || (headBlock == bs.NoBlock) != (blockCount == 0) || headBlock < bs.NoBlock {
		return fmt.Errorf("bind inode %d to head %d with %d blocks: %w", index, headBlock, blockCount, is.ErrBadBinding)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inodes[index].Used {
		return fmt.Errorf("bind inode %d: %w", index, is.ErrNotUsed)
	}
	s.inodes[index].HeadBlock = headBlock
	s.inodes[index].BlockCount = blockCount
	return nil
}

var _ is.InodeService = (*InMemoryInodeService)(nil)
