package inmemory

import (
	"fmt"
	"sync"

	bs "github.com/AnishMulay/fatstore/internal/block_service"
	"github.com/AnishMulay/fatstore/internal/log_service"
)

// InMemoryBlockService keeps every block in process memory. Blocks are
// materialised on first write; an unwritten block reads as zeroes.
type InMemoryBlockService struct {
	mu        sync.RWMutex
	blocks    [][]byte
	blockSize int
	ls        log_service.LogService
}

func NewInMemoryBlockService(capacity, blockSize int, ls log_service.LogService) (*InMemoryBlockService, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("block capacity must be positive, got %d", capacity)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}
	return &InMemoryBlockService{
		blocks:    make([][]byte, capacity),
		blockSize: blockSize,
		ls:        ls,
	}, nil
}

func (s *InMemoryBlockService) Capacity() int {
	return len(s.blocks)
}

func (s *InMemoryBlockService) BlockSize() int {
	return s.blockSize
}

func (s *InMemoryBlockService) ReadBlock(index int) (bs.Block, error) {
	if !bs.InRange(index, len(s.blocks)) {
		return nil, fmt.Errorf("read block %d: %w", index, bs.ErrOutOfRange)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(bs.Block, s.blockSize)
	copy(out, s.blocks[index])
	return out, nil
}

func (s *InMemoryBlockService) WriteBlock(index int, data bs.Block) error {
	if !bs.InRange(index, len(s.blocks)) {
		s.ls.Error(log_service.LogEvent{
			Message:  "Block write out of range",
			Metadata: map[string]any{"block": index, "capacity": len(s.blocks)},
		})
		return fmt.Errorf("write block %d: %w", index, bs.ErrOutOfRange)
	}
	if len(data) != s.blockSize {
		return fmt.Errorf("write block %d: %d bytes: %w", index, len(data), bs.ErrBadBlockSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blocks[index] == nil {
		s.blocks[index] = make([]byte, s.blockSize)
	}
	copy(s.blocks[index], data)
	return nil
}

// Reset drops every block's contents.
func (s *InMemoryBlockService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.blocks {
		s.blocks[i] = nil
	}
	return nil
}

var _ bs.Store = (*InMemoryBlockService)(nil)
