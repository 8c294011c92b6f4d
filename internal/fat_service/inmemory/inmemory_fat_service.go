package inmemory

import (
	"fmt"
	"sync"

	bs "github.com/AnishMulay/fatstore/internal/block_service"
	fat "github.com/AnishMulay/fatstore/internal/fat_service"
	"github.com/AnishMulay/fatstore/internal/log_service"
)

type InMemoryFATService struct {
	mu      sync.RWMutex
	entries []fat.Entry
	free    int
	ls      log_service.LogService
}

func NewInMemoryFATService(capacity int, ls log_service.LogService) (*InMemoryFATService, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("fat capacity must be positive, got %d", capacity)
	}
	s := &InMemoryFATService{
		entries: make([]fat.Entry, capacity),
		ls:      ls,
	}
	s.Reset()
	return s, nil
}

// Reset marks every entry Free.
func (s *InMemoryFATService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		s.entries[i] = fat.Free
	}
	s.free = len(s.entries)
}

func (s *InMemoryFATService) Len() int {
	return len(s.entries)
}

func (s *InMemoryFATService) IsFree(index int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bs.InRange(index, len(s.entries)) && s.entries[index].IsFree()
}

func (s *InMemoryFATService) FreeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.free
}

func (s *InMemoryFATService) Entry(index int) (fat.Entry, error) {
	if !bs.InRange(index, len(s.entries)) {
		return fat.Free, fmt.Errorf("entry %d: %w", index, fat.ErrOutOfRange)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[index], nil
}

func (s *InMemoryFATService) Claim(index int) error {
	if !bs.InRange(index, len(s.entries)) {
		return fmt.Errorf("claim %d: %w", index, fat.ErrOutOfRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.entries[index].IsFree() {
		return fmt.Errorf("claim %d (%s): %w", index, s.entries[index], fat.ErrBlockInUse)
	}
	s.entries[index] = fat.EndOfChain
	s.free--
	return nil
}

func (s *InMemoryFATService) Extend(current int, next int) error {
	if !bs.InRange(current, len(s.entries)) {
		return fmt.Errorf("extend %d: %w", current, fat.ErrOutOfRange)
	}
	if next != bs.NoBlock && !bs.InRange(next, len(s.entries)) {
		return fmt.Errorf("extend %d -> %d: %w", current, next, fat.ErrOutOfRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[current].IsFree() {
		s.free--
	}
	if next == bs.NoBlock {
		s.entries[current] = fat.EndOfChain
	} else {
		s.entries[current] = fat.Next(next)
	}
	return nil
}

func (s *InMemoryFATService) Release(index int) error {
	if !bs.InRange(index, len(s.entries)) {
		return fmt.Errorf("release %d: %w", index, fat.ErrOutOfRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.entries[index].IsFree() {
		s.entries[index] = fat.Free
		s.free++
	}
	return nil
}

func (s *InMemoryFATService) Walk(head int) ([]int, error) {
	if head == bs.NoBlock {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var chain []int
	cur := head
	for hops := 0; ; hops++ {
		if hops >= len(s.entries) {
			return chain, fmt.Errorf("walk from %d: %w", head, fat.ErrCycle)
		}
		if !bs.InRange(cur, len(s.entries)) {
			return chain, fmt.Errorf("walk from %d reached %d: %w", head, cur, fat.ErrOutOfRange)
		}
		e := s.entries[cur]
		if e.IsFree() {
			return chain, fmt.Errorf("walk from %d reached %d: %w", head, cur, fat.ErrBrokenChain)
		}
		chain = append(chain, cur)
		next, ok := e.Next()
		if !ok {
			return chain, nil
		}
		cur = next
	}
}

func (s *InMemoryFATService) FreeChain(head int) (int, error) {
	if head == bs.NoBlock {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	freed := 0
	cur := head
	for hops := 0; hops < len(s.entries); hops++ {
		if !bs.InRange(cur, len(s.entries)) {
			return freed, fmt.Errorf("free chain from %d reached %d: %w", head, cur, fat.ErrOutOfRange)
		}
		e := s.entries[cur]
		if e.IsFree() {
			// Already released; a cycle back into the freed prefix ends here too.
			return freed, nil
		}
		s.entries[cur] = fat.Free
		s.free++
		freed++

		next, ok := e.Next()
		if !ok {
			s.ls.Debug(log_service.LogEvent{
				Message:  "Freed chain",
				Metadata: map[string]any{"head": head, "blocks": freed},
			})
			return freed, nil
		}
		cur = next
	}
	return freed, fmt.Errorf("free chain from %d: %w", head, fat.ErrCycle)
}

var _ fat.FATService = (*InMemoryFATService)(nil)
