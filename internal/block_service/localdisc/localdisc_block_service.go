package localdisc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	bs "github.com/AnishMulay/fatstore/internal/block_service"
	"github.com/AnishMulay/fatstore/internal/log_service"
)

const blockExt = ".blk"

// LocalDiscBlockService keeps one file per written block under baseDir. A
// block without a file reads as zeroes.
type LocalDiscBlockService struct {
	mu        sync.RWMutex
	baseDir   string
	capacity  int
	blockSize int
	ls        log_service.LogService
}

func NewLocalDiscBlockService(baseDir string, capacity, blockSize int, ls log_service.LogService) (*LocalDiscBlockService, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("block capacity must be positive, got %d", capacity)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating block directory: %w", err)
	}
	return &LocalDiscBlockService{
		baseDir:   baseDir,
		capacity:  capacity,
		blockSize: blockSize,
		ls:        ls,
	}, nil
}

func (s *LocalDiscBlockService) blockPath(index int) string {
	return filepath.Join(s.baseDir, strconv.Itoa(index)+blockExt)
}

func (s *LocalDiscBlockService) Capacity() int {
	return s.capacity
}

func (s *LocalDiscBlockService) BlockSize() int {
	return s.blockSize
}

func (s *LocalDiscBlockService) ReadBlock(index int) (bs.Block, error) {
	if !bs.InRange(index, s.capacity) {
		return nil, fmt.Errorf("read block %d: %w", index, bs.ErrOutOfRange)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(bs.Block, s.blockSize)
	data, err := os.ReadFile(s.blockPath(index))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return out, nil
	case err != nil:
		s.ls.Error(log_service.LogEvent{
			Message:  "Failed to read block",
			Metadata: map[string]any{"block": index, "error": err.Error()},
		})
		return nil, fmt.Errorf("read block %d: %w: %w", index, bs.ErrReadFailed, err)
	}
	copy(out, data)
	return out, nil
}

func (s *LocalDiscBlockService) WriteBlock(index int, data bs.Block) error {
	if !bs.InRange(index, s.capacity) {
		s.ls.Error(log_service.LogEvent{
			Message:  "Block write out of range",
			Metadata: map[string]any{"block": index, "capacity": s.capacity},
		})
		return fmt.Errorf("write block %d: %w", index, bs.ErrOutOfRange)
	}
	if len(data) != s.blockSize {
		return fmt.Errorf("write block %d: %d bytes: %w", index, len(data), bs.ErrBadBlockSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.blockPath(index), data, 0644); err != nil {
		s.ls.Error(log_service.LogEvent{
			Message:  "Failed to write block",
			Metadata: map[string]any{"block": index, "error": err.Error()},
		})
		return fmt.Errorf("write block %d: %w: %w", index, bs.ErrWriteFailed, err)
	}

	s.ls.Debug(log_service.LogEvent{
		Message:  "Block written",
		Metadata: map[string]any{"block": index, "size": len(data)},
	})
	return nil
}

// Reset removes every block file under baseDir. Other files are left alone.
func (s *LocalDiscBlockService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("listing block directory: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), blockExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, e.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", e.Name(), err)
		}
		removed++
	}

	s.ls.Info(log_service.LogEvent{
		Message:  "Block directory wiped",
		Metadata: map[string]any{"dir": s.baseDir, "removed": removed},
	})
	return nil
}

var _ bs.Store = (*LocalDiscBlockService)(nil)
