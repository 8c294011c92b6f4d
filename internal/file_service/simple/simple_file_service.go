package simple

import (
	"context"
	"errors"
	"fmt"
	"sync"

	as "github.com/AnishMulay/fatstore/internal/allocator_service"
	bs "github.com/AnishMulay/fatstore/internal/block_service"
	fat "github.com/AnishMulay/fatstore/internal/fat_service"
	fs "github.com/AnishMulay/fatstore/internal/file_service"
	is "github.com/AnishMulay/fatstore/internal/inode_service"
	"github.com/AnishMulay/fatstore/internal/log_service"
	pr "github.com/AnishMulay/fatstore/internal/path_resolver"
	"github.com/google/uuid"
)

type Options struct {
	MaxNameLen int
	Policy     fs.AllocationPolicy
}

// SimpleFileService creates files one at a time. A single mutex spans the
// whole creation so that a free-slot scan and the claim that follows it are
// never interleaved with another caller.
type SimpleFileService struct {
	mu       sync.Mutex
	blocks   bs.BlockService
	fat      fat.FATService
	inodes   is.InodeService
	alloc    as.Allocator
	resolver pr.PathResolver
	ls       log_service.LogService

	maxNameLen int
	policy     fs.AllocationPolicy
}

func NewSimpleFileService(
	blocks bs.BlockService,
	fatService fat.FATService,
	inodes is.InodeService,
	alloc as.Allocator,
	resolver pr.PathResolver,
	ls log_service.LogService,
	opts Options,
) *SimpleFileService {
	if opts.MaxNameLen <= 0 {
		opts.MaxNameLen = fs.DefaultMaxNameLen
	}
	if opts.Policy == "" {
		opts.Policy = fs.PolicyStrict
	}
	return &SimpleFileService{
		blocks:     blocks,
		fat:        fatService,
		inodes:     inodes,
		alloc:      alloc,
		resolver:   resolver,
		ls:         ls,
		maxNameLen: opts.MaxNameLen,
		policy:     opts.Policy,
	}
}

func (s *SimpleFileService) Policy() fs.AllocationPolicy {
	return s.policy
}

// creation tracks what one CreateFile call holds so that fail can give it
// back.
type creation struct {
	opID  string
	req   fs.CreateRequest
	state fs.CreateState
	inode int
	head  int
}

func (c *creation) advance(s *SimpleFileService, next fs.CreateState) {
	c.state = next
	s.ls.Debug(log_service.LogEvent{
		Message:  "Create state",
		Metadata: map[string]any{"op": c.opID, "path": c.req.Path, "state": next.String()},
	})
}

func (s *SimpleFileService) CreateFile(ctx context.Context, req fs.CreateRequest) (*fs.DirectoryEntry, error) {
	c := &creation{
		opID:  uuid.NewString(),
		req:   req,
		state: fs.StateStart,
		inode: -1,
		head:  bs.NoBlock,
	}

	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, leaf := pr.Split(req.Path)
	switch {
	case leaf == "":
		return nil, s.fail(c, fmt.Errorf("%w: empty leaf name", fs.ErrInvalidName))
	case len(leaf) >= s.maxNameLen:
		return nil, s.fail(c, fmt.Errorf("%w: %q is %d bytes, must be shorter than %d", fs.ErrNameTooLong, leaf, len(leaf), s.maxNameLen))
	case req.Size < 0:
		return nil, s.fail(c, fmt.Errorf("%w: %d", fs.ErrInvalidSize, req.Size))
	}
	c.advance(s, fs.StateNameValidated)

	parent, err := s.resolver.Resolve(ctx, dir)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, s.fail(c, err)
		}
		return nil, s.fail(c, fmt.Errorf("%w: %w", fs.ErrParentNotFound, err))
	}
	if pi, err := s.inodes.Get(parent); err != nil || !pi.Used {
		return nil, s.fail(c, fmt.Errorf("%w: %q resolved to unusable inode %d", fs.ErrParentNotFound, dir, parent))
	}
	c.advance(s, fs.StateParentResolved)

	if err := ctx.Err(); err != nil {
		return nil, s.fail(c, err)
	}

	index, err := s.inodes.Reserve(s.alloc)
	if err != nil {
		return nil, s.fail(c, fmt.Errorf("%w: %w", fs.ErrInodeTableExhausted, err))
	}
	c.inode = index
	c.advance(s, fs.StateInodeReserved)

	var partial *fs.PartialAllocationError
	allocated := 0
	if req.Size == 0 {
		c.advance(s, fs.StateEmptyFile)
	} else {
		needed := bs.BlocksFor(req.Size, s.blocks.BlockSize())
		if free := s.fat.FreeCount(); s.policy != fs.PolicyLegacy && free < needed {
			return nil, s.fail(c, fmt.Errorf("%w: need %d blocks, %d free", fs.ErrDiskFull, needed, free))
		}
		allocated, err = s.buildChain(c, needed)
		if err != nil {
			return nil, s.fail(c, err)
		}
		if allocated == 0 {
			return nil, s.fail(c, fmt.Errorf("%w: need %d blocks, none free", fs.ErrDiskFull, needed))
		}
		if allocated < needed {
			if s.policy != fs.PolicyLegacy {
				return nil, s.fail(c, fmt.Errorf("%w: need %d blocks, found %d", fs.ErrDiskFull, needed, allocated))
			}
			partial = &fs.PartialAllocationError{Path: req.Path, Requested: needed, Allocated: allocated}
			s.ls.Warn(log_service.LogEvent{
				Message: "Chain truncated, keeping partial allocation",
				Metadata: map[string]any{
					"op":        c.opID,
					"path":      req.Path,
					"requested": needed,
					"allocated": allocated,
				},
			})
		}
		c.advance(s, fs.StateBlocksAllocated)

		if err := s.zeroChain(c.head, allocated); err != nil {
			return nil, s.fail(c, err)
		}
		c.advance(s, fs.StateZeroed)
	}

	if err := s.inodes.Bind(c.inode, c.head, allocated); err != nil {
		return nil, s.fail(c, err)
	}
	c.advance(s, fs.StateBound)

	entry := &fs.DirectoryEntry{
		Name:        leaf,
		Type:        fs.TypeFile,
		OwnerID:     req.OwnerID,
		GroupID:     req.GroupID,
		Permissions: req.Permissions,
		InodeIndex:  c.inode,
		Size:        req.Size,
		FirstBlock:  c.head,
		Blocks:      allocated,
	}
	c.advance(s, fs.StateDone)

	s.ls.Info(log_service.LogEvent{
		Message: "File created",
		Metadata: map[string]any{
			"op":     c.opID,
			"path":   req.Path,
			"inode":  entry.InodeIndex,
			"head":   entry.FirstBlock,
			"blocks": entry.Blocks,
			"size":   entry.Size,
		},
	})

	if partial != nil {
		return entry, partial
	}
	return entry, nil
}

// buildChain claims up to needed blocks, lowest index first, linking each one
// from its predecessor. Every claimed block reads EndOfChain until it is
// linked onward, so the chain is terminated after each step.
func (s *SimpleFileService) buildChain(c *creation, needed int) (int, error) {
	prev := bs.NoBlock
	n := 0
	for n < needed {
		b, ok := s.alloc.FindFreeBlock()
		if !ok {
			break
		}
		if err := s.fat.Claim(b); err != nil {
			return n, fmt.Errorf("claim block %d: %w", b, err)
		}
		if prev == bs.NoBlock {
			c.head = b
		} else if err := s.fat.Extend(prev, b); err != nil {
			_ = s.fat.Release(b)
			return n, fmt.Errorf("link block %d to %d: %w", prev, b, err)
		}
		prev = b
		n++
	}
	return n, nil
}

func (s *SimpleFileService) zeroChain(head int, want int) error {
	chain, err := s.fat.Walk(head)
	if err != nil {
		return fmt.Errorf("%w: %w", fs.ErrWriteFailure, err)
	}
	if len(chain) != want {
		return fmt.Errorf("%w: chain from block %d has %d blocks, want %d", fs.ErrWriteFailure, head, len(chain), want)
	}

	zero := make(bs.Block, s.blocks.BlockSize())
	for _, b := range chain {
		if err := s.blocks.WriteBlock(b, zero); err != nil {
			return fmt.Errorf("%w: %w", fs.ErrWriteFailure, err)
		}
	}
	return nil
}

// fail rolls back whatever c holds and wraps err in a CreateError.
func (s *SimpleFileService) fail(c *creation, err error) error {
	if c.head != bs.NoBlock {
		freed, ferr := s.fat.FreeChain(c.head)
		s.ls.Warn(log_service.LogEvent{
			Message:  "Rolled back block chain",
			Metadata: map[string]any{"op": c.opID, "path": c.req.Path, "head": c.head, "freed": freed},
		})
		if ferr != nil {
			s.ls.Error(log_service.LogEvent{
				Message:  "Block chain rollback incomplete",
				Metadata: map[string]any{"op": c.opID, "head": c.head, "error": ferr.Error()},
			})
		}
		c.head = bs.NoBlock
	}
	if c.inode >= 0 {
		if rerr := s.inodes.Release(c.inode); rerr != nil {
			s.ls.Error(log_service.LogEvent{
				Message:  "Inode rollback failed",
				Metadata: map[string]any{"op": c.opID, "inode": c.inode, "error": rerr.Error()},
			})
		} else {
			s.ls.Warn(log_service.LogEvent{
				Message:  "Released inode",
				Metadata: map[string]any{"op": c.opID, "path": c.req.Path, "inode": c.inode},
			})
		}
		c.inode = -1
	}

	s.ls.Error(log_service.LogEvent{
		Message: "File creation failed",
		Metadata: map[string]any{
			"op":    c.opID,
			"path":  c.req.Path,
			"state": c.state.String(),
			"error": err.Error(),
		},
	})
	return &fs.CreateError{Path: c.req.Path, State: c.state, Err: err}
}

var _ fs.FileService = (*SimpleFileService)(nil)
