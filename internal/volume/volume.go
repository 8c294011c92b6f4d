package volume

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AnishMulay/fatstore/internal/allocator_service/linear"
	bs "github.com/AnishMulay/fatstore/internal/block_service"
	bsmem "github.com/AnishMulay/fatstore/internal/block_service/inmemory"
	bsdisc "github.com/AnishMulay/fatstore/internal/block_service/localdisc"
	"github.com/AnishMulay/fatstore/internal/config"
	fat "github.com/AnishMulay/fatstore/internal/fat_service"
	fatmem "github.com/AnishMulay/fatstore/internal/fat_service/inmemory"
	fs "github.com/AnishMulay/fatstore/internal/file_service"
	"github.com/AnishMulay/fatstore/internal/file_service/simple"
	is "github.com/AnishMulay/fatstore/internal/inode_service"
	ismem "github.com/AnishMulay/fatstore/internal/inode_service/inmemory"
	"github.com/AnishMulay/fatstore/internal/log_service"
	"github.com/AnishMulay/fatstore/internal/path_resolver/prefix"
	"github.com/google/uuid"
)

type Options struct {
	Name     string
	Geometry Geometry
	Policy   fs.AllocationPolicy
	Prefixes []string

	// Store selects where block contents live: config.StoreMemory (the
	// default) or config.StoreLocal, which keeps one file per block under
	// DataDir/<Name>.
	Store   string
	DataDir string

	// LogService receives every component's events. Build does not close it.
	LogService log_service.LogService
}

// OptionsFromConfig maps a validated config onto Options and builds the
// configured log backend. The caller owns the returned closer.
func OptionsFromConfig(cfg *config.Config) (Options, func() error, error) {
	ls, closer, err := NewLogService(cfg.Log, cfg.Volume.Name)
	if err != nil {
		return Options{}, nil, err
	}
	return Options{
		Name:       cfg.Volume.Name,
		Geometry:   GeometryFromConfig(cfg.Volume),
		Policy:     cfg.Policy(),
		Prefixes:   cfg.Resolver.Prefixes,
		Store:      cfg.Volume.Store,
		DataDir:    cfg.Volume.DataDir,
		LogService: ls,
	}, closer, nil
}

// Volume is one formatted store: block array, FAT, inode table and the file
// service that ties them together. Creations hold the write lock for their
// whole duration; inspections share the read lock.
type Volume struct {
	mu     sync.RWMutex
	sb     Superblock
	blocks bs.Store
	fat    *fatmem.InMemoryFATService
	inodes *ismem.InMemoryInodeService
	files  *simple.SimpleFileService
	ls     log_service.LogService
}

func Build(opts Options) (*Volume, error) {
	if opts.LogService == nil {
		return nil, fmt.Errorf("%w: no log service", ErrBadLogging)
	}
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		opts.Name = "vol0"
	}
	ls := opts.LogService
	g := opts.Geometry

	blocks, err := newBlockStore(opts)
	if err != nil {
		return nil, err
	}
	fatService, err := fatmem.NewInMemoryFATService(g.BlockCount, ls)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadGeometry, err)
	}
	inodes, err := ismem.NewInMemoryInodeService(g.InodeCount, ls)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadGeometry, err)
	}

	alloc := linear.NewLinearAllocator(fatService, inodes)
	resolver := prefix.NewPrefixResolver(opts.Prefixes, is.RootInode, ls)
	files := simple.NewSimpleFileService(blocks, fatService, inodes, alloc, resolver, ls, simple.Options{
		MaxNameLen: g.MaxNameLen,
		Policy:     opts.Policy,
	})

	v := &Volume{
		sb:     Superblock{Name: opts.Name, Geometry: g, RootInode: is.RootInode},
		blocks: blocks,
		fat:    fatService,
		inodes: inodes,
		files:  files,
		ls:     ls,
	}
	if _, err := v.Format(); err != nil {
		return nil, err
	}
	return v, nil
}

func newBlockStore(opts Options) (bs.Store, error) {
	g := opts.Geometry
	switch strings.ToLower(opts.Store) {
	case config.StoreMemory, "":
		s, err := bsmem.NewInMemoryBlockService(g.BlockCount, g.BlockSize, opts.LogService)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadGeometry, err)
		}
		return s, nil
	case config.StoreLocal:
		s, err := bsdisc.NewLocalDiscBlockService(filepath.Join(opts.DataDir, opts.Name), g.BlockCount, g.BlockSize, opts.LogService)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadStore, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadStore, opts.Store)
	}
}

// Format frees every block and inode, reserves the root inode and issues a
// fresh superblock.
func (v *Volume) Format() (Superblock, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.blocks.Reset(); err != nil {
		return Superblock{}, fmt.Errorf("wiping blocks: %w", err)
	}
	v.fat.Reset()
	v.inodes.Reset()
	if err := v.inodes.ReserveIndex(is.RootInode); err != nil {
		return Superblock{}, fmt.Errorf("reserving root inode: %w", err)
	}

	v.sb.VolumeID = uuid.New()
	v.sb.CreatedAt = time.Now().UTC()

	v.ls.Info(log_service.LogEvent{
		Message: "Volume formatted",
		Metadata: map[string]any{
			"volume":     v.sb.Name,
			"volumeID":   v.sb.VolumeID.String(),
			"blockCount": v.sb.Geometry.BlockCount,
			"blockSize":  v.sb.Geometry.BlockSize,
			"inodeCount": v.sb.Geometry.InodeCount,
			"policy":     string(v.files.Policy()),
		},
	})
	return v.sb, nil
}

func (v *Volume) Superblock() Superblock {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sb
}

func (v *Volume) CreateFile(ctx context.Context, req fs.CreateRequest) (*fs.DirectoryEntry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.files.CreateFile(ctx, req)
}

func (v *Volume) Stats() Stats {
	v.mu.RLock()
	defer v.mu.RUnlock()

	free := v.fat.FreeCount()
	used := v.inodes.UsedCount()
	return Stats{
		Superblock: v.sb,
		FreeBlocks: free,
		UsedBlocks: v.fat.Len() - free,
		FreeInodes: v.inodes.Len() - used,
		UsedInodes: used,
	}
}

func (v *Volume) Inode(index int) (is.Inode, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.inodes.Get(index)
}

// Chain returns the blocks owned by an inode, in order. It fails with
// fat_service.ErrBrokenChain when the chain length disagrees with the inode.
func (v *Volume) Chain(index int) ([]int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	ino, err := v.inodes.Get(index)
	if err != nil {
		return nil, err
	}
	if !ino.Used {
		return nil, fmt.Errorf("chain of inode %d: %w", index, is.ErrNotUsed)
	}
	if ino.Empty() {
		return []int{}, nil
	}

	chain, err := v.fat.Walk(ino.HeadBlock)
	if err != nil {
		return nil, fmt.Errorf("chain of inode %d: %w", index, err)
	}
	if len(chain) != ino.BlockCount {
		return nil, fmt.Errorf("chain of inode %d has %d blocks, inode records %d: %w", index, len(chain), ino.BlockCount, fat.ErrBrokenChain)
	}
	return chain, nil
}

// FATEntry exposes a raw table slot for inspection tools.
func (v *Volume) FATEntry(index int) (fat.Entry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.fat.Entry(index)
}

func (v *Volume) ReadBlock(index int) (bs.Block, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.blocks.ReadBlock(index)
}

var _ fs.FileService = (*Volume)(nil)
