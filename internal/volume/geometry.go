package volume

import (
	"fmt"
	"time"

	bs "github.com/AnishMulay/fatstore/internal/block_service"
	"github.com/AnishMulay/fatstore/internal/config"
	fs "github.com/AnishMulay/fatstore/internal/file_service"
	is "github.com/AnishMulay/fatstore/internal/inode_service"
	"github.com/google/uuid"
)

type Geometry struct {
	BlockCount int
	BlockSize  int
	InodeCount int
	MaxNameLen int
}

func DefaultGeometry() Geometry {
	return Geometry{
		BlockCount: bs.DefaultBlockCount,
		BlockSize:  bs.DefaultBlockSize,
		InodeCount: is.DefaultInodeCount,
		MaxNameLen: fs.DefaultMaxNameLen,
	}
}

func GeometryFromConfig(c config.VolumeConfig) Geometry {
	return Geometry{
		BlockCount: c.BlockCount,
		BlockSize:  c.BlockSize,
		InodeCount: c.InodeCount,
		MaxNameLen: c.MaxNameLen,
	}
}

// Validate requires room for the root inode plus at least one file.
func (g Geometry) Validate() error {
	switch {
	case g.BlockCount <= 0:
		return fmt.Errorf("%w: block count %d", ErrBadGeometry, g.BlockCount)
	case g.BlockSize <= 0:
		return fmt.Errorf("%w: block size %d", ErrBadGeometry, g.BlockSize)
	case g.InodeCount < 2:
		return fmt.Errorf("%w: inode count %d", ErrBadGeometry, g.InodeCount)
	case g.MaxNameLen < 2:
		return fmt.Errorf("%w: max name length %d", ErrBadGeometry, g.MaxNameLen)
	}
	return nil
}

// Capacity is the number of data bytes the volume can hold.
func (g Geometry) Capacity() int64 {
	return int64(g.BlockCount) * int64(g.BlockSize)
}

// Superblock describes one formatting of a volume. Every Format issues a new
// VolumeID.
type Superblock struct {
	VolumeID  uuid.UUID
	Name      string
	Geometry  Geometry
	CreatedAt time.Time
	RootInode int
}

type Stats struct {
	Superblock
	FreeBlocks int
	UsedBlocks int
	FreeInodes int
	UsedInodes int
}
