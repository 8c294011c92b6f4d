package volume

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	fs "github.com/AnishMulay/fatstore/internal/file_service"
)

// FormatEntry renders a directory entry and its chain on one line each.
func FormatEntry(e *fs.DirectoryEntry, chain []int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s inode=%d uid=%d gid=%d perm=%s size=%d blocks=%d\n",
		e.Type, e.Name, e.InodeIndex, e.OwnerID, e.GroupID, e.Permissions, e.Size, e.Blocks)
	b.WriteString("  chain: ")
	b.WriteString(FormatChain(chain))
	b.WriteByte('\n')
	return b.String()
}

// FormatChain renders "3 -> 4 -> 7 -> eoc", or "empty" for no blocks.
func FormatChain(chain []int) string {
	if len(chain) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(chain)+1)
	for _, blk := range chain {
		parts = append(parts, strconv.Itoa(blk))
	}
	parts = append(parts, "eoc")
	return strings.Join(parts, " -> ")
}

func FormatStats(s Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "volume %s (%s) formatted %s\n", s.Name, s.VolumeID, s.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "  geometry: %d blocks x %d bytes, %d inodes, names < %d bytes\n",
		s.Geometry.BlockCount, s.Geometry.BlockSize, s.Geometry.InodeCount, s.Geometry.MaxNameLen)
	fmt.Fprintf(&b, "  blocks: %d used, %d free\n", s.UsedBlocks, s.FreeBlocks)
	fmt.Fprintf(&b, "  inodes: %d used, %d free\n", s.UsedInodes, s.FreeInodes)
	return b.String()
}
