package allocator_service

// FreeMap is the read-only view the allocator scans. Both the FAT and the
// inode table implement it.
type FreeMap interface {
	Len() int
	IsFree(index int) bool
}

// Allocator picks the next free block and inode. It never claims anything;
// callers claim the returned index themselves and must handle a pick that
// was claimed between the scan and the claim.
type Allocator interface {
	FindFreeBlock() (int, bool)
	FindFreeInode() (int, bool)
}
