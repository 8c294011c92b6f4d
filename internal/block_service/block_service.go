package block_service

// NoBlock marks the absence of a data block, e.g. the head of an empty file.
const NoBlock = -1

const (
	DefaultBlockCount = 10000
	DefaultBlockSize  = 4096
)

// Block is the raw contents of one sector. A valid Block is exactly
// BlockSize() bytes long.
type Block []byte

// BlockService is a fixed-capacity array of fixed-size blocks addressed by
// index in [0, Capacity()). It performs bounds checks only; whether a block
// is allocated is the caller's business.
type BlockService interface {
	ReadBlock(index int) (Block, error)
	WriteBlock(index int, data Block) error
	Capacity() int
	BlockSize() int
}

// InRange reports whether index addresses a block of a store with the given
// capacity.
func InRange(index, capacity int) bool {
	return index >= 0 && index < capacity
}

// Store is a BlockService that can be wiped when its volume is formatted.
type Store interface {
	BlockService
	Reset() error
}
