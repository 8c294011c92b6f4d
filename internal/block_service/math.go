package block_service

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(n / d) for non-negative n and positive d.
func CeilDiv[T constraints.Integer](n, d T) T {
	if n <= 0 {
		return 0
	}
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}

// BlocksFor is the number of blocks of blockSize bytes needed to hold size
// bytes.
func BlocksFor(size int64, blockSize int) int {
	return int(CeilDiv(size, int64(blockSize)))
}
