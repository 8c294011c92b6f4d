package fat_service

import "fmt"

// Entry is one slot of the file-allocation table. Non-negative values link
// to the next block of the chain; the two negative values are markers, so
// block 0 is a legal successor.
type Entry int32

const (
	Free       Entry = -1
	EndOfChain Entry = -2
)

// Next links to the block at index.
func Next(index int) Entry {
	return Entry(index)
}

func (e Entry) IsFree() bool {
	return e == Free
}

func (e Entry) IsEnd() bool {
	return e == EndOfChain
}

// Next returns the successor block, if e links to one.
func (e Entry) Next() (int, bool) {
	if e < 0 {
		return 0, false
	}
	return int(e), true
}

func (e Entry) String() string {
	switch e {
	case Free:
		return "free"
	case EndOfChain:
		return "eoc"
	default:
		return fmt.Sprintf("next(%d)", int(e))
	}
}

// FATService maintains singly linked block chains, one entry per block of
// the volume.
type FATService interface {
	Len() int
	IsFree(index int) bool
	FreeCount() int
	Entry(index int) (Entry, error)

	// Claim moves a free block to EndOfChain so that no later scan can hand
	// it out again.
	Claim(index int) error
	// Extend links current to next, or terminates current when next is
	// block_service.NoBlock.
	Extend(current int, next int) error
	Release(index int) error

	// Walk returns the blocks of the chain starting at head, in order.
	Walk(head int) ([]int, error)
	// FreeChain resets every entry of the chain starting at head to Free and
	// reports how many entries it freed.
	FreeChain(head int) (int, error)

	Reset()
}
