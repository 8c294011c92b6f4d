package fat_service

import "errors"

var (
	ErrOutOfRange  = errors.New("fat index out of range")
	ErrBlockInUse  = errors.New("block already in use")
	ErrCycle       = errors.New("fat chain does not terminate")
	ErrBrokenChain = errors.New("fat chain runs into a free block")
)
