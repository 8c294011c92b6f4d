package block_service

import "errors"

var (
	ErrOutOfRange   = errors.New("block index out of range")
	ErrBadBlockSize = errors.New("block data does not match block size")
	ErrReadFailed   = errors.New("block read failed")
	ErrWriteFailed  = errors.New("block write failed")
)
