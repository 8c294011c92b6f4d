package file_service

import (
	"errors"
	"fmt"
)

var (
	ErrNameTooLong         = errors.New("file name too long")
	ErrInvalidName         = errors.New("invalid file name")
	ErrInvalidSize         = errors.New("invalid file size")
	ErrParentNotFound      = errors.New("parent directory not found")
	ErrInodeTableExhausted = errors.New("no free inodes")
	ErrDiskFull            = errors.New("no free blocks")
	ErrPartialAllocation   = errors.New("fewer blocks allocated than requested")
	ErrWriteFailure        = errors.New("failed to initialise data block")
)

// CreateError reports a failed creation and the last state it reached.
type CreateError struct {
	Path  string
	State CreateState
	Err   error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create %s (after %s): %v", e.Path, e.State, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// PartialAllocationError accompanies a successfully created but truncated
// file under PolicyLegacy.
type PartialAllocationError struct {
	Path      string
	Requested int
	Allocated int
}

func (e *PartialAllocationError) Error() string {
	return fmt.Sprintf("create %s: only %d of %d blocks allocated", e.Path, e.Allocated, e.Requested)
}

func (e *PartialAllocationError) Is(target error) bool {
	return target == ErrPartialAllocation
}
