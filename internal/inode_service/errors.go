package inode_service

import "errors"

var (
	ErrOutOfRange = errors.New("inode index out of range")
	ErrExhausted  = errors.New("inode table exhausted")
	ErrInUse      = errors.New("inode already in use")
	ErrNotUsed    = errors.New("inode not in use")
	ErrBadBinding = errors.New("head block and block count disagree")
)
