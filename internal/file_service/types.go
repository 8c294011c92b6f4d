package file_service

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxNameLen = 11
	PermissionsLen    = 14
)

type FileType int

const (
	TypeFile FileType = iota
	TypeDirectory
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	default:
		return fmt.Sprintf("FileType(%d)", int(t))
	}
}

// Permissions is a fixed-length vector of permission flags.
type Permissions [PermissionsLen]bool

// ParsePermissions reads a string of exactly PermissionsLen '0'/'1' runes.
func ParsePermissions(s string) (Permissions, error) {
	var p Permissions
	if len(s) != PermissionsLen {
		return p, fmt.Errorf("permissions %q: want %d flags, got %d", s, PermissionsLen, len(s))
	}
	for i, c := range s {
		switch c {
		case '1':
			p[i] = true
		case '0':
		default:
			return p, fmt.Errorf("permissions %q: flag %d is %q, want 0 or 1", s, i, c)
		}
	}
	return p, nil
}

func (p Permissions) String() string {
	var b strings.Builder
	for _, f := range p {
		if f {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

type CreateRequest struct {
	Path        string
	OwnerID     uint32
	GroupID     uint32
	Size        int64
	Permissions Permissions
}

// DirectoryEntry describes one created file. FirstBlock duplicates the
// inode's head block and is block_service.NoBlock for empty files.
type DirectoryEntry struct {
	Name        string
	Type        FileType
	OwnerID     uint32
	GroupID     uint32
	Permissions Permissions
	InodeIndex  int
	Size        int64
	FirstBlock  int
	Blocks      int
}

// AllocationPolicy decides what happens when the volume runs out of blocks
// part way through a chain.
type AllocationPolicy string

const (
	// PolicyStrict rolls the whole creation back.
	PolicyStrict AllocationPolicy = "strict"
	// PolicyLegacy keeps the shorter chain and reports a warning.
	PolicyLegacy AllocationPolicy = "legacy"
)

func ParseAllocationPolicy(s string) (AllocationPolicy, error) {
	switch AllocationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyStrict, "":
		return PolicyStrict, nil
	case PolicyLegacy:
		return PolicyLegacy, nil
	default:
		return "", fmt.Errorf("unknown allocation policy %q", s)
	}
}

// CreateState is a step of a single CreateFile call.
type CreateState int

const (
	StateStart CreateState = iota
	StateNameValidated
	StateParentResolved
	StateInodeReserved
	StateEmptyFile
	StateBlocksAllocated
	StateZeroed
	StateBound
	StateDone
)

var stateNames = [...]string{
	StateStart:           "start",
	StateNameValidated:   "name-validated",
	StateParentResolved:  "parent-resolved",
	StateInodeReserved:   "inode-reserved",
	StateEmptyFile:       "empty-file",
	StateBlocksAllocated: "blocks-allocated",
	StateZeroed:          "zeroed",
	StateBound:           "bound",
	StateDone:            "done",
}

func (s CreateState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("CreateState(%d)", int(s))
}
