package path_resolver

import (
	"context"
	"strings"
)

// PathResolver maps a directory path to the inode of that directory.
// Implementations return a valid, in-use inode index or an error wrapping
// ErrNotFound.
type PathResolver interface {
	Resolve(ctx context.Context, dir string) (int, error)
}

// Split breaks an absolute or relative path at its last slash. A leading
// slash alone yields "/" as the directory; a path without any slash lives in
// ".". The leaf is whatever follows the last slash and may be empty.
func Split(p string) (dir string, leaf string) {
	i := strings.LastIndexByte(p, '/')
	switch {
	case i < 0:
		return ".", p
	case i == 0:
		return "/", p[1:]
	default:
		return p[:i], p[i+1:]
	}
}
