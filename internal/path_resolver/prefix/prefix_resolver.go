package prefix

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnishMulay/fatstore/internal/log_service"
	pr "github.com/AnishMulay/fatstore/internal/path_resolver"
)

// DefaultPrefixes is the whitelist used when none is configured.
var DefaultPrefixes = []string{"/home/usuario"}

// PrefixResolver stands in for directory traversal: "/", "." and any path
// beginning with one of its prefixes resolve to the root inode, everything
// else is not found. Matching is on raw bytes, so "/home/usuario2" matches
// "/home/usuario" too.
type PrefixResolver struct {
	prefixes  []string
	rootInode int
	ls        log_service.LogService
}

func NewPrefixResolver(prefixes []string, rootInode int, ls log_service.LogService) *PrefixResolver {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	cp := make([]string, len(prefixes))
	copy(cp, prefixes)
	return &PrefixResolver{
		prefixes:  cp,
		rootInode: rootInode,
		ls:        ls,
	}
}

func (r *PrefixResolver) Resolve(ctx context.Context, dir string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if dir == "/" || dir == "." {
		return r.rootInode, nil
	}
	for _, p := range r.prefixes {
		if p != "" && strings.HasPrefix(dir, p) {
			return r.rootInode, nil
		}
	}

	r.ls.Debug(log_service.LogEvent{
		Message:  "Directory not in resolver whitelist",
		Metadata: map[string]any{"dir": dir},
	})
	return 0, fmt.Errorf("resolve %q: %w", dir, pr.ErrNotFound)
}

var _ pr.PathResolver = (*PrefixResolver)(nil)
