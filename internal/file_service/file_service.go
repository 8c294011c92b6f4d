package file_service

import "context"

// FileService materialises new files on a volume.
type FileService interface {
	// CreateFile reserves an inode and a zero-filled block chain for
	// req.Size bytes and returns the directory entry describing the file.
	//
	// On failure nothing acquired by the call stays allocated and the error
	// is a *CreateError. Under PolicyLegacy a short chain is not a failure:
	// the entry is returned together with a *PartialAllocationError.
	CreateFile(ctx context.Context, req CreateRequest) (*DirectoryEntry, error)
}
