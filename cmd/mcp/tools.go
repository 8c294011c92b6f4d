package main

import (
	"context"
	"errors"
	"fmt"
	"math"

	fs "github.com/AnishMulay/fatstore/internal/file_service"
	"github.com/AnishMulay/fatstore/internal/log_service"
	"github.com/AnishMulay/fatstore/internal/volume"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	defaultPerm = "11010010000000"
	// largest magnitude a JSON number carries without losing integer precision
	maxExactInt = 1 << 53
)

type toolServer struct {
	vol *volume.Volume
	ls  log_service.LogService
}

func addTools(s *server.MCPServer, ts *toolServer) {
	createFileTool := mcp.NewTool("create_file",
		mcp.WithDescription("Create a zero-filled file of the given size and report its inode and block chain"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path, e.g. /home/usuario/doc.txt"),
		),
		mcp.WithNumber("size",
			mcp.Required(),
			mcp.Description("File size in bytes"),
		),
		mcp.WithNumber("uid", mcp.Description("Owner id, default 1001")),
		mcp.WithNumber("gid", mcp.Description("Group id, default 1001")),
		mcp.WithString("permissions", mcp.Description("14 permission flags as 0/1")),
	)
	s.AddTool(createFileTool, ts.handleCreateFile)

	statsTool := mcp.NewTool("volume_stats",
		mcp.WithDescription("Show volume geometry and free block and inode counts"),
	)
	s.AddTool(statsTool, ts.handleVolumeStats)

	walkTool := mcp.NewTool("walk_chain",
		mcp.WithDescription("Follow the FAT chain owned by an inode"),
		mcp.WithNumber("inode", mcp.Required(), mcp.Description("Inode index")),
	)
	s.AddTool(walkTool, ts.handleWalkChain)

	inodeTool := mcp.NewTool("get_inode",
		mcp.WithDescription("Show one inode table entry"),
		mcp.WithNumber("inode", mcp.Required(), mcp.Description("Inode index")),
	)
	s.AddTool(inodeTool, ts.handleGetInode)

	formatTool := mcp.NewTool("format_volume",
		mcp.WithDescription("Discard every file and reformat the volume"),
	)
	s.AddTool(formatTool, ts.handleFormat)
}

// wholeNumber converts a JSON number, rejecting fractions and values outside
// [min, max].
func wholeNumber(name string, v, min, max float64) (int64, error) {
	if math.IsNaN(v) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%s must be a whole number, got %v", name, v)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s %v is outside [%.0f, %.0f]", name, v, min, max)
	}
	return int64(v), nil
}

func inodeArg(request mcp.CallToolRequest) (int, error) {
	raw, err := request.RequireFloat("inode")
	if err != nil {
		return 0, err
	}
	v, err := wholeNumber("inode", raw, 0, math.MaxInt32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (ts *toolServer) handleCreateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawSize, err := request.RequireFloat("size")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	size, err := wholeNumber("size", rawSize, -maxExactInt, maxExactInt)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	uid, err := wholeNumber("uid", request.GetFloat("uid", 1001), 0, math.MaxUint32)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	gid, err := wholeNumber("gid", request.GetFloat("gid", 1001), 0, math.MaxUint32)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	perms, err := fs.ParsePermissions(request.GetString("permissions", defaultPerm))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := fs.CreateRequest{
		Path:        path,
		OwnerID:     uint32(uid),
		GroupID:     uint32(gid),
		Size:        size,
		Permissions: perms,
	}
	entry, err := ts.vol.CreateFile(ctx, req)

	var partial *fs.PartialAllocationError
	prefix := ""
	switch {
	case errors.As(err, &partial):
		prefix = fmt.Sprintf("warning: %v\n", partial)
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create file: %v", err)), nil
	}

	chain, err := ts.vol.Chain(entry.InodeIndex)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Created file but failed to walk its chain: %v", err)), nil
	}
	return mcp.NewToolResultText(prefix + volume.FormatEntry(entry, chain)), nil
}

func (ts *toolServer) handleVolumeStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(volume.FormatStats(ts.vol.Stats())), nil
}

func (ts *toolServer) handleWalkChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := inodeArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chain, err := ts.vol.Chain(index)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to walk chain: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("inode %d: %s", index, volume.FormatChain(chain))), nil
}

func (ts *toolServer) handleGetInode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := inodeArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ino, err := ts.vol.Inode(index)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read inode: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("inode %d: used=%t head=%d blocks=%d", ino.Index, ino.Used, ino.HeadBlock, ino.BlockCount)), nil
}

func (ts *toolServer) handleFormat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sb, err := ts.vol.Format()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format: %v", err)), nil
	}
	ts.ls.Info(log_service.LogEvent{
		Message:  "Volume formatted over MCP",
		Metadata: map[string]any{"volumeID": sb.VolumeID.String()},
	})
	return mcp.NewToolResultText(fmt.Sprintf("formatted volume %s", sb.VolumeID)), nil
}
