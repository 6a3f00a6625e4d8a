// Package vfs is the high-level entry point: it glues configuration, the
// core filesystem and manifest-request application together behind one type.
package vfs

import (
	"fmt"
	"io"

	"github.com/treefs/treefs"
	"github.com/treefs/treefs/config"
	"github.com/treefs/treefs/filesystem"
	"github.com/treefs/treefs/internal/util"
)

// VFS contains the core filesystem state and operations plus the
// request-application helpers used by entrypoints.
type VFS struct {
	*filesystem.FileSystem
	cfg *config.Config
}

// New creates a VFS instance given your config.
func New(cfg *config.Config) *VFS {
	return &VFS{
		filesystem.NewFS(cfg),
		cfg,
	}
}

// AddDirNode creates the directory in the request, along with any missing
// ancestors. It is equivalent to `mkdir -p`: creating an existing directory
// is not an error.
func (v *VFS) AddDirNode(req *treefs.DirCreateRequest) (treefs.NodeInfo, error) {
	node, err := v.CreateDir(req.Path, true)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// AddFileNode creates the file in the request, force-creating missing
// ancestor directories, and writes the content supplied by the request's
// source. An existing file at the path is truncated and rewritten.
func (v *VFS) AddFileNode(req *treefs.FileCreateRequest) (treefs.NodeInfo, error) {
	logger := util.GetLogger("VFS.AddFileNode")

	parentPath, name := filesystem.SplitLast(req.Path)
	if name == "" {
		return nil, fmt.Errorf("%w: %q has no file name", treefs.ErrCantCreateFile, req.Path)
	}
	if _, err := v.CreateDir(parentPath, true); err != nil {
		logger.Error().Err(err).Str("path", req.Path).Msg("Failed to create file's ancestor directory(s)")
		return nil, err
	}

	stream, err := v.Open(req.Path, treefs.ModeWrite)
	if err != nil {
		return nil, err
	}
	if req.Source != nil {
		content, err := req.Source.Content()
		if err != nil {
			return nil, fmt.Errorf("content for %q: %w", req.Path, err)
		}
		if _, err := stream.Write(content); err != nil {
			return nil, err
		}
	}
	logger.Debug().Str("path", req.Path).Int64("size", stream.Size()).Msg("Added file node")
	return stream.Node(), nil
}

// Apply dispatches a create request to the matching add operation based on
// its declared type.
func (v *VFS) Apply(req treefs.NodeRequestor) (treefs.NodeInfo, error) {
	switch req.GetType() {
	case treefs.FileNodeType:
		fileReq, ok := req.(*treefs.FileCreateRequest)
		if !ok {
			return nil, fmt.Errorf("%w: request for %q is not a file request", treefs.ErrCantCreateFile, req.GetPath())
		}
		return v.AddFileNode(fileReq)
	case treefs.DirNodeType:
		dirReq, ok := req.(*treefs.DirCreateRequest)
		if !ok {
			return nil, fmt.Errorf("%w: request for %q is not a directory request", treefs.ErrCantCreateDir, req.GetPath())
		}
		return v.AddDirNode(dirReq)
	default:
		return nil, fmt.Errorf("unknown node type %q for %q", req.GetType(), req.GetPath())
	}
}

// WriteTree renders the directory hierarchy under path to w, one node per
// line, directories first by traversal with files listed at their depth.
func (v *VFS) WriteTree(w io.Writer, path string) error {
	node := v.GetNodeInfo(path)
	if node == nil {
		return fmt.Errorf("%w: %q", treefs.ErrNodeNotExist, path)
	}
	return v.writeTree(w, node, "")
}

func (v *VFS) writeTree(w io.Writer, node *filesystem.Node, indent string) error {
	if _, err := fmt.Fprintf(w, "%sDir: %s\n", indent, node.Name()); err != nil {
		return err
	}
	children, err := v.ListNode(node)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.IsDir() {
			if err := v.writeTree(w, child, indent+" "); err != nil {
				return err
			}
		} else if _, err := fmt.Fprintf(w, "%s File: %s Size: %d\n", indent, child.Name(), v.FileSize(child)); err != nil {
			return err
		}
	}
	return nil
}
