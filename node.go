package treefs

import (
	"time"

	"github.com/google/uuid"
)

// NodeInfo provides read-only access to node information for external consumers
type NodeInfo interface {
	// Name returns the node's name (last path component)
	Name() string

	// ID returns the node's stable identity, assigned at construction.
	// A copied node gets a fresh ID; a moved or renamed node keeps its own.
	ID() uuid.UUID

	// IsDir returns true for directories, false for files
	IsDir() bool

	// Created returns the node's creation time
	Created() time.Time

	// Accessed returns the time of the last read-like operation
	Accessed() time.Time
}

// TreeOperator defines the node-creation operations that request appliers
// (cli, manifest loaders, etc) need from the filesystem facade
type TreeOperator interface {
	AddFileNode(req *FileCreateRequest) (NodeInfo, error)
	AddDirNode(req *DirCreateRequest) (NodeInfo, error)
}
