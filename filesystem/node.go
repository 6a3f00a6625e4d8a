// Package filesystem implements the in-memory namespace tree: nodes,
// chunked file storage, path resolution and the stream cursor.
package filesystem

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NodeKind tags a Node as a directory or a file. It is fixed at construction.
type NodeKind uint8

const (
	DirKind NodeKind = iota
	FileKind
)

func (k NodeKind) String() string {
	if k == DirKind {
		return "dir"
	}
	return "file"
}

// Node is a single entry in the namespace tree. Directories and files share
// one header (identity, name, timestamps) and switch on the kind tag for
// type-specific state. Every node guards its own mutable fields with its own
// lock; locks are never held across a call into another node except for the
// parent -> child order used when linking.
type Node struct {
	id       uuid.UUID
	kind     NodeKind
	name     string // Name of the node (last part of the path). Protected by mu
	created  time.Time
	accessed time.Time

	// Directory state: children sorted by name ascending. The slice is the
	// sole ownership path to each child
	children []*Node

	// File state
	modified  time.Time
	size      int64
	chunks    []*chunk
	chunkSize int
	quota     *quota

	mu sync.RWMutex
}

// newDirNode creates an empty directory node
func newDirNode(name string) *Node {
	now := time.Now()
	return &Node{
		id:       uuid.New(),
		kind:     DirKind,
		name:     name,
		created:  now,
		accessed: now,
	}
}

// newFileNode creates an empty file node backed by chunks of chunkSize bytes
func newFileNode(name string, chunkSize int, q *quota) *Node {
	now := time.Now()
	return &Node{
		id:        uuid.New(),
		kind:      FileKind,
		name:      name,
		created:   now,
		accessed:  now,
		modified:  now,
		chunkSize: chunkSize,
		quota:     q,
	}
}

// ID returns the node's stable identity, assigned at construction
func (n *Node) ID() uuid.UUID {
	return n.id
}

// Name returns the node's name (last path component)
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// IsDir returns true if this node is a directory
func (n *Node) IsDir() bool {
	return n.kind == DirKind
}

// Created returns the node's creation time
func (n *Node) Created() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.created
}

// Accessed returns the time of the last read-like operation
func (n *Node) Accessed() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.accessed
}

/* Directory operations. Callers must only invoke these on DirKind nodes. */

// searchChildLocked returns the index of the first child whose name is not
// less than name, and whether the child at that index is an exact match.
// Caller must hold n.mu. An empty child slice reports (0, false)
func (n *Node) searchChildLocked(name string) (int, bool) {
	i := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].name >= name
	})
	return i, i < len(n.children) && n.children[i].name == name
}

// getChild returns a direct child by name
func (n *Node) getChild(name string) (*Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i, ok := n.searchChildLocked(name); ok {
		return n.children[i], true
	}
	return nil, false
}

// appendChildLocked inserts child at its sort position. Caller must hold n.mu
func (n *Node) appendChildLocked(child *Node) {
	i, _ := n.searchChildLocked(child.name)
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
}

// appendChild inserts child keeping the children sorted by name ascending
func (n *Node) appendChild(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.appendChildLocked(child)
}

// getOrAppendChild inserts child unless a sibling with the same name already
// exists. It returns the node now present under that name and whether the
// insert happened, re-checking under the parent lock so two concurrent
// creates cannot both insert
func (n *Node) getOrAppendChild(child *Node) (*Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i, ok := n.searchChildLocked(child.name); ok {
		return n.children[i], false
	}
	n.appendChildLocked(child)
	return child, true
}

// removeChild detaches a direct child by name and returns it. The detached
// subtree is no longer reachable from the tree
func (n *Node) removeChild(name string) (*Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	i, ok := n.searchChildLocked(name)
	if !ok {
		return nil, false
	}
	child := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)
	return child, true
}

// renameChild renames a direct child and re-inserts it at its new sort
// position. A renamed child is re-sorted, never mutated in place
func (n *Node) renameChild(name, newName string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	i, ok := n.searchChildLocked(name)
	if !ok {
		return false
	}
	child := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)

	child.mu.Lock()
	child.name = newName
	child.mu.Unlock()

	n.appendChildLocked(child)
	return true
}

// listChildren returns a snapshot of the direct children in name order and
// updates the directory's accessed time
func (n *Node) listChildren() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accessed = time.Now()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// hasDescendant reports whether other is n or lies anywhere below n.
// Used to keep move/copy from inserting a node into its own subtree
func (n *Node) hasDescendant(other *Node) bool {
	if n == other {
		return true
	}
	if n.kind != DirKind {
		return false
	}
	n.mu.RLock()
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	n.mu.RUnlock()
	for _, child := range children {
		if child.hasDescendant(other) {
			return true
		}
	}
	return false
}

// deepCopy duplicates the node and, for directories, every descendant.
// The duplicate gets fresh identities and creation times and fully
// independent chunk storage; accessed/modified times carry over
func (n *Node) deepCopy() (*Node, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	cp := &Node{
		id:        uuid.New(),
		kind:      n.kind,
		name:      n.name,
		created:   time.Now(),
		accessed:  n.accessed,
		modified:  n.modified,
		chunkSize: n.chunkSize,
		quota:     n.quota,
	}

	switch n.kind {
	case FileKind:
		if err := cp.copyChunksFrom(n); err != nil {
			return nil, err
		}
	case DirKind:
		cp.children = make([]*Node, 0, len(n.children))
		for _, child := range n.children {
			childCp, err := child.deepCopy()
			if err != nil {
				// back out the capacity charged by the partial copy
				cp.releaseStorage()
				return nil, err
			}
			cp.children = append(cp.children, childCp)
		}
	}
	return cp, nil
}

// releaseStorage returns the chunk capacity of the subtree to the quota.
// Must only be called on nodes detached from the tree
func (n *Node) releaseStorage() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	switch n.kind {
	case FileKind:
		n.quota.release(int64(len(n.chunks)) * int64(n.chunkSize))
	case DirKind:
		for _, child := range n.children {
			child.releaseStorage()
		}
	}
}
