package filesystem

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/treefs/treefs"
	"github.com/treefs/treefs/config"
	"github.com/treefs/treefs/internal/util"
)

// FileSystem owns the root directory and implements the path-addressed
// operations on the tree. All operations take absolute slash-separated paths
// and report one of the treefs error kinds instead of panicking.
//
// Operations that touch two directories (Move) take their locks one after
// another, never simultaneously, so a concurrent reader may observe the node
// missing from the source and not yet present at the destination. Each call
// is its own unit of work; there is no cross-operation atomicity.
type FileSystem struct {
	cfg   *config.Config
	root  *Node
	quota *quota

	// nodeRegistry maps node identities to live nodes so callers can hold a
	// stable handle across renames and moves. Detached subtrees are
	// deregistered and become unreachable
	nodeRegistry *xsync.Map[uuid.UUID, *Node]
}

// NewFS creates a filesystem holding only the root directory "/".
func NewFS(cfg *config.Config) *FileSystem {
	root := newDirNode("/")
	fs := &FileSystem{
		cfg:          cfg,
		root:         root,
		quota:        &quota{limit: cfg.MaxBytes},
		nodeRegistry: xsync.NewMap[uuid.UUID, *Node](),
	}
	fs.nodeRegistry.Store(root.id, root)
	return fs
}

// Root returns the root directory node
func (fs *FileSystem) Root() *Node {
	return fs.root
}

// resolve walks the tree segment by segment. It returns nil when any segment
// is missing or a non-final segment is a file
func (fs *FileSystem) resolve(path string) *Node {
	cur := fs.root
	segs := SplitPath(path)
	for i, name := range segs {
		child, ok := cur.getChild(name)
		if !ok {
			return nil
		}
		if !child.IsDir() && i < len(segs)-1 {
			return nil
		}
		cur = child
	}
	return cur
}

// GetNodeInfo resolves a path to its node. Returns nil if the node wasn't
// found; "/" resolves to the root.
func (fs *FileSystem) GetNodeInfo(path string) *Node {
	return fs.resolve(path)
}

// NodeExists reports whether a node exists at the given path.
func (fs *FileSystem) NodeExists(path string) bool {
	return fs.resolve(path) != nil
}

// NodeByID returns the live node with the given identity, if it is still
// attached to the tree.
func (fs *FileSystem) NodeByID(id uuid.UUID) (*Node, bool) {
	return fs.nodeRegistry.Load(id)
}

// BytesUsed returns the chunk capacity currently allocated across the tree.
func (fs *FileSystem) BytesUsed() int64 {
	return fs.quota.used.Load()
}

// CreateDir creates a directory at path. With force set it also creates any
// missing ancestors; without it a missing non-final segment fails. A segment
// that exists as a file fails either way. Creating an already existing
// directory is not an error and returns the existing node.
func (fs *FileSystem) CreateDir(path string, force bool) (*Node, error) {
	logger := util.GetLogger("FS.CreateDir")

	cur := fs.root
	segs := SplitPath(path)
	newCnt := 0
	for i, name := range segs {
		node, ok := cur.getChild(name)
		switch {
		case !ok && (force || i == len(segs)-1):
			dir := newDirNode(name)
			winner, inserted := cur.getOrAppendChild(dir)
			if inserted {
				fs.nodeRegistry.Store(dir.id, dir)
				newCnt++
			} else if !winner.IsDir() {
				return nil, fmt.Errorf("%w: %q is a file", treefs.ErrCantCreateDir, name)
			}
			cur = winner
		case !ok || !node.IsDir():
			return nil, fmt.Errorf("%w: %q blocked at segment %q", treefs.ErrCantCreateDir, path, name)
		default:
			cur = node
		}
	}
	if newCnt > 0 {
		logger.Debug().Str("path", path).Int("created", newCnt).Msg("Created directory(s)")
	}
	return cur, nil
}

// List returns the direct children of the directory at path in ascending
// name order. An absent path yields an empty list; a file fails.
func (fs *FileSystem) List(path string) ([]*Node, error) {
	return fs.ListNode(fs.resolve(path))
}

// ListNode is List for an already resolved node.
func (fs *FileSystem) ListNode(node *Node) ([]*Node, error) {
	if node == nil {
		return nil, nil
	}
	if !node.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", treefs.ErrNodeIsFile, node.Name())
	}
	return node.listChildren(), nil
}

// FileSize returns the byte size for a file node and 0 for a directory.
func (fs *FileSystem) FileSize(node *Node) int64 {
	if node == nil || node.IsDir() {
		return 0
	}
	return node.Size()
}

// Open creates or opens a file at path and returns a stream over it. An
// existing directory at the path fails; an absent file is created when mode
// includes write capability and the parent directory exists. Without the
// append flag the file content is truncated, which is visible to every other
// stream sharing the file.
func (fs *FileSystem) Open(path string, mode treefs.FileMode) (*Stream, error) {
	logger := util.GetLogger("FS.Open")

	node := fs.resolve(path)
	switch {
	case node != nil && !node.IsDir():
		return newStream(node, mode, fs.cfg.ClearPrealloc)

	case node != nil:
		return nil, fmt.Errorf("%w: a directory already exists at %q", treefs.ErrCantCreateFile, path)

	case mode.Has(treefs.ModeWrite):
		parentPath, name := SplitLast(path)
		if name == "" {
			return nil, fmt.Errorf("%w: %q has no file name", treefs.ErrCantCreateFile, path)
		}
		parent := fs.resolve(parentPath)
		if parent == nil {
			return nil, fmt.Errorf("%w: parent directory of %q", treefs.ErrNodeNotExist, path)
		}
		if !parent.IsDir() {
			return nil, fmt.Errorf("%w: parent of %q is a file", treefs.ErrNodeIsFile, path)
		}

		file := newFileNode(name, fs.cfg.ChunkSize, fs.quota)
		winner, inserted := parent.getOrAppendChild(file)
		if inserted {
			fs.nodeRegistry.Store(file.id, file)
			logger.Debug().Str("path", path).Msg("Created file")
		} else if winner.IsDir() {
			return nil, fmt.Errorf("%w: a directory already exists at %q", treefs.ErrCantCreateFile, path)
		}
		return newStream(winner, mode, fs.cfg.ClearPrealloc)

	default:
		return nil, fmt.Errorf("%w: %q does not exist", treefs.ErrCantOpenFile, path)
	}
}

// Rename gives the node at path a new name among its siblings, re-sorting it
// into its parent's child collection.
func (fs *FileSystem) Rename(path, newName string) error {
	if !fs.NodeExists(path) {
		return fmt.Errorf("%w: cannot rename %q", treefs.ErrNodeNotExist, path)
	}
	parentPath, name := SplitLast(path)
	if name == "" {
		return fmt.Errorf("%w: the root directory has no parent", treefs.ErrNodeNotExist)
	}
	parent := fs.resolve(parentPath)
	if parent == nil {
		return fmt.Errorf("%w: cannot rename %q", treefs.ErrNodeNotExist, path)
	}
	if _, ok := parent.getChild(newName); ok {
		return fmt.Errorf("%w: cannot rename %q to %q", treefs.ErrNodeAlreadyExist, path, newName)
	}
	if !parent.renameChild(name, newName) {
		return fmt.Errorf("%w: cannot rename %q", treefs.ErrNodeNotExist, path)
	}
	logger := util.GetLogger("FS.Rename")
	logger.Debug().Str("path", path).Str("name", newName).Msg("Renamed node")
	return nil
}

// Move detaches the node at from and attaches it under the directory at to,
// keeping the node's own name and children. All validation happens before
// the detach so a failed move leaves the tree untouched.
func (fs *FileSystem) Move(from, to string) error {
	node := fs.resolve(from)
	if node == nil {
		return fmt.Errorf("%w: cannot move %q", treefs.ErrNodeNotExist, from)
	}
	srcParentPath, name := SplitLast(from)
	if name == "" {
		return fmt.Errorf("%w: the root directory has no parent", treefs.ErrNodeNotExist)
	}
	dest := fs.resolve(to)
	if dest == nil {
		return fmt.Errorf("%w: move destination %q", treefs.ErrNodeNotExist, to)
	}
	if !dest.IsDir() {
		return fmt.Errorf("%w: move destination %q", treefs.ErrNodeIsFile, to)
	}
	if node.IsDir() && node.hasDescendant(dest) {
		return fmt.Errorf("%w: destination %q is inside the moved directory", treefs.ErrCantCreateDir, to)
	}
	if _, ok := dest.getChild(node.Name()); ok {
		return fmt.Errorf("%w: %q already has a child named %q", treefs.ErrNodeAlreadyExist, to, node.Name())
	}

	srcParent := fs.resolve(srcParentPath)
	if srcParent == nil {
		return fmt.Errorf("%w: cannot move %q", treefs.ErrNodeNotExist, from)
	}
	detached, ok := srcParent.removeChild(name)
	if !ok {
		return fmt.Errorf("%w: cannot move %q", treefs.ErrNodeNotExist, from)
	}
	dest.appendChild(detached)
	logger := util.GetLogger("FS.Move")
	logger.Debug().Str("from", from).Str("to", to).Msg("Moved node")
	return nil
}

// Delete detaches the node at path. The node and its entire subtree become
// unreachable and their chunk capacity is returned to the quota.
func (fs *FileSystem) Delete(path string) error {
	parentPath, name := SplitLast(path)
	if name == "" {
		return fmt.Errorf("%w: the root directory has no parent", treefs.ErrNodeNotExist)
	}
	if !fs.NodeExists(path) {
		return fmt.Errorf("%w: cannot delete %q", treefs.ErrNodeNotExist, path)
	}
	parent := fs.resolve(parentPath)
	if parent == nil {
		return fmt.Errorf("%w: cannot delete %q", treefs.ErrNodeNotExist, path)
	}
	detached, ok := parent.removeChild(name)
	if !ok {
		return fmt.Errorf("%w: cannot delete %q", treefs.ErrNodeNotExist, path)
	}
	detached.releaseStorage()
	fs.deregisterSubtree(detached)
	logger := util.GetLogger("FS.Delete")
	logger.Debug().Str("path", path).Msg("Deleted node")
	return nil
}

// Copy produces a deep duplicate of the subtree at from and attaches it
// under to's parent directory with to's final segment as its name. The copy
// has fresh identities and timestamps and shares no chunk storage with the
// original.
func (fs *FileSystem) Copy(from, to string) error {
	node := fs.resolve(from)
	if node == nil {
		return fmt.Errorf("%w: cannot copy %q", treefs.ErrNodeNotExist, from)
	}
	if fs.NodeExists(to) {
		return fmt.Errorf("%w: copy destination %q", treefs.ErrNodeAlreadyExist, to)
	}
	destParentPath, newName := SplitLast(to)
	destParent := fs.resolve(destParentPath)
	if destParent == nil {
		return fmt.Errorf("%w: parent of copy destination %q", treefs.ErrNodeNotExist, to)
	}
	if !destParent.IsDir() {
		return fmt.Errorf("%w: parent of copy destination %q", treefs.ErrNodeIsFile, to)
	}

	cp, err := node.deepCopy()
	if err != nil {
		return fmt.Errorf("cannot copy %q: %w", from, err)
	}
	cp.name = newName // not yet shared, no lock needed
	if _, inserted := destParent.getOrAppendChild(cp); !inserted {
		cp.releaseStorage()
		return fmt.Errorf("%w: copy destination %q", treefs.ErrNodeAlreadyExist, to)
	}
	fs.registerSubtree(cp)
	logger := util.GetLogger("FS.Copy")
	logger.Debug().Str("from", from).Str("to", to).Msg("Copied node")
	return nil
}

func (fs *FileSystem) registerSubtree(n *Node) {
	fs.nodeRegistry.Store(n.id, n)
	if n.kind != DirKind {
		return
	}
	n.mu.RLock()
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	n.mu.RUnlock()
	for _, c := range children {
		fs.registerSubtree(c)
	}
}

func (fs *FileSystem) deregisterSubtree(n *Node) {
	fs.nodeRegistry.Delete(n.id)
	if n.kind != DirKind {
		return
	}
	n.mu.RLock()
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	n.mu.RUnlock()
	for _, c := range children {
		fs.deregisterSubtree(c)
	}
}
