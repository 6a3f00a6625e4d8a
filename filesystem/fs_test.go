package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treefs/treefs"
	"github.com/treefs/treefs/config"
)

func newTestFS(t *testing.T) *FileSystem {
	t.Helper()
	return NewFS(config.NewDefaultConfig())
}

// writeFile creates a file at path with the given content through the public
// open/write path
func writeFile(t *testing.T, fs *FileSystem, path, content string) {
	t.Helper()
	stream, err := fs.Open(path, treefs.ModeWrite)
	require.NoError(t, err)
	_, err = stream.WriteString(content)
	require.NoError(t, err)
}

// readFile returns the full content of the file at path without truncating it
func readFile(t *testing.T, fs *FileSystem, path string) string {
	t.Helper()
	stream, err := fs.Open(path, treefs.ModeRead|treefs.ModeAppend)
	require.NoError(t, err)
	return string(stream.ReadAll())
}

func TestFS_RootNode(t *testing.T) {
	fs := newTestFS(t)

	root := fs.GetNodeInfo("/")
	require.NotNil(t, root)
	assert.Same(t, fs.Root(), root)
	assert.True(t, root.IsDir())
	assert.Equal(t, "/", root.Name())
}

func TestFS_CreateDir(t *testing.T) {
	fs := newTestFS(t)

	node, err := fs.CreateDir("/tmp", false)
	require.NoError(t, err)
	assert.True(t, node.IsDir())
	assert.True(t, fs.NodeExists("/tmp"))

	// Existing directory is not an error
	again, err := fs.CreateDir("/tmp", false)
	require.NoError(t, err)
	assert.Same(t, node, again)
}

func TestFS_CreateDir_MissingAncestor(t *testing.T) {
	fs := newTestFS(t)

	_, err := fs.CreateDir("/a/b/c", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, treefs.ErrCantCreateDir)
	assert.False(t, fs.NodeExists("/a"))

	// force creates the whole chain
	_, err = fs.CreateDir("/a/b/c", true)
	require.NoError(t, err)
	assert.True(t, fs.NodeExists("/a"))
	assert.True(t, fs.NodeExists("/a/b"))
	assert.True(t, fs.NodeExists("/a/b/c"))
}

func TestFS_CreateDir_SegmentIsFile(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp", false)
	require.NoError(t, err)
	writeFile(t, fs, "/tmp/f.txt", "x")

	_, err = fs.CreateDir("/tmp/f.txt", false)
	assert.ErrorIs(t, err, treefs.ErrCantCreateDir)

	_, err = fs.CreateDir("/tmp/f.txt/sub", true)
	assert.ErrorIs(t, err, treefs.ErrCantCreateDir)
}

func TestFS_GetNodeInfo(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/usr/local", true)
	require.NoError(t, err)

	assert.NotNil(t, fs.GetNodeInfo("/usr/local"))
	assert.NotNil(t, fs.GetNodeInfo("usr/local/"))
	assert.Nil(t, fs.GetNodeInfo("/usr/missing"))
	assert.Nil(t, fs.GetNodeInfo("/missing/local"))
}

func TestFS_List_SortedAscending(t *testing.T) {
	fs := newTestFS(t)
	for _, d := range []string{"/srv", "/bin", "/opt", "/etc"} {
		_, err := fs.CreateDir(d, false)
		require.NoError(t, err)
	}

	children, err := fs.List("/")
	require.NoError(t, err)
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"bin", "etc", "opt", "srv"}, names)
}

func TestFS_List_OnFile(t *testing.T) {
	fs := newTestFS(t)
	writeFile(t, fs, "/f.txt", "x")

	_, err := fs.List("/f.txt")
	assert.ErrorIs(t, err, treefs.ErrNodeIsFile)
}

func TestFS_List_Absent(t *testing.T) {
	fs := newTestFS(t)

	children, err := fs.List("/nope")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestFS_FileSize(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp", false)
	require.NoError(t, err)
	writeFile(t, fs, "/tmp/f.txt", "12345")

	assert.Equal(t, int64(5), fs.FileSize(fs.GetNodeInfo("/tmp/f.txt")))
	// Directories report size 0 rather than failing
	assert.Equal(t, int64(0), fs.FileSize(fs.GetNodeInfo("/tmp")))
	assert.Equal(t, int64(0), fs.FileSize(nil))
}

func TestFS_Open_Errors(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp", false)
	require.NoError(t, err)
	writeFile(t, fs, "/tmp/f.txt", "x")

	// Opening a directory path
	_, err = fs.Open("/tmp", treefs.ModeRW)
	assert.ErrorIs(t, err, treefs.ErrCantCreateFile)

	// Opening an absent file without write capability
	_, err = fs.Open("/tmp/missing", treefs.ModeRead)
	assert.ErrorIs(t, err, treefs.ErrCantOpenFile)

	// Creating a file under an absent parent
	_, err = fs.Open("/nosuch/f.txt", treefs.ModeWrite)
	assert.ErrorIs(t, err, treefs.ErrNodeNotExist)

	// Creating a file under a file
	_, err = fs.Open("/tmp/f.txt/sub.txt", treefs.ModeWrite)
	assert.ErrorIs(t, err, treefs.ErrNodeIsFile)
}

func TestFS_Rename(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp/old", true)
	require.NoError(t, err)
	node := fs.GetNodeInfo("/tmp/old")
	require.NotNil(t, node)

	require.NoError(t, fs.Rename("/tmp/old", "new"))
	assert.False(t, fs.NodeExists("/tmp/old"))
	assert.True(t, fs.NodeExists("/tmp/new"))
	// Identity survives the rename
	assert.Same(t, node, fs.GetNodeInfo("/tmp/new"))
}

func TestFS_Rename_Collision(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp/a", true)
	require.NoError(t, err)
	_, err = fs.CreateDir("/tmp/b", false)
	require.NoError(t, err)

	err = fs.Rename("/tmp/a", "b")
	assert.ErrorIs(t, err, treefs.ErrNodeAlreadyExist)
	// Original name sticks around after the failure
	assert.True(t, fs.NodeExists("/tmp/a"))
}

func TestFS_Rename_Missing(t *testing.T) {
	fs := newTestFS(t)
	err := fs.Rename("/nope", "x")
	assert.ErrorIs(t, err, treefs.ErrNodeNotExist)
}

func TestFS_Rename_Root(t *testing.T) {
	fs := newTestFS(t)
	err := fs.Rename("/", "x")
	assert.ErrorIs(t, err, treefs.ErrNodeNotExist)
	assert.Equal(t, "/", fs.Root().Name())
}

func TestFS_Move(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp/x", true)
	require.NoError(t, err)
	_, err = fs.CreateDir("/usr", false)
	require.NoError(t, err)
	writeFile(t, fs, "/tmp/x/data.txt", "payload")

	require.NoError(t, fs.Move("/tmp/x", "/usr"))

	assert.False(t, fs.NodeExists("/tmp/x"))
	assert.True(t, fs.NodeExists("/usr/x"))
	// The node's own name and children move with it
	assert.Equal(t, "x", fs.GetNodeInfo("/usr/x").Name())
	assert.Equal(t, "payload", readFile(t, fs, "/usr/x/data.txt"))
}

func TestFS_Move_Errors(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/a/b", true)
	require.NoError(t, err)
	writeFile(t, fs, "/f.txt", "x")

	assert.ErrorIs(t, fs.Move("/nope", "/a"), treefs.ErrNodeNotExist)
	assert.ErrorIs(t, fs.Move("/a", "/nope"), treefs.ErrNodeNotExist)
	assert.ErrorIs(t, fs.Move("/a", "/f.txt"), treefs.ErrNodeIsFile)
	assert.ErrorIs(t, fs.Move("/", "/a"), treefs.ErrNodeNotExist)

	// A directory cannot move into its own subtree
	assert.ErrorIs(t, fs.Move("/a", "/a/b"), treefs.ErrCantCreateDir)
	// Failed moves leave the source attached
	assert.True(t, fs.NodeExists("/a"))
	assert.True(t, fs.NodeExists("/a/b"))
}

func TestFS_Move_NameCollision(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/src/x", true)
	require.NoError(t, err)
	_, err = fs.CreateDir("/dst/x", true)
	require.NoError(t, err)

	err = fs.Move("/src/x", "/dst")
	assert.ErrorIs(t, err, treefs.ErrNodeAlreadyExist)
	assert.True(t, fs.NodeExists("/src/x"))
}

func TestFS_Delete(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp/sub", true)
	require.NoError(t, err)
	writeFile(t, fs, "/tmp/sub/f.txt", "x")

	require.NoError(t, fs.Delete("/tmp"))

	// Every descendant disappears from queries
	assert.False(t, fs.NodeExists("/tmp"))
	assert.False(t, fs.NodeExists("/tmp/sub"))
	assert.False(t, fs.NodeExists("/tmp/sub/f.txt"))

	assert.ErrorIs(t, fs.Delete("/tmp"), treefs.ErrNodeNotExist)
}

func TestFS_Delete_ReleasesQuota(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.MaxBytes = 64 * 1024
	fs := NewFS(cfg)

	writeFile(t, fs, "/f.txt", "content")
	require.Greater(t, fs.BytesUsed(), int64(0))

	require.NoError(t, fs.Delete("/f.txt"))
	assert.Equal(t, int64(0), fs.BytesUsed())
}

func TestFS_Copy_File(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp", false)
	require.NoError(t, err)
	writeFile(t, fs, "/tmp/orig.txt", "original")

	require.NoError(t, fs.Copy("/tmp/orig.txt", "/tmp/copy.txt"))

	// Copy takes the destination's final segment as its name
	assert.Equal(t, "original", readFile(t, fs, "/tmp/copy.txt"))

	// Mutating the copy must not leak into the original
	stream, err := fs.Open("/tmp/copy.txt", treefs.ModeWrite)
	require.NoError(t, err)
	_, err = stream.WriteString("rewritten")
	require.NoError(t, err)
	assert.Equal(t, "original", readFile(t, fs, "/tmp/orig.txt"))

	// A copy is a new node, not a continuation of the original
	orig := fs.GetNodeInfo("/tmp/orig.txt")
	cp := fs.GetNodeInfo("/tmp/copy.txt")
	assert.NotEqual(t, orig.ID(), cp.ID())
}

func TestFS_Copy_Directory(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/src/deep", true)
	require.NoError(t, err)
	writeFile(t, fs, "/src/deep/f.txt", "data")
	_, err = fs.CreateDir("/dst", false)
	require.NoError(t, err)

	require.NoError(t, fs.Copy("/src", "/dst/srccopy"))

	assert.True(t, fs.NodeExists("/dst/srccopy/deep"))
	assert.Equal(t, "data", readFile(t, fs, "/dst/srccopy/deep/f.txt"))
	// Source untouched
	assert.Equal(t, "data", readFile(t, fs, "/src/deep/f.txt"))
}

func TestFS_Copy_Errors(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/a", false)
	require.NoError(t, err)
	writeFile(t, fs, "/f.txt", "x")

	assert.ErrorIs(t, fs.Copy("/nope", "/a/cp"), treefs.ErrNodeNotExist)
	assert.ErrorIs(t, fs.Copy("/a", "/f.txt"), treefs.ErrNodeAlreadyExist)
	assert.ErrorIs(t, fs.Copy("/a", "/f.txt/cp"), treefs.ErrNodeIsFile)
	assert.ErrorIs(t, fs.Copy("/a", "/nosuch/cp"), treefs.ErrNodeNotExist)
}

func TestFS_NodeByID(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/tmp/keep", true)
	require.NoError(t, err)

	node := fs.GetNodeInfo("/tmp/keep")
	require.NotNil(t, node)

	got, ok := fs.NodeByID(node.ID())
	require.True(t, ok)
	assert.Same(t, node, got)

	// Handles survive a move
	_, err = fs.CreateDir("/usr", false)
	require.NoError(t, err)
	require.NoError(t, fs.Move("/tmp/keep", "/usr"))
	got, ok = fs.NodeByID(node.ID())
	require.True(t, ok)
	assert.Same(t, node, got)

	// Detached subtrees drop out of the registry
	require.NoError(t, fs.Delete("/usr/keep"))
	_, ok = fs.NodeByID(node.ID())
	assert.False(t, ok)
}

func TestFS_CopyRegistersNewNodes(t *testing.T) {
	fs := newTestFS(t)
	_, err := fs.CreateDir("/src/sub", true)
	require.NoError(t, err)
	_, err = fs.CreateDir("/dst", false)
	require.NoError(t, err)

	require.NoError(t, fs.Copy("/src", "/dst/cp"))

	cp := fs.GetNodeInfo("/dst/cp/sub")
	require.NotNil(t, cp)
	got, ok := fs.NodeByID(cp.ID())
	require.True(t, ok)
	assert.Same(t, cp, got)
}
