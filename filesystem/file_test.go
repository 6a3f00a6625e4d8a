package filesystem

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treefs/treefs"
)

func TestFile_WriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	// Sub-chunk, exact-chunk and multi-chunk sizes
	for _, size := range []int{10, 4096, 5000, 4096 * 3} {
		payload := bytes.Repeat([]byte{0xAB}, size)
		payload[0] = 'x'
		payload[size-1] = 'y'

		file := createTestFile("f")
		n, err := file.write(payload)
		require.NoError(t, err)
		require.Equal(t, size, n)
		assert.Equal(t, int64(size), file.Size())

		buf := make([]byte, size)
		read := file.readAt(buf, 0)
		require.Equal(t, size, read)
		assert.Equal(t, payload, buf)
	}
}

func TestFile_SequentialWritesAppend(t *testing.T) {
	t.Parallel()

	file := createTestFile("f")
	for _, s := range []string{"one ", "two ", "three"} {
		_, err := file.write([]byte(s))
		require.NoError(t, err)
	}

	buf := make([]byte, 64)
	n := file.readAt(buf, 0)
	assert.Equal(t, "one two three", string(buf[:n]))
}

func TestFile_ReadAt_Offset(t *testing.T) {
	t.Parallel()

	file := createTestFile("f")
	_, err := file.write([]byte("Hello"))
	require.NoError(t, err)

	buf := make([]byte, 3)
	n := file.readAt(buf, 2)
	require.Equal(t, 3, n)
	assert.Equal(t, "llo", string(buf))

	// Reads past the end of data return 0
	assert.Equal(t, 0, file.readAt(buf, 5))
	assert.Equal(t, 0, file.readAt(buf, 500))
}

func TestFile_ReadAt_ShortAtEndOfData(t *testing.T) {
	t.Parallel()

	file := createTestFile("f")
	_, err := file.write([]byte("abc"))
	require.NoError(t, err)

	buf := make([]byte, 10)
	n := file.readAt(buf, 0)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", string(buf[:n]))
}

func TestFile_ReadSpansChunkBoundary(t *testing.T) {
	t.Parallel()

	file := newFileNode("f", 8, &quota{})
	_, err := file.write([]byte("0123456789abcdef0123"))
	require.NoError(t, err)

	buf := make([]byte, 10)
	n := file.readAt(buf, 4)
	require.Equal(t, 10, n)
	assert.Equal(t, "456789abcd", string(buf))
}

func TestFile_Clear(t *testing.T) {
	t.Parallel()

	file := createTestFile("f")
	_, err := file.write([]byte("some content"))
	require.NoError(t, err)
	require.NoError(t, file.clear(4))

	assert.Equal(t, int64(0), file.Size())
	buf := make([]byte, 8)
	assert.Equal(t, 0, file.readAt(buf, 0))

	// Cleared files keep the preallocated empty chunks ready for writing
	file.mu.RLock()
	assert.Len(t, file.chunks, 4)
	file.mu.RUnlock()
}

func TestFile_WriteGrowsBeyondClearPrealloc(t *testing.T) {
	t.Parallel()

	file := newFileNode("f", 8, &quota{})
	require.NoError(t, file.clear(2)) // 16 bytes of capacity

	payload := bytes.Repeat([]byte{'z'}, 100)
	n, err := file.write(payload)
	require.NoError(t, err)
	require.Equal(t, 100, n)

	buf := make([]byte, 100)
	assert.Equal(t, 100, file.readAt(buf, 0))
	assert.Equal(t, payload, buf)
}

func TestFile_QuotaExhaustion(t *testing.T) {
	t.Parallel()

	q := &quota{limit: 64}
	file := newFileNode("f", 16, q)

	payload := bytes.Repeat([]byte{'q'}, 100)
	n, err := file.write(payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, treefs.ErrOutOfMemory)
	assert.Equal(t, 0, n) // whole allocation rejected up front
	assert.Equal(t, int64(0), q.used.Load())

	// A write that fits still succeeds
	n, err = file.write(bytes.Repeat([]byte{'q'}, 64))
	require.NoError(t, err)
	assert.Equal(t, 64, n)
	assert.Equal(t, int64(64), q.used.Load())
}

func TestFile_QuotaReleasedOnClear(t *testing.T) {
	t.Parallel()

	q := &quota{limit: 64}
	file := newFileNode("f", 16, q)
	_, err := file.write(bytes.Repeat([]byte{'q'}, 64))
	require.NoError(t, err)
	require.Equal(t, int64(64), q.used.Load())

	require.NoError(t, file.clear(1))
	assert.Equal(t, int64(16), q.used.Load())
}
