package filesystem

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/treefs/treefs"
)

// chunk is one fixed-size buffer backing part of a file's content. Only the
// last occupied chunk of a file may be partially filled; all prior chunks
// are full.
type chunk struct {
	data   []byte
	filled int
}

func newChunk(size int) *chunk {
	return &chunk{data: make([]byte, size)}
}

// quota tracks the chunk capacity allocated across the whole tree against a
// fixed byte limit. A zero limit means unlimited.
type quota struct {
	limit int64
	used  atomic.Int64
}

// reserve charges n bytes of capacity, failing without charging anything if
// the limit would be exceeded
func (q *quota) reserve(n int64) error {
	if q.limit <= 0 {
		q.used.Add(n)
		return nil
	}
	for {
		cur := q.used.Load()
		if cur+n > q.limit {
			return fmt.Errorf("%w: %d of %d quota bytes in use, %d more needed",
				treefs.ErrOutOfMemory, cur, q.limit, n)
		}
		if q.used.CompareAndSwap(cur, cur+n) {
			return nil
		}
	}
}

func (q *quota) release(n int64) {
	q.used.Add(-n)
}

/* File operations on Node. Callers must only invoke these on FileKind nodes. */

// Size returns the logical byte size for a file and 0 for a directory
func (n *Node) Size() int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.size
}

// Modified returns the last content modification time
func (n *Node) Modified() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.modified
}

// reserveChunksLocked allocates count fresh chunks after charging the quota.
// Caller must hold n.mu
func (n *Node) reserveChunksLocked(count int) error {
	if err := n.quota.reserve(int64(count) * int64(n.chunkSize)); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		n.chunks = append(n.chunks, newChunk(n.chunkSize))
	}
	return nil
}

// clear drops the file content and pre-allocates a few empty chunks so the
// first writes after a truncating open don't allocate one chunk at a time
func (n *Node) clear(prealloc int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.quota.release(int64(len(n.chunks)) * int64(n.chunkSize))
	n.chunks = nil
	n.size = 0
	return n.reserveChunksLocked(prealloc)
}

// write appends p at the current logical end, growing capacity by whole
// chunks when the file is exactly full. Returns the bytes written
func (n *Node) write(p []byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}

	// Whole chunks needed to hold the incoming bytes; only allocated when
	// the current capacity is exhausted
	need := len(p) / n.chunkSize
	if len(p)%n.chunkSize > 0 {
		need++
	}
	if n.size == int64(len(n.chunks))*int64(n.chunkSize) {
		if err := n.reserveChunksLocked(need); err != nil {
			return 0, err
		}
	}

	written := 0
	pos := int(n.size / int64(n.chunkSize)) // chunk containing the logical end
	for written < len(p) {
		if pos >= len(n.chunks) {
			if err := n.reserveChunksLocked(1); err != nil {
				n.modified = time.Now()
				return written, err
			}
		}
		c := n.chunks[pos]
		free := len(c.data) - c.filled
		cnt := len(p) - written
		if cnt > free {
			cnt = free
		}
		copy(c.data[c.filled:], p[written:written+cnt])
		c.filled += cnt
		n.size += int64(cnt)
		written += cnt
		pos++
	}

	n.modified = time.Now()
	return written, nil
}

// readAt copies bytes into p starting at logical offset off. It stops at the
// end of actual data, as opposed to mere chunk capacity, and returns the
// bytes read
func (n *Node) readAt(p []byte, off int64) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	pos := int(off / int64(n.chunkSize))
	read := 0
	for read < len(p) {
		if pos >= len(n.chunks) {
			break
		}
		c := n.chunks[pos]
		inChunk := int(off+int64(read)) - pos*n.chunkSize
		cnt := c.filled - inChunk
		if cnt > len(p)-read {
			cnt = len(p) - read
		}
		if cnt <= 0 {
			break
		}
		copy(p[read:], c.data[inChunk:inChunk+cnt])
		read += cnt
		pos++
	}

	n.accessed = time.Now()
	return read
}

// copyChunksFrom gives n an independent byte-for-byte duplicate of src's
// chunk storage. Caller must hold src.mu at least for reading; n must not
// yet be shared
func (n *Node) copyChunksFrom(src *Node) error {
	if err := n.quota.reserve(int64(len(src.chunks)) * int64(n.chunkSize)); err != nil {
		return err
	}
	n.chunks = make([]*chunk, 0, len(src.chunks))
	for _, c := range src.chunks {
		cp := newChunk(len(c.data))
		cp.filled = c.filled
		copy(cp.data, c.data[:c.filled])
		n.chunks = append(n.chunks, cp)
	}
	n.size = src.size
	return nil
}
