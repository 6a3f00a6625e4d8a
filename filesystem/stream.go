package filesystem

import (
	"github.com/treefs/treefs"
)

// Stream is a cursor over one file's content, created by [FileSystem.Open].
// It shares the file with the tree rather than owning it: writes and reads
// through a stream are immediately visible to any other caller on the same
// file. Reads advance the cursor; writes always append at the file's logical
// end regardless of the cursor position.
//
// The cursor itself is not synchronized, so a single Stream value should not
// be shared between goroutines. The underlying file is protected by its own
// lock.
type Stream struct {
	file *Node
	mode treefs.FileMode
	pos  int64
}

// newStream binds a stream to a file, truncating the file first unless the
// mode carries the append flag
func newStream(file *Node, mode treefs.FileMode, clearPrealloc int) (*Stream, error) {
	if !mode.Has(treefs.ModeAppend) {
		if err := file.clear(clearPrealloc); err != nil {
			return nil, err
		}
	}
	return &Stream{file: file, mode: mode}, nil
}

// Write appends p at the file's logical end. It is a no-op returning 0 when
// the stream lacks write capability. The returned count is the bytes
// actually stored; an error means the chunk quota ran out mid-write.
func (s *Stream) Write(p []byte) (int, error) {
	if !s.mode.Has(treefs.ModeWrite) {
		return 0, nil
	}
	return s.file.write(p)
}

// WriteString writes the bytes of str.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// WriteLine writes line followed by a newline.
func (s *Stream) WriteLine(line string) (int, error) {
	n, err := s.WriteString(line)
	if err != nil {
		return n, err
	}
	m, err := s.Write([]byte{'\n'})
	return n + m, err
}

// Read copies bytes at the cursor into p and advances the cursor by the
// bytes actually read. It returns 0 when the stream lacks read capability,
// the file is empty, or the cursor is at the end of data.
func (s *Stream) Read(p []byte) int {
	if !s.mode.Has(treefs.ModeRead) || s.file.Size() == 0 {
		return 0
	}
	n := s.file.readAt(p, s.pos)
	s.pos += int64(n)
	return n
}

// ReadLine reads up to the next newline or the end of data and returns the
// accumulated text without the newline.
func (s *Stream) ReadLine() string {
	var line []byte
	one := make([]byte, 1)
	for s.Read(one) != 0 {
		if one[0] == '\n' {
			break
		}
		line = append(line, one[0])
	}
	return string(line)
}

// ReadAll reads everything from the cursor to the end of data and advances
// the cursor past it.
func (s *Stream) ReadAll() []byte {
	remaining := s.Size() - s.pos
	if remaining <= 0 {
		return nil
	}
	buf := make([]byte, remaining)
	n := s.Read(buf)
	return buf[:n]
}

// Seek moves the cursor relative to the given origin. The resulting position
// is clamped to [0, size]; on an empty file it is a no-op. Returns the new
// cursor position.
func (s *Stream) Seek(origin treefs.Cursor, offset int64) int64 {
	size := s.Size()
	if size == 0 {
		return s.pos
	}

	var pos int64
	switch origin {
	case treefs.CursorStart:
		pos = offset
	case treefs.CursorCurrent:
		pos = s.pos + offset
	case treefs.CursorEnd:
		pos = size + offset
	default:
		return s.pos
	}

	if pos < 0 {
		pos = 0
	}
	if pos > size {
		pos = size
	}
	s.pos = pos
	return s.pos
}

// Tell returns the current cursor position.
func (s *Stream) Tell() int64 {
	return s.pos
}

// Size returns the file's current logical size.
func (s *Stream) Size() int64 {
	return s.file.Size()
}

// IsEOF reports whether the cursor is at or past the end of the file.
func (s *Stream) IsEOF() bool {
	return s.pos >= s.file.Size()
}

// Name returns the file's name.
func (s *Stream) Name() string {
	return s.file.Name()
}

// Node returns the underlying file node shared with the tree.
func (s *Stream) Node() *Node {
	return s.file
}
