// Package treefs contains the core domain types and interfaces for the
// treefs in-memory virtual filesystem
package treefs

// FileMode is a bit-flag set describing how a file stream may be used.
// Append combines with Read/Write to suppress truncate-on-open.
type FileMode int

const (
	ModeRead  FileMode = 1 << 0
	ModeWrite FileMode = 1 << 1
	ModeRW    FileMode = ModeRead | ModeWrite

	// ModeAppend keeps the existing content when the stream is opened.
	// Without it the file is truncated before the first read or write.
	ModeAppend FileMode = 1 << 2
)

// Has reports whether all flag bits of m are set.
func (f FileMode) Has(m FileMode) bool {
	return f&m == m
}

// Cursor is the origin of a stream seek.
type Cursor int

const (
	CursorStart Cursor = iota
	CursorCurrent
	CursorEnd
)

func (c Cursor) String() string {
	switch c {
	case CursorStart:
		return "start"
	case CursorCurrent:
		return "current"
	case CursorEnd:
		return "end"
	}
	return "unknown"
}
