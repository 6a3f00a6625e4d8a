package treefs

import "errors"

// Error kinds reported by the tree controller and streams. Operations wrap
// these with fmt.Errorf("%w: ...") so callers can match with errors.Is while
// still getting a descriptive message.
var (
	ErrCantCreateDir  = errors.New("cannot create directory")
	ErrCantCreateFile = errors.New("cannot create file")
	ErrCantOpenFile   = errors.New("cannot open file")

	// ErrOutOfMemory is reported when allocating chunk storage would exceed
	// the configured byte quota.
	ErrOutOfMemory = errors.New("out of memory")

	ErrNodeIsFile       = errors.New("node is a file")
	ErrNodeIsDir        = errors.New("node is a directory")
	ErrNodeAlreadyExist = errors.New("node already exists")
	ErrNodeNotExist     = errors.New("node does not exist")
)
