package treefs

// NodeRequestor is an interface implemented by all node request types
type NodeRequestor interface {
	GetType() NodeCreateRequestType
	GetPath() string
}

// ContentProvider supplies the initial byte content for a file node.
// Implementations are registered per manifest "type" key in the sources
// package and resolved while unmarshaling file requests
type ContentProvider interface {
	// Content returns the full file content
	Content() ([]byte, error)
}
