package treefs

// NodeRequest has common fields embedded in concrete request types.
// It is passed from entrypoints (cli, manifest loaders, etc) to the
// filesystem create methods
type NodeRequest struct {
	Path string
	Type NodeCreateRequestType
	UUID string // Optional UUID to pin the node identity at request time
}

// NodeCreateRequestType valid types are FileNodeType "file", DirNodeType "dir"
type NodeCreateRequestType string

const (
	FileNodeType NodeCreateRequestType = "file"
	DirNodeType  NodeCreateRequestType = "dir"
)

// FileCreateRequest asks for a file node with content supplied by a provider
type FileCreateRequest struct {
	NodeRequest
	Source ContentProvider
}

// DirCreateRequest asks for a directory node, creating missing ancestors
type DirCreateRequest struct {
	NodeRequest
}

func (r *NodeRequest) GetType() NodeCreateRequestType {
	return r.Type
}

func (r *NodeRequest) GetPath() string {
	return r.Path
}
