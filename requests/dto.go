// Package requests unmarshals node-manifest JSON into the core request
// types, applying defaults for omitted fields.
package requests

import (
	"encoding/json"

	"github.com/treefs/treefs"
)

// NodeRequestDTO is the JSON representation of [treefs.NodeRequest]
type NodeRequestDTO struct {
	Path string                       `json:"path"`
	Type treefs.NodeCreateRequestType `json:"type"`
	UUID *string                      `json:"uuid,omitempty"` // Optional UUID to pin node identity at request time
}

// FileRequestDTO is the JSON representation of [treefs.FileCreateRequest]
type FileRequestDTO struct {
	NodeRequestDTO
	Source json.RawMessage `json:"source,omitempty"`
}

// DirRequestDTO is the JSON representation of [treefs.DirCreateRequest]
type DirRequestDTO struct {
	NodeRequestDTO
}
