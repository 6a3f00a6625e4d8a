package requests

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/treefs/treefs"
	"github.com/treefs/treefs/sources"
)

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (treefs.NodeCreateRequestType, error) {
	var meta struct {
		Type treefs.NodeCreateRequestType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// UnmarshalFileRequest handles file-specific unmarshaling, resolving the
// content source through the sources registry. A file without a source
// becomes an empty file.
func UnmarshalFileRequest(data []byte) (*treefs.FileCreateRequest, error) {
	var dto FileRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}

	req := &treefs.FileCreateRequest{
		NodeRequest: convertNodeDTO(dto.NodeRequestDTO),
	}
	if len(dto.Source) > 0 {
		provider, err := sources.GetProvider(dto.Source)
		if err != nil {
			return nil, fmt.Errorf("source for %q: %w", dto.Path, err)
		}
		req.Source = provider
	}
	return req, nil
}

// UnmarshalDirRequest handles explicit directory unmarshaling (no source)
func UnmarshalDirRequest(data []byte) (*treefs.DirCreateRequest, error) {
	var dto DirRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}

	return &treefs.DirCreateRequest{
		NodeRequest: convertNodeDTO(dto.NodeRequestDTO),
	}, nil
}

// Conversion logic with defaults in the unmarshaling layer
func convertNodeDTO(dto NodeRequestDTO) treefs.NodeRequest {
	return treefs.NodeRequest{
		Path: dto.Path,
		Type: dto.Type,
		UUID: valueOrDefault(dto.UUID, uuid.New().String()),
	}
}

func valueOrDefault[T any](ptr *T, defaultVal T) T {
	if ptr != nil {
		return *ptr
	}
	return defaultVal
}
