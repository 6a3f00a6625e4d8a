package sources

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/treefs/treefs"
)

type BuiltInSourceType = string

const (
	InlineSourceType BuiltInSourceType = "inline"
	Base64SourceType BuiltInSourceType = "base64"
)

// RegisterBuiltins registers all built-in source types by default
// or only the specific ones if keys are provided
func RegisterBuiltins(types ...BuiltInSourceType) {
	if len(types) == 0 {
		types = append(types, InlineSourceType, Base64SourceType)
	}

	for _, key := range types {
		switch key {
		case InlineSourceType:
			Register(InlineSourceType, unmarshalInline)
		case Base64SourceType:
			Register(Base64SourceType, unmarshalBase64)
		}
	}
}

// InlineSource carries the file content directly in the manifest
type InlineSource struct {
	Text string `json:"content"`
}

func (s *InlineSource) Content() ([]byte, error) {
	return []byte(s.Text), nil
}

func unmarshalInline(raw []byte) (treefs.ContentProvider, error) {
	var s InlineSource
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Base64Source carries standard-encoding base64 content, for binary files
type Base64Source struct {
	Data string `json:"content"`
}

func (s *Base64Source) Content() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 content: %w", err)
	}
	return data, nil
}

func unmarshalBase64(raw []byte) (treefs.ContentProvider, error) {
	var s Base64Source
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
