// Package sources resolves manifest file-content definitions to
// [treefs.ContentProvider] implementations via a type-keyed registry.
package sources

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/treefs/treefs"
)

var (
	mu        sync.RWMutex
	factories = map[string]func(raw []byte) (treefs.ContentProvider, error){}
)

// Register ties a JSON-raw factory to a "type" key and should be called for
// each source type during app init
func Register(sourceType string, unmarshal func(raw []byte) (treefs.ContentProvider, error)) {
	mu.Lock()
	factories[sourceType] = unmarshal
	mu.Unlock()
}

// GetProvider picks the right factory based on the "type" field.
// All expected source types should be registered with [Register] before
// calling this function.
func GetProvider(raw []byte) (treefs.ContentProvider, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	mu.RLock()
	f, ok := factories[meta.Type]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no factory for %q", meta.Type)
	}
	return f(raw)
}
