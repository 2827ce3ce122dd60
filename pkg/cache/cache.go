// Package cache provides content-addressed caching for generated
// fabrication artifacts. Generation is deterministic, so a parameter hash
// fully identifies an output set; the cache lets repeated CLI runs and the
// preview server skip regeneration entirely.
package cache

import (
	"context"
	"time"
)

// Cache is the storage backend interface. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present; an expired or corrupt entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for the artifact kinds the generator produces.
// Centralizing key construction keeps the key schema consistent across
// the CLI and the preview server.
type Keyer interface {
	// FileSetKey identifies a complete fabrication file set by the hash
	// of the board parameters that produced it.
	FileSetKey(paramsHash string) string

	// LayerKey identifies one emitted layer file.
	LayerKey(paramsHash, extension string) string

	// SchematicKey identifies a rendered schematic in a given format.
	SchematicKey(paramsHash, format string) string
}

// DefaultKeyer is the standard key schema.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// FileSetKey generates a key for a complete file set.
func (k *DefaultKeyer) FileSetKey(paramsHash string) string {
	return hashKey("fileset", paramsHash)
}

// LayerKey generates a key for a single layer file.
func (k *DefaultKeyer) LayerKey(paramsHash, extension string) string {
	return hashKey("layer", paramsHash, extension)
}

// SchematicKey generates a key for a rendered schematic.
func (k *DefaultKeyer) SchematicKey(paramsHash, format string) string {
	return hashKey("schematic", paramsHash, format)
}
