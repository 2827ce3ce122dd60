package cache

// ScopedKeyer wraps a Keyer with a prefix, giving separate cache
// namespaces to e.g. different board revisions on a shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FileSetKey generates a prefixed key for a complete file set.
func (k *ScopedKeyer) FileSetKey(paramsHash string) string {
	return k.prefix + k.inner.FileSetKey(paramsHash)
}

// LayerKey generates a prefixed key for a single layer file.
func (k *ScopedKeyer) LayerKey(paramsHash, extension string) string {
	return k.prefix + k.inner.LayerKey(paramsHash, extension)
}

// SchematicKey generates a prefixed key for a rendered schematic.
func (k *ScopedKeyer) SchematicKey(paramsHash, format string) string {
	return k.prefix + k.inner.SchematicKey(paramsHash, format)
}
