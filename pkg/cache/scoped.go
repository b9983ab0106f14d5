package cache

// ScopedKeyer wraps a Keyer with a prefix so several releases or tenants
// can share one backend. The CLI scopes Redis keys by version:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
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

// FramesKey generates a prefixed frames key.
func (k *ScopedKeyer) FramesKey(scenarioHash string) string {
	return k.prefix + k.inner.FramesKey(scenarioHash)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(framesHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(framesHash, opts)
}
