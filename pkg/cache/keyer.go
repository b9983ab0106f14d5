package cache

import "strings"

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Cols   int     `json:"cols,omitempty"`
	Rows   int     `json:"rows,omitempty"`
	Frame  int     `json:"frame,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// FramesKey keys the frames solved from a scenario.
	FramesKey(scenarioHash string) string

	// ArtifactKey keys an artifact rendered from solved frames.
	ArtifactKey(framesHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) FramesKey(scenarioHash string) string {
	return hashKey("frames", scenarioHash)
}

func (DefaultKeyer) ArtifactKey(framesHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", framesHash, opts)
}

// keyType returns the kind prefix of a key ("frames", "artifact"),
// skipping any scope prefix added by [ScopedKeyer].
func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
