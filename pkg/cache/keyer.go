package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ArtifactKeyOpts holds the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format string
	Layout string
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for an artifact rendered from DOT source
	// with the given content hash.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds readable keys of the form
// "artifact:<format>:<layout>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return strings.Join([]string{"artifact", opts.Format, opts.Layout, dotHash}, ":")
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
