// Package jobkey maps source URLs to stable job identifiers.
package jobkey

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
)

// Derive returns the lower-case md5 hex digest of the exact URL bytes.
// The same URL always yields the same key, across runs and restarts.
func Derive(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Dir returns the job directory for key beneath root.
func Dir(root, key string) string {
	return filepath.Join(root, key)
}
