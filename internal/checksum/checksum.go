// Package checksum fingerprints post contents so unchanged saves can be told
// apart from real edits.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Set remembers the last digest seen per name.
type Set map[string]string

// Changed records data under name and reports whether it differs from the
// previous digest. A name seen for the first time counts as changed.
func (s Set) Changed(name string, data []byte) bool {
	sum := Sum(data)
	if prev, ok := s[name]; ok && prev == sum {
		return false
	}
	s[name] = sum
	return true
}

// Forget drops name.
func (s Set) Forget(name string) {
	delete(s, name)
}
