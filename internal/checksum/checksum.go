// Package checksum computes the content identity used to match disk
// files against database rows.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data. Equal digests are
// treated as equal content everywhere in the sync path.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
