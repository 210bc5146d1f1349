package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest computes the SHA-256 hex checksum and byte size of content.
// It is always applied to the raw (decoded) bytes, before any base64
// encoding; the checksum is the sole integrity anchor for round-trips.
func Digest(data []byte) (checksum string, size int64) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), int64(len(data))
}
