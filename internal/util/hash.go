// Package util holds small helpers shared across memorybank packages.
package util

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 16

// DeriveID produces a short, stable identifier from a piece of text and
// a nanosecond timestamp. The same inputs always yield the same ID.
func DeriveID(text string, unixNano int64) string {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(unixNano))

	hasher := sha256.New()
	hasher.Write([]byte(text))
	hasher.Write(ts[:])
	return hex.EncodeToString(hasher.Sum(nil))[:idLength]
}
