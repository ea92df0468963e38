// Package hashing holds the digest helpers used to derive block
// identities and to fold digests into integers for attestation math.
package hashing

import (
	"crypto/sha256"
	"crypto/sha512"
	"math/big"

	"github.com/noodlenet/plexus/internal/types"
)

// Shorten derives the 4-byte short hash of a block from its full
// digest: the leading bytes of SHA-256 over the digest itself.
func Shorten(fullHash []byte) types.ShortHash {
	sum := sha256.Sum256(fullHash)
	var h types.ShortHash
	copy(h[:], sum[:types.ShortHashLen])
	return h
}

// ToASCII renders a string per-character with 8-bit truncation; byte
// slices pass through unchanged. This matches the historical rendering
// that upstream attestation hashes were computed over.
func ToASCII[V string | []byte](v V) []byte {
	switch val := any(v).(type) {
	case []byte:
		return val
	case string:
		out := make([]byte, 0, len(val))
		for _, r := range val {
			out = append(out, byte(r))
		}
		return out
	}
	return nil
}

// Sha256AsInt interprets the SHA-256 digest of v as a big-endian
// integer.
func Sha256AsInt[V string | []byte](v V) *big.Int {
	sum := sha256.Sum256(ToASCII(v))
	return new(big.Int).SetBytes(sum[:])
}

// Sha512AsInt interprets the SHA-512 digest of v as a big-endian
// integer.
func Sha512AsInt[V string | []byte](v V) *big.Int {
	sum := sha512.Sum512(ToASCII(v))
	return new(big.Int).SetBytes(sum[:])
}

// Sha256_4AsInt interprets the first 4 bytes of the SHA-256 digest of v
// as a big-endian integer.
func Sha256_4AsInt[V string | []byte](v V) *big.Int {
	sum := sha256.Sum256(ToASCII(v))
	return new(big.Int).SetBytes(sum[:4])
}
