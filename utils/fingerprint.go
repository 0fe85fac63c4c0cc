package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// VisitorFingerprint derives the pseudo-identity used for unique-visitor
// counting: a BLAKE2b-256 digest of the client IP and raw user-agent string,
// hex encoded. The same (ip, userAgent) pair always hashes to the same token.
// Known limitation carried over from the product definition: distinct people
// behind one IP with identical browsers share a fingerprint.
func VisitorFingerprint(ip, userAgent string) string {
	sum := blake2b.Sum256([]byte(ip + "-" + userAgent))
	return hex.EncodeToString(sum[:])
}
