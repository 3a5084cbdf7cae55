// Package security implements the legacy-compatible password hash: a single
// SHA-256 round over salt||password, stored as "<hex-digest>:<hex-salt>".
// The algorithm is pinned by spec for bit-identical verification of
// previously stored hashes, so it is built on crypto/sha256, crypto/rand,
// crypto/subtle, and encoding/hex rather than a higher-level hashing library
// — see DESIGN.md for why this is the one place stdlib is deliberate instead
// of an ecosystem dependency.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const saltSize = 16

// Hash generates a random 16-byte salt and returns
// hex(sha256(salt||password)) + ":" + hex(salt).
func Hash(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	digest := digestOf(salt, password)
	return hex.EncodeToString(digest) + ":" + hex.EncodeToString(salt), nil
}

// Verify reports whether password matches the stored "<digest>:<salt>"
// hash. A malformed stored value returns false rather than an error.
func Verify(password, stored string) bool {
	digestHex, saltHex, ok := splitStored(stored)
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	wantDigest, err := hex.DecodeString(digestHex)
	if err != nil {
		return false
	}
	gotDigest := digestOf(salt, password)
	return subtle.ConstantTimeCompare(gotDigest, wantDigest) == 1
}

func digestOf(salt []byte, password string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return h.Sum(nil)
}

func splitStored(stored string) (digestHex, saltHex string, ok bool) {
	parts := strings.SplitN(stored, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
