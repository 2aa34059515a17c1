package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Digest is a SHA-256 hash.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// Combine hashes content followed by parts. The order of parts must be
// deterministic.
func Combine(content Digest, parts ...string) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		// length prefix so ("ab","c") and ("a","bc") differ
		_, _ = fmt.Fprintf(h, "%d:%s", len(p), p)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashFile hashes the bytes of path as stored on disk.
func HashFile(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(data), nil
}
