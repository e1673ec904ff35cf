package contentid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// idLength truncates hashes to a compact, collision-resistant identifier.
const idLength = 16

// FromOrigin derives a stable content identifier from an origin reference
// such as a post URL or external ID.
func FromOrigin(origin string) string {
	trimmed := strings.TrimSpace(origin)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:idLength]
}

// FromFile derives a stable content identifier from file contents. Used when
// a clip arrives without any upstream identity.
func FromFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("content id: open %s: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("content id: hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil))[:idLength], nil
}

// Resolve prefers an explicit identifier, then an origin reference, then the
// file contents.
func Resolve(explicit, origin, path string) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed, nil
	}
	if id := FromOrigin(origin); id != "" {
		return id, nil
	}
	return FromFile(path)
}
