package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// ftypHeader is the start of an MP4 container. Tests that scan directories for
// clips or hash file contents need files that exist on disk; none of them
// decode the payload.
var ftypHeader = []byte("\x00\x00\x00\x18ftypmp42")

// WriteFile creates a throwaway clip-like file of the requested size. A size
// <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	payload := make([]byte, size)
	copy(payload, ftypHeader)
	for i := len(ftypHeader); i < len(payload); i++ {
		payload[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
