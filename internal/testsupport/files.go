package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTemplate writes a template body padded with filler bytes around each
// token so patched output can be compared byte for byte.
func WriteTemplate(t testing.TB, path string, tokens ...[]byte) []byte {
	t.Helper()

	var body []byte
	filler := []byte{0x00, 0x42, 0x00, 0x42}
	for _, token := range tokens {
		body = append(body, filler...)
		body = append(body, token...)
	}
	body = append(body, filler...)
	WriteFile(t, path, body)
	return body
}
