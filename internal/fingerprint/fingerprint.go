// Package fingerprint computes fast content digests of source files so that
// each ETL run can record exactly which inputs it loaded. xxh3 is not a
// cryptographic hash; the digest is a provenance marker, not a security
// boundary.
package fingerprint

import (
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// File returns the xxh3-64 digest of the file at path, formatted as 16 hex
// digits.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint: open %s: %w", path, err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint: read %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
