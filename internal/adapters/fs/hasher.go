package fs

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Hasher computes file and package digests.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// FileDigest returns the hex encoded XXHash of a file's content.
func (h *Hasher) FileDigest(path string) (string, error) {
	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", sum), nil
}

// PackageDigest combines the path, category and digest of every file, independent of their order.
func (h *Hasher) PackageDigest(files []domain.ManifestFile) string {
	sorted := slices.SortedFunc(slices.Values(files), func(a, b domain.ManifestFile) int {
		return strings.Compare(a.Path, b.Path)
	})

	hasher := xxhash.New()
	for _, f := range sorted {
		_, _ = hasher.WriteString(f.Path)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(string(f.Category))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(f.Digest)
		_, _ = hasher.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}
