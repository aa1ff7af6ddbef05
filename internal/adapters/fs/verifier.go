package fs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Verifier checks whether a package directory is complete.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// ReadManifest returns the manifest of the package in dir. A directory without
// a manifest is incomplete and reported as found == false.
func (v *Verifier) ReadManifest(dir string) (domain.Manifest, bool, error) {
	path := filepath.Join(dir, domain.ManifestFileName)

	//nolint:gosec // Path is built from the package repository layout
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Manifest{}, false, nil
		}
		return domain.Manifest{}, false, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Manifest{}, false, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}
	return m, true, nil
}

// WriteManifest writes m into dir.
func (v *Verifier) WriteManifest(dir string, m domain.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}

	path := filepath.Join(dir, domain.ManifestFileName)
	//nolint:gosec // Path is built from the package repository layout
	if err := os.WriteFile(path, append(data, '\n'), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "path", path)
	}
	return nil
}
