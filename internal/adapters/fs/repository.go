package fs

import (
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Repository implements ports.PackageRepository over a package directory tree.
type Repository struct {
	verifier *Verifier
}

// NewRepository creates a new Repository.
func NewRepository(verifier *Verifier) *Repository {
	return &Repository{verifier: verifier}
}

// Resolve returns the directory and manifest of ref. A directory without a manifest
// was never finalized and counts as missing.
func (r *Repository) Resolve(repoDir string, ref domain.DependencyRef) (string, domain.Manifest, error) {
	dir := domain.PackageDir(repoDir, ref)

	m, found, err := r.verifier.ReadManifest(dir)
	if err != nil {
		return "", domain.Manifest{}, err
	}
	if !found {
		err := zerr.With(zerr.Wrap(domain.ErrDependencyNotFound, ref.String()), "repository", repoDir)
		return "", domain.Manifest{}, err
	}
	return dir, m, nil
}
