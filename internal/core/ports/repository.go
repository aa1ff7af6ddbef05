package ports

import "go.trai.ch/ferry/internal/core/domain"

// PackageRepository looks up finished packages in a local repository.
//
//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks
type PackageRepository interface {
	// Resolve returns the directory and manifest of ref below repoDir.
	// A package without a manifest is treated as missing.
	Resolve(repoDir string, ref domain.DependencyRef) (string, domain.Manifest, error)
}
