package ports

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
)

// PackageRequest describes a package to assemble.
type PackageRequest struct {
	// InstallDir is the finalized install directory artifacts are copied from.
	InstallDir string
	Rules      []domain.ArtifactRule
	// DestDir is replaced atomically once the package is complete.
	DestDir string
	// Manifest is the template written into the package. Files and Digest are filled in.
	Manifest domain.Manifest
}

// CopyRequest describes a plain copy of artifacts into an existing tree.
type CopyRequest struct {
	SourceDir string
	Rules     []domain.ArtifactRule
	DestDir   string
}

// Packager collects build outputs into the package layout.
//
//go:generate mockgen -source=packager.go -destination=mocks/mock_packager.go -package=mocks
type Packager interface {
	// Package stages the matching artifacts, writes the manifest last and
	// moves the staged tree to DestDir. On failure DestDir is left untouched.
	Package(ctx context.Context, req PackageRequest) (domain.Manifest, error)

	// Copy copies the matching artifacts into DestDir, keeping existing files.
	Copy(ctx context.Context, req CopyRequest) ([]domain.ManifestFile, error)
}
