package ports

import "context"

// BuildRequest carries everything the native build needs.
type BuildRequest struct {
	// SourceDir is the root of the fetched tree.
	SourceDir string
	// Subfolder is the CMake source directory relative to SourceDir.
	Subfolder  string
	BuildDir   string
	InstallDir string
	// Env holds "KEY=VALUE" entries applied to every phase.
	Env []string
	// PreBuild lists command lines run in BuildDir between configure and compile.
	PreBuild  []string
	Generator string
	BuildType string
	Defines   map[string]string
}

// Builder drives the external native build.
//
//go:generate mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks
type Builder interface {
	// Build runs configure, pre-build, compile and install in that order.
	// The first failing phase aborts the build.
	Build(ctx context.Context, req BuildRequest) error
}
