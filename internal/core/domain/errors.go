package domain

import "go.trai.ch/zerr"

// Failure categories. Every error surfaced by the pipeline carries exactly one of them.
var (
	// ErrConfiguration is returned when a descriptor is malformed or incomplete.
	ErrConfiguration = zerr.New("configuration error")

	// ErrUnsupportedToolchain is returned for an unknown compiler, standard library or architecture.
	ErrUnsupportedToolchain = zerr.New("unsupported toolchain")

	// ErrFetch is returned when the source tree cannot be acquired.
	ErrFetch = zerr.New("fetch failed")

	// ErrBuild is returned when a configure, pre-build, compile or install phase fails.
	ErrBuild = zerr.New("build failed")

	// ErrPackaging is returned when a mandatory artifact category is empty or a copy fails.
	ErrPackaging = zerr.New("packaging failed")
)

var (
	// ErrDescriptorNotFound is returned when no descriptor file exists in the directory tree.
	ErrDescriptorNotFound = zerr.New("could not find ferry.yaml, ferry.yml or ferry.toml")

	// ErrDescriptorReadFailed is returned when the descriptor file cannot be read.
	ErrDescriptorReadFailed = zerr.New("failed to read descriptor")

	// ErrDescriptorParseFailed is returned when the descriptor file cannot be decoded.
	ErrDescriptorParseFailed = zerr.New("failed to parse descriptor")

	// ErrDescriptorEncodeFailed is returned when a descriptor cannot be serialized.
	ErrDescriptorEncodeFailed = zerr.New("failed to encode descriptor")

	// ErrUnknownDescriptorFormat is returned for a descriptor extension other than yaml, yml or toml.
	ErrUnknownDescriptorFormat = zerr.New("unknown descriptor format")

	// ErrMissingField is returned when a required descriptor field is empty.
	ErrMissingField = zerr.New("missing required field")

	// ErrInvalidVersion is returned when a version is not a valid semantic version.
	ErrInvalidVersion = zerr.New("invalid semantic version")

	// ErrInvalidCategory is returned for an artifact category other than include, lib, bin or res.
	ErrInvalidCategory = zerr.New("invalid artifact category")

	// ErrInvalidPattern is returned when an artifact glob pattern is malformed.
	ErrInvalidPattern = zerr.New("invalid artifact pattern")

	// ErrUnknownPreset is returned when a descriptor names a toolchain preset that does not exist.
	ErrUnknownPreset = zerr.New("unknown toolchain preset")

	// ErrUnknownCompiler is returned for a compiler family ferry cannot configure.
	ErrUnknownCompiler = zerr.New("unknown compiler")

	// ErrUnknownLibcxx is returned for a standard library the compiler family does not ship.
	ErrUnknownLibcxx = zerr.New("unknown standard library for compiler")

	// ErrUnknownArch is returned for an unknown target architecture.
	ErrUnknownArch = zerr.New("unknown architecture")

	// ErrUnknownBuildType is returned for a build type CMake does not define.
	ErrUnknownBuildType = zerr.New("unknown build type")

	// ErrBranchNotFound is returned when the remote has no branch with the requested name.
	ErrBranchNotFound = zerr.New("branch not found on remote")

	// ErrRemoteUnreachable is returned when the remote repository cannot be queried.
	ErrRemoteUnreachable = zerr.New("remote repository unreachable")

	// ErrSourceDiverged is returned when a cached tree tracks another branch or remote.
	ErrSourceDiverged = zerr.New("source tree diverged from descriptor, run with --refresh")

	// ErrCloneFailed is returned when cloning the repository fails.
	ErrCloneFailed = zerr.New("failed to clone repository")

	// ErrSubfolderNotFound is returned when the configured source subfolder does not exist.
	ErrSubfolderNotFound = zerr.New("source subfolder not found")

	// ErrInstallDirExists is returned when the install directory is not fresh.
	ErrInstallDirExists = zerr.New("install directory already exists")

	// ErrInvalidCommand is returned when a pre-build command line cannot be parsed.
	ErrInvalidCommand = zerr.New("invalid command line")

	// ErrMandatoryArtifactMissing is returned when a mandatory artifact rule matched no files.
	ErrMandatoryArtifactMissing = zerr.New("mandatory artifact category matched no files")

	// ErrArtifactCopyFailed is returned when copying an artifact into the package fails.
	ErrArtifactCopyFailed = zerr.New("failed to copy artifact")

	// ErrManifestWriteFailed is returned when the package manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write package manifest")

	// ErrManifestReadFailed is returned when a package manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read package manifest")

	// ErrFinalizeFailed is returned when the staged package cannot be moved into place.
	ErrFinalizeFailed = zerr.New("failed to finalize package")

	// ErrDependencyNotFound is returned when a required package is not in the local repository.
	ErrDependencyNotFound = zerr.New("dependency not found in package repository")

	// ErrInvalidTransition is returned when a pipeline state is advanced out of order.
	ErrInvalidTransition = zerr.New("invalid pipeline transition")

	// ErrStoreReadFailed is returned when a build record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build record")

	// ErrStoreWriteFailed is returned when a build record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build record")

	// ErrStoreCreateFailed is returned when the build record store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build record store directory")

	// ErrStoreUnmarshalFailed is returned when a build record cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build record")

	// ErrStoreMarshalFailed is returned when a build record cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build record")

	// ErrSettingsLoadFailed is returned when the ferry settings file cannot be read.
	ErrSettingsLoadFailed = zerr.New("failed to load settings")
)

// Failure tags a cause with one of the failure categories so callers can
// branch on the category with errors.Is while the cause keeps its own chain.
type Failure struct {
	Category error
	Cause    error
}

// NewFailure returns an error that matches both category and cause.
func NewFailure(category, cause error) error {
	return &Failure{Category: category, Cause: cause}
}

// Error returns the category followed by the cause.
func (f *Failure) Error() string {
	if f.Cause == nil {
		return f.Category.Error()
	}
	return f.Category.Error() + ": " + f.Cause.Error()
}

// Unwrap exposes both the category and the cause to errors.Is and errors.As.
func (f *Failure) Unwrap() []error {
	return []error{f.Category, f.Cause}
}
