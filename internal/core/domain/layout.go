package domain

import "path/filepath"

const (
	// FerryDirName is the name of the work directory.
	FerryDirName = ".ferry"

	// SourcesDirName holds one source tree per package and branch.
	SourcesDirName = "sources"

	// BuildsDirName holds the per-run build and install directories.
	BuildsDirName = "builds"

	// StoreDirName holds the build records.
	StoreDirName = "store"

	// PackagesDirName is the default local package repository.
	PackagesDirName = "packages"

	// BuildSubdir is the CMake binary directory inside a run directory.
	BuildSubdir = "build"

	// InstallSubdir is the install prefix inside a run directory.
	InstallSubdir = "install"

	// SettingsFileName is the optional settings file read from the current directory.
	SettingsFileName = "ferry.config.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DescriptorFileNames lists the descriptor names searched for, in order.
var DescriptorFileNames = []string{"ferry.yaml", "ferry.yml", "ferry.toml"}

// DefaultWorkDir returns the default work directory.
func DefaultWorkDir() string {
	return FerryDirName
}

// DefaultOutputDir returns the default local package repository.
// It joins .ferry and packages.
func DefaultOutputDir() string {
	return filepath.Join(FerryDirName, PackagesDirName)
}

// SourceDir returns the source tree location of a package branch below workDir.
func SourceDir(workDir, name, branch string) string {
	return filepath.Join(workDir, SourcesDirName, name, filepath.FromSlash(branch))
}

// RunDir returns the per-run directory below workDir. runID must be unique per run.
func RunDir(workDir string, ref DependencyRef, runID string) string {
	return filepath.Join(workDir, BuildsDirName, ref.Name+"-"+ref.Version+"-"+runID)
}

// PackageDir returns the location of a package in a repository.
func PackageDir(repoDir string, ref DependencyRef) string {
	return filepath.Join(repoDir, ref.Name, ref.Version)
}

// StoreDir returns the build record store below workDir.
func StoreDir(workDir string) string {
	return filepath.Join(workDir, StoreDirName)
}
