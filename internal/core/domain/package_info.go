package domain

import "slices"

// PackageInfo is what downstream consumers need to link against a package.
type PackageInfo struct {
	Libs        []string
	IncludeDirs []string
	LibDirs     []string
}

// Info reports the link information of the descriptor's package. It performs no I/O.
// Without an explicit libs list the package name is the single library.
func Info(d *Descriptor) PackageInfo {
	libs := slices.Clone(d.Libs)
	if len(libs) == 0 {
		libs = []string{d.Name}
	}
	return PackageInfo{
		Libs:        libs,
		IncludeDirs: []string{string(CategoryInclude)},
		LibDirs:     []string{string(CategoryLib)},
	}
}
