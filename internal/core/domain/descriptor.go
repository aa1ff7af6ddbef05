package domain

import (
	"maps"
	"slices"
)

// Descriptor is the validated, immutable description of one package.
// Loaders return it by value; accessors that expose slices or maps return copies.
type Descriptor struct {
	Name        string
	Version     string
	License     string
	Description string

	Settings Settings
	Options  Options
	Source   Source
	Build    BuildSpec

	// Toolchain is the resolved toolchain: preset overlaid with Settings, already validated.
	Toolchain Toolchain
	// Preset is the toolchain preset the descriptor named, if any.
	Preset string

	Artifacts []ArtifactRule
	Libs      []string
	Requires  []DependencyRef
	Imports   []ArtifactRule
}

// Settings is the build-relevant settings tuple of a descriptor.
type Settings struct {
	OS              string
	Compiler        string
	CompilerVersion string
	Libcxx          string
	BuildType       string
	Arch            string
}

// Options holds the user-facing package options.
type Options struct {
	// Shared selects shared libraries over static ones. Defaults to false.
	Shared bool
}

// Source describes where the sources come from.
type Source struct {
	URL    string
	Branch string
	// Subfolder is the CMake source directory relative to the clone root.
	Subfolder string
}

// BuildSpec carries the extra inputs of the build orchestration step.
type BuildSpec struct {
	// PreBuild lists command lines run in the build directory between configure and compile.
	PreBuild  []string
	Generator string
	Defines   map[string]string
}

// DependencyRef names another package by exact name and version.
type DependencyRef struct {
	Name    string
	Version string
}

// String returns the reference as name/version.
func (r DependencyRef) String() string {
	return r.Name + "/" + r.Version
}

// Ref returns the reference of the descriptor's own package.
func (d *Descriptor) Ref() DependencyRef {
	return DependencyRef{Name: d.Name, Version: d.Version}
}

// WithPreset returns a copy of d whose toolchain is resolved again from the
// named preset and the descriptor settings.
func (d *Descriptor) WithPreset(name string) (Descriptor, error) {
	tc, err := ResolveToolchain(name, d.Settings, d.Options.Shared)
	if err != nil {
		return Descriptor{}, err
	}
	out := *d
	out.Toolchain = tc
	out.Preset = name
	return out, nil
}

// ArtifactRules returns the descriptor's artifact rules, or the defaults for its link mode.
func (d *Descriptor) ArtifactRules() []ArtifactRule {
	if len(d.Artifacts) > 0 {
		return slices.Clone(d.Artifacts)
	}
	return DefaultArtifactRules(d.Options.Shared)
}

// ImportRules returns the descriptor's import rules, or the default consumer rules.
func (d *Descriptor) ImportRules() []ArtifactRule {
	if len(d.Imports) > 0 {
		return slices.Clone(d.Imports)
	}
	return DefaultImportRules()
}

// PreBuild returns a copy of the pre-build command lines.
func (d *Descriptor) PreBuild() []string {
	return slices.Clone(d.Build.PreBuild)
}

// Defines returns a copy of the extra CMake defines.
func (d *Descriptor) Defines() map[string]string {
	return maps.Clone(d.Build.Defines)
}

// Dependencies returns a copy of the declared dependency references.
func (d *Descriptor) Dependencies() []DependencyRef {
	return slices.Clone(d.Requires)
}
