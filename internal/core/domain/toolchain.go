package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// LinkMode selects shared or static libraries.
type LinkMode string

const (
	// LinkShared builds shared objects.
	LinkShared LinkMode = "shared"
	// LinkStatic builds static archives.
	LinkStatic LinkMode = "static"
)

// LinkModeFor maps the descriptor's shared option to a LinkMode.
func LinkModeFor(shared bool) LinkMode {
	if shared {
		return LinkShared
	}
	return LinkStatic
}

// Toolchain is the flat, validated compiler configuration targeted by a build.
type Toolchain struct {
	Compiler  string
	Version   string
	Libcxx    string
	Arch      string
	BuildType string
	LinkMode  LinkMode
}

// compilerLibcxx lists the standard libraries each supported compiler family ships.
// An empty list means the family has no libcxx setting.
var compilerLibcxx = map[string][]string{
	"gcc":         {"libstdc++", "libstdc++11"},
	"clang":       {"libstdc++", "libstdc++11", "libc++"},
	"apple-clang": {"libc++"},
	"msvc":        nil,
}

var knownArchs = []string{"x86", "x86_64", "armv7", "armv8", "aarch64"}

var knownBuildTypes = []string{"Debug", "Release", "RelWithDebInfo", "MinSizeRel"}

var presets = map[string]Toolchain{
	"gcc8": {
		Compiler:  "gcc",
		Version:   "8",
		Libcxx:    "libstdc++",
		Arch:      "x86_64",
		BuildType: "Release",
	},
	"gcc8-cxx11": {
		Compiler:  "gcc",
		Version:   "8",
		Libcxx:    "libstdc++11",
		Arch:      "x86_64",
		BuildType: "Release",
	},
	"clang": {
		Compiler:  "clang",
		Version:   "14",
		Libcxx:    "libc++",
		Arch:      "x86_64",
		BuildType: "Release",
	},
}

// Preset returns the named toolchain preset.
func Preset(name string) (Toolchain, error) {
	tc, ok := presets[name]
	if !ok {
		err := zerr.Wrap(ErrUnknownPreset, name)
		return Toolchain{}, NewFailure(ErrConfiguration, zerr.With(err, "available", strings.Join(PresetNames(), ", ")))
	}
	return tc, nil
}

// PresetNames returns the sorted names of the built-in presets.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}

// ResolveToolchain overlays s on the named preset, or on an empty toolchain
// when preset is empty, and validates the result.
func ResolveToolchain(preset string, s Settings, shared bool) (Toolchain, error) {
	var base Toolchain
	if preset != "" {
		var err error
		if base, err = Preset(preset); err != nil {
			return Toolchain{}, err
		}
	}
	tc := base.Overlay(s, shared)
	if err := tc.Validate(); err != nil {
		return Toolchain{}, err
	}
	return tc, nil
}

// Overlay returns a copy of t with every non-empty setting applied on top.
func (t Toolchain) Overlay(s Settings, shared bool) Toolchain {
	if s.Compiler != "" {
		t.Compiler = s.Compiler
	}
	if s.CompilerVersion != "" {
		t.Version = s.CompilerVersion
	}
	if s.Libcxx != "" {
		t.Libcxx = s.Libcxx
	}
	if s.Arch != "" {
		t.Arch = s.Arch
	}
	if s.BuildType != "" {
		t.BuildType = s.BuildType
	}
	t.LinkMode = LinkModeFor(shared)
	return t
}

// Validate checks that every required field is set and that the combination is one ferry can configure.
// It does not check that the compiler is installed.
func (t Toolchain) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"compiler", t.Compiler},
		{"compiler_version", t.Version},
		{"arch", t.Arch},
		{"build_type", t.BuildType},
		{"link_mode", string(t.LinkMode)},
	}
	for _, r := range required {
		if r.value == "" {
			return NewFailure(ErrConfiguration, zerr.Wrap(ErrMissingField, "toolchain."+r.field))
		}
	}

	libs, ok := compilerLibcxx[t.Compiler]
	if !ok {
		return NewFailure(ErrUnsupportedToolchain, zerr.Wrap(ErrUnknownCompiler, t.Compiler))
	}
	if len(libs) > 0 {
		if t.Libcxx == "" {
			return NewFailure(ErrConfiguration, zerr.Wrap(ErrMissingField, "toolchain.libcxx"))
		}
		if !slices.Contains(libs, t.Libcxx) {
			err := zerr.Wrap(ErrUnknownLibcxx, fmt.Sprintf("%s for %s", t.Libcxx, t.Compiler))
			return NewFailure(ErrUnsupportedToolchain, err)
		}
	}
	if !slices.Contains(knownArchs, t.Arch) {
		return NewFailure(ErrUnsupportedToolchain, zerr.Wrap(ErrUnknownArch, t.Arch))
	}
	if !slices.Contains(knownBuildTypes, t.BuildType) {
		return NewFailure(ErrConfiguration, zerr.Wrap(ErrUnknownBuildType, t.BuildType))
	}
	if t.LinkMode != LinkShared && t.LinkMode != LinkStatic {
		return NewFailure(ErrConfiguration, zerr.Wrap(ErrMissingField, "toolchain.link_mode"))
	}
	return nil
}

// ID returns a deterministic digest of the toolchain fields.
func (t Toolchain) ID() string {
	h := xxhash.New()
	for _, v := range []string{t.Compiler, t.Version, t.Libcxx, t.Arch, t.BuildType, string(t.LinkMode)} {
		_, _ = h.WriteString(v)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// BuildEnv is the observable result of applying a toolchain: process
// environment and CMake cache entries for every later build phase.
type BuildEnv struct {
	Env     []string
	Defines map[string]string
}

// Apply writes the toolchain into a BuildEnv. It is a pure configuration
// write: a version the host does not have surfaces later as a build failure.
func (t Toolchain) Apply() BuildEnv {
	env := make([]string, 0, 2)
	defines := map[string]string{
		"CMAKE_BUILD_TYPE":  t.BuildType,
		"BUILD_SHARED_LIBS": onOff(t.LinkMode == LinkShared),
	}

	switch t.Compiler {
	case "gcc":
		env = append(env, "CC=gcc-"+t.Version, "CXX=g++-"+t.Version)
	case "clang":
		env = append(env, "CC=clang-"+t.Version, "CXX=clang++-"+t.Version)
	case "apple-clang":
		env = append(env, "CC=clang", "CXX=clang++")
	}

	var flags []string
	switch t.Libcxx {
	case "libstdc++":
		flags = append(flags, "-D_GLIBCXX_USE_CXX11_ABI=0")
	case "libstdc++11":
		flags = append(flags, "-D_GLIBCXX_USE_CXX11_ABI=1")
	case "libc++":
		if t.Compiler == "clang" {
			flags = append(flags, "-stdlib=libc++")
		}
	}
	if len(flags) > 0 {
		defines["CMAKE_CXX_FLAGS"] = strings.Join(flags, " ")
	}

	return BuildEnv{Env: env, Defines: defines}
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
