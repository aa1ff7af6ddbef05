package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/core/domain"
)

func validToolchain() domain.Toolchain {
	return domain.Toolchain{
		Compiler:  "gcc",
		Version:   "8",
		Libcxx:    "libstdc++",
		Arch:      "x86_64",
		BuildType: "Release",
		LinkMode:  domain.LinkStatic,
	}
}

func TestToolchain_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.Toolchain)
		category error
		contains string
	}{
		{"valid", func(*domain.Toolchain) {}, nil, ""},
		{"missing compiler", func(tc *domain.Toolchain) { tc.Compiler = "" }, domain.ErrConfiguration, "toolchain.compiler"},
		{"missing version", func(tc *domain.Toolchain) { tc.Version = "" }, domain.ErrConfiguration, "toolchain.compiler_version"},
		{"missing arch", func(tc *domain.Toolchain) { tc.Arch = "" }, domain.ErrConfiguration, "toolchain.arch"},
		{"missing build type", func(tc *domain.Toolchain) { tc.BuildType = "" }, domain.ErrConfiguration, "toolchain.build_type"},
		{"missing libcxx for gcc", func(tc *domain.Toolchain) { tc.Libcxx = "" }, domain.ErrConfiguration, "toolchain.libcxx"},
		{"unknown compiler", func(tc *domain.Toolchain) { tc.Compiler = "tcc" }, domain.ErrUnsupportedToolchain, "tcc"},
		{"libc++ with gcc", func(tc *domain.Toolchain) { tc.Libcxx = "libc++" }, domain.ErrUnsupportedToolchain, "libc++"},
		{"unknown arch", func(tc *domain.Toolchain) { tc.Arch = "sparc" }, domain.ErrUnsupportedToolchain, "sparc"},
		{"unknown build type", func(tc *domain.Toolchain) { tc.BuildType = "Fast" }, domain.ErrConfiguration, "Fast"},
		{"msvc without libcxx", func(tc *domain.Toolchain) {
			tc.Compiler = "msvc"
			tc.Version = "193"
			tc.Libcxx = ""
		}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := validToolchain()
			tt.mutate(&tc)

			err := tc.Validate()
			if tt.category == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.category)
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}

func TestPreset(t *testing.T) {
	tc, err := domain.Preset("gcc8")
	require.NoError(t, err)
	assert.Equal(t, "gcc", tc.Compiler)
	assert.Equal(t, "8", tc.Version)
	assert.Equal(t, "libstdc++", tc.Libcxx)

	override, err := domain.Preset("gcc8-cxx11")
	require.NoError(t, err)
	assert.Equal(t, "libstdc++11", override.Libcxx)

	_, err = domain.Preset("nope")
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "nope: unknown toolchain preset")

	assert.Equal(t, []string{"clang", "gcc8", "gcc8-cxx11"}, domain.PresetNames())
}

func TestToolchain_Overlay(t *testing.T) {
	base, err := domain.Preset("gcc8")
	require.NoError(t, err)

	tc := base.Overlay(domain.Settings{Libcxx: "libstdc++11", BuildType: "Debug"}, true)

	assert.Equal(t, "gcc", tc.Compiler)
	assert.Equal(t, "libstdc++11", tc.Libcxx)
	assert.Equal(t, "Debug", tc.BuildType)
	assert.Equal(t, domain.LinkShared, tc.LinkMode)
	assert.Equal(t, "libstdc++", base.Libcxx, "overlay must not modify the preset")
}

func TestToolchain_ID(t *testing.T) {
	a := validToolchain()
	b := validToolchain()
	assert.Equal(t, a.ID(), b.ID())
	assert.Len(t, a.ID(), 16)

	b.Libcxx = "libstdc++11"
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestToolchain_Apply(t *testing.T) {
	t.Run("gcc pre-cxx11 abi static", func(t *testing.T) {
		env := validToolchain().Apply()
		assert.Equal(t, []string{"CC=gcc-8", "CXX=g++-8"}, env.Env)
		assert.Equal(t, map[string]string{
			"CMAKE_BUILD_TYPE":  "Release",
			"BUILD_SHARED_LIBS": "OFF",
			"CMAKE_CXX_FLAGS":   "-D_GLIBCXX_USE_CXX11_ABI=0",
		}, env.Defines)
	})

	t.Run("gcc cxx11 abi shared", func(t *testing.T) {
		tc := validToolchain()
		tc.Libcxx = "libstdc++11"
		tc.LinkMode = domain.LinkShared
		env := tc.Apply()
		assert.Equal(t, "ON", env.Defines["BUILD_SHARED_LIBS"])
		assert.Equal(t, "-D_GLIBCXX_USE_CXX11_ABI=1", env.Defines["CMAKE_CXX_FLAGS"])
	})

	t.Run("clang libc++", func(t *testing.T) {
		tc, err := domain.Preset("clang")
		require.NoError(t, err)
		env := tc.Overlay(domain.Settings{}, false).Apply()
		assert.Equal(t, []string{"CC=clang-14", "CXX=clang++-14"}, env.Env)
		assert.Equal(t, "-stdlib=libc++", env.Defines["CMAKE_CXX_FLAGS"])
	})
}

func TestResolveToolchain(t *testing.T) {
	tc, err := domain.ResolveToolchain("gcc8-cxx11", domain.Settings{BuildType: "Debug"}, true)
	require.NoError(t, err)
	assert.Equal(t, "libstdc++11", tc.Libcxx)
	assert.Equal(t, "Debug", tc.BuildType)
	assert.Equal(t, domain.LinkShared, tc.LinkMode)

	_, err = domain.ResolveToolchain("", domain.Settings{Compiler: "gcc"}, false)
	require.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = domain.ResolveToolchain("icc", domain.Settings{}, false)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "unknown toolchain preset")
}

func TestDescriptor_WithPreset(t *testing.T) {
	d := domain.Descriptor{Name: "pact_matching_ffi", Settings: domain.Settings{Arch: "armv8"}}
	d.Toolchain, _ = domain.ResolveToolchain("gcc8", d.Settings, false)

	got, err := d.WithPreset("clang")
	require.NoError(t, err)
	assert.Equal(t, "clang", got.Preset)
	assert.Equal(t, "clang", got.Toolchain.Compiler)
	assert.Equal(t, "armv8", got.Toolchain.Arch, "descriptor settings still win")
	assert.Equal(t, "gcc", d.Toolchain.Compiler, "receiver is unchanged")
}
