package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/fs"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var fixedTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newPackager(t *testing.T, log ports.Logger) *fs.Packager {
	t.Helper()
	p := fs.NewPackager(fs.NewWalker(), fs.NewHasher(), fs.NewVerifier(), log)
	p.SetClock(func() time.Time { return fixedTime })
	return p
}

func assertNoStaging(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), fs.StagingPrefix), "staging dir %s left behind", e.Name())
	}
}

func TestPackager_Package(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1) // *.a matched nothing

	install := t.TempDir()
	writeTree(t, install,
		"include/pact.h",
		"include/pact/models.h",
		"lib/libpact_matching_ffi.so",
		"lib/cmake/pact/pact-config.cmake",
		"share/doc/README",
	)
	repo := t.TempDir()
	dest := filepath.Join(repo, "pact_matching_ffi", "0.0.1")

	m, err := newPackager(t, mockLogger).Package(context.Background(), ports.PackageRequest{
		InstallDir: install,
		Rules:      domain.DefaultArtifactRules(true),
		DestDir:    dest,
		Manifest: domain.Manifest{
			Name:        "pact_matching_ffi",
			Version:     "0.0.1",
			Libs:        []string{"pact_matching_ffi"},
			ToolchainID: "abc",
		},
	})
	require.NoError(t, err)

	var paths []string
	for _, f := range m.Files {
		paths = append(paths, f.Path)
		assert.Len(t, f.Digest, 16, f.Path)
	}
	assert.Equal(t, []string{
		"include/pact.h",
		"include/pact/models.h",
		"lib/cmake/pact/pact-config.cmake",
		"lib/libpact_matching_ffi.so",
	}, paths)
	assert.Equal(t, "pact_matching_ffi", m.Name)
	assert.Equal(t, "abc", m.ToolchainID)
	assert.Equal(t, fixedTime, m.CreatedAt)
	assert.NotEmpty(t, m.Digest)

	content, err := os.ReadFile(filepath.Join(dest, "lib", "libpact_matching_ffi.so"))
	require.NoError(t, err)
	assert.Equal(t, "lib/libpact_matching_ffi.so", string(content))
	assert.NoFileExists(t, filepath.Join(dest, "res", "README"))

	stored, found, err := fs.NewVerifier().ReadManifest(dest)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, m.Digest, stored.Digest)
	assert.Len(t, stored.Files, 4)

	assertNoStaging(t, filepath.Dir(dest))
}

func TestPackager_Package_MandatoryMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	install := t.TempDir()
	writeTree(t, install, "include/pact.h")
	dest := filepath.Join(t.TempDir(), "pact_matching_ffi", "0.0.1")

	_, err := newPackager(t, mockLogger).Package(context.Background(), ports.PackageRequest{
		InstallDir: install,
		Rules:      domain.DefaultArtifactRules(true),
		DestDir:    dest,
	})
	require.ErrorIs(t, err, domain.ErrPackaging)
	assert.Contains(t, err.Error(), "lib (*.so)")

	assert.NoDirExists(t, dest)
	assertNoStaging(t, filepath.Dir(dest))
}

func TestPackager_Package_ReportsAllMissingRules(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	dest := filepath.Join(t.TempDir(), "zlib", "1.3.1")

	_, err := newPackager(t, mockLogger).Package(context.Background(), ports.PackageRequest{
		InstallDir: t.TempDir(),
		Rules:      domain.DefaultArtifactRules(false),
		DestDir:    dest,
	})
	require.ErrorIs(t, err, domain.ErrPackaging)
	assert.Contains(t, err.Error(), "include (*.h), lib (*.a)")
}

func TestPackager_Package_FailureKeepsPreviousPackage(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	dest := filepath.Join(t.TempDir(), "zlib", "1.3.1")
	writeTree(t, dest, "include/zlib.h", domain.ManifestFileName)

	_, err := newPackager(t, mockLogger).Package(context.Background(), ports.PackageRequest{
		InstallDir: t.TempDir(),
		Rules:      domain.DefaultArtifactRules(false),
		DestDir:    dest,
	})
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(dest, "include", "zlib.h"))
}

func TestPackager_Package_ReplacesPreviousPackage(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	dest := filepath.Join(t.TempDir(), "zlib", "1.3.1")
	writeTree(t, dest, "include/stale.h")

	install := t.TempDir()
	writeTree(t, install, "include/zlib.h", "lib/libz.a")

	_, err := newPackager(t, mockLogger).Package(context.Background(), ports.PackageRequest{
		InstallDir: install,
		Rules:      domain.DefaultArtifactRules(false),
		DestDir:    dest,
	})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dest, "include", "stale.h"))
	assert.FileExists(t, filepath.Join(dest, "include", "zlib.h"))
	assert.FileExists(t, filepath.Join(dest, "lib", "libz.a"))
	assertNoStaging(t, filepath.Dir(dest))
}

func TestPackager_Package_FinalizeFailureRestoresPreviousPackage(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	dest := filepath.Join(t.TempDir(), "zlib", "1.3.1")
	writeTree(t, dest, "include/zlib.h", domain.ManifestFileName)

	install := t.TempDir()
	writeTree(t, install, "include/zlib.h", "lib/libz.a")

	p := newPackager(t, mockLogger)
	p.SetRename(func(oldpath, newpath string) error {
		if newpath == dest && !strings.Contains(filepath.Base(oldpath), "previous") {
			return os.ErrPermission
		}
		return os.Rename(oldpath, newpath)
	})

	_, err := p.Package(context.Background(), ports.PackageRequest{
		InstallDir: install,
		Rules:      domain.DefaultArtifactRules(false),
		DestDir:    dest,
	})
	require.ErrorIs(t, err, domain.ErrPackaging)
	assert.Contains(t, err.Error(), "failed to finalize package")
	assert.FileExists(t, filepath.Join(dest, "include", "zlib.h"))
	assert.FileExists(t, filepath.Join(dest, domain.ManifestFileName))
	assert.NoFileExists(t, filepath.Join(dest, "lib", "libz.a"))
	assertNoStaging(t, filepath.Dir(dest))
}

func TestPackager_Package_OverlappingRulesFirstWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	install := t.TempDir()
	writeTree(t, install, "include/zlib.h")

	m, err := newPackager(t, mockLogger).Package(context.Background(), ports.PackageRequest{
		InstallDir: install,
		Rules: []domain.ArtifactRule{
			{Pattern: "*.h", Category: domain.CategoryInclude, From: "include", Mandatory: true},
			{Pattern: "zlib.*", Category: domain.CategoryInclude, From: "include"},
		},
		DestDir: filepath.Join(t.TempDir(), "zlib"),
	})
	require.NoError(t, err)
	assert.Len(t, m.Files, 1)
}

func TestPackager_Package_CopyFailure(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	install := t.TempDir()
	writeTree(t, install, "include/zlib.h", "lib/libz.a")
	require.NoError(t, os.Chmod(filepath.Join(install, "lib", "libz.a"), 0o000))

	dest := filepath.Join(t.TempDir(), "zlib", "1.3.1")
	_, err := newPackager(t, mockLogger).Package(context.Background(), ports.PackageRequest{
		InstallDir: install,
		Rules:      domain.DefaultArtifactRules(false),
		DestDir:    dest,
	})
	require.ErrorIs(t, err, domain.ErrPackaging)
	assert.Contains(t, err.Error(), "failed to copy artifact")
	assert.NoDirExists(t, dest)
	assertNoStaging(t, filepath.Dir(dest))
}

func TestPackager_Package_WalkErrorFailsPackaging(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	install := t.TempDir()
	writeTree(t, install, "include/a.h", "include/z.h")
	writeUnwalkable(t, filepath.Join(install, "include", "m"))

	dest := filepath.Join(t.TempDir(), "zlib", "1.3.1")
	_, err := newPackager(t, mockLogger).Package(context.Background(), ports.PackageRequest{
		InstallDir: install,
		Rules: []domain.ArtifactRule{
			{Pattern: "*.h", Category: domain.CategoryInclude, From: "include", Mandatory: true},
		},
		DestDir: dest,
	})
	require.ErrorIs(t, err, domain.ErrPackaging)
	assert.Contains(t, err.Error(), "failed to copy artifact")
	assert.NotContains(t, err.Error(), "matched no files")
	assert.NoDirExists(t, dest)
	assertNoStaging(t, filepath.Dir(dest))
}

func TestPackager_Copy(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	pkg := t.TempDir()
	writeTree(t, pkg, "include/pact.h", "lib/libpact_matching_ffi.so", domain.ManifestFileName)

	dest := t.TempDir()
	writeTree(t, dest, "src/main.c")

	files, err := newPackager(t, mockLogger).Copy(context.Background(), ports.CopyRequest{
		SourceDir: pkg,
		Rules: []domain.ArtifactRule{
			{Pattern: "*.h", Category: domain.CategoryInclude, From: "include"},
			{Pattern: "*.so", Category: domain.CategoryLib, From: "lib"},
		},
		DestDir: dest,
	})
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.FileExists(t, filepath.Join(dest, "include", "pact.h"))
	assert.FileExists(t, filepath.Join(dest, "lib", "libpact_matching_ffi.so"))
	assert.FileExists(t, filepath.Join(dest, "src", "main.c"), "existing files are kept")
	assert.NoFileExists(t, filepath.Join(dest, domain.ManifestFileName))
}

func TestPackager_Package_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "zlib")
	_, err := newPackager(t, mockLogger).Package(ctx, ports.PackageRequest{
		InstallDir: t.TempDir(),
		Rules:      domain.DefaultArtifactRules(false),
		DestDir:    dest,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, dest)
}
