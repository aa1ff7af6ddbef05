package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/fs"
	"go.trai.ch/ferry/internal/core/domain"
)

func TestRepository_Resolve(t *testing.T) {
	repo := t.TempDir()
	ref := domain.DependencyRef{Name: "pact_matching_ffi", Version: "0.0.1"}
	dir := domain.PackageDir(repo, ref)
	writeTree(t, dir, "include/pact.h")

	verifier := fs.NewVerifier()
	require.NoError(t, verifier.WriteManifest(dir, domain.Manifest{Name: ref.Name, Version: ref.Version, Digest: "d1"}))

	gotDir, m, err := fs.NewRepository(verifier).Resolve(repo, ref)
	require.NoError(t, err)
	assert.Equal(t, dir, gotDir)
	assert.Equal(t, "d1", m.Digest)
}

func TestRepository_Resolve_Missing(t *testing.T) {
	ref := domain.DependencyRef{Name: "pact_matching_ffi", Version: "0.0.1"}

	_, _, err := fs.NewRepository(fs.NewVerifier()).Resolve(t.TempDir(), ref)
	require.ErrorContains(t, err, "pact_matching_ffi/0.0.1: dependency not found")
}

func TestRepository_Resolve_IncompletePackage(t *testing.T) {
	repo := t.TempDir()
	ref := domain.DependencyRef{Name: "zlib", Version: "1.3.1"}
	writeTree(t, domain.PackageDir(repo, ref), "include/zlib.h")

	_, _, err := fs.NewRepository(fs.NewVerifier()).Resolve(repo, ref)
	require.ErrorContains(t, err, "dependency not found")
}

func TestVerifier_ReadManifest_Corrupt(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, domain.ManifestFileName)

	_, _, err := fs.NewVerifier().ReadManifest(filepath.Clean(dir))
	require.ErrorContains(t, err, "failed to read package manifest")
}
