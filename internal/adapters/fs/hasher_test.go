package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/fs"
	"go.trai.ch/ferry/internal/core/domain"
)

func TestHasher_FileDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("libpact"), domain.FilePerm))
	require.NoError(t, os.WriteFile(b, []byte("libpact"), domain.FilePerm))

	h := fs.NewHasher()

	da, err := h.FileDigest(a)
	require.NoError(t, err)
	db, err := h.FileDigest(b)
	require.NoError(t, err)

	assert.Len(t, da, 16)
	assert.Equal(t, da, db, "digest depends on content only")

	require.NoError(t, os.WriteFile(b, []byte("libpact2"), domain.FilePerm))
	db, err = h.FileDigest(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}

func TestHasher_FileDigest_Missing(t *testing.T) {
	_, err := fs.NewHasher().FileDigest(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "failed to open file")
}

func TestHasher_PackageDigest(t *testing.T) {
	h := fs.NewHasher()

	files := []domain.ManifestFile{
		{Path: "include/pact.h", Category: domain.CategoryInclude, Digest: "01"},
		{Path: "lib/libpact.so", Category: domain.CategoryLib, Digest: "02"},
	}
	reversed := []domain.ManifestFile{files[1], files[0]}

	assert.Equal(t, h.PackageDigest(files), h.PackageDigest(reversed))

	changed := []domain.ManifestFile{files[0], {Path: "lib/libpact.so", Category: domain.CategoryLib, Digest: "03"}}
	assert.NotEqual(t, h.PackageDigest(files), h.PackageDigest(changed))
}
