package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/settings"
	"go.trai.ch/ferry/internal/core/domain"
)

func TestLoader_Defaults(t *testing.T) {
	dir := t.TempDir()

	got, err := settings.NewLoaderWithEnv(nil).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".ferry"), got.WorkDir)
	assert.Equal(t, filepath.Join(dir, ".ferry", "packages"), got.OutputDir)
	assert.Equal(t, "git", got.Git)
	assert.Equal(t, "cmake", got.CMake)
	assert.False(t, got.JSONLogs)
}

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	content := "output_dir: /opt/ferry/packages\ncmake: /usr/local/bin/cmake\njson_logs: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.SettingsFileName), []byte(content), domain.FilePerm))

	got, err := settings.NewLoaderWithEnv(nil).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/opt/ferry/packages", got.OutputDir)
	assert.Equal(t, "/usr/local/bin/cmake", got.CMake)
	assert.True(t, got.JSONLogs)
	assert.Equal(t, filepath.Join(dir, ".ferry"), got.WorkDir)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.SettingsFileName), []byte("git: /usr/bin/git\n"), domain.FilePerm))

	got, err := settings.NewLoaderWithEnv(map[string]string{
		"FERRY_GIT":      "/nix/bin/git",
		"FERRY_WORK_DIR": "cache",
		"FERRY_VERBOSE":  "true",
	}).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/nix/bin/git", got.Git)
	assert.Equal(t, filepath.Join(dir, "cache"), got.WorkDir)
	assert.True(t, got.Verbose)
}

func TestLoader_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.SettingsFileName), []byte("git: [unclosed\n"), domain.FilePerm))

	_, err := settings.NewLoaderWithEnv(nil).Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrSettingsLoadFailed.Error())
}
