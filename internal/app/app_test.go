package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/app"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/core/ports/mocks"
	"go.trai.ch/ferry/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader     *mocks.MockDescriptorLoader
	fetcher    *mocks.MockSourceFetcher
	packager   *mocks.MockPackager
	repository *mocks.MockPackageRepository
	store      *mocks.MockBuildRecordStore
	logger     *mocks.MockLogger
	settings   domain.ToolSettings
	app        *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	f := &fixture{
		loader:     mocks.NewMockDescriptorLoader(ctrl),
		fetcher:    mocks.NewMockSourceFetcher(ctrl),
		packager:   mocks.NewMockPackager(ctrl),
		repository: mocks.NewMockPackageRepository(ctrl),
		store:      mocks.NewMockBuildRecordStore(ctrl),
		logger:     mocks.NewMockLogger(ctrl),
		settings: domain.ToolSettings{
			WorkDir:   filepath.Join(root, ".ferry"),
			OutputDir: filepath.Join(root, "packages"),
			Git:       "git",
			CMake:     "cmake",
		},
	}

	telemetry := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	telemetry.EXPECT().Record(gomock.Any(), gomock.Any()).Return(context.Background(), vertex).AnyTimes()
	vertex.EXPECT().Complete(gomock.Any()).AnyTimes()

	engine := pipeline.New(f.fetcher, mocks.NewMockBuilder(ctrl), f.packager, f.repository, f.store, telemetry, f.logger)
	f.app = app.New(f.loader, engine, f.packager, f.repository, f.store, f.logger, f.settings)
	return f
}

// expectDescriptor makes the loader find and return d for a descriptor file in a fresh directory.
func (f *fixture) expectDescriptor(t *testing.T, d domain.Descriptor) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ferry.yaml")
	f.loader.EXPECT().Discover(dir).Return(path, nil)
	f.loader.EXPECT().Load(path).Return(d, nil)
	return dir
}

func pactDescriptor(t *testing.T) domain.Descriptor {
	t.Helper()
	tc, err := domain.ResolveToolchain("gcc8", domain.Settings{}, true)
	require.NoError(t, err)

	return domain.Descriptor{
		Name:    "pact_matching_ffi",
		Version: "0.0.1",
		Options: domain.Options{Shared: true},
		Source: domain.Source{
			URL:    "https://github.com/pact-foundation/pact-reference.git",
			Branch: "feat/ffi",
		},
		Toolchain: tc,
		Preset:    "gcc8",
	}
}

func TestApp_Create_PassesOptionsToPipeline(t *testing.T) {
	f := newFixture(t)
	d := pactDescriptor(t)
	dir := f.expectDescriptor(t, d)

	output := filepath.Join(t.TempDir(), "repo")
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, spec ports.SourceSpec) (string, error) {
			assert.Equal(t, domain.SourceDir(f.settings.WorkDir, d.Name, "feat/ffi"), spec.Dir)
			assert.True(t, spec.Refresh)
			return "", domain.NewFailure(domain.ErrFetch, domain.ErrRemoteUnreachable)
		})

	err := f.app.Create(context.Background(), app.CreateOptions{Path: dir, Refresh: true, OutputDir: output})
	require.ErrorIs(t, err, domain.ErrFetch)
}

func TestApp_Create_RelativeOutputDir(t *testing.T) {
	t.Chdir(t.TempDir())
	cwd, err := os.Getwd()
	require.NoError(t, err)

	f := newFixture(t)
	d := pactDescriptor(t)
	d.Requires = []domain.DependencyRef{{Name: "zlib", Version: "1.3.1"}}
	dir := f.expectDescriptor(t, d)

	f.repository.EXPECT().Resolve(filepath.Join(cwd, "repo"), d.Requires[0]).
		Return("", domain.Manifest{}, zerr.Wrap(domain.ErrDependencyNotFound, "zlib/1.3.1"))

	err = f.app.Create(context.Background(), app.CreateOptions{Path: dir, OutputDir: "repo"})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestApp_Create_DescriptorFile(t *testing.T) {
	f := newFixture(t)
	d := pactDescriptor(t)
	d.Toolchain.Compiler = "tcc"

	path := filepath.Join(t.TempDir(), "pact.toml")
	f.loader.EXPECT().Load(path).Return(d, nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return("rev", nil)

	err := f.app.Create(context.Background(), app.CreateOptions{Path: path})
	require.ErrorIs(t, err, domain.ErrUnsupportedToolchain)
}

func TestApp_Create_Preset(t *testing.T) {
	f := newFixture(t)
	dir := f.expectDescriptor(t, pactDescriptor(t))

	err := f.app.Create(context.Background(), app.CreateOptions{Path: dir, Preset: "icc"})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "icc")
}

func TestApp_Create_DescriptorNotFound(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	notFound := domain.NewFailure(domain.ErrConfiguration, domain.ErrDescriptorNotFound)
	f.loader.EXPECT().Discover(dir).Return("", notFound)

	err := f.app.Create(context.Background(), app.CreateOptions{Path: dir})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	require.ErrorIs(t, err, domain.ErrDescriptorNotFound)
}

func TestApp_Info(t *testing.T) {
	f := newFixture(t)
	d := pactDescriptor(t)
	dir := f.expectDescriptor(t, d)

	f.store.EXPECT().Get(f.settings.WorkDir, d.Ref()).Return(&domain.BuildRecord{
		Package:     d.Name,
		Version:     d.Version,
		Revision:    "0123456789abcdef0123456789abcdef01234567",
		ToolchainID: d.Toolchain.ID(),
		Digest:      "9f2c4e1a7b3d5c60",
		PackageDir:  "/repo/pact_matching_ffi/0.0.1",
		Timestamp:   time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, f.app.Info(context.Background(), &buf, dir))

	g := goldie.New(t)
	g.Assert(t, "info_with_record", buf.Bytes())
}

func TestApp_Info_NeverBuilt(t *testing.T) {
	f := newFixture(t)
	d := pactDescriptor(t)
	d.Requires = []domain.DependencyRef{{Name: "zlib", Version: "1.3.1"}}
	dir := f.expectDescriptor(t, d)

	f.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)

	var buf bytes.Buffer
	require.NoError(t, f.app.Info(context.Background(), &buf, dir))

	g := goldie.New(t)
	g.Assert(t, "info_never_built", buf.Bytes())
}

func TestApp_Info_OtherToolchain(t *testing.T) {
	f := newFixture(t)
	d := pactDescriptor(t)
	dir := f.expectDescriptor(t, d)

	f.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(&domain.BuildRecord{ToolchainID: "stale"}, nil)

	var buf bytes.Buffer
	require.NoError(t, f.app.Info(context.Background(), &buf, dir))
	assert.Contains(t, buf.String(), "last build used another toolchain")
}

func TestApp_Import(t *testing.T) {
	f := newFixture(t)
	d := pactDescriptor(t)
	d.Requires = []domain.DependencyRef{{Name: "pact_matching_ffi", Version: "0.0.1"}, {Name: "zlib", Version: "1.3.1"}}
	dir := f.expectDescriptor(t, d)
	dest := t.TempDir()

	f.repository.EXPECT().Resolve(f.settings.OutputDir, d.Requires[0]).Return("/repo/pact", domain.Manifest{}, nil)
	f.repository.EXPECT().Resolve(f.settings.OutputDir, d.Requires[1]).Return("/repo/zlib", domain.Manifest{}, nil)
	gomock.InOrder(
		f.packager.EXPECT().Copy(gomock.Any(), ports.CopyRequest{
			SourceDir: "/repo/pact",
			Rules:     domain.DefaultImportRules(),
			DestDir:   dest,
		}).Return([]domain.ManifestFile{{Path: "include/pact.h"}}, nil),
		f.packager.EXPECT().Copy(gomock.Any(), ports.CopyRequest{
			SourceDir: "/repo/zlib",
			Rules:     domain.DefaultImportRules(),
			DestDir:   dest,
		}).Return(nil, nil),
	)

	require.NoError(t, f.app.Import(context.Background(), app.ImportOptions{Path: dir, Dest: dest}))
}

func TestApp_Import_ResolvesEverythingFirst(t *testing.T) {
	f := newFixture(t)
	d := pactDescriptor(t)
	d.Requires = []domain.DependencyRef{{Name: "pact_matching_ffi", Version: "0.0.1"}, {Name: "zlib", Version: "1.3.1"}}
	dir := f.expectDescriptor(t, d)

	repo := t.TempDir()
	f.repository.EXPECT().Resolve(repo, d.Requires[0]).Return("/repo/pact", domain.Manifest{}, nil)
	f.repository.EXPECT().Resolve(repo, d.Requires[1]).
		Return("", domain.Manifest{}, zerr.Wrap(domain.ErrDependencyNotFound, "zlib/1.3.1"))
	// No Copy expectation: nothing is copied when a reference is missing.

	err := f.app.Import(context.Background(), app.ImportOptions{Path: dir, Dest: t.TempDir(), OutputDir: repo})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	require.ErrorIs(t, err, domain.ErrDependencyNotFound)
	assert.Contains(t, err.Error(), "zlib/1.3.1")
}

func TestApp_Import_RelativeOutputDir(t *testing.T) {
	t.Chdir(t.TempDir())
	cwd, err := os.Getwd()
	require.NoError(t, err)

	f := newFixture(t)
	d := pactDescriptor(t)
	d.Requires = []domain.DependencyRef{{Name: "zlib", Version: "1.3.1"}}
	dir := f.expectDescriptor(t, d)
	dest := t.TempDir()

	f.repository.EXPECT().Resolve(filepath.Join(cwd, "repo"), d.Requires[0]).Return("/repo/zlib", domain.Manifest{}, nil)
	f.packager.EXPECT().Copy(gomock.Any(), gomock.Any()).Return(nil, nil)

	err = f.app.Import(context.Background(), app.ImportOptions{Path: dir, Dest: dest, OutputDir: "repo"})
	require.NoError(t, err)
}

func TestApp_Import_MissingDest(t *testing.T) {
	f := newFixture(t)
	dir := f.expectDescriptor(t, pactDescriptor(t))

	err := f.app.Import(context.Background(), app.ImportOptions{Path: dir})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "dest")
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	builds := filepath.Join(f.settings.WorkDir, domain.BuildsDirName, "zlib-1.3.1-run1")
	sources := domain.SourceDir(f.settings.WorkDir, "zlib", "main")
	store := domain.StoreDir(f.settings.WorkDir)
	for _, dir := range []string{builds, sources, store} {
		require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	}

	require.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{}))
	assert.NoDirExists(t, builds)
	assert.NoDirExists(t, store)
	assert.DirExists(t, sources)

	require.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{Sources: true}))
	assert.NoDirExists(t, sources)
}

func TestApp_SetVerbose(t *testing.T) {
	f := newFixture(t)

	var got []bool
	f.app.WithVerboseHook(func(v bool) { got = append(got, v) })
	f.app.SetVerbose(true)

	assert.Equal(t, []bool{true}, got)
}
