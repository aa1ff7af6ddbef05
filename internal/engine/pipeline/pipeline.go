// Package pipeline runs the packaging stages of one descriptor in order.
package pipeline

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options configures one pipeline run.
type Options struct {
	// WorkDir holds source trees, run directories and build records.
	WorkDir string
	// OutputDir is the package repository the result is written to.
	OutputDir string
	// Refresh updates cached source trees and replaces diverged ones.
	Refresh bool
	// KeepBuildDir keeps the run directory after a successful run.
	KeepBuildDir bool
	// RunID names the run directory. A random id is used when empty.
	RunID string
}

// Step advances the state by the work of one stage.
type Step func(ctx context.Context, s domain.State) (domain.State, error)

type stage struct {
	to   domain.Stage
	name string
	run  Step
}

// Engine drives a descriptor through fetch, configure, build and package.
type Engine struct {
	fetcher    ports.SourceFetcher
	builder    ports.Builder
	packager   ports.Packager
	repository ports.PackageRepository
	store      ports.BuildRecordStore
	telemetry  ports.Telemetry
	logger     ports.Logger
	now        func() time.Time
}

// New creates a new Engine.
func New(
	fetcher ports.SourceFetcher,
	builder ports.Builder,
	packager ports.Packager,
	repository ports.PackageRepository,
	store ports.BuildRecordStore,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Engine {
	return &Engine{
		fetcher:    fetcher,
		builder:    builder,
		packager:   packager,
		repository: repository,
		store:      store,
		telemetry:  telemetry,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes every stage for d and returns the final state, which is either
// Packaged or Failed. The returned error is the failure cause, or the error of
// storing the build record after the package was already finalized.
func (e *Engine) Run(ctx context.Context, d domain.Descriptor, opts Options) (domain.State, error) {
	state := domain.NewState(d)

	dirs, err := e.resolveDependencies(d, opts.OutputDir)
	if err != nil {
		return state.Fail(err), err
	}
	state = state.WithDependencies(dirs)

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	runDir := domain.RunDir(opts.WorkDir, d.Ref(), runID)

	stages := []stage{
		{to: domain.StageFetched, name: "fetch", run: e.fetch(opts)},
		{to: domain.StageConfigured, name: "configure", run: e.configure},
		{to: domain.StageBuilt, name: "build", run: e.build(runDir)},
		{to: domain.StagePackaged, name: "package", run: e.pack(opts.OutputDir)},
	}

	for _, st := range stages {
		next, err := e.runStage(ctx, st, state)
		if err != nil {
			if st.to >= domain.StageBuilt {
				e.logger.Warn(fmt.Sprintf("%s failed, run directory kept at %s", st.name, runDir))
			}
			return state.Fail(err), err
		}
		state = next
	}

	if err := e.store.Put(opts.WorkDir, e.record(state)); err != nil {
		return state, zerr.Wrap(err, "package finalized but build record not stored")
	}

	if !opts.KeepBuildDir {
		if err := os.RemoveAll(runDir); err != nil {
			e.logger.Warn(fmt.Sprintf("failed to remove run directory %s: %v", runDir, err))
		}
	}

	return state, nil
}

func (e *Engine) runStage(ctx context.Context, st stage, state domain.State) (domain.State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}

	vctx, vertex := e.telemetry.Record(ctx, st.name+" "+state.Descriptor.Ref().String())

	next, err := st.run(vctx, state)
	if err == nil {
		next, err = next.Advance(st.to)
	}
	vertex.Complete(err)
	if err != nil {
		return state, err
	}
	return next, nil
}

func (e *Engine) resolveDependencies(d domain.Descriptor, repoDir string) ([]string, error) {
	refs := d.Dependencies()
	if len(refs) == 0 {
		return nil, nil
	}

	dirs := make([]string, 0, len(refs))
	for _, ref := range refs {
		dir, _, err := e.repository.Resolve(repoDir, ref)
		if err != nil {
			return nil, domain.NewFailure(domain.ErrConfiguration, err)
		}
		// The configure phase runs inside the build directory.
		if dir, err = filepath.Abs(dir); err != nil {
			return nil, domain.NewFailure(domain.ErrConfiguration, err)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func (e *Engine) fetch(opts Options) Step {
	return func(ctx context.Context, s domain.State) (domain.State, error) {
		d := s.Descriptor
		dir := domain.SourceDir(opts.WorkDir, d.Name, d.Source.Branch)

		rev, err := e.fetcher.Fetch(ctx, ports.SourceSpec{
			URL:     d.Source.URL,
			Branch:  d.Source.Branch,
			Dir:     dir,
			Refresh: opts.Refresh,
		})
		if err != nil {
			return s, err
		}

		if d.Source.Subfolder != "" {
			sub := filepath.Join(dir, filepath.FromSlash(d.Source.Subfolder))
			if info, err := os.Stat(sub); err != nil || !info.IsDir() {
				err := zerr.With(zerr.Wrap(domain.ErrSubfolderNotFound, d.Source.Subfolder), "source", dir)
				return s, domain.NewFailure(domain.ErrConfiguration, err)
			}
		}

		if v, ok := ports.VertexFromContext(ctx); ok {
			v.Log(domain.LogLevelInfo, fmt.Sprintf("fetched %s@%s (%s)", d.Source.URL, d.Source.Branch, shortRev(rev)))
		}
		return s.WithSource(dir, rev), nil
	}
}

func (e *Engine) configure(_ context.Context, s domain.State) (domain.State, error) {
	if err := s.Toolchain.Validate(); err != nil {
		return s, err
	}
	return s.WithEnv(s.Toolchain.Apply()), nil
}

func (e *Engine) build(runDir string) Step {
	return func(ctx context.Context, s domain.State) (domain.State, error) {
		d := s.Descriptor
		buildDir := filepath.Join(runDir, domain.BuildSubdir)
		installDir := filepath.Join(runDir, domain.InstallSubdir)

		// Toolchain entries win over descriptor defines.
		defines := d.Defines()
		if defines == nil {
			defines = make(map[string]string, len(s.Env.Defines)+1)
		}
		maps.Copy(defines, s.Env.Defines)
		if len(s.DependencyDirs) > 0 {
			defines["CMAKE_PREFIX_PATH"] = strings.Join(s.DependencyDirs, ";")
		}

		err := e.builder.Build(ctx, ports.BuildRequest{
			SourceDir:  s.SourceDir,
			Subfolder:  d.Source.Subfolder,
			BuildDir:   buildDir,
			InstallDir: installDir,
			Env:        s.Env.Env,
			PreBuild:   d.PreBuild(),
			Generator:  d.Build.Generator,
			BuildType:  s.Toolchain.BuildType,
			Defines:    defines,
		})
		if err != nil {
			return s, err
		}
		return s.WithBuildDirs(buildDir, installDir), nil
	}
}

func (e *Engine) pack(outputDir string) Step {
	return func(ctx context.Context, s domain.State) (domain.State, error) {
		d := s.Descriptor
		dest := domain.PackageDir(outputDir, d.Ref())

		m, err := e.packager.Package(ctx, ports.PackageRequest{
			InstallDir: s.InstallDir,
			Rules:      d.ArtifactRules(),
			DestDir:    dest,
			Manifest: domain.Manifest{
				Name:        d.Name,
				Version:     d.Version,
				Libs:        domain.Info(&d).Libs,
				ToolchainID: s.Toolchain.ID(),
				Revision:    s.Revision,
			},
		})
		if err != nil {
			return s, err
		}
		return s.WithPackage(dest, m), nil
	}
}

func (e *Engine) record(s domain.State) domain.BuildRecord {
	return domain.BuildRecord{
		Package:     s.Descriptor.Name,
		Version:     s.Descriptor.Version,
		Revision:    s.Revision,
		ToolchainID: s.Toolchain.ID(),
		Digest:      s.Manifest.Digest,
		PackageDir:  s.PackageDir,
		Timestamp:   e.now().UTC(),
	}
}

func shortRev(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
