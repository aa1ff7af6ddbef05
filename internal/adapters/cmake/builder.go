// Package cmake drives the configure, pre-build, compile and install phases of a CMake project.
package cmake

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/shell"
)

// Build phases, in execution order.
const (
	PhaseConfigure = "configure"
	PhasePreBuild  = "pre-build"
	PhaseCompile   = "compile"
	PhaseInstall   = "install"
)

// Builder implements ports.Builder.
type Builder struct {
	executor ports.Executor
	cmake    string
}

// NewBuilder creates a new Builder invoking the cmake executable named cmake.
func NewBuilder(executor ports.Executor, cmake string) *Builder {
	if cmake == "" {
		cmake = "cmake"
	}
	return &Builder{executor: executor, cmake: cmake}
}

// Build runs the phases in strict order. The first failure aborts the build.
func (b *Builder) Build(ctx context.Context, req ports.BuildRequest) error {
	if _, err := os.Stat(req.InstallDir); err == nil {
		return phaseError(PhaseInstall, zerr.With(domain.ErrInstallDirExists, "dir", req.InstallDir))
	}

	if err := os.MkdirAll(req.BuildDir, domain.DirPerm); err != nil {
		return phaseError(PhaseConfigure, zerr.Wrap(err, "failed to create build directory"))
	}

	if err := b.cmakeCmd(ctx, req, b.configureArgs(req)...); err != nil {
		return phaseError(PhaseConfigure, err)
	}

	for _, line := range req.PreBuild {
		if err := b.preBuild(ctx, req, line); err != nil {
			return phaseError(PhasePreBuild, err)
		}
	}

	compileArgs := []string{"--build", req.BuildDir}
	if req.BuildType != "" {
		compileArgs = append(compileArgs, "--config", req.BuildType)
	}
	if err := b.cmakeCmd(ctx, req, compileArgs...); err != nil {
		return phaseError(PhaseCompile, err)
	}

	if err := os.MkdirAll(filepath.Dir(req.InstallDir), domain.DirPerm); err != nil {
		return phaseError(PhaseInstall, zerr.Wrap(err, "failed to create install directory"))
	}
	if err := os.Mkdir(req.InstallDir, domain.DirPerm); err != nil {
		if errors.Is(err, os.ErrExist) {
			return phaseError(PhaseInstall, zerr.With(domain.ErrInstallDirExists, "dir", req.InstallDir))
		}
		return phaseError(PhaseInstall, zerr.Wrap(err, "failed to create install directory"))
	}
	if err := b.cmakeCmd(ctx, req, "--install", req.BuildDir, "--prefix", req.InstallDir); err != nil {
		return phaseError(PhaseInstall, err)
	}

	return nil
}

func (b *Builder) configureArgs(req ports.BuildRequest) []string {
	src := req.SourceDir
	if req.Subfolder != "" {
		src = filepath.Join(req.SourceDir, filepath.FromSlash(req.Subfolder))
	}

	args := []string{"-S", src, "-B", req.BuildDir}
	if req.Generator != "" {
		args = append(args, "-G", req.Generator)
	}
	for _, k := range slices.Sorted(maps.Keys(req.Defines)) {
		args = append(args, "-D"+k+"="+req.Defines[k])
	}
	return args
}

func (b *Builder) preBuild(ctx context.Context, req ports.BuildRequest, line string) error {
	fields, err := shell.Fields(line, lookupEnv(req.Env))
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInvalidCommand.Error()), "line", line)
	}
	if len(fields) == 0 {
		return nil
	}

	return b.executor.Run(ctx, domain.Command{
		Name: fields[0],
		Args: fields[1:],
		Dir:  req.BuildDir,
		Env:  req.Env,
	})
}

func (b *Builder) cmakeCmd(ctx context.Context, req ports.BuildRequest, args ...string) error {
	return b.executor.Run(ctx, domain.Command{
		Name: b.cmake,
		Args: args,
		Dir:  req.BuildDir,
		Env:  req.Env,
	})
}

// lookupEnv expands variables in pre-build lines from env, then from the process environment.
func lookupEnv(env []string) func(string) string {
	return func(name string) string {
		for i := len(env) - 1; i >= 0; i-- {
			if k, v, ok := strings.Cut(env[i], "="); ok && k == name {
				return v
			}
		}
		return os.Getenv(name)
	}
}

func phaseError(phase string, err error) error {
	return domain.NewFailure(domain.ErrBuild, zerr.With(zerr.Wrap(err, phase+" phase failed"), "phase", phase))
}
