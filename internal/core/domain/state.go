package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Stage is a state of the packaging pipeline.
type Stage int

const (
	// StageLoaded means the descriptor has been loaded and validated.
	StageLoaded Stage = iota
	// StageFetched means a valid source tree is on disk.
	StageFetched
	// StageConfigured means the toolchain has been applied.
	StageConfigured
	// StageBuilt means the install directory holds the build outputs.
	StageBuilt
	// StagePackaged means the final package directory is complete.
	StagePackaged
	// StageFailed is terminal and reachable from every other non-terminal stage.
	StageFailed
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageLoaded:
		return "loaded"
	case StageFetched:
		return "fetched"
	case StageConfigured:
		return "configured"
	case StageBuilt:
		return "built"
	case StagePackaged:
		return "packaged"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no transition leaves s.
func (s Stage) IsTerminal() bool {
	return s == StagePackaged || s == StageFailed
}

// Next returns the single success successor of s.
func (s Stage) Next() (Stage, bool) {
	if s.IsTerminal() {
		return s, false
	}
	return s + 1, true
}

// State is the immutable record threaded through the pipeline.
// Every transition returns a new value and leaves the receiver untouched.
type State struct {
	Stage      Stage
	Descriptor Descriptor

	SourceDir string
	Revision  string

	// DependencyDirs holds the resolved package directory of every required package.
	DependencyDirs []string

	Toolchain Toolchain
	Env       BuildEnv

	BuildDir   string
	InstallDir string
	PackageDir string
	Manifest   Manifest

	// FailedAt is the last stage reached before the failure.
	FailedAt Stage
	Err      error
}

// NewState returns the initial state for a loaded descriptor.
func NewState(d Descriptor) State {
	return State{Stage: StageLoaded, Descriptor: d, Toolchain: d.Toolchain}
}

// Advance moves to next, which must be the single successor of the current stage.
func (s State) Advance(next Stage) (State, error) {
	want, ok := s.Stage.Next()
	if !ok || want != next {
		err := zerr.With(ErrInvalidTransition, "from", s.Stage.String())
		return s, zerr.With(err, "to", next.String())
	}
	s.Stage = next
	return s, nil
}

// Fail moves to the terminal Failed stage, remembering where the failure happened.
func (s State) Fail(err error) State {
	if s.Stage.IsTerminal() {
		return s
	}
	s.FailedAt = s.Stage
	s.Stage = StageFailed
	s.Err = err
	return s
}

// WithSource records the fetched source tree.
func (s State) WithSource(dir, revision string) State {
	s.SourceDir = dir
	s.Revision = revision
	return s
}

// WithDependencies records the resolved dependency package directories.
func (s State) WithDependencies(dirs []string) State {
	s.DependencyDirs = slices.Clone(dirs)
	return s
}

// WithEnv records the applied toolchain configuration.
func (s State) WithEnv(env BuildEnv) State {
	s.Env = env
	return s
}

// WithBuildDirs records the per-run build and install directories.
func (s State) WithBuildDirs(buildDir, installDir string) State {
	s.BuildDir = buildDir
	s.InstallDir = installDir
	return s
}

// WithPackage records the finalized package.
func (s State) WithPackage(dir string, m Manifest) State {
	s.PackageDir = dir
	s.Manifest = m
	return s
}
