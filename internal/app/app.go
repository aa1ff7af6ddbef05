// Package app implements the application layer for ferry.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader     ports.DescriptorLoader
	engine     *pipeline.Engine
	packager   ports.Packager
	repository ports.PackageRepository
	store      ports.BuildRecordStore
	logger     ports.Logger
	settings   domain.ToolSettings
	verbose    func(bool)
}

// New creates a new App instance.
func New(
	loader ports.DescriptorLoader,
	engine *pipeline.Engine,
	packager ports.Packager,
	repository ports.PackageRepository,
	store ports.BuildRecordStore,
	log ports.Logger,
	settings domain.ToolSettings,
) *App {
	return &App{
		loader:     loader,
		engine:     engine,
		packager:   packager,
		repository: repository,
		store:      store,
		logger:     log,
		settings:   settings,
	}
}

// WithVerboseHook registers the function called when verbose output is switched on from the command line.
func (a *App) WithVerboseHook(fn func(bool)) *App {
	a.verbose = fn
	return a
}

// SetVerbose forwards external tool output to the logger.
func (a *App) SetVerbose(enabled bool) {
	a.settings.Verbose = enabled
	if a.verbose != nil {
		a.verbose(enabled)
	}
}

// CreateOptions configuration for the Create method.
type CreateOptions struct {
	// Path is a descriptor file or a directory to search from. Empty means the current directory.
	Path      string
	Refresh   bool
	KeepBuild bool
	// OutputDir overrides the configured package repository.
	OutputDir string
	// Preset replaces the toolchain preset named by the descriptor.
	Preset string
}

// Create runs the packaging pipeline for the descriptor found at opts.Path.
func (a *App) Create(ctx context.Context, opts CreateOptions) error {
	d, err := a.loadDescriptor(opts.Path)
	if err != nil {
		return err
	}

	if opts.Preset != "" {
		if d, err = d.WithPreset(opts.Preset); err != nil {
			return err
		}
	}

	output, err := a.outputDir(opts.OutputDir)
	if err != nil {
		return err
	}

	_, err = a.engine.Run(ctx, d, pipeline.Options{
		WorkDir:      a.settings.WorkDir,
		OutputDir:    output,
		Refresh:      opts.Refresh,
		KeepBuildDir: opts.KeepBuild,
	})
	return err
}

// Info writes the link information of the package and its last build, if any, to w.
func (a *App) Info(_ context.Context, w io.Writer, path string) error {
	d, err := a.loadDescriptor(path)
	if err != nil {
		return err
	}

	record, err := a.store.Get(a.settings.WorkDir, d.Ref())
	if err != nil {
		return err
	}

	info := domain.Info(&d)
	tc := d.Toolchain

	rows := [][2]string{
		{"package", d.Ref().String()},
		{"libs", strings.Join(info.Libs, ", ")},
		{"include dirs", strings.Join(info.IncludeDirs, ", ")},
		{"lib dirs", strings.Join(info.LibDirs, ", ")},
		{"toolchain", fmt.Sprintf("%s %s %s %s %s %s", tc.Compiler, tc.Version, tc.Libcxx, tc.Arch, tc.BuildType, tc.LinkMode)},
		{"toolchain id", tc.ID()},
	}
	if len(d.Requires) > 0 {
		refs := make([]string, 0, len(d.Requires))
		for _, ref := range d.Dependencies() {
			refs = append(refs, ref.String())
		}
		rows = append(rows, [2]string{"requires", strings.Join(refs, ", ")})
	}

	if record == nil {
		rows = append(rows, [2]string{"last build", "never"})
	} else {
		rows = append(rows,
			[2]string{"last build", record.Timestamp.UTC().Format("2006-01-02T15:04:05Z")},
			[2]string{"revision", record.Revision},
			[2]string{"digest", record.Digest},
			[2]string{"package dir", record.PackageDir},
		)
		if record.ToolchainID != tc.ID() {
			rows = append(rows, [2]string{"note", "last build used another toolchain"})
		}
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-13s %s\n", row[0]+":", row[1]); err != nil {
			return err
		}
	}
	return nil
}

// ImportOptions configuration for the Import method.
type ImportOptions struct {
	Path string
	// Dest is the consumer tree artifacts are copied into.
	Dest string
	// OutputDir overrides the configured package repository.
	OutputDir string
}

// Import copies the artifacts of every required package into opts.Dest.
// All references are resolved before anything is copied.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	d, err := a.loadDescriptor(opts.Path)
	if err != nil {
		return err
	}

	if opts.Dest == "" {
		return domain.NewFailure(domain.ErrConfiguration, zerr.Wrap(domain.ErrMissingField, "dest"))
	}

	repo, err := a.outputDir(opts.OutputDir)
	if err != nil {
		return err
	}
	refs := d.Dependencies()
	dirs := make([]string, 0, len(refs))
	for _, ref := range refs {
		dir, _, err := a.repository.Resolve(repo, ref)
		if err != nil {
			return domain.NewFailure(domain.ErrConfiguration, err)
		}
		dirs = append(dirs, dir)
	}

	rules := d.ImportRules()
	for i, dir := range dirs {
		files, err := a.packager.Copy(ctx, ports.CopyRequest{
			SourceDir: dir,
			Rules:     rules,
			DestDir:   opts.Dest,
		})
		if err != nil {
			return zerr.Wrap(err, "failed to import "+refs[i].String())
		}
		if a.settings.Verbose {
			a.logger.Info(fmt.Sprintf("imported %d files from %s", len(files), refs[i]))
		}
	}
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Sources also removes the cached source trees.
	Sources bool
}

// Clean removes the run directories and build records, and the source trees with opts.Sources.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(filepath.Join(a.settings.WorkDir, domain.BuildsDirName), "build directories")
	remove(domain.StoreDir(a.settings.WorkDir), "build records")

	if options.Sources {
		remove(filepath.Join(a.settings.WorkDir, domain.SourcesDirName), "source trees")
	}

	return errs
}

// loadDescriptor loads the descriptor at path. A directory, or an empty path
// meaning the current directory, is searched upwards for a descriptor file.
func (a *App) loadDescriptor(path string) (domain.Descriptor, error) {
	if path == "" {
		path = "."
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		dir, err := filepath.Abs(path)
		if err != nil {
			return domain.Descriptor{}, zerr.Wrap(err, "failed to resolve descriptor directory")
		}
		if path, err = a.loader.Discover(dir); err != nil {
			return domain.Descriptor{}, err
		}
	}

	return a.loader.Load(path)
}

// outputDir returns the package repository, resolving an override against
// the current directory like the configured one.
func (a *App) outputDir(override string) (string, error) {
	if override == "" {
		return a.settings.OutputDir, nil
	}
	dir, err := filepath.Abs(override)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve output directory")
	}
	return dir, nil
}
