package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// StagingPrefix names the temporary directories packages are assembled in.
const StagingPrefix = ".staging-"

// Packager implements ports.Packager.
type Packager struct {
	walker   *Walker
	hasher   *Hasher
	verifier *Verifier
	logger   ports.Logger
	now      func() time.Time
	rename   func(oldpath, newpath string) error
}

// NewPackager creates a new Packager.
func NewPackager(walker *Walker, hasher *Hasher, verifier *Verifier, logger ports.Logger) *Packager {
	return &Packager{
		walker:   walker,
		hasher:   hasher,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
		rename:   os.Rename,
	}
}

// Package assembles the package in a sibling staging directory, writes the
// manifest last and then replaces DestDir with the staged tree.
func (p *Packager) Package(ctx context.Context, req ports.PackageRequest) (domain.Manifest, error) {
	parent := filepath.Dir(req.DestDir)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return domain.Manifest{}, domain.NewFailure(domain.ErrPackaging, zerr.Wrap(err, domain.ErrFinalizeFailed.Error()))
	}

	staging := filepath.Join(parent, StagingPrefix+uuid.NewString())
	if err := os.Mkdir(staging, domain.DirPerm); err != nil {
		return domain.Manifest{}, domain.NewFailure(domain.ErrPackaging, zerr.Wrap(err, domain.ErrFinalizeFailed.Error()))
	}

	finalized := false
	defer func() {
		if !finalized {
			_ = os.RemoveAll(staging)
		}
	}()

	files, err := p.copyRules(ctx, req.InstallDir, req.Rules, staging)
	if err != nil {
		return domain.Manifest{}, domain.NewFailure(domain.ErrPackaging, err)
	}

	manifest := req.Manifest
	manifest.Files = files
	manifest.Digest = p.hasher.PackageDigest(files)
	manifest.CreatedAt = p.now().UTC()

	if err := p.verifier.WriteManifest(staging, manifest); err != nil {
		return domain.Manifest{}, domain.NewFailure(domain.ErrPackaging, err)
	}

	if err := p.swap(staging, req.DestDir); err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrFinalizeFailed.Error()), "dest", req.DestDir)
		return domain.Manifest{}, domain.NewFailure(domain.ErrPackaging, err)
	}
	finalized = true

	return manifest, nil
}

// swap moves staging to dest. A previous package at dest is moved aside
// first and only removed once the new one is in place; if the move fails it
// is restored.
func (p *Packager) swap(staging, dest string) error {
	var previous string
	if _, err := os.Lstat(dest); err == nil {
		previous = filepath.Join(filepath.Dir(dest), StagingPrefix+"previous-"+uuid.NewString())
		if err := p.rename(dest, previous); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := p.rename(staging, dest); err != nil {
		if previous != "" {
			if restoreErr := p.rename(previous, dest); restoreErr != nil {
				return zerr.With(err, "previous", previous)
			}
		}
		return err
	}

	if previous != "" {
		if err := os.RemoveAll(previous); err != nil {
			p.logger.Warn(fmt.Sprintf("failed to remove previous package %s: %v", previous, err))
		}
	}
	return nil
}

// Copy copies the matching artifacts into DestDir without staging.
func (p *Packager) Copy(ctx context.Context, req ports.CopyRequest) ([]domain.ManifestFile, error) {
	if err := os.MkdirAll(req.DestDir, domain.DirPerm); err != nil {
		return nil, domain.NewFailure(domain.ErrPackaging, zerr.Wrap(err, domain.ErrArtifactCopyFailed.Error()))
	}

	files, err := p.copyRules(ctx, req.SourceDir, req.Rules, req.DestDir)
	if err != nil {
		return nil, domain.NewFailure(domain.ErrPackaging, err)
	}
	return files, nil
}

// copyRules copies the files matched by every rule from srcRoot into
// <destRoot>/<category>, keeping paths relative to the rule's From directory.
// When rules overlap the first one wins. Every empty mandatory rule is reported.
func (p *Packager) copyRules(ctx context.Context, srcRoot string, rules []domain.ArtifactRule, destRoot string) ([]domain.ManifestFile, error) {
	var (
		files   []domain.ManifestFile
		missing []string
		seen    = make(map[string]bool)
	)

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root := filepath.Join(srcRoot, filepath.FromSlash(rule.From))
		matches, err := p.walker.Match(root, rule)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrArtifactCopyFailed.Error()), "path", root)
		}

		if len(matches) == 0 {
			if rule.Mandatory {
				missing = append(missing, rule.String())
			} else {
				p.logger.Warn(fmt.Sprintf("%s matched no files in %s", rule, root))
			}
			continue
		}

		for _, rel := range matches {
			destRel := filepath.Join(string(rule.Category), rel)
			if seen[destRel] {
				continue
			}
			seen[destRel] = true

			src := filepath.Join(root, rel)
			if err := copyFile(src, filepath.Join(destRoot, destRel)); err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrArtifactCopyFailed.Error()), "path", src)
			}
			files = append(files, domain.ManifestFile{
				Path:     filepath.ToSlash(destRel),
				Category: rule.Category,
			})
		}
	}

	if len(missing) > 0 {
		return nil, zerr.Wrap(domain.ErrMandatoryArtifactMissing, strings.Join(missing, ", "))
	}

	if err := p.digest(ctx, destRoot, files); err != nil {
		return nil, err
	}

	slices.SortFunc(files, func(a, b domain.ManifestFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

// digest fills in the digest of every copied file concurrently.
func (p *Packager) digest(ctx context.Context, destRoot string, files []domain.ManifestFile) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := p.hasher.FileDigest(filepath.Join(destRoot, filepath.FromSlash(files[i].Path)))
			if err != nil {
				return err
			}
			files[i].Digest = d
			return nil
		})
	}

	return g.Wait()
}

// copyFile copies the content of src to dst, following symlinks and keeping the permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return err
	}

	in, err := os.Open(src) //nolint:gosec // Path comes from walking the install directory
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only file

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // Destination is inside the package
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
