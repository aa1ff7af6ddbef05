// Package git acquires source trees by driving the git executable.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Fetcher implements ports.SourceFetcher.
type Fetcher struct {
	executor ports.Executor
	logger   ports.Logger
	git      string
}

// NewFetcher creates a new Fetcher invoking the git executable named git.
func NewFetcher(executor ports.Executor, logger ports.Logger, git string) *Fetcher {
	if git == "" {
		git = "git"
	}
	return &Fetcher{executor: executor, logger: logger, git: git}
}

// Fetch makes spec.Dir hold a clone of spec.URL on spec.Branch and returns its HEAD revision.
// An existing tree on the same remote and branch is reused as is unless spec.Refresh is set.
func (f *Fetcher) Fetch(ctx context.Context, spec ports.SourceSpec) (string, error) {
	if isGitTree(spec.Dir) {
		return f.reuse(ctx, spec)
	}

	if _, err := os.Stat(spec.Dir); err == nil {
		if !spec.Refresh {
			err := zerr.With(zerr.With(domain.ErrSourceDiverged, "dir", spec.Dir), "reason", "not a git tree")
			return "", domain.NewFailure(domain.ErrFetch, err)
		}
		if err := os.RemoveAll(spec.Dir); err != nil {
			return "", domain.NewFailure(domain.ErrFetch, zerr.Wrap(err, "failed to remove source tree"))
		}
	}

	return f.clone(ctx, spec)
}

func (f *Fetcher) reuse(ctx context.Context, spec ports.SourceSpec) (string, error) {
	url, err := f.output(ctx, spec.Dir, "config", "--get", "remote.origin.url")
	if err != nil {
		return "", domain.NewFailure(domain.ErrFetch, zerr.Wrap(err, "failed to inspect source tree"))
	}
	branch, err := f.output(ctx, spec.Dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", domain.NewFailure(domain.ErrFetch, zerr.Wrap(err, "failed to inspect source tree"))
	}

	if url != spec.URL || branch != spec.Branch {
		if !spec.Refresh {
			err := zerr.With(domain.ErrSourceDiverged, "dir", spec.Dir)
			err = zerr.With(err, "branch", branch)
			err = zerr.With(err, "url", url)
			return "", domain.NewFailure(domain.ErrFetch, err)
		}
		if err := os.RemoveAll(spec.Dir); err != nil {
			return "", domain.NewFailure(domain.ErrFetch, zerr.Wrap(err, "failed to remove source tree"))
		}
		return f.clone(ctx, spec)
	}

	if spec.Refresh {
		if err := f.run(ctx, spec.Dir, "fetch", "origin", spec.Branch); err != nil {
			f.logger.Warn(fmt.Sprintf("could not refresh %s, using cached tree: %v", spec.Dir, err))
		} else if err := f.run(ctx, spec.Dir, "checkout", "-B", spec.Branch, "FETCH_HEAD"); err != nil {
			return "", domain.NewFailure(domain.ErrFetch, zerr.Wrap(err, "failed to update source tree"))
		}
	}

	rev, err := f.revision(ctx, spec.Dir)
	if err != nil {
		return "", err
	}
	if !spec.Refresh {
		if v, ok := ports.VertexFromContext(ctx); ok {
			v.Cached()
		}
	}
	return rev, nil
}

func (f *Fetcher) clone(ctx context.Context, spec ports.SourceSpec) (string, error) {
	heads, err := f.output(ctx, "", "ls-remote", "--heads", spec.URL, spec.Branch)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrRemoteUnreachable.Error()), "url", spec.URL)
		return "", domain.NewFailure(domain.ErrFetch, err)
	}
	if heads == "" {
		err := zerr.With(zerr.With(domain.ErrBranchNotFound, "branch", spec.Branch), "url", spec.URL)
		return "", domain.NewFailure(domain.ErrFetch, err)
	}

	parent := filepath.Dir(spec.Dir)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return "", domain.NewFailure(domain.ErrFetch, zerr.Wrap(err, domain.ErrCloneFailed.Error()))
	}

	tmp := filepath.Join(parent, "."+filepath.Base(spec.Dir)+".clone-"+uuid.NewString())
	if err := f.run(ctx, "", "clone", "-b", spec.Branch, "--single-branch", spec.URL, tmp); err != nil {
		_ = os.RemoveAll(tmp)
		err = zerr.With(zerr.Wrap(err, domain.ErrCloneFailed.Error()), "url", spec.URL)
		return "", domain.NewFailure(domain.ErrFetch, err)
	}

	if err := os.Rename(tmp, spec.Dir); err != nil {
		_ = os.RemoveAll(tmp)
		// Another run cloned the same branch first.
		if !isGitTree(spec.Dir) {
			return "", domain.NewFailure(domain.ErrFetch, zerr.Wrap(err, domain.ErrCloneFailed.Error()))
		}
	}

	return f.revision(ctx, spec.Dir)
}

func (f *Fetcher) revision(ctx context.Context, dir string) (string, error) {
	rev, err := f.output(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", domain.NewFailure(domain.ErrFetch, zerr.Wrap(err, "failed to resolve revision"))
	}
	return rev, nil
}

func (f *Fetcher) run(ctx context.Context, dir string, args ...string) error {
	return f.executor.Run(ctx, domain.Command{Name: f.git, Args: args, Dir: dir})
}

func (f *Fetcher) output(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := f.executor.Output(ctx, domain.Command{Name: f.git, Args: args, Dir: dir})
	return strings.TrimSpace(out), err
}

func isGitTree(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
