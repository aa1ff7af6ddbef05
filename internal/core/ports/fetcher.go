package ports

import "context"

// SourceSpec describes the tree a fetcher must produce.
type SourceSpec struct {
	URL    string
	Branch string
	// Dir is the shared source tree location for URL and Branch.
	Dir string
	// Refresh updates an existing tree and allows replacing a diverged one.
	Refresh bool
}

// SourceFetcher acquires source trees.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type SourceFetcher interface {
	// Fetch ensures spec.Dir holds a tree of spec.Branch from spec.URL and
	// returns the checked out revision.
	Fetch(ctx context.Context, spec SourceSpec) (string, error)
}
