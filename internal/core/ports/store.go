package ports

import "go.trai.ch/ferry/internal/core/domain"

// BuildRecordStore defines the interface for storing and retrieving build records.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildRecordStore interface {
	// Get retrieves the last build record of a package below workDir.
	// Returns nil, nil if not found.
	Get(workDir string, ref domain.DependencyRef) (*domain.BuildRecord, error)

	// Put stores the build record below workDir.
	Put(workDir string, record domain.BuildRecord) error
}
