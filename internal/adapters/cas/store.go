// Package cas stores build records, one JSON file per package version.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.BuildRecordStore using a file-per-package strategy.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the last build record of ref. It returns nil when none was stored.
func (s *Store) Get(workDir string, ref domain.DependencyRef) (*domain.BuildRecord, error) {
	filename := s.getFilename(workDir, ref)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "package", ref.String())
	}

	var record domain.BuildRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "package", ref.String())
	}

	return &record, nil
}

// Put stores the build record, replacing any previous one for the same package version.
func (s *Store) Put(workDir string, record domain.BuildRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	ref := domain.DependencyRef{Name: record.Package, Version: record.Version}
	filename := s.getFilename(workDir, ref)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	return nil
}

func (s *Store) getFilename(workDir string, ref domain.DependencyRef) string {
	hash := sha256.Sum256([]byte(ref.String()))
	return filepath.Join(domain.StoreDir(workDir), hex.EncodeToString(hash[:])+".json")
}
