package ports

import "go.trai.ch/ferry/internal/core/domain"

// DescriptorLoader reads package descriptors.
//
//go:generate mockgen -source=descriptor_loader.go -destination=mocks/mock_descriptor_loader.go -package=mocks
type DescriptorLoader interface {
	// Load reads, validates and resolves the descriptor at path.
	// It has no side effects besides reading the file.
	Load(path string) (domain.Descriptor, error)

	// Discover walks up from cwd and returns the path of the first descriptor file found.
	Discover(cwd string) (string, error)

	// Marshal encodes d in the given format ("yaml" or "toml").
	Marshal(d domain.Descriptor, format string) ([]byte, error)
}
