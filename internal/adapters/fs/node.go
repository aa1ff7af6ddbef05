package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/logger"
	"go.trai.ch/ferry/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// HasherNodeID is the unique identifier for the hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
	// VerifierNodeID is the unique identifier for the manifest verifier Graft node.
	VerifierNodeID graft.ID = "adapter.fs.verifier"
	// PackagerNodeID is the unique identifier for the packager Graft node.
	PackagerNodeID graft.ID = "adapter.fs.packager"
	// RepositoryNodeID is the unique identifier for the package repository Graft node.
	RepositoryNodeID graft.ID = "adapter.fs.repository"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[*Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Hasher, error) {
			return NewHasher(), nil
		},
	})

	graft.Register(graft.Node[*Verifier]{
		ID:        VerifierNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Verifier, error) {
			return NewVerifier(), nil
		},
	})

	graft.Register(graft.Node[ports.Packager]{
		ID:        PackagerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID, HasherNodeID, VerifierNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Packager, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[*Hasher](ctx)
			if err != nil {
				return nil, err
			}
			verifier, err := graft.Dep[*Verifier](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewPackager(walker, hasher, verifier, log), nil
		},
	})

	graft.Register(graft.Node[ports.PackageRepository]{
		ID:        RepositoryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{VerifierNodeID},
		Run: func(ctx context.Context) (ports.PackageRepository, error) {
			verifier, err := graft.Dep[*Verifier](ctx)
			if err != nil {
				return nil, err
			}
			return NewRepository(verifier), nil
		},
	})
}
