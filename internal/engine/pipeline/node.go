package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/adapters/cmake"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/adapters/git"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the pipeline Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			git.NodeID,
			cmake.NodeID,
			fs.PackagerNodeID,
			fs.RepositoryNodeID,
			cas.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			fetcher, err := graft.Dep[ports.SourceFetcher](ctx)
			if err != nil {
				return nil, err
			}

			builder, err := graft.Dep[ports.Builder](ctx)
			if err != nil {
				return nil, err
			}

			packager, err := graft.Dep[ports.Packager](ctx)
			if err != nil {
				return nil, err
			}

			repository, err := graft.Dep[ports.PackageRepository](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.BuildRecordStore](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(fetcher, builder, packager, repository, store, telemetry, log), nil
		},
	})
}
