package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/logger"
	"go.trai.ch/ferry/internal/adapters/settings"
	"go.trai.ch/ferry/internal/adapters/shell"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the source fetcher Graft node.
const NodeID graft.ID = "adapter.git"

func init() {
	graft.Register(graft.Node[ports.SourceFetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID, settings.ValuesNodeID},
		Run: func(ctx context.Context) (ports.SourceFetcher, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			values, err := graft.Dep[domain.ToolSettings](ctx)
			if err != nil {
				return nil, err
			}
			return NewFetcher(executor, log, values.Git), nil
		},
	})
}
