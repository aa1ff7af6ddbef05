package cmake

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/settings"
	"go.trai.ch/ferry/internal/adapters/shell"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the builder Graft node.
const NodeID graft.ID = "adapter.cmake"

func init() {
	graft.Register(graft.Node[ports.Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, settings.ValuesNodeID},
		Run: func(ctx context.Context) (ports.Builder, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			values, err := graft.Dep[domain.ToolSettings](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuilder(executor, values.CMake), nil
		},
	})
}
