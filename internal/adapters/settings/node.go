package settings

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// NodeID is the unique identifier for the settings loader Graft node.
	NodeID graft.ID = "adapter.settings"
	// ValuesNodeID is the unique identifier for the settings loaded from the working directory.
	ValuesNodeID graft.ID = "adapter.settings.values"
)

func init() {
	graft.Register(graft.Node[ports.SettingsLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SettingsLoader, error) {
			return NewLoader(), nil
		},
	})

	graft.Register(graft.Node[domain.ToolSettings]{
		ID:        ValuesNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (domain.ToolSettings, error) {
			loader, err := graft.Dep[ports.SettingsLoader](ctx)
			if err != nil {
				return domain.ToolSettings{}, err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return domain.ToolSettings{}, zerr.Wrap(err, "failed to get working directory")
			}
			return loader.Load(cwd)
		},
	})
}
