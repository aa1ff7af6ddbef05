package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/cas"                //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/descriptor"         //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/settings"           //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/shell"              //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/engine/pipeline"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

type verboseSetter interface {
	SetVerbose(enabled bool)
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			descriptor.NodeID,
			pipeline.NodeID,
			fs.PackagerNodeID,
			fs.RepositoryNodeID,
			cas.NodeID,
			logger.NodeID,
			settings.ValuesNodeID,
			shell.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.DescriptorLoader](ctx)
	if err != nil {
		return nil, err
	}

	engine, err := graft.Dep[*pipeline.Engine](ctx)
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

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	values, err := graft.Dep[domain.ToolSettings](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	a := New(loader, engine, packager, repository, store, log, values)
	if v, ok := executor.(verboseSetter); ok {
		a = a.WithVerboseHook(v.SetVerbose)
	}
	return a, nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       a,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}
