// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ferry/internal/adapters/cas"
	_ "go.trai.ch/ferry/internal/adapters/cmake"
	_ "go.trai.ch/ferry/internal/adapters/descriptor"
	_ "go.trai.ch/ferry/internal/adapters/fs"
	_ "go.trai.ch/ferry/internal/adapters/git"
	_ "go.trai.ch/ferry/internal/adapters/logger"
	_ "go.trai.ch/ferry/internal/adapters/settings"
	_ "go.trai.ch/ferry/internal/adapters/shell"
	_ "go.trai.ch/ferry/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/ferry/internal/app"
	_ "go.trai.ch/ferry/internal/engine/pipeline"
)
