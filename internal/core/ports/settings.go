package ports

import "go.trai.ch/ferry/internal/core/domain"

// SettingsLoader loads the tool settings.
//
//go:generate mockgen -source=settings.go -destination=mocks/mock_settings.go -package=mocks
type SettingsLoader interface {
	// Load merges defaults, the settings file found in dir and FERRY_* environment variables.
	Load(dir string) (domain.ToolSettings, error)
}
