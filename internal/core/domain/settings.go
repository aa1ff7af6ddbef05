package domain

// ToolSettings holds the settings of ferry itself, as opposed to the
// descriptor Settings of a package.
type ToolSettings struct {
	// WorkDir holds sources, per-run build directories and build records.
	WorkDir string
	// OutputDir is the local package repository.
	OutputDir string
	// Git is the git executable.
	Git string
	// CMake is the cmake executable.
	CMake string
	// JSONLogs switches the logger to JSON output.
	JSONLogs bool
	// Verbose forwards external tool output to the logger.
	Verbose bool
}

// DefaultToolSettings returns the settings used when nothing is configured.
func DefaultToolSettings() ToolSettings {
	return ToolSettings{
		WorkDir:   DefaultWorkDir(),
		OutputDir: DefaultOutputDir(),
		Git:       "git",
		CMake:     "cmake",
	}
}
