package descriptor

// File represents the structure of a ferry.yaml or ferry.toml descriptor.
type File struct {
	Name        string `yaml:"name" toml:"name"`
	Version     string `yaml:"version" toml:"version"`
	License     string `yaml:"license,omitempty" toml:"license,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`

	// Toolchain names a preset. Settings overlay it.
	Toolchain string      `yaml:"toolchain,omitempty" toml:"toolchain,omitempty"`
	Settings  SettingsDTO `yaml:"settings,omitempty" toml:"settings,omitempty"`
	Options   OptionsDTO  `yaml:"options,omitempty" toml:"options,omitempty"`
	Source    SourceDTO   `yaml:"source" toml:"source"`
	Build     BuildDTO    `yaml:"build,omitempty" toml:"build,omitempty"`

	Artifacts []RuleDTO `yaml:"artifacts,omitempty" toml:"artifacts,omitempty"`
	Libs      []string  `yaml:"libs,omitempty" toml:"libs,omitempty"`
	// Requires holds name/version references.
	Requires []string  `yaml:"requires,omitempty" toml:"requires,omitempty"`
	Imports  []RuleDTO `yaml:"imports,omitempty" toml:"imports,omitempty"`
}

// SettingsDTO represents the settings section.
type SettingsDTO struct {
	OS              string `yaml:"os,omitempty" toml:"os,omitempty"`
	Compiler        string `yaml:"compiler,omitempty" toml:"compiler,omitempty"`
	CompilerVersion string `yaml:"compiler_version,omitempty" toml:"compiler_version,omitempty"`
	Libcxx          string `yaml:"libcxx,omitempty" toml:"libcxx,omitempty"`
	BuildType       string `yaml:"build_type,omitempty" toml:"build_type,omitempty"`
	Arch            string `yaml:"arch,omitempty" toml:"arch,omitempty"`
}

// OptionsDTO represents the options section.
type OptionsDTO struct {
	Shared bool `yaml:"shared,omitempty" toml:"shared,omitempty"`
}

// SourceDTO represents the source section.
type SourceDTO struct {
	URL       string `yaml:"url" toml:"url"`
	Branch    string `yaml:"branch" toml:"branch"`
	Subfolder string `yaml:"subfolder,omitempty" toml:"subfolder,omitempty"`
}

// BuildDTO represents the build section.
type BuildDTO struct {
	PreBuild  []string          `yaml:"pre_build,omitempty" toml:"pre_build,omitempty"`
	Generator string            `yaml:"generator,omitempty" toml:"generator,omitempty"`
	Defines   map[string]string `yaml:"defines,omitempty" toml:"defines,omitempty"`
}

// RuleDTO represents one artifact or import rule.
type RuleDTO struct {
	Pattern   string `yaml:"pattern" toml:"pattern"`
	Category  string `yaml:"category" toml:"category"`
	From      string `yaml:"from,omitempty" toml:"from,omitempty"`
	Mandatory bool   `yaml:"mandatory,omitempty" toml:"mandatory,omitempty"`
}
