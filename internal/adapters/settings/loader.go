// Package settings loads ferry's own settings with viper.
package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// EnvPrefix is the prefix of environment variables overriding settings.
const EnvPrefix = "FERRY"

// fileSettings mirrors ferry.config.yaml.
type fileSettings struct {
	WorkDir   string `mapstructure:"work_dir"`
	OutputDir string `mapstructure:"output_dir"`
	Git       string `mapstructure:"git"`
	CMake     string `mapstructure:"cmake"`
	JSONLogs  bool   `mapstructure:"json_logs"`
	Verbose   bool   `mapstructure:"verbose"`
}

// Loader implements ports.SettingsLoader.
type Loader struct {
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a new Loader reading the process environment.
func NewLoader() *Loader {
	return &Loader{lookupEnv: os.LookupEnv}
}

// Load merges, from low to high priority: defaults, ferry.config.yaml in dir
// and FERRY_* environment variables. Relative directories are resolved against dir.
func (l *Loader) Load(dir string) (domain.ToolSettings, error) {
	v := viper.New()

	defaults := domain.DefaultToolSettings()
	v.SetDefault("work_dir", defaults.WorkDir)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("git", defaults.Git)
	v.SetDefault("cmake", defaults.CMake)
	v.SetDefault("json_logs", defaults.JSONLogs)
	v.SetDefault("verbose", defaults.Verbose)

	path := filepath.Join(dir, domain.SettingsFileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return domain.ToolSettings{}, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return domain.ToolSettings{}, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", path)
	}

	for _, key := range v.AllKeys() {
		if val, ok := l.lookupEnv(EnvPrefix + "_" + strings.ToUpper(key)); ok {
			v.Set(key, val)
		}
	}

	var fs fileSettings
	if err := v.Unmarshal(&fs); err != nil {
		return domain.ToolSettings{}, zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error())
	}

	return domain.ToolSettings{
		WorkDir:   resolveDir(dir, fs.WorkDir),
		OutputDir: resolveDir(dir, fs.OutputDir),
		Git:       fs.Git,
		CMake:     fs.CMake,
		JSONLogs:  fs.JSONLogs,
		Verbose:   fs.Verbose,
	}, nil
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}
