// Package descriptor loads package descriptors from YAML or TOML files.
package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

const (
	// FormatYAML selects YAML encoding.
	FormatYAML = "yaml"
	// FormatTOML selects TOML encoding.
	FormatTOML = "toml"
)

// Loader implements ports.DescriptorLoader.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// FormatFor returns the encoding of the descriptor at path, chosen by extension.
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", zerr.With(domain.ErrUnknownDescriptorFormat, "path", path)
	}
}

// Discover walks up from cwd and returns the first descriptor found.
// Within one directory ferry.yaml wins over ferry.yml, which wins over ferry.toml.
func (l *Loader) Discover(cwd string) (string, error) {
	currentDir := cwd

	for {
		var found []string
		for _, name := range domain.DescriptorFileNames {
			candidate := filepath.Join(currentDir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				found = append(found, candidate)
			}
		}

		if len(found) > 0 {
			if len(found) > 1 {
				l.logger.Warn(fmt.Sprintf("several descriptors in %s, using %s", currentDir, filepath.Base(found[0])))
			}
			return found[0], nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", domain.NewFailure(domain.ErrConfiguration, zerr.With(domain.ErrDescriptorNotFound, "cwd", cwd))
}

// Load reads and validates the descriptor at path. It has no side effects besides reading the file.
func (l *Loader) Load(path string) (domain.Descriptor, error) {
	format, err := FormatFor(path)
	if err != nil {
		return domain.Descriptor{}, domain.NewFailure(domain.ErrConfiguration, err)
	}

	// #nosec G304 -- path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrDescriptorReadFailed.Error()), "path", path)
		return domain.Descriptor{}, domain.NewFailure(domain.ErrConfiguration, err)
	}

	d, err := l.Parse(data, format)
	if err != nil {
		return domain.Descriptor{}, zerr.With(err, "path", path)
	}
	return d, nil
}

// Parse decodes and validates a descriptor held in memory.
func (l *Loader) Parse(data []byte, format string) (domain.Descriptor, error) {
	file, err := decode(data, format)
	if err != nil {
		return domain.Descriptor{}, domain.NewFailure(domain.ErrConfiguration, err)
	}
	return toDomain(file)
}

// Marshal encodes d in the given format ("yaml", "yml" or "toml").
func (l *Loader) Marshal(d domain.Descriptor, format string) ([]byte, error) {
	file := fromDomain(d)

	switch format {
	case FormatYAML, "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return nil, zerr.Wrap(err, domain.ErrDescriptorEncodeFailed.Error())
		}
		if err := enc.Close(); err != nil {
			return nil, zerr.Wrap(err, domain.ErrDescriptorEncodeFailed.Error())
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(file)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrDescriptorEncodeFailed.Error())
		}
		return data, nil
	default:
		return nil, zerr.With(domain.ErrUnknownDescriptorFormat, "format", format)
	}
}

func decode(data []byte, format string) (*File, error) {
	var file File

	switch format {
	case FormatYAML, "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, zerr.Wrap(err, domain.ErrDescriptorParseFailed.Error())
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, zerr.Wrap(err, domain.ErrDescriptorParseFailed.Error())
		}
	default:
		return nil, zerr.With(domain.ErrUnknownDescriptorFormat, "format", format)
	}

	return &file, nil
}

func toDomain(file *File) (domain.Descriptor, error) {
	required := []struct {
		field string
		value string
	}{
		{"name", file.Name},
		{"version", file.Version},
		{"source.url", file.Source.URL},
		{"source.branch", file.Source.Branch},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.Descriptor{}, domain.NewFailure(domain.ErrConfiguration, zerr.Wrap(domain.ErrMissingField, r.field))
		}
	}

	if err := validateVersion("version", file.Version); err != nil {
		return domain.Descriptor{}, err
	}

	requires, err := parseRequires(file.Requires)
	if err != nil {
		return domain.Descriptor{}, err
	}

	artifacts, err := toRules(file.Artifacts)
	if err != nil {
		return domain.Descriptor{}, err
	}
	imports, err := toRules(file.Imports)
	if err != nil {
		return domain.Descriptor{}, err
	}

	settings := domain.Settings{
		OS:              file.Settings.OS,
		Compiler:        file.Settings.Compiler,
		CompilerVersion: file.Settings.CompilerVersion,
		Libcxx:          file.Settings.Libcxx,
		BuildType:       file.Settings.BuildType,
		Arch:            file.Settings.Arch,
	}

	toolchain, err := domain.ResolveToolchain(file.Toolchain, settings, file.Options.Shared)
	if err != nil {
		return domain.Descriptor{}, err
	}

	d := domain.Descriptor{
		Name:        file.Name,
		Version:     file.Version,
		License:     file.License,
		Description: file.Description,
		Settings:    settings,
		Options:     domain.Options{Shared: file.Options.Shared},
		Source: domain.Source{
			URL:       file.Source.URL,
			Branch:    file.Source.Branch,
			Subfolder: file.Source.Subfolder,
		},
		Build: domain.BuildSpec{
			PreBuild:  nilIfEmpty(file.Build.PreBuild),
			Generator: file.Build.Generator,
		},
		Toolchain: toolchain,
		Preset:    file.Toolchain,
		Artifacts: artifacts,
		Libs:      nilIfEmpty(file.Libs),
		Requires:  requires,
		Imports:   imports,
	}
	if len(file.Build.Defines) > 0 {
		d.Build.Defines = maps.Clone(file.Build.Defines)
	}

	return d, nil
}

func validateVersion(field, version string) error {
	norm := version
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidVersion, field), "version", version)
		return domain.NewFailure(domain.ErrConfiguration, err)
	}
	return nil
}

func parseRequires(refs []string) ([]domain.DependencyRef, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	result := make([]domain.DependencyRef, 0, len(refs))
	for _, ref := range refs {
		name, version, ok := strings.Cut(ref, "/")
		if !ok || name == "" || version == "" {
			err := zerr.With(zerr.Wrap(domain.ErrMissingField, "requires"), "reference", ref)
			return nil, domain.NewFailure(domain.ErrConfiguration, err)
		}
		if err := validateVersion("requires", version); err != nil {
			return nil, err
		}
		result = append(result, domain.DependencyRef{Name: name, Version: version})
	}
	return result, nil
}

func toRules(dtos []RuleDTO) ([]domain.ArtifactRule, error) {
	if len(dtos) == 0 {
		return nil, nil
	}

	rules := make([]domain.ArtifactRule, 0, len(dtos))
	for _, dto := range dtos {
		rule := domain.ArtifactRule{
			Pattern:   dto.Pattern,
			Category:  domain.Category(dto.Category),
			From:      dto.From,
			Mandatory: dto.Mandatory,
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func fromDomain(d domain.Descriptor) File {
	file := File{
		Name:        d.Name,
		Version:     d.Version,
		License:     d.License,
		Description: d.Description,
		Toolchain:   d.Preset,
		Settings: SettingsDTO{
			OS:              d.Settings.OS,
			Compiler:        d.Settings.Compiler,
			CompilerVersion: d.Settings.CompilerVersion,
			Libcxx:          d.Settings.Libcxx,
			BuildType:       d.Settings.BuildType,
			Arch:            d.Settings.Arch,
		},
		Options: OptionsDTO{Shared: d.Options.Shared},
		Source: SourceDTO{
			URL:       d.Source.URL,
			Branch:    d.Source.Branch,
			Subfolder: d.Source.Subfolder,
		},
		Build: BuildDTO{
			PreBuild:  d.PreBuild(),
			Generator: d.Build.Generator,
			Defines:   d.Defines(),
		},
		Artifacts: fromRules(d.Artifacts),
		Libs:      nilIfEmpty(d.Libs),
		Imports:   fromRules(d.Imports),
	}
	for _, ref := range d.Requires {
		file.Requires = append(file.Requires, ref.String())
	}
	return file
}

func fromRules(rules []domain.ArtifactRule) []RuleDTO {
	if len(rules) == 0 {
		return nil
	}
	dtos := make([]RuleDTO, 0, len(rules))
	for _, r := range rules {
		dtos = append(dtos, RuleDTO{
			Pattern:   r.Pattern,
			Category:  string(r.Category),
			From:      r.From,
			Mandatory: r.Mandatory,
		})
	}
	return dtos
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}
