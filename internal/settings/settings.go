// Package settings models settings.json: the list of known platforms and
// where their generated files go.
package settings

import (
	"encoding/json"
	"strings"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/jsonc"
	"github.com/thoreinstein/mcpsel/internal/paths"
)

// ConfigPathToken is replaced with the absolute path of the saved file in a
// platform's batch command.
const ConfigPathToken = "{{config_file_path}}"

// Platform is a deployment target with its own output location.
type Platform struct {
	Name           string `json:"name" yaml:"name" toml:"name"`
	PlatformDir    string `json:"platform_dir,omitempty" yaml:"platform_dir,omitempty" toml:"platform_dir,omitempty"`
	OutputFilename string `json:"output_filename,omitempty" yaml:"output_filename,omitempty" toml:"output_filename,omitempty"`
	Batch          string `json:"batch,omitempty" yaml:"batch,omitempty" toml:"batch,omitempty"`
}

// Dir returns the directory name under the output directory.
func (p Platform) Dir() string {
	if p.PlatformDir != "" {
		return p.PlatformDir
	}
	return p.Name
}

// Filename returns the output file name, config.json unless overridden.
func (p Platform) Filename() string {
	if p.OutputFilename != "" {
		return p.OutputFilename
	}
	return paths.DefaultOutputFile
}

// Command returns the batch command with every ConfigPathToken replaced by
// configPath. It returns "" when the platform declares no batch command.
func (p Platform) Command(configPath string) string {
	if strings.TrimSpace(p.Batch) == "" {
		return ""
	}
	return strings.ReplaceAll(p.Batch, ConfigPathToken, configPath)
}

// Document is the decoded settings.json.
type Document struct {
	OutputDir    string     `json:"output_dir,omitempty" yaml:"output_dir,omitempty" toml:"output_dir,omitempty"`
	DatabasePath string     `json:"database_path,omitempty" yaml:"database_path,omitempty" toml:"database_path,omitempty"`
	Platforms    []Platform `json:"platforms" yaml:"platforms" toml:"platforms"`
}

// Default returns the document used when settings.json cannot be loaded.
func Default() *Document {
	return &Document{Platforms: []Platform{}}
}

// UnmarshalJSON accepts database_path only when it is a string; any other
// JSON type is ignored rather than rejected.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var raw struct {
		plain
		DatabasePath json.RawMessage `json:"database_path"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document(raw.plain)
	d.DatabasePath = ""
	if len(raw.DatabasePath) > 0 {
		var s string
		if json.Unmarshal(raw.DatabasePath, &s) == nil {
			d.DatabasePath = s
		}
	}
	if d.Platforms == nil {
		d.Platforms = []Platform{}
	}
	return nil
}

// Parse decodes a settings document that may contain comments and validates
// its shape. Every failure is marked errors.ErrParse.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := jsonc.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, errors.Mark(err, errors.ErrParse)
	}
	return &doc, nil
}

// Validate checks that every platform has a non-empty, unique name.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Platforms))
	for i, p := range d.Platforms {
		if strings.TrimSpace(p.Name) == "" {
			return errors.Mark(errors.Wrapf(errors.ErrMissingName, "platforms[%d]", i), errors.ErrInvalidConfig)
		}
		if seen[p.Name] {
			return errors.Mark(errors.Newf("duplicate platform name %q", p.Name), errors.ErrInvalidConfig)
		}
		seen[p.Name] = true
	}
	return nil
}

// Platform returns the entry named name. A name without an entry yields a
// Platform carrying only the name, so callers fall back to the default
// directory and file name.
func (d *Document) Platform(name string) (Platform, bool) {
	if d != nil {
		for _, p := range d.Platforms {
			if p.Name == name {
				return p, true
			}
		}
	}
	return Platform{Name: name}, false
}

// Names returns the platform names in document order.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Platforms))
	for _, p := range d.Platforms {
		names = append(names, p.Name)
	}
	return names
}

// ResolveOutputDir returns output_dir resolved against cwd, or cwd when the
// document does not set one.
func (d *Document) ResolveOutputDir(cwd string) string {
	if d == nil || d.OutputDir == "" {
		return paths.Resolve(".", cwd)
	}
	return paths.Resolve(d.OutputDir, cwd)
}
