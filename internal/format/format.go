// Package format renders configuration documents as JSON, YAML or TOML.
//
// Documents are first encoded with their JSON marshalers and decoded into
// generic values, so YAML and TOML output uses the same field names as the
// files on disk.
package format

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/pkg/fileutil"
)

// Format names an output encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ErrUnknownFormat is returned by Parse for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// Parse accepts json, yaml, yml and toml in any case.
func Parse(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q (valid: json, yaml, toml)", s)
}

// Marshal encodes v in format f.
func Marshal(v any, f Format) ([]byte, error) {
	if f == JSON {
		return fileutil.MarshalIndent(v)
	}

	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}

	switch f {
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return nil, errors.Wrap(err, "marshaling yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "marshaling yaml")
		}
		return buf.Bytes(), nil
	case TOML:
		out, err := toml.Marshal(dropNulls(generic))
		if err != nil {
			return nil, errors.Wrap(err, "marshaling toml")
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", f)
}

// Write encodes v in format f to w.
func Write(w io.Writer, v any, f Format) error {
	out, err := Marshal(v, f)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	return generic, nil
}

// dropNulls removes null values, which TOML cannot represent.
func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = dropNulls(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if val == nil {
				continue
			}
			out = append(out, dropNulls(val))
		}
		return out
	}
	return v
}
