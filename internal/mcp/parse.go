package mcp

import (
	"encoding/json"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// ParseRegistry decodes a tool registry. The document is strict JSON and
// must contain an mcpServers object; failures are marked errors.ErrParse.
func ParseRegistry(data []byte) (*Config, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding registry"), errors.ErrParse)
	}
	if _, ok := top["mcpServers"]; !ok {
		err := errors.New(`registry has no "mcpServers" object`)
		return nil, errors.Mark(err, errors.ErrParse)
	}
	return Parse(data)
}

// Parse decodes an mcpServers document. A missing mcpServers key yields an
// empty server map.
func Parse(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding mcpServers document"), errors.ErrParse)
	}
	return cfg, nil
}
