package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/settings"
)

func sampleRegistry() *mcp.Config {
	cfg := mcp.NewConfig()
	cfg.Set("fs", &mcp.Server{Command: "node", Args: []string{"x.js"}})
	cfg.Set("git", &mcp.Server{Command: "git-mcp", Extra: map[string]any{"note": nil, "timeout": float64(5)}})
	return cfg
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{"YAML", YAML, false},
		{"yml", YAML, false},
		{" toml ", TOML, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarshal_JSON(t *testing.T) {
	out, err := Marshal(sampleRegistry(), JSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mcpServers":{"fs":{"command":"node","args":["x.js"]},"git":{"command":"git-mcp","note":null,"timeout":5}}}`, string(out))
}

func TestMarshal_YAMLUsesFileFieldNames(t *testing.T) {
	out, err := Marshal(sampleRegistry(), YAML)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	servers, ok := back["mcpServers"].(map[string]any)
	require.True(t, ok, "expected mcpServers key, got %s", out)
	fs := servers["fs"].(map[string]any)
	assert.Equal(t, "node", fs["command"])
	assert.Equal(t, []any{"x.js"}, fs["args"])
	assert.NotContains(t, string(out), "Name")
}

func TestMarshal_TOMLDropsNulls(t *testing.T) {
	out, err := Marshal(sampleRegistry(), TOML)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, toml.Unmarshal(out, &back))
	servers := back["mcpServers"].(map[string]any)
	git := servers["git"].(map[string]any)
	assert.Equal(t, "git-mcp", git["command"])
	assert.NotContains(t, git, "note")
}

func TestMarshal_Settings(t *testing.T) {
	doc := &settings.Document{
		OutputDir: "out",
		Platforms: []settings.Platform{{Name: "claude", Batch: "run {{config_file_path}}"}},
	}

	for _, f := range []Format{JSON, YAML, TOML} {
		t.Run(string(f), func(t *testing.T) {
			out, err := Marshal(doc, f)
			require.NoError(t, err)
			assert.Contains(t, string(out), "output_dir")
			assert.Contains(t, string(out), "{{config_file_path}}")
		})
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]int{"a": 1}, JSON))

	var back map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, 1, back["a"])

	assert.Error(t, Write(&buf, 1, Format("xml")))
}
