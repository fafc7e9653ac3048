package settings

import (
	"path/filepath"
	"testing"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

func TestParse(t *testing.T) {
	data := []byte(`{
  // generated files
  "output_dir": "./out",
  "database_path": "tools/database.json",
  "platforms": [
    {"name": "claude"},
    /* cursor keeps its own file name */
    {"name": "cursor", "platform_dir": ".cursor", "output_filename": "mcp.json", "batch": "run {{config_file_path}}"}
  ]
}`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.OutputDir != "./out" {
		t.Errorf("OutputDir = %q", doc.OutputDir)
	}
	if doc.DatabasePath != "tools/database.json" {
		t.Errorf("DatabasePath = %q", doc.DatabasePath)
	}
	if got := doc.Names(); len(got) != 2 || got[0] != "claude" || got[1] != "cursor" {
		t.Errorf("Names() = %v", got)
	}
}

func TestParse_DatabasePathMustBeString(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"number", `{"database_path": 42, "platforms": []}`},
		{"object", `{"database_path": {"p": "x"}, "platforms": []}`},
		{"null", `{"database_path": null, "platforms": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.DatabasePath != "" {
				t.Errorf("DatabasePath = %q, want empty", doc.DatabasePath)
			}
		})
	}
}

func TestParse_MissingPlatformsIsEmpty(t *testing.T) {
	doc, err := Parse([]byte(`{"output_dir": "/tmp/out"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Platforms == nil || len(doc.Platforms) != 0 {
		t.Errorf("Platforms = %#v, want empty non-nil slice", doc.Platforms)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"platforms": [`},
		{"missing name", `{"platforms": [{"platform_dir": "x"}]}`},
		{"blank name", `{"platforms": [{"name": "  "}]}`},
		{"duplicate name", `{"platforms": [{"name": "a"}, {"name": "a"}]}`},
		{"output_dir wrong type", `{"output_dir": 3, "platforms": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !errors.Is(err, errors.ErrParse) {
				t.Errorf("error %v should be marked ErrParse", err)
			}
		})
	}
}

func TestDocument_Platform(t *testing.T) {
	doc := &Document{Platforms: []Platform{
		{Name: "cursor", PlatformDir: ".cursor", OutputFilename: "mcp.json"},
	}}

	p, ok := doc.Platform("cursor")
	if !ok {
		t.Fatal("Platform(cursor) not found")
	}
	if p.Dir() != ".cursor" || p.Filename() != "mcp.json" {
		t.Errorf("Dir/Filename = %q/%q", p.Dir(), p.Filename())
	}

	p, ok = doc.Platform("claude")
	if ok {
		t.Error("Platform(claude) should not be found")
	}
	if p.Dir() != "claude" || p.Filename() != "config.json" {
		t.Errorf("fallback Dir/Filename = %q/%q, want claude/config.json", p.Dir(), p.Filename())
	}

	var nilDoc *Document
	if _, ok := nilDoc.Platform("x"); ok {
		t.Error("nil document should not find platforms")
	}
}

func TestPlatform_Command(t *testing.T) {
	tests := []struct {
		name  string
		batch string
		want  string
	}{
		{"no batch", "", ""},
		{"blank batch", "   ", ""},
		{"token substituted", "run {{config_file_path}}", "run /out/p/config.json"},
		{"every token substituted", "cp {{config_file_path}} {{config_file_path}}.bak", "cp /out/p/config.json /out/p/config.json.bak"},
		{"no token", "notify-send saved", "notify-send saved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Platform{Name: "p", Batch: tt.batch}
			if got := p.Command("/out/p/config.json"); got != tt.want {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocument_ResolveOutputDir(t *testing.T) {
	cwd := filepath.FromSlash("/work")
	tests := []struct {
		name string
		doc  *Document
		want string
	}{
		{"nil document", nil, cwd},
		{"unset", &Document{}, cwd},
		{"relative", &Document{OutputDir: "out"}, filepath.FromSlash("/work/out")},
		{"absolute", &Document{OutputDir: filepath.FromSlash("/srv/mcp")}, filepath.FromSlash("/srv/mcp")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.ResolveOutputDir(cwd); got != tt.want {
				t.Errorf("ResolveOutputDir() = %q, want %q", got, tt.want)
			}
		})
	}
}
