// Package fileutil provides file system helpers shared by the document
// loaders and the per-platform writer.
package fileutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// AtomicWriteFile replaces path with data by writing a synced temp file in
// the same directory and renaming it over the target. Readers and watchers
// see either the old document or the new one, never a partial write.
//
// The parent directory must exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mcpsel-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	steps := []struct {
		what string
		run  func() error
	}{
		{"writing temp file", func() error { _, werr := tmp.Write(data); return werr }},
		{"setting file permissions", func() error { return tmp.Chmod(perm) }},
		{"syncing temp file", tmp.Sync},
		{"closing temp file", tmp.Close},
		{"renaming temp file", func() error { return os.Rename(tmp.Name(), path) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return errors.Wrap(err, step.what)
		}
	}
	return nil
}

// MarshalIndent encodes v as 2-space indented JSON with a trailing newline.
// HTML characters are not escaped so command arguments such as "a&b" stay
// readable in generated files.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return buf.Bytes(), nil
}

// AtomicWriteJSON writes v as indented JSON to path atomically with 0644
// permissions.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteJSON(path string, v any) error {
	data, err := MarshalIndent(v)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data, 0o644)
}
