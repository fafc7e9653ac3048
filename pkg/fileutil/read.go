package fileutil

import (
	"io"
	"io/fs"
	"os"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// MaxFileSize is the maximum file size we'll read (4MB).
// Registries with a few thousand servers stay far below it.
const MaxFileSize = 4 * 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
// A missing file is marked errors.ErrNotFound; every other failure,
// including an oversized file, is marked errors.ErrIO.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Mark(errors.Wrap(err, "opening file"), errors.ErrNotFound)
		}
		return nil, errors.Mark(errors.Wrap(err, "opening file"), errors.ErrIO)
	}
	defer f.Close()

	// Fail fast when the size is already known to be too large
	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, errors.Mark(ErrFileTooLarge, errors.ErrIO)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "reading file"), errors.ErrIO)
	}
	if len(data) > MaxFileSize {
		return nil, errors.Mark(ErrFileTooLarge, errors.ErrIO)
	}
	return data, nil
}
