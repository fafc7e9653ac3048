// Package jsonc decodes JSON documents that may contain // line comments and
// /* block */ comments.
//
// Comments are removed with two textual passes before strict decoding.
// Comment markers inside string literals are not protected: a value such
// as "https://example.com" loses everything from the "//" onward. Keep
// such values out of commented documents.
package jsonc

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

var (
	lineComment  = regexp.MustCompile(`(?m)//.*$`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// Strip removes line comments first and block comments second.
// The input slice is not modified.
func Strip(data []byte) []byte {
	out := lineComment.ReplaceAll(data, nil)
	return blockComment.ReplaceAll(out, nil)
}

// Unmarshal strips comments from data and decodes the remainder into v.
// Decoding failures are marked with errors.ErrParse and report the line and
// column of the offending byte in the stripped text.
func Unmarshal(data []byte, v any) error {
	stripped := Strip(data)
	if err := json.Unmarshal(stripped, v); err != nil {
		return errors.Mark(describe(stripped, err), errors.ErrParse)
	}
	return nil
}

// describe adds a line:column position to syntax and type errors.
func describe(data []byte, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}
	line, col := position(data, offset)
	return errors.Wrapf(err, "line %d, column %d", line, col)
}

func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	head := data[:offset]
	line = bytes.Count(head, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(head, '\n')
	return line, col
}
