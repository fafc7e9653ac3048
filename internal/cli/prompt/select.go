// Package prompt provides line-based CLI prompts for terminals where the
// fuzzy finder cannot run.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// Sentinel errors for selection prompts.
var (
	ErrNoItems            = errors.New("nothing to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Item is one choice.
type Item struct {
	Name   string
	Detail string
}

// Selector handles numbered selection prompts.
type Selector struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return NewSelectorWithIO(os.Stdin, os.Stdout)
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// SelectOne prompts for a single item and returns its index. A single item
// is returned without prompting. An empty answer picks the first item.
func (s *Selector) SelectOne(title string, items []Item) (int, error) {
	if len(items) == 0 {
		return 0, ErrNoItems
	}
	if len(items) == 1 {
		return 0, nil
	}

	fmt.Fprintf(s.writer, "%s:\n", title)
	s.list(items, nil)
	fmt.Fprintf(s.writer, "Select [1]: ")

	input, err := s.readLine()
	if err != nil {
		return 0, err
	}
	if input == "" {
		return 0, nil
	}
	return parseIndex(input, len(items))
}

// SelectMany prompts for any number of items, entered as numbers separated
// by commas or spaces, and returns their indexes sorted. Items whose index
// is in current are marked. An empty answer keeps current; "-" clears it.
func (s *Selector) SelectMany(title string, items []Item, current []int) ([]int, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	fmt.Fprintf(s.writer, "%s:\n", title)
	s.list(items, current)
	fmt.Fprintf(s.writer, "Select (e.g. 1,3; empty keeps marked; - for none): ")

	input, err := s.readLine()
	if err != nil {
		return nil, err
	}
	switch input {
	case "":
		out := slices.Clone(current)
		slices.Sort(out)
		return out, nil
	case "-":
		return []int{}, nil
	}

	var out []int
	for _, field := range strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' }) {
		idx, err := parseIndex(field, len(items))
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (s *Selector) list(items []Item, marked []int) {
	for i, item := range items {
		mark := " "
		if slices.Contains(marked, i) {
			mark = "*"
		}
		if item.Detail != "" {
			fmt.Fprintf(s.writer, " %s[%d] %s (%s)\n", mark, i+1, item.Name, item.Detail)
		} else {
			fmt.Fprintf(s.writer, " %s[%d] %s\n", mark, i+1, item.Name)
		}
	}
}

func (s *Selector) readLine() (string, error) {
	input, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(input) == "" {
			return "", ErrSelectionCancelled
		}
		if !errors.Is(err, io.EOF) {
			return "", errors.Wrap(err, "reading selection")
		}
	}
	return strings.TrimSpace(input), nil
}

func parseIndex(input string, n int) (int, error) {
	selection, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if selection < 1 || selection > n {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, n)
	}
	return selection - 1, nil
}
