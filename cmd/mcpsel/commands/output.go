package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/redact"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// redacted returns a copy of cfg with secret env values, arguments and
// url credentials masked. The original is not modified.
func redacted(cfg *mcp.Config) *mcp.Config {
	out := mcp.NewConfig()
	out.Extra = cfg.Extra
	for _, s := range cfg.Servers() {
		c := s.Clone()
		c.Env = redact.Env(s.Env)
		c.Args = redact.Args(s.Args)
		if u, ok := s.Extra["url"].(string); ok {
			c.Extra["url"] = redact.URL(u)
		}
		out.Set(s.Name, c)
	}
	return out
}

// mark flags rows of a server table.
type mark func(id string) string

// writeServerTable prints one row per server, sorted by id.
func writeServerTable(w io.Writer, cfg *mcp.Config, m mark) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if m != nil {
		fmt.Fprintln(tw, " \tID\tCOMMAND\tARGS\tENV")
	} else {
		fmt.Fprintln(tw, "ID\tCOMMAND\tARGS\tENV")
	}
	for _, s := range cfg.Servers() {
		env := "-"
		if len(s.Env) > 0 {
			env = envKeys(s.Env)
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s", s.Name, s.Command, truncate(strings.Join(s.Args, " "), 48), env)
		if m != nil {
			row = m(s.Name) + "\t" + row
		}
		fmt.Fprintln(tw, row)
	}
	return tw.Flush()
}

func envKeys(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, ",")
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
