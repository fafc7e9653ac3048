package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thoreinstein/mcpsel/internal/cli"
	"github.com/thoreinstein/mcpsel/internal/cli/prompt"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/redact"
)

func init() {
	rootCmd.AddCommand(selectCmd)
}

var selectCmd = &cobra.Command{
	Use:   "select [platform]",
	Short: "Pick a platform's tools interactively",
	Long: `Choose tools for a platform and save the result.

On a terminal a fuzzy finder opens: Tab marks tools, Enter confirms. The
preview shows each tool's command with secrets masked. Elsewhere a
numbered prompt is read from standard input.

Without a platform argument the platform is chosen first.`,
	Example: `  mcpsel select
  mcpsel select claude`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

// picker chooses items by index.
type picker interface {
	One(title string, items []prompt.Item) (int, error)
	Many(title string, items []prompt.Item, current []int) ([]int, error)
}

// newPicker returns the fuzzy finder on a terminal and the numbered
// prompt otherwise.
var newPicker = func(cmd *cobra.Command) picker {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return fuzzyPicker{}
	}
	return promptPicker{prompt.NewSelectorWithIO(cmd.InOrStdin(), cmd.OutOrStdout())}
}

// errCancelled is returned by pickers when the user backs out.
var errCancelled = errors.New("selection cancelled")

type fuzzyPicker struct{}

func (fuzzyPicker) One(title string, items []prompt.Item) (int, error) {
	idx, err := fuzzyfinder.Find(items,
		func(i int) string { return items[i].Name },
		fuzzyfinder.WithHeader(title),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return 0, errCancelled
	}
	return idx, err
}

func (fuzzyPicker) Many(title string, items []prompt.Item, current []int) ([]int, error) {
	marked := make(map[int]bool, len(current))
	for _, i := range current {
		marked[i] = true
	}
	idxs, err := fuzzyfinder.FindMulti(items,
		func(i int) string {
			if marked[i] {
				return "* " + items[i].Name
			}
			return "  " + items[i].Name
		},
		fuzzyfinder.WithHeader(title+" (Tab to mark, * = saved)"),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return items[i].Name + "\n\n" + items[i].Detail
		}),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return nil, errCancelled
	}
	return idxs, err
}

type promptPicker struct {
	s *prompt.Selector
}

func (p promptPicker) One(title string, items []prompt.Item) (int, error) {
	idx, err := p.s.SelectOne(title, items)
	if errors.Is(err, prompt.ErrSelectionCancelled) {
		return 0, errCancelled
	}
	return idx, err
}

func (p promptPicker) Many(title string, items []prompt.Item, current []int) ([]int, error) {
	idxs, err := p.s.SelectMany(title, items, current)
	if errors.Is(err, prompt.ErrSelectionCancelled) {
		return nil, errCancelled
	}
	return idxs, err
}

func runSelect(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer closeApp(a)
	warnBatchErrors(a, cmd.ErrOrStderr())

	reg, err := a.GetRegistry()
	if err != nil {
		return registryError(err)
	}
	if reg.Len() == 0 {
		return errors.NewUserError(errors.Newf("no tools in %s", a.Store().RegistryPath()), "add servers under mcpServers first")
	}

	p := newPicker(cmd)
	w := cmd.OutOrStdout()

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		names := a.GetSettings().Names()
		if len(names) == 0 {
			return errors.NewUserError(errors.New("no platforms declared in settings"), "Run: mcpsel edit settings")
		}
		items := make([]prompt.Item, len(names))
		for i, n := range names {
			items[i] = prompt.Item{Name: n, Detail: a.Platforms().Path(n)}
		}
		idx, err := p.One("Platform", items)
		if errors.Is(err, errCancelled) {
			fmt.Fprintln(w, "Selection cancelled.")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "choosing platform")
		}
		name = names[idx]
	}

	sel := cli.FromConfig(a.ReadPlatformConfig(name))
	if stale := sel.Filter(reg); len(stale) > 0 {
		fmt.Fprintf(w, "%s dropping tools missing from the registry: %s\n", yellow("!"), strings.Join(stale, ", "))
	}

	servers := reg.Servers()
	items := make([]prompt.Item, len(servers))
	var current []int
	for i, s := range servers {
		items[i] = prompt.Item{Name: s.Name, Detail: describe(s)}
		if sel.Has(s.Name) {
			current = append(current, i)
		}
	}

	chosen, err := p.Many("Tools for "+name, items, current)
	if errors.Is(err, errCancelled) {
		fmt.Fprintln(w, "Selection cancelled.")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "choosing tools")
	}

	ids := make([]string, len(chosen))
	for i, idx := range chosen {
		ids[i] = servers[idx].Name
	}
	return save(w, a, name, cli.NewSelection(ids...), reg)
}

// describe renders a server's command line with secrets masked.
func describe(s *mcp.Server) string {
	parts := append([]string{s.Command}, redact.Args(s.Args)...)
	line := strings.TrimSpace(strings.Join(parts, " "))
	if len(s.Env) > 0 {
		line += " [env: " + envKeys(s.Env) + "]"
	}
	return line
}
