package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/mcpsel/cmd"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/paths"
)

var (
	genDocDir    string
	genDocFormat string
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runGenDoc,
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "output format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

func runGenDoc(c *cobra.Command, _ []string) error {
	if genDocDir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "pass --dir")
	}
	if err := paths.EnsureDir(genDocDir, paths.DefaultDirPerm); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "creating output directory"), "")
	}

	var err error
	switch strings.ToLower(genDocFormat) {
	case "markdown", "md":
		err = doc.GenMarkdownTreeCustom(rootCmd, genDocDir, filePrepender, linkHandler)
	case "man":
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{
			Title:   "MCPSEL",
			Section: "1",
			Source:  "mcpsel " + cmd.Version,
		}, genDocDir)
	default:
		return errors.NewUserError(errors.Newf("unknown doc format %q", genDocFormat), "use --format markdown or man")
	}
	if err != nil {
		return errors.NewSystemError(errors.Wrap(err, "generating documentation"), "")
	}

	fmt.Fprintf(c.OutOrStdout(), "Documentation generated in %s\n", genDocDir)
	return nil
}

// filePrepender adds front matter; mcpsel_backup_list.md gets the title
// "mcpsel backup list".
func filePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.ReplaceAll(base, "_", " ")
	return fmt.Sprintf("---\ntitle: %q\ndescription: %q\n---\n", title, "Reference for "+title)
}

func linkHandler(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name))) + "/"
}
