package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/cmd"
	"github.com/thoreinstein/mcpsel/internal/backup"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/format"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "output in JSON format")
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List and restore backups of generated platform files",
	Long: `Before save overwrites a platform file, the previous file is copied to
<data dir>/mcpsel/backups/<platform>/<timestamp>/. The newest
backup.retention copies are kept per platform; 0 disables backups.`,
	Example: `  mcpsel backup list
  mcpsel backup list claude
  mcpsel backup restore claude
  mcpsel backup restore claude 20260123T100712`,
	RunE: func(c *cobra.Command, _ []string) error {
		return c.Help()
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list [platform]",
	Short: "List available backups, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <platform> [backup-id]",
	Short: "Restore a platform file from a backup",
	Long: `Restore the platform file from a backup. Without a backup id the most
recent backup is used. The current file is backed up first, so a restore
can itself be undone.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBackupRestore,
}

func backups() *backup.Manager {
	return backup.NewManager(
		backup.WithRetention(prefs().Backup.Retention),
		backup.WithVersion(cmd.Version),
	)
}

// backupEntry is one row of backup list output.
type backupEntry struct {
	Platform   string    `json:"platform"`
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	AppVersion string    `json:"app_version"`
}

func runBackupList(c *cobra.Command, args []string) error {
	mgr := backups()

	names := args
	if len(names) == 0 {
		var err error
		if names, err = mgr.Platforms(); err != nil {
			return errors.NewSystemError(err, "")
		}
	}

	entries := []backupEntry{}
	for _, name := range names {
		manifests, err := mgr.List(name)
		if errors.Is(err, backup.ErrNoBackupsFound) {
			continue
		}
		if errors.Is(err, backup.ErrInvalidName) {
			return errors.NewUserError(err, "")
		}
		if err != nil {
			return errors.NewSystemError(errors.Wrapf(err, "listing backups for %s", name), "")
		}
		for _, m := range manifests {
			entries = append(entries, backupEntry{
				Platform:   m.Platform,
				ID:         m.ID,
				CreatedAt:  m.CreatedAt,
				Path:       m.File.OriginalPath,
				Size:       m.File.Size,
				AppVersion: m.AppVersion,
			})
		}
	}

	w := c.OutOrStdout()
	if backupListJSON {
		return format.Write(w, entries, format.JSON)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No backups available.")
		fmt.Fprintf(w, "%s\n", gray("Backups are created when save overwrites an existing platform file."))
		return nil
	}
	return writeBackupTable(w, entries)
}

func writeBackupTable(w io.Writer, entries []backupEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLATFORM\tID\tCREATED\tSIZE\tPATH")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			e.Platform, e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Size, e.Path)
	}
	return tw.Flush()
}

func runBackupRestore(c *cobra.Command, args []string) error {
	mgr := backups()
	name := args[0]
	w := c.OutOrStdout()

	var manifest *backup.Manifest
	var err error
	if len(args) == 2 {
		manifest, err = mgr.Get(name, args[1])
	} else {
		manifest, err = mgr.Latest(name)
		if err == nil {
			fmt.Fprintf(w, "Using most recent backup: %s\n", manifest.ID)
		}
	}
	switch {
	case errors.Is(err, backup.ErrNoBackupsFound), errors.Is(err, backup.ErrInvalidName):
		return errors.NewUserError(err, "run 'mcpsel backup list "+name+"' to see available backups")
	case err != nil:
		return errors.NewSystemError(err, "")
	}

	if _, err := mgr.Restore(name, manifest.ID); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "restoring backup"), "")
	}
	fmt.Fprintf(w, "%s Restored %s from backup %s to %s\n", green("✓"), name, manifest.ID, manifest.File.OriginalPath)
	return nil
}
