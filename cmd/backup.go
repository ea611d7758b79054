package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/face-sentry/face-sentry/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the gallery file to a timestamped backup",
	RunE:  runBackup,
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List gallery backups, most recent first",
	RunE:  runBackups,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Import a gallery backup",
	Long: `Import records from a backup file.

Merge mode (default) imports a record only when its exact name is not
already enrolled; collisions are skipped and reported. Replace mode clears
the gallery first and imports everything.

Examples:
  face-sentry restore gallery_backup_20260830_142501.json
  face-sentry restore gallery_backup_20260830_142501.json --mode replace`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(restoreCmd)

	backupsCmd.Flags().Bool("json", false, "Output as JSON")
	restoreCmd.Flags().String("mode", string(backup.ModeMerge), "Import mode: merge or replace")
}

func runBackup(cmd *cobra.Command, args []string) error {
	d := initDeps()
	mgr := backup.NewManager(d.cfg.Gallery.Path, d.cfg.Gallery.BackupDir)

	path, err := mgr.Backup()
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println("No gallery file yet, nothing to back up.")
		return nil
	}
	fmt.Printf("Backup written to %s\n", path)
	return nil
}

func runBackups(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	d := initDeps()
	mgr := backup.NewManager(d.cfg.Gallery.Path, d.cfg.Gallery.BackupDir)

	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(backups)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFILE\tSIZE\tMODIFIED")
	for i, b := range backups {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i+1, b.Path, b.Size, b.ModTime.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	mode := backup.Mode(mustGetString(cmd, "mode"))
	d := initDeps()
	mgr := backup.NewManager(d.cfg.Gallery.Path, d.cfg.Gallery.BackupDir)

	report, err := mgr.Restore(d.store, args[0], mode)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d/%d records", report.Imported, report.Total)
	if report.Skipped > 0 {
		fmt.Printf(", skipped %d name collisions:", report.Skipped)
		for _, name := range report.SkippedNames {
			fmt.Printf("\n  %s (already enrolled)", name)
		}
	}
	fmt.Printf("\nGallery now holds %d records.\n", d.store.Count())
	return nil
}
