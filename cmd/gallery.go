package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/face-sentry/face-sentry/internal/backup"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Inspect and manage the identity gallery",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities grouped by name",
	RunE:  runGalleryList,
}

var galleryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the gallery (a backup is taken first)",
	RunE:  runGalleryClear,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryListCmd)
	galleryCmd.AddCommand(galleryClearCmd)

	galleryListCmd.Flags().Bool("json", false, "Output as JSON")
	galleryClearCmd.Flags().Bool("yes", false, "Clear without confirmation")
}

// GalleryListEntry is one name group in JSON output.
type GalleryListEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func runGalleryList(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	d := initDeps()

	groups := d.store.Query()
	if jsonOutput {
		entries := make([]GalleryListEntry, 0, len(groups))
		for _, g := range groups {
			entries = append(entries, GalleryListEntry{Name: g.Name, Count: g.Count})
		}
		return outputJSON(entries)
	}

	if len(groups) == 0 {
		fmt.Println("Gallery is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSAMPLES\tNEWEST")
	fmt.Fprintln(w, "----\t-------\t------")
	for _, g := range groups {
		newest := g.Records[0].CreatedAt
		for _, r := range g.Records[1:] {
			if r.CreatedAt.After(newest) {
				newest = r.CreatedAt
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", g.Name, g.Count, newest.Format("2006-01-02 15:04"))
	}
	w.Flush()

	fmt.Printf("\n%d identities, %d records total\n", len(groups), d.store.Count())
	return nil
}

func runGalleryClear(cmd *cobra.Command, args []string) error {
	yes := mustGetBool(cmd, "yes")
	d := initDeps()

	if d.store.Count() == 0 {
		fmt.Println("Gallery is already empty.")
		return nil
	}

	if !yes {
		prompter := newConsolePrompter(os.Stdin, os.Stdout)
		ok, err := prompter.Confirm(fmt.Sprintf("Remove all %d records from the gallery?", d.store.Count()))
		if err != nil || !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	mgr := backup.NewManager(d.cfg.Gallery.Path, d.cfg.Gallery.BackupDir)
	backupPath, removed, err := mgr.ClearWithBackup(d.store)
	if err != nil {
		return err
	}
	if backupPath != "" {
		fmt.Printf("Backup written to %s\n", backupPath)
	}
	fmt.Printf("Removed %d records.\n", removed)
	return nil
}
