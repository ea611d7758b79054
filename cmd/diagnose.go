package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/face-sentry/face-sentry/internal/diagnose"
	"github.com/face-sentry/face-sentry/internal/vision"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <image>",
	Short: "Analyze embedding quality and gallery similarity for a frame",
	Long: `Run read-only diagnostics on a frozen frame: per-face size, position and
quality, embedding statistics (magnitude, mean, standard deviation) with
quality concerns, and a full similarity report against every enrolled
record. When nothing matches, a workable threshold is suggested.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().Bool("json", false, "Output as JSON")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	d := initDeps()

	frame, err := vision.LoadFrame(args[0])
	if err != nil {
		return err
	}

	analyzer := &diagnose.Analyzer{
		Store:    d.store,
		Detector: d.client,
		Embedder: d.client,
		Rules:    d.cfg.Rules.Diagnostics,
		Quality:  d.cfg.Rules.Quality,
		Crop:     d.cfg.Rules.Crop,
	}
	report, err := analyzer.Analyze(context.Background(), frame)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(report)
	}
	printDiagnoseReport(report)
	return nil
}

func printDiagnoseReport(report *diagnose.Report) {
	fmt.Printf("Faces: %d, gallery: %d records, threshold: %.2f\n",
		report.FaceCount, report.GallerySize, report.Threshold)

	for _, f := range report.Faces {
		fmt.Printf("\nFace %d: %dx%d px, %s\n", f.Index+1, f.Width, f.Height, f.Position)
		for _, issue := range f.Quality {
			fmt.Printf("  quality: %s\n", issue)
		}
		if f.EmbedError != "" {
			fmt.Printf("  embedding failed: %s\n", f.EmbedError)
			continue
		}

		fmt.Printf("  magnitude %.4f, mean %.5f, stddev %.5f\n", f.Magnitude, f.Mean, f.StdDev)
		for _, concern := range f.Concerns {
			fmt.Printf("  concern: %s\n", concern)
		}

		for _, ns := range f.PerName {
			fmt.Printf("  %-20s max %.4f  avg %.4f  (%d samples)  %s\n",
				ns.Name, ns.Max, ns.Average, ns.Count, ns.Verdict)
		}
		if f.Best != nil {
			fmt.Printf("  best match: %s (%.4f)\n", f.Best.Name, f.Best.Score)
		} else if report.GallerySize > 0 {
			fmt.Printf("  no match; highest similarity %.4f, suggested threshold %.2f\n",
				f.HighestSimilarity, f.SuggestedThreshold)
		}
	}
}
