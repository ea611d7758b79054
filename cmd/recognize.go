package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/face-sentry/face-sentry/internal/match"
	"github.com/face-sentry/face-sentry/internal/vision"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Match faces in a captured frame against the gallery",
	Long: `Detect all faces in a frame, embed each one and find the best gallery
match above the recognition threshold.

Examples:
  face-sentry recognize frame.jpg
  face-sentry recognize frame.jpg --threshold 0.6
  face-sentry recognize frame.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Float64("threshold", 0, "Override the recognition threshold (0 = gallery setting)")
	recognizeCmd.Flags().Bool("json", false, "Output as JSON")
}

// RecognizeResult is the match outcome for one detected face.
type RecognizeResult struct {
	FaceIndex int     `json:"faceIndex"`
	Position  string  `json:"position"`
	Name      string  `json:"name,omitempty"`
	Score     float64 `json:"score,omitempty"`
	Matched   bool    `json:"matched"`
	Error     string  `json:"error,omitempty"`
}

// RecognizeOutput is the JSON output structure.
type RecognizeOutput struct {
	FaceCount   int               `json:"faceCount"`
	GallerySize int               `json:"gallerySize"`
	Threshold   float64           `json:"threshold"`
	Results     []RecognizeResult `json:"results"`
}

func runRecognize(cmd *cobra.Command, args []string) error {
	threshold := mustGetFloat64(cmd, "threshold")
	jsonOutput := mustGetBool(cmd, "json")

	d := initDeps()
	if threshold == 0 {
		threshold = d.store.Settings().RecognitionThreshold
	}

	frame, err := vision.LoadFrame(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	detections, err := d.client.Detect(ctx, frame)
	if err != nil {
		return fmt.Errorf("face detection failed: %w", err)
	}

	records := d.store.Records()
	output := RecognizeOutput{
		FaceCount:   len(detections),
		GallerySize: len(records),
		Threshold:   threshold,
		Results:     make([]RecognizeResult, 0, len(detections)),
	}

	for i, det := range detections {
		result := RecognizeResult{
			FaceIndex: i,
			Position:  vision.DescribePosition(det.Box, frame.Bounds()),
		}

		vec, err := d.client.Embed(ctx, vision.ExtractFace(frame, det.Box, d.cfg.Rules.Crop))
		if err != nil {
			result.Error = err.Error()
			output.Results = append(output.Results, result)
			continue
		}

		if best := match.FindBestMatch(vec, records, threshold); best != nil {
			result.Matched = true
			result.Name = best.Name
			result.Score = best.Score
		}
		output.Results = append(output.Results, result)
	}

	if jsonOutput {
		return outputJSON(output)
	}
	printRecognizeTable(output)
	return nil
}

func printRecognizeTable(output RecognizeOutput) {
	if output.FaceCount == 0 {
		fmt.Println("No faces detected.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FACE\tPOSITION\tNAME\tSCORE")
	fmt.Fprintln(w, "----\t--------\t----\t-----")
	for _, r := range output.Results {
		name, score := "(unknown)", "-"
		if r.Matched {
			name = r.Name
			score = fmt.Sprintf("%.4f", r.Score)
		}
		if r.Error != "" {
			name = "error: " + r.Error
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.FaceIndex+1, r.Position, name, score)
	}
	w.Flush()

	fmt.Printf("\n%d faces, gallery of %d records, threshold %.2f\n",
		output.FaceCount, output.GallerySize, output.Threshold)
}
