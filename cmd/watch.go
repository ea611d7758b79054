package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/face-sentry/face-sentry/internal/match"
	"github.com/face-sentry/face-sentry/internal/vision"
)

var watchCmd = &cobra.Command{
	Use:   "watch <frame-dir>",
	Short: "Run the recognition loop over a directory of captured frames",
	Long: `Process frames one by one through detection, embedding and gallery
matching, printing per-frame results. The directory stands in for the
camera: capture surfaces dump frames there. An unavailable frame source at
startup is fatal.

Examples:
  face-sentry watch /var/frames
  face-sentry watch /var/frames --interval 2`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Int("interval", 0, "Seconds to pause between frames (0 = no pause)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval := mustGetInt(cmd, "interval")
	d := initDeps()

	// The one fatal condition: no frame source at startup.
	source, err := vision.NewDirSource(args[0])
	if err != nil {
		return err
	}
	defer source.Close()

	ctx := context.Background()
	threshold := d.store.Settings().RecognitionThreshold
	records := d.store.Records()
	frameNo := 0

	for {
		frame, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Printf("frame %d: unreadable, skipping (%v)\n", frameNo+1, err)
			frameNo++
			continue
		}
		frameNo++

		detections, err := d.client.Detect(ctx, frame)
		if err != nil {
			fmt.Printf("frame %d: detection failed: %v\n", frameNo, err)
			continue
		}

		for i, det := range detections {
			vec, err := d.client.Embed(ctx, vision.ExtractFace(frame, det.Box, d.cfg.Rules.Crop))
			if err != nil {
				fmt.Printf("frame %d face %d: embedding failed: %v\n", frameNo, i+1, err)
				continue
			}
			if best := match.FindBestMatch(vec, records, threshold); best != nil {
				fmt.Printf("frame %d face %d: %s (%.4f)\n", frameNo, i+1, best.Name, best.Score)
			} else {
				fmt.Printf("frame %d face %d: unknown\n", frameNo, i+1)
			}
		}

		if interval > 0 {
			time.Sleep(time.Duration(interval) * time.Second)
		}
	}

	fmt.Printf("Processed %d frames.\n", frameNo)
	return nil
}
