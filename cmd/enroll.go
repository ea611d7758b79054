package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/face-sentry/face-sentry/internal/enroll"
	"github.com/face-sentry/face-sentry/internal/vision"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image>",
	Short: "Enroll the largest face in a captured frame",
	Long: `Enroll one identity from a frozen frame. The largest detected face is
selected, you are prompted for a name, and the gallery is saved immediately
after a successful enrollment.

Examples:
  face-sentry enroll frame.jpg
  face-sentry enroll frame.jpg --name "Alice"`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

var enrollAllCmd = &cobra.Command{
	Use:   "enroll-all <image>",
	Short: "Enroll every face in a captured frame",
	Long: `Walk all detected faces in a frozen frame in detector order. Each face is
reported with its position and quality, and you are prompted for a name;
answer empty or "skip" to skip a face. The gallery is saved once at the end
if at least one face was enrolled.

Examples:
  face-sentry enroll-all group.jpg
  face-sentry enroll-all group.jpg --names "Alice,skip,Bob"`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrollAll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(enrollAllCmd)

	enrollCmd.Flags().String("name", "", "Name to enroll without prompting")
	enrollAllCmd.Flags().StringSlice("names", nil, "Names per face in detector order (use \"skip\" to skip)")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")

	var prompter enroll.Prompter = newConsolePrompter(os.Stdin, os.Stdout)
	if name != "" {
		prompter = &listPrompter{names: []string{name}}
	}

	return runEnrollSession(args[0], prompter, false)
}

func runEnrollAll(cmd *cobra.Command, args []string) error {
	names := mustGetStringSlice(cmd, "names")

	var prompter enroll.Prompter = newConsolePrompter(os.Stdin, os.Stdout)
	if len(names) > 0 {
		prompter = &listPrompter{names: names}
	}

	return runEnrollSession(args[0], prompter, true)
}

func runEnrollSession(imagePath string, prompter enroll.Prompter, multi bool) error {
	d := initDeps()

	frame, err := vision.LoadFrame(imagePath)
	if err != nil {
		return err
	}

	session := enroll.NewSession(&enroll.Workflow{
		Store:    d.store,
		Detector: d.client,
		Embedder: d.client,
		Prompter: prompter,
		Rules:    d.cfg.Rules,
	})
	if multi {
		err = session.BeginMultiEnroll()
	} else {
		err = session.BeginSingleEnroll()
	}
	if err != nil {
		return err
	}

	summary, err := session.Capture(context.Background(), frame)
	if errors.Is(err, enroll.ErrNoFaces) {
		fmt.Println("No faces detected in the frame, nothing enrolled.")
		return nil
	}
	if err != nil {
		return err
	}

	printEnrollSummary(summary)
	return nil
}

func printEnrollSummary(s *enroll.Summary) {
	for _, r := range s.Results {
		switch r.Status {
		case enroll.StatusEnrolled:
			fmt.Printf("Face %d (%s): enrolled as %q\n", r.Index+1, r.Position, r.Name)
		case enroll.StatusSkipped:
			fmt.Printf("Face %d (%s): skipped\n", r.Index+1, r.Position)
		case enroll.StatusDeclined:
			fmt.Printf("Face %d (%s): duplicate %q declined\n", r.Index+1, r.Position, r.Name)
		case enroll.StatusFailed:
			fmt.Fprintf(os.Stderr, "Face %d (%s): failed: %s\n", r.Index+1, r.Position, r.Reason)
		}
		if !r.Quality.Good {
			for _, reason := range r.Quality.Reasons {
				fmt.Printf("  quality: %s\n", reason)
			}
		}
	}

	fmt.Printf("\nEnrolled %d/%d faces (gallery: %d -> %d records)\n",
		s.Succeeded, s.Total, s.CountBefore, s.CountAfter)
	if s.SaveErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: gallery not saved: %v\n", s.SaveErr)
	}
}
