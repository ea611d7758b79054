package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/face-sentry/face-sentry/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "face-sentry",
	Short: "Identify people in captured frames against an enrolled face gallery",
	Long: `Face Sentry matches face embeddings from captured video frames against a
persistent gallery of enrolled identities. Detection and embedding run on an
external vision service; this tool owns the gallery, the matching, and the
enrollment, diagnostic and backup workflows around it.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	level, err := log.ParseLevel(config.Load().Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
