package main // Entry point package

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Movie review catalog",
	Long:          `Serve the movie review catalog over HTTP, or run a sample review session and print its reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
