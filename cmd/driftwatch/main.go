// driftwatch detects data and performance drift between a reference
// dataset and live traffic, classifies the result into alerts, and serves
// fraud predictions from the trained model.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// version is overridden at build time with -ldflags.
var version = "dev"

var (
	flagConfig   string
	flagLogLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driftwatch",
		Short: "Drift detection and alerting for fraud models",
		Long: `driftwatch compares reference and current datasets feature by
feature, flags statistically significant drift, tracks model performance
degradation, and turns the results into severity-classified alerts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(flagLogLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config/config.yaml", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newTrainCmd(),
		newDetectCmd(),
		newServeCmd(),
		newScheduleCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = log.Output(os.Stderr)
	}
	return nil
}
