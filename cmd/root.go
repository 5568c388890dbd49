package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/architeketh/retail-trends-bot/internal/config"
	"github.com/architeketh/retail-trends-bot/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "retail-trends",
	Short: "Retail headline keyword, brand and category trends",
	Long: `retail-trends fetches retail news headlines, counts keywords and brand
mentions per day, keeps a rolling history and reports the top entries for
today, week to date, the last 7 days, month to date and year to date.`,
	SilenceUsage: true,
	RunE:         runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dashboardCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "retail-trends %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// setup loads the config and builds the logger every command shares. The
// caller closes the logger.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	log, err := logging.New(level, cfg.Log.File, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	return cfg, log, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
