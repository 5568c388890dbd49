package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/architeketh/retail-trends-bot/internal/classify"
	"github.com/architeketh/retail-trends-bot/internal/report"
	"github.com/architeketh/retail-trends-bot/internal/tui"
)

var flagDashboardDate string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Browse trends and categorized headlines interactively",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&flagDashboardDate, "date", "", "view as of this date (YYYY-MM-DD)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Close()
	today, err := resolveToday(cfg, flagDashboardDate, time.Now())
	if err != nil {
		return err
	}

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, buckets, err := loadView(cfg, st, today, log)
	if err != nil {
		return fmt.Errorf("loading dashboard data: %w", err)
	}

	// The dashboard owns the terminal; only the log file, if any, gets lines.
	log.FileOnly()

	return tui.Run(tui.RunOpts{
		Snapshot: snap,
		Buckets:  buckets,
		Reload: func() (report.Snapshot, classify.Buckets, error) {
			return loadView(cfg, st, today, log)
		},
	})
}
