package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/architeketh/retail-trends-bot/internal/fsutil"
	"github.com/architeketh/retail-trends-bot/internal/pipeline"
)

var (
	flagRunDate   string
	flagRunInput  string
	flagRunDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Count today's headlines and update history and outputs",
	Long: `Read the headlines document, count keywords and brands, replace today's
entry in both history series, trim them to the retention horizon and write
report.json, categorized.json and headlines.json.

Running again on the same date replaces that date's entry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Close()

		today, err := resolveToday(cfg, flagRunDate, time.Now())
		if err != nil {
			return err
		}
		input := cfg.InputPath()
		if flagRunInput != "" {
			input = flagRunInput
		}

		if !flagRunDryRun {
			lock, err := fsutil.Acquire(lockPath(cfg))
			if err != nil {
				return err
			}
			defer lock.Release()
		}

		st, err := openStores(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := newPipeline(cfg, st, log)
		if err != nil {
			return err
		}
		res, err := p.Run(pipeline.Options{Today: today, Input: input, DryRun: flagRunDryRun})
		if err != nil {
			return err
		}

		for _, s := range res.Series {
			log.WithFields(logrus.Fields{
				"series":   s.Name,
				"retained": s.Retained,
				"trimmed":  len(s.Dropped),
				"reset":    s.Reset,
			}).Info("history updated")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d headlines, %d keywords, %d brands, %d categories\n",
			res.Date, res.Counts.Records, len(res.Counts.Tokens), len(res.Counts.Brands), res.Buckets.Len())
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&flagRunDate, "date", "", "run as of this date (YYYY-MM-DD) instead of today")
	runCmd.Flags().StringVar(&flagRunInput, "input", "", "headlines document to read (default from config)")
	runCmd.Flags().BoolVar(&flagRunDryRun, "dry-run", false, "compute everything but write nothing")
}
