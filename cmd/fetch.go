package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/architeketh/retail-trends-bot/internal/feed"
	"github.com/architeketh/retail-trends-bot/internal/headline"
)

var (
	flagFetchOutput  string
	flagFetchTimeout time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch enabled feeds into the headlines document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Close()

		sources := cfg.EnabledSources()
		log.WithField("sources", len(sources)).Info("fetching feeds")

		ctx, cancel := context.WithTimeout(cmd.Context(), flagFetchTimeout)
		defer cancel()
		result := feed.FetchAll(ctx, feed.NewRSSFetcher(), sources, cfg.GetPerFeedLimit())

		for _, e := range result.Errors {
			log.WithError(e).Warn("feed failed")
		}
		if len(result.Records) == 0 && len(result.Errors) > 0 {
			return fmt.Errorf("all %d feed(s) failed", len(result.Errors))
		}

		out := cfg.InputPath()
		if flagFetchOutput != "" {
			out = flagFetchOutput
		}
		if err := headline.Save(out, result.Document(time.Now())); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d headlines to %s\n", len(result.Records), out)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&flagFetchOutput, "output", "", "where to write the document (default from config)")
	fetchCmd.Flags().DurationVar(&flagFetchTimeout, "timeout", 30*time.Second, "overall fetch timeout")
}
