package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/architeketh/retail-trends-bot/internal/config"
	"github.com/architeketh/retail-trends-bot/internal/fsutil"
	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/pipeline"
)

var (
	flagPruneKeep      int
	flagPruneOlderThan string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or prune the stored history",
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Close()
		st, err := openStores(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Backend: %s\n", backendName(cfg))
		fmt.Fprintf(out, "Directory: %s\n", cfg.HistoryDir())

		tokens, brands, err := st.loadForView(log)
		if err != nil {
			return err
		}
		printSeriesStats(out, pipeline.SeriesTokens, tokens)
		printSeriesStats(out, pipeline.SeriesBrands, brands)

		for _, path := range historyFiles(cfg) {
			if info, err := os.Stat(path); err == nil {
				fmt.Fprintf(out, "Size: %s (%s)\n", formatBytes(info.Size()), filepath.Base(path))
			}
		}
		if st.db != nil {
			if last, err := st.db.LastRun(); err == nil {
				fmt.Fprintf(out, "Last saved: %s ago\n", formatDuration(time.Since(last)))
			}
		}
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop the oldest days from both history series",
	Long: `Drop old dates from each history series.

--older-than removes every date more than that long before today, whatever
is stored around it. --keep keeps only the newest N stored dates. With
neither flag the retention value from config (default: 400d) is used as
--keep.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Close()

		keep := flagPruneKeep
		var cutoff time.Time
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			days := int(d.Hours() / 24)
			if days < 1 {
				return fmt.Errorf("--older-than must be at least one day, got %s", flagPruneOlderThan)
			}
			today, err := resolveToday(cfg, "", time.Now())
			if err != nil {
				return err
			}
			cutoff = today.AddDate(0, 0, -days)
		} else if keep <= 0 {
			keep = cfg.RetentionDays()
		}
		if keep <= 0 && cutoff.IsZero() {
			return fmt.Errorf("retention must keep at least one day, got %d", keep)
		}

		lock, err := fsutil.Acquire(lockPath(cfg))
		if err != nil {
			return err
		}
		defer lock.Release()

		st, err := openStores(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		for _, s := range []struct {
			name  string
			store history.Store
		}{
			{pipeline.SeriesTokens, st.tokens},
			{pipeline.SeriesBrands, st.brands},
		} {
			series, err := s.store.Load()
			if err != nil {
				return fmt.Errorf("loading %s history: %w", s.name, err)
			}
			dropped := pruneSeries(series, keep, cutoff)
			if len(dropped) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: nothing to prune.\n", s.name)
				continue
			}
			if err := s.store.Save(series); err != nil {
				return fmt.Errorf("saving %s history: %w", s.name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: pruned %d day(s) through %s.\n", s.name, len(dropped), dropped[len(dropped)-1])
		}
		return nil
	},
}

// pruneSeries drops the dates before cutoff, when set, then keeps the
// newest keep dates, when positive. Dropped dates come back oldest first.
func pruneSeries(s history.Series, keep int, cutoff time.Time) []string {
	var dropped []string
	if !cutoff.IsZero() {
		dropped = s.DropBefore(cutoff)
	}
	if keep > 0 {
		dropped = append(dropped, s.Trim(keep)...)
	}
	return dropped
}

func init() {
	pruneCmd.Flags().IntVar(&flagPruneKeep, "keep", 0, "number of newest stored dates to keep")
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "drop dates older than this, counted back from today (e.g., 30d, 720h)")

	historyCmd.AddCommand(statsCmd)
	historyCmd.AddCommand(pruneCmd)
}

func backendName(cfg *config.Config) string {
	if cfg.History.Backend == "sqlite" {
		return "sqlite"
	}
	return "json"
}

func historyFiles(cfg *config.Config) []string {
	dir := cfg.HistoryDir()
	if cfg.History.Backend == "sqlite" {
		return []string{filepath.Join(dir, sqliteFile)}
	}
	return []string{filepath.Join(dir, tokensFile), filepath.Join(dir, brandsFile)}
}

func printSeriesStats(w io.Writer, name string, s history.Series) {
	dates := s.Dates()
	if len(dates) == 0 {
		fmt.Fprintf(w, "%s: empty\n", name)
		return
	}
	keys := make(map[string]struct{})
	total := 0
	for _, c := range s {
		for k := range c {
			keys[k] = struct{}{}
		}
		total += c.Total()
	}
	fmt.Fprintf(w, "%s: %d day(s) from %s to %s, %d distinct, %d total\n",
		name, len(dates), dates[0], dates[len(dates)-1], len(keys), total)
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
