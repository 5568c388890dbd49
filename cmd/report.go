package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/report"
)

var (
	flagReportDate   string
	flagReportWindow string
	flagReportSeries string
	flagReportJSON   bool
	flagReportTop    int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print ranked keywords and brands from history",
	Long: `Aggregate the stored history over one or all windows and print the top
entries. Nothing is written.

Windows: today, week (ISO week to date), rolling7 (or rollingN), month, year.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Close()
		today, err := resolveToday(cfg, flagReportDate, time.Now())
		if err != nil {
			return err
		}

		builder := newBuilder(cfg)
		if flagReportTop > 0 {
			builder.TopK = flagReportTop
		}
		if flagReportWindow != "" {
			w, err := history.ResolveWindow(flagReportWindow)
			if err != nil {
				return err
			}
			builder.Windows = []history.Window{w}
		}
		switch flagReportSeries {
		case "all", "keywords", "brands":
		default:
			return fmt.Errorf("unknown --series %q (valid: all, keywords, brands)", flagReportSeries)
		}

		st, err := openStores(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		tokens, brands, err := st.loadForView(log)
		if err != nil {
			return err
		}

		snap := builder.Build(tokens, brands, today)
		if flagReportJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		return printSnapshot(cmd.OutOrStdout(), snap, flagReportSeries)
	},
}

func init() {
	reportCmd.Flags().StringVar(&flagReportDate, "date", "", "report as of this date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&flagReportWindow, "window", "", "only this window (today, week, rolling7, month, year)")
	reportCmd.Flags().StringVar(&flagReportSeries, "series", "all", "keywords, brands or all")
	reportCmd.Flags().IntVar(&flagReportTop, "top", 0, "entries per list (default from config)")
	reportCmd.Flags().BoolVar(&flagReportJSON, "json", false, "print the snapshot as JSON")
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

func printSnapshot(w io.Writer, snap report.Snapshot, series string) error {
	for i, win := range snap.Windows {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s to %s, %d day(s) of data)\n", win.Label, win.From, win.To, win.Days)

		var lists []struct {
			name    string
			entries []history.Entry
		}
		if series != "brands" {
			lists = append(lists, struct {
				name    string
				entries []history.Entry
			}{"keyword", win.Keywords})
		}
		if series != "keywords" {
			lists = append(lists, struct {
				name    string
				entries []history.Entry
			}{"brand", win.Brands})
		}

		for _, l := range lists {
			if len(l.entries) == 0 {
				fmt.Fprintf(w, "  no %s data\n", l.name)
				continue
			}
			if err := renderEntries(w, l.name, l.entries); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderEntries(w io.Writer, name string, entries []history.Entry) error {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Key, strconv.Itoa(e.Count)})
	}
	table := newTable(w)
	table.Header([]string{"#", name, "count"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
