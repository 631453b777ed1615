package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/stats"
	"github.com/nela-research/citegraph/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate embedded-tweet counts across yearly databases",
	Long: `Counts embedded tweets, tweet-bearing articles, and total articles
per source across one or more yearly NELA databases, writes the table as
CSV, and prints a per-year summary splitting tweet usage by source
credibility.

Databases are given as year=path pairs and may be repeated.

Examples:
  stats --db 2019=nela-gt-2019.db --db 2020=nela-gt-2020.db --output results/stats.csv
  stats --db 2020=nela-gt-2020.db --output stats.csv --active-only`,
	RunE: runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringSlice("db", nil, "year=path pair for a NELA database (repeatable, required)")
	f.String("output", "", "output CSV path (required)")
	f.Bool("active-only", false, "drop sources without tweets in every year")
	_ = statsCmd.MarkFlagRequired("db")
	_ = statsCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := zap.L().With(zap.String("command", "stats"))

	dbSpecs, _ := cmd.Flags().GetStringSlice("db")
	output, _ := cmd.Flags().GetString("output")
	activeOnly, _ := cmd.Flags().GetBool("active-only")

	stores := make(map[string]*store.Store, len(dbSpecs))
	defer func() {
		for _, st := range stores {
			st.Close()
		}
	}()
	for _, spec := range dbSpecs {
		year, path, ok := strings.Cut(spec, "=")
		if !ok || year == "" || path == "" {
			return eris.Errorf("invalid --db value %q (want year=path)", spec)
		}
		st, err := store.Open(path)
		if err != nil {
			return err
		}
		stores[year] = st
	}

	table, err := stats.Collect(ctx, stores)
	if err != nil {
		return err
	}
	if activeOnly {
		table.DropZeroSources()
	}

	f, err := os.Create(output)
	if err != nil {
		return eris.Wrap(err, "create stats output")
	}
	defer f.Close()
	if err := table.WriteCSV(f); err != nil {
		return err
	}

	labels := loadLabelTable("")
	out := cmd.OutOrStdout()
	for _, s := range table.Summarize(labels) {
		fmt.Fprintf(out, "%s: %d articles, %d with tweets (%d tweets); reliable %.1f%% (%d sources), unreliable %.1f%% (%d sources)\n",
			s.Year, s.Articles, s.TweetArticles, s.Tweets,
			s.ReliablePct, s.ReliableCount,
			s.UnreliablePct, s.UnreliableCount,
		)
	}

	log.Info("stats written",
		zap.String("output", output),
		zap.Int("sources", len(table.Rows)),
		zap.Strings("years", table.Years),
	)
	return nil
}
