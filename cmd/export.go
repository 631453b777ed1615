package main

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/citation"
	"github.com/nela-research/citegraph/internal/profile"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export per-citation records joined with author profiles as CSV",
	Long: `Writes one CSV row per embedded tweet: the article rowid, the
tweet URL, the citing source, the extracted author handle, and the
author's follower/following/tweet counts from the profile cache.
Profile columns are left empty for authors without a cached profile.

Examples:
  export --db nela-gt-2020.db --output results/citations.csv
  export --db nela-gt-2020.db --rowid covid-rowids.csv --output covid.csv`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("db", "", "path to NELA sqlite database (overrides config)")
	f.String("output", "", "output CSV path (required)")
	f.String("rowid", "", "CSV of article rowids to restrict the tweet set")
	f.String("user-data", "", "path to profile cache JSON (overrides config)")
	_ = exportCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dbPath, _ := cmd.Flags().GetString("db")
	output, _ := cmd.Flags().GetString("output")
	rowidPath, _ := cmd.Flags().GetString("rowid")
	userDataPath, _ := cmd.Flags().GetString("user-data")

	st, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var rowIDs map[string]struct{}
	if rowidPath != "" {
		if rowIDs, err = profile.LoadRowIDs(rowidPath); err != nil {
			return err
		}
	}

	events, err := st.LoadCitations(ctx, rowIDs)
	if err != nil {
		return err
	}
	profiles := loadProfileCache(userDataPath)

	f, err := os.Create(output)
	if err != nil {
		return eris.Wrap(err, "create export output")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"rowid", "url", "source", "author", "followers", "following", "tweet_count"}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "write export header")
	}

	for _, ev := range events {
		author := citation.AuthorFromURL(ev.URL)
		rec := []string{
			strconv.FormatInt(ev.RowID, 10),
			ev.URL,
			ev.Source,
			author,
			"", "", "",
		}
		if p, ok := profiles[author]; ok {
			rec[4] = strconv.Itoa(p.PublicMetrics.Followers)
			rec[5] = strconv.Itoa(p.PublicMetrics.Following)
			rec[6] = strconv.Itoa(p.PublicMetrics.TweetCount)
		}
		if err := w.Write(rec); err != nil {
			return eris.Wrap(err, "write export row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "flush export")
	}

	zap.L().Info("citation export written",
		zap.String("command", "export"),
		zap.String("output", output),
		zap.Int("citations", len(events)),
	)
	return nil
}
