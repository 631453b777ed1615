package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/collector"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect Twitter profiles for every author cited in the database",
	Long: `Resolves the author handle of each embedded tweet in the NELA
database to a full Twitter profile, writing results as JSON shards under
the output directory.

The API allows 100 handles per request; a 429 flushes whatever has been
collected so far and pauses for the rate-limit window before retrying,
so long runs can be left unattended. Use combine afterwards to merge the
shards into a single cache.

Examples:
  collect --db nela-gt-2020.db --out-dir user_data/2020
  collect --db nela-gt-2020.db --exclude-authors intent,hashtag`,
	RunE: runCollect,
}

func init() {
	f := collectCmd.Flags()
	f.String("db", "", "path to NELA sqlite database (overrides config)")
	f.String("out-dir", "", "directory for collected JSON shards (overrides config)")
	f.StringSlice("exclude-authors", nil, "author handles to skip")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := zap.L().With(zap.String("command", "collect"))

	dbPath, _ := cmd.Flags().GetString("db")
	outDir, _ := cmd.Flags().GetString("out-dir")
	exclude, _ := cmd.Flags().GetStringSlice("exclude-authors")

	st, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	handles, err := citedAuthors(ctx, st, excludeSet(exclude))
	if err != nil {
		return err
	}
	log.Info("resolved cited authors", zap.Int("handles", len(handles)))

	api, err := newTwitterClient()
	if err != nil {
		return err
	}

	col := collector.New(api, nil, collectorConfig(outDir))
	n, err := col.CollectUsers(ctx, handles)
	if err != nil {
		return err
	}

	log.Info("collection complete",
		zap.Int("profiles", n),
		zap.Int("handles", len(handles)),
	)
	return nil
}
