package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/collector"
	"github.com/nela-research/citegraph/internal/profile"
)

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List cited authors that have no cached profile",
	Long: `Diffs the authors cited in the database against the user-data
cache and prints the handles that are still unresolved. Handles go
missing when accounts are suspended, renamed, or when a collection run
was interrupted before its last flush.

With --collect the missing handles are re-collected immediately instead
of just listed.

Examples:
  missing --db nela-gt-2020.db
  missing --db nela-gt-2020.db --collect --out-dir user_data/retry`,
	RunE: runMissing,
}

func init() {
	f := missingCmd.Flags()
	f.String("db", "", "path to NELA sqlite database (overrides config)")
	f.String("user-data", "", "path to profile cache JSON (overrides config)")
	f.Bool("collect", false, "collect the missing profiles instead of listing them")
	f.String("out-dir", "", "directory for collected JSON shards (overrides config)")
	f.StringSlice("exclude-authors", nil, "author handles to skip")

	rootCmd.AddCommand(missingCmd)
}

func runMissing(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := zap.L().With(zap.String("command", "missing"))

	dbPath, _ := cmd.Flags().GetString("db")
	userDataPath, _ := cmd.Flags().GetString("user-data")
	collectMissing, _ := cmd.Flags().GetBool("collect")
	outDir, _ := cmd.Flags().GetString("out-dir")
	exclude, _ := cmd.Flags().GetStringSlice("exclude-authors")

	st, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	authors, err := citedAuthors(ctx, st, excludeSet(exclude))
	if err != nil {
		return err
	}
	profiles := loadProfileCache(userDataPath)
	missing := profile.Missing(profiles, authors)

	log.Info("compared cache against citations",
		zap.Int("cited", len(authors)),
		zap.Int("cached", len(profiles)),
		zap.Int("missing", len(missing)),
	)

	if !collectMissing {
		for _, h := range missing {
			fmt.Fprintln(cmd.OutOrStdout(), h)
		}
		return nil
	}

	api, err := newTwitterClient()
	if err != nil {
		return err
	}
	col := collector.New(api, nil, collectorConfig(outDir))
	n, err := col.CollectUsers(ctx, missing)
	if err != nil {
		return err
	}
	log.Info("re-collection complete",
		zap.Int("profiles", n),
		zap.Int("requested", len(missing)),
	)
	return nil
}
