package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/profile"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Merge collected JSON shards into a single profile cache",
	Long: `Merges the JSON shards a collection run flushed into the single
handle-keyed cache the graph builders read. Shards are merged in name
order, so profiles re-collected later overwrite earlier copies.

Examples:
  combine --dir user_data/2020 --output user_data/user_data.json`,
	RunE: runCombine,
}

func init() {
	f := combineCmd.Flags()
	f.String("dir", "", "shard directory (default: collect out-dir)")
	f.String("output", "", "combined cache path (default: data user-data path)")

	rootCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	output, _ := cmd.Flags().GetString("output")
	if dir == "" {
		dir = cfg.Collect.OutDir
	}
	if output == "" {
		output = cfg.Data.UserData
	}

	merged, err := profile.MergeShards(dir)
	if err != nil {
		return err
	}
	if err := profile.SaveProfiles(output, merged); err != nil {
		return err
	}

	zap.L().Info("combined profile cache written",
		zap.String("command", "combine"),
		zap.String("output", output),
		zap.Int("profiles", len(merged)),
	)
	return nil
}
