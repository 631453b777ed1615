package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "citegraph",
	Short: "News-source / Twitter-author citation analysis",
	Long:  "Collects Twitter profile data for tweet authors embedded in news articles, joins it against a NELA article database, and builds co-citation and bipartite graphs between sources and cited authors.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
