package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/citation"
	"github.com/nela-research/citegraph/internal/model"
)

var articlesCmd = &cobra.Command{
	Use:   "articles <tweet-url>",
	Short: "Look up the articles that embed a given tweet",
	Long: `Prints the articles embedding the given tweet URL, grouped by the
credibility of the citing source. Matches both the exact URL and its
query-stripped form, since databases store either.

Examples:
  articles "https://twitter.com/WHO/status/1237777021742338049"`,
	Args: cobra.ExactArgs(1),
	RunE: runArticles,
}

func init() {
	f := articlesCmd.Flags()
	f.String("db", "", "path to NELA sqlite database (overrides config)")

	rootCmd.AddCommand(articlesCmd)
}

func runArticles(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rawURL := args[0]

	dbPath, _ := cmd.Flags().GetString("db")

	st, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	articles, err := st.ArticlesForTweet(ctx, rawURL, citation.CleanURL(rawURL))
	if err != nil {
		return err
	}
	labels := loadLabelTable("")

	zap.L().Info("tweet lookup",
		zap.String("command", "articles"),
		zap.String("author", citation.AuthorFromURL(rawURL)),
		zap.Int("articles", len(articles)),
	)

	out := cmd.OutOrStdout()
	for _, cred := range []model.Credibility{
		model.CredibilityReliable,
		model.CredibilityUnreliable,
		model.CredibilityUnlabeled,
	} {
		for _, a := range articles {
			if sourceCredibility(labels, a.Source) != cred {
				continue
			}
			fmt.Fprintf(out, "[%s] %s: %s (%s)\n", cred, a.Source, a.Title, a.URL)
		}
	}
	return nil
}

func sourceCredibility(labels map[string]model.SourceLabel, source string) model.Credibility {
	if l, ok := labels[source]; ok && l.Credibility != "" {
		return l.Credibility
	}
	return model.CredibilityUnlabeled
}
