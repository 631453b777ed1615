package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/citation"
	"github.com/nela-research/citegraph/internal/collector"
	"github.com/nela-research/citegraph/internal/model"
	"github.com/nela-research/citegraph/internal/profile"
	"github.com/nela-research/citegraph/internal/store"
	"github.com/nela-research/citegraph/pkg/twitter"
)

// openDatabase opens the NELA database from the flag value or config.
func openDatabase(flagPath string) (*store.Store, error) {
	path := flagPath
	if path == "" {
		path = cfg.Data.Database
	}
	if path == "" {
		return nil, eris.New("database path is required (--db or CITEGRAPH_DATA_DATABASE)")
	}
	return store.Open(path)
}

// loadLabelTable loads the source label table; a missing file is
// tolerated with a warning since graphs degrade to unlabeled nodes.
func loadLabelTable(path string) map[string]model.SourceLabel {
	if path == "" {
		path = cfg.Data.Labels
	}
	labels, err := profile.LoadLabels(path)
	if err != nil {
		zap.L().Warn("label table unavailable, nodes will be unlabeled",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}
	return labels
}

// loadProfileCache loads the combined user-profile cache; a missing
// file is tolerated since builders substitute neutral defaults.
func loadProfileCache(path string) map[string]model.UserProfile {
	if path == "" {
		path = cfg.Data.UserData
	}
	if _, err := os.Stat(path); err != nil {
		zap.L().Warn("profile cache unavailable, using neutral defaults",
			zap.String("path", path),
		)
		return nil
	}
	profiles, err := profile.LoadProfiles(path)
	if err != nil {
		zap.L().Warn("profile cache unreadable, using neutral defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}
	return profiles
}

// newTwitterClient builds an API client from config. The bearer token is
// the only hard requirement.
func newTwitterClient() (twitter.Client, error) {
	if cfg.Twitter.BearerToken == "" {
		return nil, eris.New("twitter bearer token is required (CITEGRAPH_TWITTER_BEARER_TOKEN)")
	}
	var opts []twitter.Option
	if cfg.Twitter.BaseURL != "" {
		opts = append(opts, twitter.WithBaseURL(cfg.Twitter.BaseURL))
	}
	return twitter.NewClient(cfg.Twitter.BearerToken, opts...), nil
}

// citedAuthors extracts the distinct author handles cited by the
// database, sorted, with the unknown sentinel and exclusions removed.
func citedAuthors(ctx context.Context, st *store.Store, exclude map[string]struct{}) ([]string, error) {
	events, err := st.LoadCitations(ctx, nil)
	if err != nil {
		return nil, err
	}
	index := citation.BuildIndex(events, citation.IndexOptions{ExcludeAuthors: exclude})
	var out []string
	for _, a := range index.AuthorNames() {
		if a == model.UnknownAuthor {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// collectorConfig merges the collect config with an out-dir override.
func collectorConfig(outDir string) collector.Config {
	if outDir == "" {
		outDir = cfg.Collect.OutDir
	}
	return collector.Config{
		OutDir:    outDir,
		BatchSize: cfg.Collect.BatchSize,
		Cooldown:  cfg.Collect.Cooldown,
	}
}

// openCheckpointStore opens (and migrates) the sqlite database holding
// pagination checkpoints.
func openCheckpointStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(cfg.Collect.CheckpointDB)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func excludeSet(authors []string) map[string]struct{} {
	if len(authors) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(authors))
	for _, a := range authors {
		out[a] = struct{}{}
	}
	return out
}
