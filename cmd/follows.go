package main

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/collector"
	"github.com/nela-research/citegraph/internal/model"
	"github.com/nela-research/citegraph/pkg/twitter"
)

var followsCmd = &cobra.Command{
	Use:   "follows",
	Short: "Collect follower or following lists for cached profiles",
	Long: `Paginates the follower (or following) listing of each profile in
the user-data cache, writing pages as JSON shards named
<user-id>-<endpoint>-<shard>.json.

Pagination progress is checkpointed in a local sqlite database after
every page, so a run interrupted by rate limits or a restart resumes
from the last continuation token instead of starting over.

Examples:
  follows --direction followers --handles WHO,CDCgov
  follows --direction following --user-data user_data/user_data.json`,
	RunE: runFollows,
}

func init() {
	f := followsCmd.Flags()
	f.String("direction", "followers", "follow relation: followers or following")
	f.String("user-data", "", "path to profile cache JSON (overrides config)")
	f.StringSlice("handles", nil, "restrict to these handles (default: all cached)")
	f.String("out-dir", "", "directory for collected JSON shards (overrides config)")

	rootCmd.AddCommand(followsCmd)
}

func runFollows(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := zap.L().With(zap.String("command", "follows"))

	direction, _ := cmd.Flags().GetString("direction")
	userDataPath, _ := cmd.Flags().GetString("user-data")
	handles, _ := cmd.Flags().GetStringSlice("handles")
	outDir, _ := cmd.Flags().GetString("out-dir")

	var endpoint twitter.FollowEndpoint
	switch direction {
	case "followers":
		endpoint = twitter.EndpointFollowers
	case "following":
		endpoint = twitter.EndpointFollowing
	default:
		return eris.Errorf("unknown direction %q (want followers or following)", direction)
	}

	profiles := loadProfileCache(userDataPath)
	if len(profiles) == 0 {
		return eris.New("no cached profiles; run collect and combine first")
	}

	users := selectUsers(profiles, handles)
	if len(users) == 0 {
		return eris.New("none of the requested handles are in the profile cache")
	}
	log.Info("collecting follow lists",
		zap.String("direction", direction),
		zap.Int("users", len(users)),
	)

	api, err := newTwitterClient()
	if err != nil {
		return err
	}
	checkpoints, err := openCheckpointStore(ctx)
	if err != nil {
		return err
	}
	defer checkpoints.Close()

	col := collector.New(api, checkpoints, collectorConfig(outDir))
	return col.CollectFollows(ctx, users, endpoint)
}

// selectUsers picks the cached profiles to paginate, in stable handle
// order. An empty handle list selects the whole cache.
func selectUsers(profiles map[string]model.UserProfile, handles []string) []model.UserProfile {
	if len(handles) == 0 {
		handles = make([]string, 0, len(profiles))
		for h := range profiles {
			handles = append(handles, h)
		}
	}
	sort.Strings(handles)

	var out []model.UserProfile
	for _, h := range handles {
		if p, ok := profiles[h]; ok && p.ID != "" {
			out = append(out, p)
		}
	}
	return out
}
