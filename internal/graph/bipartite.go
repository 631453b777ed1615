package graph

import (
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/citation"
	"github.com/nela-research/citegraph/internal/model"
)

// BuildBipartite produces the source-author interaction graph directly
// from citation events. Each citation accumulates edge weight between
// the source and the tweet author: 1/log(followers) when Scaling is on
// (so high-reach authors contribute less per citation), 1 otherwise.
// Authors without collected profiles default to 1 follower/following/
// tweet. After thresholding, twitter nodes with degree below MinDegree
// are pruned to drop low-signal single-citation accounts.
func BuildBipartite(events []model.CitationEvent, profiles map[string]model.UserProfile,
	labels map[string]model.SourceLabel, cfg Config) *Graph {

	g := New()
	type pair struct{ author, source string }
	weights := make(map[pair]float64)

	for _, ev := range events {
		author := citation.AuthorFromURL(ev.URL)
		if author == model.UnknownAuthor {
			continue
		}
		if _, skip := cfg.ExcludeAuthors[author]; skip {
			continue
		}

		profile, ok := profiles[author]
		if !ok {
			profile = model.UserProfile{
				Username: author,
				PublicMetrics: model.PublicMetrics{
					Followers: 1, Following: 1, TweetCount: 1,
				},
			}
		}

		g.AddNode(author, NodeAttrs{
			Class:      ClassTwitter,
			Followers:  profile.PublicMetrics.Followers,
			Following:  profile.PublicMetrics.Following,
			TweetCount: profile.PublicMetrics.TweetCount,
		})

		srcAttrs := NodeAttrs{Class: ClassNews, Credibility: model.CredibilityUnlabeled}
		if lbl, ok := labels[ev.Source]; ok {
			srcAttrs.Credibility = lbl.Credibility
			srcAttrs.Bias = lbl.Bias
		}
		g.AddNode(ev.Source, srcAttrs)

		w := 1.0
		if cfg.Scaling {
			w = followerScale(profile)
		}
		weights[pair{author: author, source: ev.Source}] += w
	}

	scores := make([]float64, 0, len(weights))
	for _, w := range weights {
		scores = append(scores, w)
	}
	threshold := resolveThreshold(cfg, scores)
	zap.L().Debug("bipartite weights",
		zap.Int("pairs", len(weights)),
		zap.Float64("threshold", threshold),
	)

	for p, w := range weights {
		if w > threshold {
			_ = g.AddEdge(p.author, p.source, w)
		}
	}

	for _, id := range g.Nodes() {
		attrs, _ := g.Attrs(id)
		if attrs.Class == ClassTwitter && g.Degree(id) < cfg.MinDegree {
			g.RemoveNode(id)
		}
	}
	return g
}
