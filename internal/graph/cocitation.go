package graph

import (
	"math"

	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/citation"
	"github.com/nela-research/citegraph/internal/model"
)

const logEpsilon = 1e-6

// followerScale returns the per-author discount 1/log(followers).
// Popular authors carry less distinctive signal, so their contribution
// shrinks with reach. Follower counts are floored at 1 before the log.
func followerScale(p model.UserProfile) float64 {
	followers := p.PublicMetrics.Followers
	if followers < 1 {
		followers = 1
	}
	return 1 / math.Log(float64(followers)+logEpsilon)
}

type scoredPair struct {
	u, v  string
	score float64
}

// BuildCoCitation produces the source-source similarity graph from a
// citation index. Every unordered source pair is scored with the
// configured metric; pairs with no common cited author score zero and
// never become edges. Surviving nodes carry credibility and bias
// attributes from the label table, defaulting to unlabeled.
func BuildCoCitation(ix *citation.Index, profiles map[string]model.UserProfile,
	labels map[string]model.SourceLabel, cfg Config) *Graph {

	sources := ix.SourceNames()
	counts := sourceCounts(ix)

	pairs := make([]scoredPair, 0, len(sources)*(len(sources)-1)/2)
	scores := make([]float64, 0, cap(pairs))

	for i, u := range sources {
		for _, v := range sources[i+1:] {
			score := scorePair(ix, counts, profiles, cfg, u, v)
			pairs = append(pairs, scoredPair{u: u, v: v, score: score})
			scores = append(scores, score)
		}
	}

	threshold := resolveThreshold(cfg, scores)
	zap.L().Debug("co-citation scores",
		zap.Int("sources", len(sources)),
		zap.Int("pairs", len(pairs)),
		zap.Float64("threshold", threshold),
	)

	g := New()
	for _, p := range pairs {
		if p.score == 0 || p.score <= threshold {
			continue
		}
		_ = g.AddEdge(p.u, p.v, p.score)
	}

	for _, id := range g.Nodes() {
		attrs := NodeAttrs{Class: ClassNews, Credibility: model.CredibilityUnlabeled}
		if lbl, ok := labels[id]; ok {
			attrs.Credibility = lbl.Credibility
			attrs.Bias = lbl.Bias
		}
		_ = g.SetAttrs(id, attrs)
	}
	return g
}

// scorePair computes the similarity between two sources. Common-author
// discovery iterates the smaller citation map and exits early when the
// intersection is empty.
func scorePair(ix *citation.Index, counts map[string]map[string]int,
	profiles map[string]model.UserProfile, cfg Config, u, v string) float64 {

	cu, cv := counts[u], counts[v]
	if len(cu) > len(cv) {
		cu, cv = cv, cu
	}

	common := make([]string, 0, len(cu))
	for a := range cu {
		if _, ok := cv[a]; ok {
			common = append(common, a)
		}
	}
	if len(common) == 0 {
		return 0
	}

	switch cfg.Metric {
	case MetricOverlap:
		return float64(len(common))
	case MetricJaccard:
		union := len(counts[u]) + len(counts[v]) - len(common)
		return float64(len(common)) / float64(union)
	case MetricCosine:
		return cosine(counts[u], counts[v], common)
	default: // MetricProbabilistic
		score := 0.0
		for _, a := range common {
			scale := 1.0
			if cfg.Scaling {
				if p, ok := profiles[a]; ok {
					scale = followerScale(p)
				}
			}
			score += ix.Sources[u][a] * ix.Sources[v][a] * scale
		}
		return score
	}
}

func cosine(cu, cv map[string]int, common []string) float64 {
	dot := 0.0
	for _, a := range common {
		dot += float64(cu[a]) * float64(cv[a])
	}
	return dot / (norm(cu) * norm(cv))
}

func norm(counts map[string]int) float64 {
	s := 0.0
	for _, n := range counts {
		s += float64(n) * float64(n)
	}
	return math.Sqrt(s)
}

// sourceCounts inverts the author->source raw counts into per-source
// citation-count maps for the count-based metrics.
func sourceCounts(ix *citation.Index) map[string]map[string]int {
	out := make(map[string]map[string]int, len(ix.Sources))
	for a, bySrc := range ix.Authors {
		for s, n := range bySrc {
			if out[s] == nil {
				out[s] = make(map[string]int)
			}
			out[s][a] = n
		}
	}
	return out
}

// resolveThreshold returns the explicit threshold when set, otherwise
// mean + Alpha*stddev of the score distribution. Lower values yield
// denser graphs.
func resolveThreshold(cfg Config, scores []float64) float64 {
	if cfg.Threshold != nil {
		return *cfg.Threshold
	}
	mean, std := meanStd(scores)
	return mean + cfg.Alpha*std
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return mean, math.Sqrt(variance)
}
