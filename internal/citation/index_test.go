package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nela-research/citegraph/internal/model"
)

func events(pairs ...[2]string) []model.CitationEvent {
	out := make([]model.CitationEvent, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, model.CitationEvent{Source: p[0], URL: p[1]})
	}
	return out
}

func TestBuildIndex_Probabilities(t *testing.T) {
	ix := BuildIndex(events(
		[2]string{"A", "twitter.com/x"},
		[2]string{"A", "twitter.com/x"},
		[2]string{"A", "twitter.com/y"},
		[2]string{"B", "twitter.com/x"},
	), IndexOptions{})

	require.Contains(t, ix.Sources, "A")
	require.Contains(t, ix.Sources, "B")
	assert.InDelta(t, 2.0/3.0, ix.Sources["A"]["x"], 1e-9)
	assert.InDelta(t, 1.0/3.0, ix.Sources["A"]["y"], 1e-9)
	assert.InDelta(t, 1.0, ix.Sources["B"]["x"], 1e-9)

	assert.Equal(t, 2, ix.RawCount("x", "A"))
	assert.Equal(t, 1, ix.RawCount("x", "B"))
	assert.Equal(t, 3, ix.AuthorTotal("x"))
}

func TestBuildIndex_ProbabilitiesSumToOne(t *testing.T) {
	ix := BuildIndex(events(
		[2]string{"A", "twitter.com/x/status/1"},
		[2]string{"A", "twitter.com/y/status/2"},
		[2]string{"A", "twitter.com/z/status/3"},
		[2]string{"A", "twitter.com/z/status/4"},
		[2]string{"B", "twitter.com/z/status/5"},
		[2]string{"C", "twitter.com/q/status/6"},
	), IndexOptions{})

	for src, probs := range ix.Sources {
		sum := 0.0
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "source %s", src)
	}
}

func TestBuildIndex_SkipsUnknownAuthors(t *testing.T) {
	ix := BuildIndex(events(
		[2]string{"A", "https://example.com/not-a-tweet"},
		[2]string{"A", ""},
	), IndexOptions{})

	assert.NotContains(t, ix.Sources, "A")
	assert.Empty(t, ix.Authors)
}

func TestBuildIndex_ExcludeAuthors(t *testing.T) {
	ix := BuildIndex(events(
		[2]string{"A", "twitter.com/loud"},
		[2]string{"A", "twitter.com/quiet"},
	), IndexOptions{ExcludeAuthors: map[string]struct{}{"loud": {}}})

	assert.NotContains(t, ix.Authors, "loud")
	assert.InDelta(t, 1.0, ix.Sources["A"]["quiet"], 1e-9)
}

func TestRanking(t *testing.T) {
	ix := BuildIndex(events(
		[2]string{"A", "twitter.com/x"},
		[2]string{"B", "twitter.com/x"},
		[2]string{"A", "twitter.com/y"},
	), IndexOptions{})

	ranking := ix.Ranking()
	require.Len(t, ranking, 2)
	assert.Equal(t, model.AuthorCount{Author: "x", Count: 2}, ranking[0])
	assert.Equal(t, model.AuthorCount{Author: "y", Count: 1}, ranking[1])
}

func TestSourceNamesDeterministic(t *testing.T) {
	ix := BuildIndex(events(
		[2]string{"zeta", "twitter.com/x"},
		[2]string{"alpha", "twitter.com/x"},
	), IndexOptions{})

	assert.Equal(t, []string{"alpha", "zeta"}, ix.SourceNames())
}
