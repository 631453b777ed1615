package graph

import "github.com/rotisserie/eris"

// Metric selects the pairwise similarity measure for the co-citation
// builder.
type Metric string

const (
	// MetricProbabilistic scores a pair as the probability that both
	// sources independently cite a common author.
	MetricProbabilistic Metric = "probabilistic"
	// MetricOverlap counts common cited authors.
	MetricOverlap Metric = "overlap"
	// MetricJaccard is |common| / |union| over cited-author sets.
	MetricJaccard Metric = "jaccard"
	// MetricCosine is cosine similarity over raw citation-count vectors.
	MetricCosine Metric = "cosine"
)

// ParseMetric validates a metric name from config or flags.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricProbabilistic, MetricOverlap, MetricJaccard, MetricCosine:
		return Metric(s), nil
	}
	return "", eris.Errorf("graph: unknown metric %q", s)
}

// Config parameterizes both graph builders. The zero Threshold pointer
// means "derive from the score distribution" (mean + Alpha*stddev).
type Config struct {
	Metric         Metric
	Scaling        bool
	Threshold      *float64
	Alpha          float64
	MinDegree      int
	ExcludeAuthors map[string]struct{}
}

// DefaultConfig mirrors the parameters used in the published analysis.
func DefaultConfig() Config {
	return Config{
		Metric:    MetricProbabilistic,
		Alpha:     1,
		MinDegree: 5,
	}
}
