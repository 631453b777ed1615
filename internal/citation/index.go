package citation

import (
	"sort"

	"github.com/nela-research/citegraph/internal/model"
)

// IndexOptions controls which events are counted.
type IndexOptions struct {
	// ExcludeAuthors are handles skipped during counting (e.g. accounts
	// so widely cited they drown out every other signal).
	ExcludeAuthors map[string]struct{}
}

// Index holds the two inverted citation mappings. Sources maps
// source -> author -> citation probability (normalized so each source's
// probabilities sum to 1). Authors maps author -> source -> raw count.
type Index struct {
	Sources map[string]map[string]float64
	Authors map[string]map[string]int
}

// BuildIndex aggregates citation events into an Index. Events whose
// author cannot be resolved are skipped; a source with no countable
// events is absent from the result.
func BuildIndex(events []model.CitationEvent, opts IndexOptions) *Index {
	counts := make(map[string]map[string]int)
	authors := make(map[string]map[string]int)

	for _, ev := range events {
		author := AuthorFromURL(ev.URL)
		if author == model.UnknownAuthor {
			continue
		}
		if _, skip := opts.ExcludeAuthors[author]; skip {
			continue
		}

		if counts[ev.Source] == nil {
			counts[ev.Source] = make(map[string]int)
		}
		counts[ev.Source][author]++

		if authors[author] == nil {
			authors[author] = make(map[string]int)
		}
		authors[author][ev.Source]++
	}

	sources := make(map[string]map[string]float64, len(counts))
	for src, byAuthor := range counts {
		total := 0
		for _, n := range byAuthor {
			total += n
		}
		probs := make(map[string]float64, len(byAuthor))
		for a, n := range byAuthor {
			probs[a] = float64(n) / float64(total)
		}
		sources[src] = probs
	}

	return &Index{Sources: sources, Authors: authors}
}

// RawCount returns the raw citation count for (source, author).
func (ix *Index) RawCount(author, source string) int {
	return ix.Authors[author][source]
}

// AuthorTotal returns the total number of citations of an author across
// all sources.
func (ix *Index) AuthorTotal(author string) int {
	total := 0
	for _, n := range ix.Authors[author] {
		total += n
	}
	return total
}

// SourceNames returns the distinct sources in deterministic order.
func (ix *Index) SourceNames() []string {
	names := make([]string, 0, len(ix.Sources))
	for s := range ix.Sources {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// AuthorNames returns the distinct authors in deterministic order.
func (ix *Index) AuthorNames() []string {
	names := make([]string, 0, len(ix.Authors))
	for a := range ix.Authors {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}

// Ranking returns authors ordered by total citation count, descending.
// Ties break on handle so the companion export is stable.
func (ix *Index) Ranking() []model.AuthorCount {
	out := make([]model.AuthorCount, 0, len(ix.Authors))
	for a := range ix.Authors {
		out = append(out, model.AuthorCount{Author: a, Count: ix.AuthorTotal(a)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Author < out[j].Author
	})
	return out
}
