// Package stats aggregates embedded-tweet counts across one or more
// yearly NELA databases into per-source tables and per-year summaries.
package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/nela-research/citegraph/internal/model"
	"github.com/nela-research/citegraph/internal/store"
)

// Row holds one source's counts keyed by dataset year.
type Row struct {
	Source        string
	Tweets        map[string]int
	TweetArticles map[string]int
	Articles      map[string]int
}

// Table is the per-source aggregation across years.
type Table struct {
	Years []string
	Rows  []Row
}

// Collect queries each yearly store for per-source tweet and article
// counts and merges them into one table.
func Collect(ctx context.Context, stores map[string]*store.Store) (*Table, error) {
	years := make([]string, 0, len(stores))
	for y := range stores {
		years = append(years, y)
	}
	sort.Strings(years)

	bySource := make(map[string]*Row)
	row := func(src string) *Row {
		r, ok := bySource[src]
		if !ok {
			r = &Row{
				Source:        src,
				Tweets:        make(map[string]int),
				TweetArticles: make(map[string]int),
				Articles:      make(map[string]int),
			}
			bySource[src] = r
		}
		return r
	}

	for _, year := range years {
		st := stores[year]

		counts, err := st.TweetsPerSource(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "stats: tweets per source %s", year)
		}
		for _, c := range counts {
			r := row(c.Source)
			r.Tweets[year] = c.Tweets
			r.TweetArticles[year] = c.Articles
		}

		articles, err := st.ArticlesPerSource(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "stats: articles per source %s", year)
		}
		for src, n := range articles {
			row(src).Articles[year] = n
		}
	}

	rows := make([]Row, 0, len(bySource))
	for _, r := range bySource {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Source < rows[j].Source })

	return &Table{Years: years, Rows: rows}, nil
}

// DropZeroSources removes sources that have no tweets in one or more
// years, keeping only sources active across the whole span.
func (t *Table) DropZeroSources() {
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		active := true
		for _, y := range t.Years {
			if r.Tweets[y] == 0 {
				active = false
				break
			}
		}
		if active {
			kept = append(kept, r)
		}
	}
	t.Rows = kept
}

// WriteCSV writes the table in the layout of the published
// tweets-per-source export: one row per source, tweet/tweet-article/
// article columns per year.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"source"}
	for _, prefix := range []string{"tweets", "tweet_articles", "articles"} {
		for _, y := range t.Years {
			header = append(header, fmt.Sprintf("%s_%s", prefix, y))
		}
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "stats: write header")
	}

	for _, r := range t.Rows {
		rec := []string{r.Source}
		for _, m := range []map[string]int{r.Tweets, r.TweetArticles, r.Articles} {
			for _, y := range t.Years {
				rec = append(rec, fmt.Sprintf("%d", m[y]))
			}
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "stats: write row %s", r.Source)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "stats: flush csv")
}

// YearSummary totals one year and splits the share of tweet-bearing
// articles by source credibility.
type YearSummary struct {
	Year            string
	Articles        int
	TweetArticles   int
	Tweets          int
	ReliablePct     float64
	UnreliablePct   float64
	ReliableCount   int
	UnreliableCount int
}

// Summarize rolls the table up per year, computing the percentage of
// articles embedding at least one tweet for reliable and unreliable
// sources separately.
func (t *Table) Summarize(labels map[string]model.SourceLabel) []YearSummary {
	out := make([]YearSummary, 0, len(t.Years))
	for _, y := range t.Years {
		s := YearSummary{Year: y}
		var relArticles, relTweetArticles, unrArticles, unrTweetArticles int

		for _, r := range t.Rows {
			s.Articles += r.Articles[y]
			s.TweetArticles += r.TweetArticles[y]
			s.Tweets += r.Tweets[y]

			switch labels[r.Source].Credibility {
			case model.CredibilityReliable:
				relArticles += r.Articles[y]
				relTweetArticles += r.TweetArticles[y]
				s.ReliableCount++
			case model.CredibilityUnreliable:
				unrArticles += r.Articles[y]
				unrTweetArticles += r.TweetArticles[y]
				s.UnreliableCount++
			}
		}

		if relArticles > 0 {
			s.ReliablePct = 100 * float64(relTweetArticles) / float64(relArticles)
		}
		if unrArticles > 0 {
			s.UnreliablePct = 100 * float64(unrTweetArticles) / float64(unrArticles)
		}
		out = append(out, s)
	}
	return out
}
