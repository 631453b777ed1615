// Package citation turns raw embedded-tweet observations into a
// normalized citation index over sources and tweet authors.
package citation

import (
	"regexp"
	"strings"

	"github.com/nela-research/citegraph/internal/model"
)

var authorRe = regexp.MustCompile(`twitter\.com/(\w+)`)

// CleanURL strips the query string from an embedded-tweet URL so that
// tracking parameters (?ref_src=...) do not leak into author handles or
// tweet identity comparisons.
func CleanURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// AuthorFromURL extracts the author handle from an embedded-tweet URL:
// the path segment directly after "twitter.com/". Returns
// model.UnknownAuthor when the input is empty or does not match.
func AuthorFromURL(raw string) string {
	if raw == "" {
		return model.UnknownAuthor
	}
	m := authorRe.FindStringSubmatch(CleanURL(raw))
	if m == nil {
		return model.UnknownAuthor
	}
	return m[1]
}
