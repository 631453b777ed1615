package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// WriteGML writes the graph in GML interchange format. Nodes are
// numbered in sorted-label order and emitted before edges, so repeated
// exports of the same graph are byte-identical.
func WriteGML(w io.Writer, g *Graph) error {
	var b strings.Builder
	b.WriteString("graph [\n")

	ids := make(map[string]int, g.NodeCount())
	for i, label := range g.Nodes() {
		ids[label] = i
		attrs, _ := g.Attrs(label)

		b.WriteString("  node [\n")
		fmt.Fprintf(&b, "    id %d\n", i)
		fmt.Fprintf(&b, "    label %s\n", gmlString(label))
		fmt.Fprintf(&b, "    class %s\n", gmlString(string(attrs.Class)))
		switch attrs.Class {
		case ClassTwitter:
			fmt.Fprintf(&b, "    followers %d\n", attrs.Followers)
			fmt.Fprintf(&b, "    following %d\n", attrs.Following)
			fmt.Fprintf(&b, "    tweetCount %d\n", attrs.TweetCount)
		default:
			fmt.Fprintf(&b, "    credibility %s\n", gmlString(string(attrs.Credibility)))
			if attrs.Bias != "" {
				fmt.Fprintf(&b, "    bias %s\n", gmlString(attrs.Bias))
			}
		}
		b.WriteString("  ]\n")
	}

	for _, e := range g.Edges() {
		b.WriteString("  edge [\n")
		fmt.Fprintf(&b, "    source %d\n", ids[e.U])
		fmt.Fprintf(&b, "    target %d\n", ids[e.V])
		fmt.Fprintf(&b, "    weight %g\n", e.Weight)
		b.WriteString("  ]\n")
	}
	b.WriteString("]\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "gml: write")
	}
	return nil
}

func gmlString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `'`) + `"`
}
