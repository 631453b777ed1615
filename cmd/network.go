package main

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/citation"
	"github.com/nela-research/citegraph/internal/graph"
	"github.com/nela-research/citegraph/internal/model"
	"github.com/nela-research/citegraph/internal/profile"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build a co-citation or bipartite graph and export it as GML",
	Long: `Builds a graph from the embedded tweets in a NELA database.

By default the output is a source-source co-citation graph: two sources
are connected when they cite common tweet authors, weighted by the
probability that both cite the same author. With --bipartite the output
connects sources directly to the authors they cite instead.

The GML export is accompanied by a CSV ranking authors by how often
they are cited.

Examples:
  # Probabilistic co-citation graph with follower scaling
  network --db nela-gt-2020.db --output results/network.gml --scaling

  # Denser graph: explicit low cutoff
  network --db nela-gt-2020.db --output net.gml --threshold 0.001

  # Source-author bipartite graph, pruning authors cited by <5 sources
  network --db nela-gt-2020.db --output bip.gml --bipartite --min-degree 5

  # Restrict to a topic subset exported from earlier analysis
  network --db nela-gt-2020.db --output covid.gml --rowid covid-rowids.csv`,
	RunE: runNetwork,
}

func init() {
	f := networkCmd.Flags()
	f.String("db", "", "path to NELA sqlite database (overrides config)")
	f.String("output", "", "output GML path (required)")
	f.String("rowid", "", "CSV of article rowids to restrict the tweet set")
	f.Bool("bipartite", false, "build a source-author graph instead of source-source")
	f.String("metric", "", "similarity metric: probabilistic, overlap, jaccard, cosine")
	f.Bool("scaling", false, "discount authors by inverse log follower count")
	f.Float64("threshold", 0, "explicit edge cutoff (default: mean + alpha*stddev)")
	f.Float64("alpha", 0, "stddevs above the mean for the derived cutoff")
	f.Int("min-degree", -1, "prune twitter nodes below this degree (bipartite)")
	f.StringSlice("exclude-authors", nil, "author handles to ignore")
	f.String("user-data", "", "path to profile cache JSON (overrides config)")
	_ = networkCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(networkCmd)
}

func runNetwork(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := zap.L().With(zap.String("command", "network"))

	dbPath, _ := cmd.Flags().GetString("db")
	output, _ := cmd.Flags().GetString("output")
	rowidPath, _ := cmd.Flags().GetString("rowid")
	bipartite, _ := cmd.Flags().GetBool("bipartite")
	userDataPath, _ := cmd.Flags().GetString("user-data")

	gcfg, err := networkGraphConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var rowIDs map[string]struct{}
	if rowidPath != "" {
		if rowIDs, err = profile.LoadRowIDs(rowidPath); err != nil {
			return err
		}
		log.Info("restricting to topic articles", zap.Int("rowids", len(rowIDs)))
	}

	events, err := st.LoadCitations(ctx, rowIDs)
	if err != nil {
		return err
	}

	labels := loadLabelTable("")
	profiles := loadProfileCache(userDataPath)
	index := citation.BuildIndex(events, citation.IndexOptions{ExcludeAuthors: gcfg.ExcludeAuthors})

	log.Info("loaded citations",
		zap.Int("events", len(events)),
		zap.Int("sources", len(index.Sources)),
		zap.Int("authors", len(index.Authors)),
	)

	var g *graph.Graph
	if bipartite {
		g = graph.BuildBipartite(events, profiles, labels, gcfg)
	} else {
		g = graph.BuildCoCitation(index, profiles, labels, gcfg)
	}

	if err := writeGMLFile(output, g); err != nil {
		return err
	}
	rankingPath := strings.TrimSuffix(output, ".gml") + ".csv"
	if err := writeRankingCSV(rankingPath, index.Ranking()); err != nil {
		return err
	}

	log.Info("network written",
		zap.String("output", output),
		zap.String("ranking", rankingPath),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)
	return nil
}

// networkGraphConfig merges config-file defaults with CLI overrides.
func networkGraphConfig(cmd *cobra.Command) (graph.Config, error) {
	f := cmd.Flags()
	gcfg := graph.DefaultConfig()

	metricName := cfg.Network.Metric
	if s, _ := f.GetString("metric"); s != "" {
		metricName = s
	}
	metric, err := graph.ParseMetric(metricName)
	if err != nil {
		return gcfg, err
	}
	gcfg.Metric = metric

	scaling, _ := f.GetBool("scaling")
	gcfg.Scaling = cfg.Network.Scaling || scaling

	gcfg.Alpha = cfg.Network.Alpha
	if f.Changed("alpha") {
		gcfg.Alpha, _ = f.GetFloat64("alpha")
	}

	gcfg.MinDegree = cfg.Network.MinDegree
	if v, _ := f.GetInt("min-degree"); v >= 0 {
		gcfg.MinDegree = v
	}

	if f.Changed("threshold") {
		th, _ := f.GetFloat64("threshold")
		gcfg.Threshold = &th
	}

	exclude, _ := f.GetStringSlice("exclude-authors")
	gcfg.ExcludeAuthors = excludeSet(append(cfg.Network.ExcludeAuthors, exclude...))

	return gcfg, nil
}

func writeGMLFile(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create gml output")
	}
	defer f.Close()
	return graph.WriteGML(f, g)
}

func writeRankingCSV(path string, ranking []model.AuthorCount) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create ranking output")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"author", "embedded_tweets"}); err != nil {
		return eris.Wrap(err, "write ranking header")
	}
	for _, ac := range ranking {
		if err := w.Write([]string{ac.Author, strconv.Itoa(ac.Count)}); err != nil {
			return eris.Wrap(err, "write ranking row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "flush ranking")
}
