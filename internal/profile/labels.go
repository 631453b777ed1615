// Package profile loads the external source-label table and the cached
// Twitter user profiles collected in prior runs.
package profile

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/model"
)

// credibilityFromCode maps the label-table classification codes. The
// published table uses 0 for reliable and 1 for unreliable; any other
// code (including the mixed/satire codes some releases carry) is
// treated as unlabeled.
func credibilityFromCode(code string) model.Credibility {
	switch code {
	case "0":
		return model.CredibilityReliable
	case "1":
		return model.CredibilityUnreliable
	default:
		return model.CredibilityUnlabeled
	}
}

// LoadLabels reads the delimited label table
// (source,country,label,bias,...) into a map keyed by source. The first
// row is a header.
func LoadLabels(path string) (map[string]model.SourceLabel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "profile: open labels")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	labels := make(map[string]model.SourceLabel)
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "profile: read labels row")
		}
		if first {
			first = false
			continue
		}
		if len(record) < 3 {
			zap.L().Warn("profile: short label row skipped", zap.Strings("row", record))
			continue
		}

		lbl := model.SourceLabel{
			Source:      record[0],
			Country:     record[1],
			Credibility: credibilityFromCode(record[2]),
		}
		if len(record) > 3 {
			lbl.Bias = record[3]
		}
		labels[lbl.Source] = lbl
	}
	return labels, nil
}

// LoadRowIDs reads a topic-subset CSV whose first column is the article
// rowid, skipping the header. The result filters LoadCitations.
func LoadRowIDs(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "profile: open rowids")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	ids := make(map[string]struct{})
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "profile: read rowids row")
		}
		if first {
			first = false
			continue
		}
		if len(record) > 0 && record[0] != "" {
			ids[record[0]] = struct{}{}
		}
	}
	return ids, nil
}
