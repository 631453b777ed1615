package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/model"
)

// LoadProfiles reads the combined user-profile cache: a JSON object
// keyed by handle.
func LoadProfiles(path string) (map[string]model.UserProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "profile: open cache")
	}
	defer f.Close()

	profiles := make(map[string]model.UserProfile)
	if err := json.NewDecoder(f).Decode(&profiles); err != nil {
		return nil, eris.Wrap(err, "profile: decode cache")
	}
	return profiles, nil
}

// SaveProfiles writes the handle-keyed profile cache.
func SaveProfiles(path string, profiles map[string]model.UserProfile) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "profile: create cache")
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(profiles); err != nil {
		return eris.Wrap(err, "profile: encode cache")
	}
	return nil
}

// MergeShards combines the JSON shards a collection run flushed (each a
// JSON array of profiles) into one handle-keyed map. Shards are read in
// name order, so later flushes win on duplicate handles.
func MergeShards(dir string) (map[string]model.UserProfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrap(err, "profile: read shard dir")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	merged := make(map[string]model.UserProfile)
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "profile: read shard %s", name)
		}

		var shard []model.UserProfile
		if err := json.Unmarshal(data, &shard); err != nil {
			// Tolerate handle-keyed shards produced by earlier merges.
			keyed := make(map[string]model.UserProfile)
			if err2 := json.Unmarshal(data, &keyed); err2 != nil {
				return nil, eris.Wrapf(err, "profile: decode shard %s", name)
			}
			for handle, p := range keyed {
				merged[handle] = p
			}
			continue
		}
		for _, p := range shard {
			merged[p.Username] = p
		}
	}

	zap.L().Info("profile: merged shards",
		zap.Int("shards", len(names)),
		zap.Int("profiles", len(merged)),
	)
	return merged, nil
}

// Missing returns the cited authors that have no cached profile, in
// sorted order.
func Missing(profiles map[string]model.UserProfile, authors []string) []string {
	var out []string
	for _, a := range authors {
		if _, ok := profiles[a]; !ok {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}
