// Package collector drives batch collection of Twitter profiles and
// follow lists, surviving the API's rate-limit windows by flushing
// partial results to disk, cooling down, and resuming from the last
// pagination token.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nela-research/citegraph/internal/model"
	"github.com/nela-research/citegraph/internal/resilience"
	"github.com/nela-research/citegraph/internal/store"
	"github.com/nela-research/citegraph/pkg/twitter"
)

// Config controls batching and rate-limit behavior.
type Config struct {
	// OutDir receives the flushed JSON shards.
	OutDir string

	// BatchSize caps handles per users/by request. Default 100 (the
	// API maximum).
	BatchSize int

	// Cooldown is the fixed pause after a 429. Default 15 minutes (the
	// API's rate-limit window).
	Cooldown time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 || c.BatchSize > twitter.MaxBatchSize {
		c.BatchSize = twitter.MaxBatchSize
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 15 * time.Minute
	}
	return c
}

// Checkpointer is the slice of store.Store the collector needs for
// resumable pagination.
type Checkpointer interface {
	GetCheckpoint(ctx context.Context, userID, endpoint string) (*store.Checkpoint, error)
	SaveCheckpoint(ctx context.Context, cp store.Checkpoint) error
	ClearCheckpoint(ctx context.Context, userID, endpoint string) error
}

// Collector batches API calls and manages flush/cooldown/resume.
type Collector struct {
	api         twitter.Client
	checkpoints Checkpointer
	cfg         Config
}

// New creates a Collector. checkpoints may be nil when only profile
// collection (which needs no pagination state) is used.
func New(api twitter.Client, checkpoints Checkpointer, cfg Config) *Collector {
	return &Collector{api: api, checkpoints: checkpoints, cfg: cfg.withDefaults()}
}

// CollectUsers resolves handles to profiles in batches. On a rate limit
// it flushes everything collected so far as a JSON shard, cools down,
// and retries the same batch. Other API failures skip the batch after
// flushing. Returns the number of profiles collected.
func (c *Collector) CollectUsers(ctx context.Context, handles []string) (int, error) {
	if err := os.MkdirAll(c.cfg.OutDir, 0o755); err != nil {
		return 0, eris.Wrap(err, "collector: create output dir")
	}

	var buffer []model.UserProfile
	total := 0

	for start := 0; start < len(handles); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(handles))
		batch := handles[start:end]

		for {
			profiles, err := c.api.UsersByHandles(ctx, batch)
			if err == nil {
				buffer = append(buffer, profiles...)
				total += len(profiles)
				zap.L().Info("collector: batch complete",
					zap.Int("offset", start),
					zap.Int("resolved", len(profiles)),
					zap.Int("requested", len(batch)),
				)
				break
			}

			if resilience.IsRateLimit(err) {
				if ferr := c.flush(buffer); ferr != nil {
					return total, ferr
				}
				buffer = nil
				if werr := c.coolDown(ctx); werr != nil {
					return total, werr
				}
				continue // retry the same batch
			}

			// Local recovery: keep what we have, drop this batch.
			zap.L().Warn("collector: batch failed, skipping",
				zap.Int("offset", start),
				zap.Error(err),
			)
			if ferr := c.flush(buffer); ferr != nil {
				return total, ferr
			}
			buffer = nil
			break
		}

		if ctx.Err() != nil {
			break
		}
	}

	if err := c.flush(buffer); err != nil {
		return total, err
	}
	return total, eris.Wrap(ctx.Err(), "collector: collect users")
}

// CollectFollows paginates the follow listing for each user, persisting
// the continuation token after every page so an interrupted run resumes
// where it stopped.
func (c *Collector) CollectFollows(ctx context.Context, users []model.UserProfile, endpoint twitter.FollowEndpoint) error {
	if c.checkpoints == nil {
		return eris.New("collector: follow collection requires a checkpoint store")
	}
	if err := os.MkdirAll(c.cfg.OutDir, 0o755); err != nil {
		return eris.Wrap(err, "collector: create output dir")
	}

	for _, user := range users {
		if err := c.collectUserFollows(ctx, user, endpoint); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// Local recovery: move on to the next user.
			zap.L().Warn("collector: follow collection failed for user",
				zap.String("user_id", user.ID),
				zap.String("endpoint", string(endpoint)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (c *Collector) collectUserFollows(ctx context.Context, user model.UserProfile, endpoint twitter.FollowEndpoint) error {
	token := ""
	collected := 0
	if cp, err := c.checkpoints.GetCheckpoint(ctx, user.ID, string(endpoint)); err != nil {
		return err
	} else if cp != nil {
		token = cp.Token
		collected = cp.Collected
		zap.L().Info("collector: resuming from checkpoint",
			zap.String("user_id", user.ID),
			zap.String("endpoint", string(endpoint)),
			zap.Int("collected", collected),
		)
	}

	var pageBuf []model.UserProfile
	flushFollows := func() error {
		if len(pageBuf) == 0 {
			return nil
		}
		name := fmt.Sprintf("%s-%s-%s.json", user.ID, endpoint, shardSuffix())
		if err := writeShard(filepath.Join(c.cfg.OutDir, name), pageBuf); err != nil {
			return err
		}
		pageBuf = nil
		return nil
	}

	for {
		page, err := c.api.Follows(ctx, user.ID, endpoint, token)
		if err != nil {
			if resilience.IsRateLimit(err) {
				if ferr := flushFollows(); ferr != nil {
					return ferr
				}
				if werr := c.coolDown(ctx); werr != nil {
					return werr
				}
				continue // same token
			}
			// Persist progress before giving up on this user.
			if ferr := flushFollows(); ferr != nil {
				return ferr
			}
			return err
		}

		pageBuf = append(pageBuf, page.Users...)
		collected += len(page.Users)
		token = page.NextToken

		if err := c.checkpoints.SaveCheckpoint(ctx, store.Checkpoint{
			UserID:    user.ID,
			Endpoint:  string(endpoint),
			Token:     token,
			Collected: collected,
		}); err != nil {
			return err
		}

		if token == "" {
			if err := flushFollows(); err != nil {
				return err
			}
			zap.L().Info("collector: follow listing complete",
				zap.String("user_id", user.ID),
				zap.String("endpoint", string(endpoint)),
				zap.Int("collected", collected),
			)
			return c.checkpoints.ClearCheckpoint(ctx, user.ID, string(endpoint))
		}
	}
}

// flush writes buffered profiles to a timestamped shard. Empty buffers
// write nothing.
func (c *Collector) flush(profiles []model.UserProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	path := filepath.Join(c.cfg.OutDir, shardSuffix()+".json")
	if err := writeShard(path, profiles); err != nil {
		return err
	}
	zap.L().Info("collector: flushed shard",
		zap.String("path", path),
		zap.Int("profiles", len(profiles)),
	)
	return nil
}

func (c *Collector) coolDown(ctx context.Context) error {
	zap.L().Warn("collector: rate limited, cooling down",
		zap.Duration("cooldown", c.cfg.Cooldown),
	)
	timer := time.NewTimer(c.cfg.Cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "collector: cooldown interrupted")
	case <-timer.C:
		return nil
	}
}

func writeShard(path string, profiles []model.UserProfile) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "collector: create shard")
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(profiles); err != nil {
		return eris.Wrap(err, "collector: encode shard")
	}
	return nil
}

// shardSuffix yields unique, sortable shard names even when two flushes
// land in the same second.
func shardSuffix() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
