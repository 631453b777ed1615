package collector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nela-research/citegraph/internal/model"
	"github.com/nela-research/citegraph/internal/profile"
	"github.com/nela-research/citegraph/internal/resilience"
	"github.com/nela-research/citegraph/internal/store"
	"github.com/nela-research/citegraph/pkg/twitter"
)

type fakeAPI struct {
	usersFn   func(handles []string) ([]model.UserProfile, error)
	followsFn func(userID string, endpoint twitter.FollowEndpoint, token string) (*twitter.FollowPage, error)
}

func (f *fakeAPI) UsersByHandles(_ context.Context, handles []string) ([]model.UserProfile, error) {
	return f.usersFn(handles)
}

func (f *fakeAPI) Follows(_ context.Context, userID string, endpoint twitter.FollowEndpoint, token string) (*twitter.FollowPage, error) {
	return f.followsFn(userID, endpoint, token)
}

func profilesFor(handles []string) []model.UserProfile {
	out := make([]model.UserProfile, 0, len(handles))
	for _, h := range handles {
		out = append(out, model.UserProfile{ID: "id-" + h, Username: h})
	}
	return out
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCollectUsers_Batches(t *testing.T) {
	dir := t.TempDir()
	var batchSizes []int
	api := &fakeAPI{usersFn: func(handles []string) ([]model.UserProfile, error) {
		batchSizes = append(batchSizes, len(handles))
		return profilesFor(handles), nil
	}}

	handles := make([]string, 250)
	for i := range handles {
		handles[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}

	c := New(api, nil, Config{OutDir: dir, BatchSize: 100, Cooldown: time.Millisecond})
	n, err := c.CollectUsers(context.Background(), handles)
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Equal(t, []int{100, 100, 50}, batchSizes)

	merged, err := profile.MergeShards(dir)
	require.NoError(t, err)
	assert.Len(t, merged, 250)
}

func TestCollectUsers_RateLimitFlushesAndRetries(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	api := &fakeAPI{usersFn: func(handles []string) ([]model.UserProfile, error) {
		calls++
		if calls == 2 {
			return nil, &resilience.RateLimitError{Endpoint: "users/by"}
		}
		return profilesFor(handles), nil
	}}

	c := New(api, nil, Config{OutDir: dir, BatchSize: 1, Cooldown: time.Millisecond})
	n, err := c.CollectUsers(context.Background(), []string{"WHO", "CDCgov"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	// batch 1 ok, batch 2 rate-limited then retried.
	assert.Equal(t, 3, calls)

	merged, err := profile.MergeShards(dir)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestCollectUsers_PermanentErrorSkipsBatch(t *testing.T) {
	dir := t.TempDir()
	api := &fakeAPI{usersFn: func(handles []string) ([]model.UserProfile, error) {
		if handles[0] == "bad" {
			return nil, errors.New("400 invalid handle")
		}
		return profilesFor(handles), nil
	}}

	c := New(api, nil, Config{OutDir: dir, BatchSize: 1, Cooldown: time.Millisecond})
	n, err := c.CollectUsers(context.Background(), []string{"good", "bad", "also-good"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	merged, err := profile.MergeShards(dir)
	require.NoError(t, err)
	assert.NotContains(t, merged, "bad")
	assert.Contains(t, merged, "good")
	assert.Contains(t, merged, "also-good")
}

func TestCollectFollows_PaginatesAndClearsCheckpoint(t *testing.T) {
	dir := t.TempDir()
	st := testStore(t)
	var tokens []string
	api := &fakeAPI{followsFn: func(userID string, endpoint twitter.FollowEndpoint, token string) (*twitter.FollowPage, error) {
		tokens = append(tokens, token)
		if token == "" {
			return &twitter.FollowPage{Users: profilesFor([]string{"f1"}), NextToken: "p2"}, nil
		}
		return &twitter.FollowPage{Users: profilesFor([]string{"f2"})}, nil
	}}

	c := New(api, st, Config{OutDir: dir, Cooldown: time.Millisecond})
	user := model.UserProfile{ID: "42", Username: "WHO"}
	require.NoError(t, c.CollectFollows(context.Background(), []model.UserProfile{user}, twitter.EndpointFollowers))

	assert.Equal(t, []string{"", "p2"}, tokens)

	cp, err := st.GetCheckpoint(context.Background(), "42", "followers")
	require.NoError(t, err)
	assert.Nil(t, cp, "checkpoint cleared on completion")

	merged, err := profile.MergeShards(dir)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestCollectFollows_ResumesFromCheckpoint(t *testing.T) {
	st := testStore(t)
	require.NoError(t, st.SaveCheckpoint(context.Background(), store.Checkpoint{
		UserID: "42", Endpoint: "followers", Token: "p7", Collected: 7000,
	}))

	var firstToken *string
	api := &fakeAPI{followsFn: func(_ string, _ twitter.FollowEndpoint, token string) (*twitter.FollowPage, error) {
		if firstToken == nil {
			firstToken = &token
		}
		return &twitter.FollowPage{Users: profilesFor([]string{"x"})}, nil
	}}

	c := New(api, st, Config{OutDir: t.TempDir(), Cooldown: time.Millisecond})
	user := model.UserProfile{ID: "42"}
	require.NoError(t, c.CollectFollows(context.Background(), []model.UserProfile{user}, twitter.EndpointFollowers))

	require.NotNil(t, firstToken)
	assert.Equal(t, "p7", *firstToken)
}

func TestCollectFollows_RateLimitResumesSameToken(t *testing.T) {
	dir := t.TempDir()
	st := testStore(t)
	calls := 0
	api := &fakeAPI{followsFn: func(_ string, _ twitter.FollowEndpoint, token string) (*twitter.FollowPage, error) {
		calls++
		switch calls {
		case 1:
			return &twitter.FollowPage{Users: profilesFor([]string{"f1"}), NextToken: "p2"}, nil
		case 2:
			require.Equal(t, "p2", token)
			return nil, &resilience.RateLimitError{Endpoint: "followers"}
		default:
			require.Equal(t, "p2", token, "must resume with the same token after cooldown")
			return &twitter.FollowPage{Users: profilesFor([]string{"f2"})}, nil
		}
	}}

	c := New(api, st, Config{OutDir: dir, Cooldown: time.Millisecond})
	user := model.UserProfile{ID: "42"}
	require.NoError(t, c.CollectFollows(context.Background(), []model.UserProfile{user}, twitter.EndpointFollowers))
	assert.Equal(t, 3, calls)

	merged, err := profile.MergeShards(dir)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestCollectFollows_RequiresCheckpointStore(t *testing.T) {
	c := New(&fakeAPI{}, nil, Config{OutDir: t.TempDir()})
	err := c.CollectFollows(context.Background(), []model.UserProfile{{ID: "1"}}, twitter.EndpointFollowers)
	require.Error(t, err)
}
