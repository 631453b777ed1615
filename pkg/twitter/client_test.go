package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/nela-research/citegraph/internal/resilience"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token",
		WithBaseURL(srv.URL),
		WithRateLimit(rate.NewLimiter(rate.Inf, 1)),
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
	)
}

func TestUsersByHandles(t *testing.T) {
	var gotAuth, gotUsernames string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/by", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotUsernames = r.URL.Query().Get("usernames")
		fmt.Fprint(w, `{"data":[
			{"id":"1","username":"WHO","verified":true,
			 "created_at":"2008-04-23T14:12:00.000Z",
			 "public_metrics":{"followers_count":9000000,"following_count":1700,"tweet_count":50000}},
			{"id":"2","username":"CDCgov","public_metrics":{"followers_count":100}}
		]}`)
	}))

	users, err := c.UsersByHandles(context.Background(), []string{"WHO", "CDCgov", "ghost"})
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "WHO,CDCgov,ghost", gotUsernames)
	assert.Equal(t, "WHO", users[0].Username)
	assert.True(t, users[0].Verified)
	assert.Equal(t, 9_000_000, users[0].PublicMetrics.Followers)
	assert.Equal(t, 2008, users[0].CreatedAt.Year())
}

func TestUsersByHandles_BatchTooLarge(t *testing.T) {
	c := NewClient("tok")
	handles := make([]string, MaxBatchSize+1)
	for i := range handles {
		handles[i] = fmt.Sprintf("user%d", i)
	}
	_, err := c.UsersByHandles(context.Background(), handles)
	require.Error(t, err)
}

func TestUsersByHandles_EmptyBatch(t *testing.T) {
	c := NewClient("tok")
	users, err := c.UsersByHandles(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, users)
}

func TestFollows_Pagination(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/42/followers", r.URL.Path)
		if r.URL.Query().Get("pagination_token") == "" {
			fmt.Fprint(w, `{"data":[{"id":"10","username":"a"}],"meta":{"result_count":1,"next_token":"page2"}}`)
			return
		}
		require.Equal(t, "page2", r.URL.Query().Get("pagination_token"))
		fmt.Fprint(w, `{"data":[{"id":"11","username":"b"}],"meta":{"result_count":1}}`)
	}))

	page, err := c.Follows(context.Background(), "42", EndpointFollowers, "")
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "a", page.Users[0].Username)
	require.Equal(t, "page2", page.NextToken)

	page, err = c.Follows(context.Background(), "42", EndpointFollowers, page.NextToken)
	require.NoError(t, err)
	assert.Equal(t, "b", page.Users[0].Username)
	assert.Empty(t, page.NextToken)
}

func TestFollows_UnknownEndpoint(t *testing.T) {
	c := NewClient("tok")
	_, err := c.Follows(context.Background(), "42", FollowEndpoint("friends"), "")
	require.Error(t, err)
}

func TestRateLimitSurfacesTyped(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.UsersByHandles(context.Background(), []string{"WHO"})
	require.Error(t, err)
	assert.True(t, resilience.IsRateLimit(err))
}

func TestTransientServerErrorRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"1","username":"WHO"}]}`)
	}))

	users, err := c.UsersByHandles(context.Background(), []string{"WHO"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, calls)
}

func TestPermanentErrorNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.UsersByHandles(context.Background(), []string{"WHO"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, resilience.IsRateLimit(err))
}
