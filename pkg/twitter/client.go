// Package twitter is a minimal Twitter API v2 client covering the two
// endpoints the collection pipeline needs: user lookup by handle and
// follower/following pagination.
package twitter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/nela-research/citegraph/internal/model"
	"github.com/nela-research/citegraph/internal/resilience"
)

const (
	defaultBaseURL = "https://api.twitter.com/2"

	// MaxBatchSize is the users/by handle cap imposed by the API.
	MaxBatchSize = 100

	// followPageSize is the max_results cap on follow endpoints.
	followPageSize = 1000
)

var userFields = strings.Join([]string{
	"created_at", "description", "id", "location", "name",
	"protected", "public_metrics", "username", "verified",
}, ",")

// FollowEndpoint selects which follow relation to paginate.
type FollowEndpoint string

const (
	EndpointFollowers FollowEndpoint = "followers"
	EndpointFollowing FollowEndpoint = "following"
)

// FollowPage is one page of a follower/following listing.
type FollowPage struct {
	Users     []model.UserProfile
	NextToken string
}

// Client performs authenticated calls against the Twitter API.
type Client interface {
	// UsersByHandles resolves up to MaxBatchSize handles to profiles.
	// Handles the API cannot resolve are simply absent from the result.
	UsersByHandles(ctx context.Context, handles []string) ([]model.UserProfile, error)

	// Follows returns one page of followers or following for a user ID,
	// resuming from the given pagination token ("" for the first page).
	Follows(ctx context.Context, userID string, endpoint FollowEndpoint, token string) (*FollowPage, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request pacing.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	bearerToken string
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
}

// NewClient creates a Twitter API client authenticated with a bearer
// token.
func NewClient(bearerToken string, opts ...Option) Client {
	c := &httpClient{
		bearerToken: bearerToken,
		baseURL:     defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// The app-auth user lookup window allows 300 requests / 15 min.
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiEnvelope struct {
	Data []model.UserProfile `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

func (c *httpClient) UsersByHandles(ctx context.Context, handles []string) ([]model.UserProfile, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	if len(handles) > MaxBatchSize {
		return nil, eris.Errorf("twitter: batch of %d exceeds limit of %d", len(handles), MaxBatchSize)
	}

	q := url.Values{}
	q.Set("usernames", strings.Join(handles, ","))
	q.Set("user.fields", userFields)

	env, err := c.get(ctx, "/users/by", q)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *httpClient) Follows(ctx context.Context, userID string, endpoint FollowEndpoint, token string) (*FollowPage, error) {
	if endpoint != EndpointFollowers && endpoint != EndpointFollowing {
		return nil, eris.Errorf("twitter: unknown follow endpoint %q", endpoint)
	}

	q := url.Values{}
	q.Set("max_results", strconv.Itoa(followPageSize))
	q.Set("user.fields", userFields)
	if token != "" {
		q.Set("pagination_token", token)
	}

	env, err := c.get(ctx, "/users/"+userID+"/"+string(endpoint), q)
	if err != nil {
		return nil, err
	}
	return &FollowPage{Users: env.Data, NextToken: env.Meta.NextToken}, nil
}

// get performs a GET with pacing and transient-error retries. Rate-limit
// responses surface as RateLimitError without retrying.
func (c *httpClient) get(ctx context.Context, path string, q url.Values) (*apiEnvelope, error) {
	return resilience.DoVal(ctx, c.retry, path, func(ctx context.Context) (*apiEnvelope, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "twitter: limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, eris.Wrap(err, "twitter: build request")
		}
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
		req.Header.Set("User-Agent", "citegraph/1.0")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "twitter: GET %s", path)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			io.Copy(io.Discard, resp.Body)
			return nil, &resilience.RateLimitError{Endpoint: path}
		case resilience.IsTransientHTTPStatus(resp.StatusCode):
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, resilience.NewTransientError(
				eris.Errorf("twitter: GET %s: status %d: %s", path, resp.StatusCode, body),
				resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, eris.Errorf("twitter: GET %s: status %d: %s", path, resp.StatusCode, body)
		}

		var env apiEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, eris.Wrapf(err, "twitter: decode %s response", path)
		}
		return &env, nil
	})
}
