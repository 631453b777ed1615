package resilience

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsRateLimit(t *testing.T) {
	err := eris.Wrap(&RateLimitError{Endpoint: "users/by"}, "fetch batch")
	assert.True(t, IsRateLimit(err))
	assert.False(t, IsRateLimit(errors.New("boom")))
	assert.False(t, IsRateLimit(nil))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("bad request")))
	assert.True(t, IsTransient(NewTransientError(errors.New("upstream 503"), 503)))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))

	// Rate limits take the cooldown path, never the retry path.
	assert.False(t, IsTransient(&RateLimitError{Endpoint: "followers"}))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 400, 401, 404, 429} {
		assert.False(t, IsTransientHTTPStatus(code), "code %d", code)
	}
}
