package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfileJSONShape(t *testing.T) {
	raw := `{
		"id": "14499829",
		"username": "WHO",
		"name": "World Health Organization",
		"verified": true,
		"created_at": "2008-04-23T19:56:27Z",
		"public_metrics": {
			"followers_count": 9000000,
			"following_count": 1700,
			"tweet_count": 60000,
			"listed_count": 30000
		}
	}`

	var p UserProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "14499829", p.ID)
	assert.Equal(t, "WHO", p.Username)
	assert.True(t, p.Verified)
	assert.Equal(t, 9000000, p.PublicMetrics.Followers)
	assert.Equal(t, 1700, p.PublicMetrics.Following)
	assert.Equal(t, 60000, p.PublicMetrics.TweetCount)
}

func TestAccountAgeDays(t *testing.T) {
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	p := UserProfile{CreatedAt: now.AddDate(0, 0, -365)}
	assert.Equal(t, 365, p.AccountAgeDays(now))

	var zero UserProfile
	assert.Equal(t, 0, zero.AccountAgeDays(now))
}
