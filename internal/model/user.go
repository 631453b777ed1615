package model

import "time"

// PublicMetrics holds the public counters of a Twitter account.
type PublicMetrics struct {
	Followers  int `json:"followers_count"`
	Following  int `json:"following_count"`
	TweetCount int `json:"tweet_count"`
	Listed     int `json:"listed_count"`
}

// UserProfile is a collected Twitter user profile, cached as JSON keyed
// by handle between collection and graph construction.
type UserProfile struct {
	ID            string        `json:"id"`
	Username      string        `json:"username"`
	Name          string        `json:"name,omitempty"`
	Description   string        `json:"description,omitempty"`
	Location      string        `json:"location,omitempty"`
	Verified      bool          `json:"verified"`
	Protected     bool          `json:"protected,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	PublicMetrics PublicMetrics `json:"public_metrics"`
}

// AccountAgeDays returns the account age in days at the given reference
// time. Returns 0 for profiles with no creation timestamp.
func (p *UserProfile) AccountAgeDays(now time.Time) int {
	if p.CreatedAt.IsZero() {
		return 0
	}
	return int(now.Sub(p.CreatedAt).Hours() / 24)
}
