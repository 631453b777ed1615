package model

// Credibility is the external classification of a news source.
type Credibility string

const (
	CredibilityReliable   Credibility = "reliable"
	CredibilityUnreliable Credibility = "unreliable"
	CredibilityUnlabeled  Credibility = "unlabeled"
)

// SourceLabel carries the external credibility and bias ratings for a
// news source, loaded from the label table.
type SourceLabel struct {
	Source      string      `json:"source"`
	Country     string      `json:"country,omitempty"`
	Credibility Credibility `json:"credibility"`
	Bias        string      `json:"bias,omitempty"`
}
