package model

// UnknownAuthor is the sentinel handle for tweets whose author could not
// be resolved from the embedded URL. Events carrying it are excluded from
// citation counting.
const UnknownAuthor = "[UNKNOWN]"

// CitationEvent is one observed embedding of a tweet by a news article.
type CitationEvent struct {
	Source    string `json:"source"`
	ArticleID string `json:"article_id"`
	URL       string `json:"url"`
	RowID     int64  `json:"rowid"`
}

// AuthorCount is one row of the author citation ranking.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}
