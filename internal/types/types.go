// Package types holds the core data model shared by the scraper,
// the translation engine, and the CLI.
package types

// Tweet is a single post scraped from a thread. Immutable once scraped;
// the engine consumes it read-only.
type Tweet struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Author     string `json:"author"`
	Timestamp  string `json:"timestamp"` // ISO-8601
	IsMainPost bool   `json:"isMainPost"`
}

// QuickTranslation is the minimal translation unit, keyed by Tweet.ID.
type QuickTranslation struct {
	ID                 string `json:"id"`
	NaturalTranslation string `json:"naturalTranslation"`
}

// Segment is one analyzed span of the source text. All three fields are
// non-empty whenever a Segment is surfaced to a caller; malformed
// candidates are dropped during recovery.
type Segment struct {
	Chinese string `json:"chinese"`
	Pinyin  string `json:"pinyin"`
	Gloss   string `json:"gloss"`
}

// Valid reports whether all required fields are present.
func (s Segment) Valid() bool {
	return s.Chinese != "" && s.Pinyin != "" && s.Gloss != ""
}

// TranslatedTweet is a QuickTranslation extended with the full learner
// breakdown for that tweet.
type TranslatedTweet struct {
	QuickTranslation
	Segments []Segment `json:"segments"`
	Notes    []string  `json:"notes"`
}

// Breakdown is the result of analyzing a single text block.
type Breakdown struct {
	Segments []Segment `json:"segments"`
	Notes    []string  `json:"notes"`
}

// UsageStats carries provider-reported token counts for one completed call.
type UsageStats struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// ThreadContext is the optional original-post context attached to a
// breakdown request for a reply.
type ThreadContext struct {
	Author string `json:"author,omitempty"`
	Text   string `json:"text,omitempty"`
	URL    string `json:"url,omitempty"`
}
