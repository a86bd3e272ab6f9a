package models

// QueryKind classifies an incoming user query.
type QueryKind string

const (
	KindVenueQuery      QueryKind = "venue_query"
	KindGreeting        QueryKind = "greeting"
	KindGeneralQuestion QueryKind = "general_question"
	KindOffTopic        QueryKind = "off_topic"
)

// ValidQueryKinds is the set of all valid query kinds.
var ValidQueryKinds = []QueryKind{
	KindVenueQuery,
	KindGreeting,
	KindGeneralQuestion,
	KindOffTopic,
}

// IsValid returns true if the query kind is recognized.
func (k QueryKind) IsValid() bool {
	for _, v := range ValidQueryKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Classification is the verdict produced for every incoming query.
type Classification struct {
	NeedsRetrieval bool      `json:"needs_retrieval"`
	Kind           QueryKind `json:"kind"`
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the rolling conversation history. History is owned
// by the caller and passed in per call; the core holds no dialogue state.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HistoryWindow is the maximum number of turns the pipeline will look at.
const HistoryWindow = 10

// Answer is the terminal result of one pipeline run.
type Answer struct {
	Query       string        `json:"query"`
	Text        string        `json:"answer"`
	Sources     []ScoredVenue `json:"sources"`
	SourceCount int           `json:"source_count"`
}

// IndexStats holds summary statistics about the venue collection.
type IndexStats struct {
	TotalVenues int64            `json:"total_venues"`
	ByCategory  map[string]int64 `json:"by_category"`
	ByPriceTier map[string]int64 `json:"by_price_tier"`
}
