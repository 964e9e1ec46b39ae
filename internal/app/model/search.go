package model

// ScoreDirection tags which way a sink's score points. The two backends
// disagree: one reports cosine similarity (higher is better), the other
// cosine distance (lower is better). A score is never meaningful without
// its direction.
type ScoreDirection string

const (
	// ScoreSimilarity means a higher score is a closer match.
	ScoreSimilarity ScoreDirection = "similarity"
	// ScoreDistance means a lower score is a closer match.
	ScoreDistance ScoreDirection = "distance"
)

// Better reports whether score a is a closer match than score b under this
// direction.
func (d ScoreDirection) Better(a, b float64) bool {
	if d == ScoreDistance {
		return a < b
	}
	return a > b
}

// SearchHit is one ranked result from one sink.
type SearchHit struct {
	VideoID        string            `json:"videoId"`
	SegmentID      string            `json:"segmentId"`
	StartSec       float64           `json:"startSec"`
	EndSec         float64           `json:"endSec"`
	EmbeddingKind  EmbeddingKind     `json:"embeddingKind"`
	Score          float64           `json:"score"`
	ScoreDirection ScoreDirection    `json:"scoreDirection"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// SinkSearchResult is one sink's half of a dual search: its deduplicated
// hits, how long the query took, and its error if it failed. A failed sink
// still yields a well-formed result with empty hits.
type SinkSearchResult struct {
	SinkName      string      `json:"sinkName"`
	Hits          []SearchHit `json:"hits"`
	ElapsedMillis int64       `json:"elapsedMillis"`
	Error         string      `json:"error,omitempty"`
}

// SearchComparison is the output of one dual search. The two result sets are
// independently presented; no invariant ties them together and no cross-sink
// merge or deduplication is performed.
type SearchComparison struct {
	Query   string                      `json:"query"`
	Results map[string]SinkSearchResult `json:"results"`
}
