package vector

import (
	"context"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// Sink is the shared capability interface over the vector backends.
// The coordinator and the embedding manager are backend-agnostic: adding a
// third backend means another implementation, not new branching.
type Sink interface {
	// Name identifies the sink in outcomes and comparisons.
	Name() string
	// ScoreDirection declares how this sink's query scores are ordered.
	ScoreDirection() model.ScoreDirection
	// Write upserts a batch of segments. Rewriting a segment with an
	// identical (videoId, segmentId, embeddingKind) key overwrites it.
	// Returns the number of segments written.
	Write(ctx context.Context, segments []model.Segment) (int, error)
	// Query runs nearest-neighbor search. Hits carry this sink's score
	// direction. filter restricts by metadata equality (nil for none).
	Query(ctx context.Context, vec []float32, limit int, filter map[string]string) ([]model.SearchHit, error)
	// Flush removes every stored segment. Maintenance operation for
	// re-indexing a corpus from scratch.
	Flush(ctx context.Context) error
	// Close releases backend connections.
	Close() error
}
