package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/gateway"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/vector"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/logger"
)

// memCache is a minimal in-process EmbeddingCache for tests.
type memCache struct {
	vectors map[string][]float32
	hits    int
	puts    int
}

func newMemCache() *memCache { return &memCache{vectors: map[string][]float32{}} }

func (c *memCache) GetVector(_ context.Context, key string) ([]float32, bool) {
	v, ok := c.vectors[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *memCache) PutVector(_ context.Context, key string, vec []float32) {
	c.puts++
	c.vectors[key] = vec
}

func (c *memCache) Close() error { return nil }

func hit(videoID string, start, end, score float64, dir model.ScoreDirection) model.SearchHit {
	return model.SearchHit{
		VideoID:        videoID,
		SegmentID:      model.SegmentID(videoID, 0, start),
		StartSec:       start,
		EndSec:         end,
		Score:          score,
		ScoreDirection: dir,
	}
}

func newFixture() (*Coordinator, *gateway.MockGateway, *vector.MockSink, *vector.MockSink) {
	gw := gateway.NewMockGateway()
	primary := vector.NewMockSink("qdrant", model.ScoreSimilarity)
	secondary := vector.NewMockSink("pgvector", model.ScoreDistance)
	c := NewCoordinator(gw, []vector.Sink{primary, secondary}, nil, logger.NopSugar())
	return c, gw, primary, secondary
}

func TestSearch_EmptyQueryRejectedBeforeEmbedding(t *testing.T) {
	c, gw, _, _ := newFixture()

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := c.Search(context.Background(), q, 10, nil)
		assert.True(t, errors.IsValidation(err))
	}
	assert.Equal(t, 0, gw.EmbedCalls)
}

func TestSearch_BothSinksReported(t *testing.T) {
	c, _, primary, secondary := newFixture()
	primary.QueryHits = []model.SearchHit{hit("v1", 0, 10, 0.92, model.ScoreSimilarity)}
	secondary.QueryHits = []model.SearchHit{hit("v1", 0, 10, 0.08, model.ScoreDistance)}

	comparison, err := c.Search(context.Background(), "cat chasing laser", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, "cat chasing laser", comparison.Query)
	require.Len(t, comparison.Results, 2)

	q := comparison.Results["qdrant"]
	require.Len(t, q.Hits, 1)
	assert.Equal(t, model.ScoreSimilarity, q.Hits[0].ScoreDirection)
	assert.Empty(t, q.Error)

	p := comparison.Results["pgvector"]
	require.Len(t, p.Hits, 1)
	assert.Equal(t, model.ScoreDistance, p.Hits[0].ScoreDirection)
}

// One sink failing degrades its half of the comparison, never the whole
// search.
func TestSearch_SinkErrorIsIsolated(t *testing.T) {
	c, _, primary, secondary := newFixture()
	primary.QueryHits = []model.SearchHit{hit("v1", 0, 10, 0.92, model.ScoreSimilarity)}
	secondary.QueryErr = errors.Transient(nil, "connection refused")

	comparison, err := c.Search(context.Background(), "sunset", 10, nil)
	require.NoError(t, err)

	assert.Len(t, comparison.Results["qdrant"].Hits, 1)
	p := comparison.Results["pgvector"]
	assert.Empty(t, p.Hits)
	assert.NotNil(t, p.Hits)
	assert.Contains(t, p.Error, "connection refused")
}

func TestSearch_EmbedderErrorFailsSearch(t *testing.T) {
	c, gw, _, _ := newFixture()
	gw.TextErr = errors.Transient(nil, "throttled")

	_, err := c.Search(context.Background(), "sunset", 10, nil)
	assert.True(t, errors.IsTransient(err))
}

func TestSearch_CachedVectorSkipsEmbedder(t *testing.T) {
	gw := gateway.NewMockGateway()
	sink := vector.NewMockSink("qdrant", model.ScoreSimilarity)
	cache := newMemCache()
	c := NewCoordinator(gw, []vector.Sink{sink}, cache, logger.NopSugar())

	_, err := c.Search(context.Background(), "sunset", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.EmbedCalls)
	assert.Equal(t, 1, cache.puts)

	_, err = c.Search(context.Background(), "sunset", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.EmbedCalls)
	assert.Equal(t, 1, cache.hits)
}

func TestDedupe_KeepsDirectionBestScore(t *testing.T) {
	hits := []model.SearchHit{
		hit("v1", 0, 10, 0.6, model.ScoreSimilarity),
		hit("v1", 0, 10, 0.8, model.ScoreSimilarity),
		hit("v1", 10, 20, 0.5, model.ScoreSimilarity),
	}

	out := dedupe(hits, model.ScoreSimilarity, 10)
	require.Len(t, out, 2)
	assert.Equal(t, 0.8, out[0].Score)
	assert.Equal(t, 0.5, out[1].Score)
}

func TestDedupe_DistanceKeepsLower(t *testing.T) {
	hits := []model.SearchHit{
		hit("v1", 0, 10, 0.3, model.ScoreDistance),
		hit("v1", 0, 10, 0.1, model.ScoreDistance),
	}

	out := dedupe(hits, model.ScoreDistance, 10)
	require.Len(t, out, 1)
	assert.Equal(t, 0.1, out[0].Score)
}

func TestDedupe_DifferentVideosNotCollapsed(t *testing.T) {
	hits := []model.SearchHit{
		hit("v1", 0, 10, 0.6, model.ScoreSimilarity),
		hit("v2", 0, 10, 0.8, model.ScoreSimilarity),
	}

	out := dedupe(hits, model.ScoreSimilarity, 10)
	assert.Len(t, out, 2)
}

func TestDedupe_LimitAppliedAfterSort(t *testing.T) {
	hits := []model.SearchHit{
		hit("v1", 0, 10, 0.5, model.ScoreSimilarity),
		hit("v1", 10, 20, 0.9, model.ScoreSimilarity),
		hit("v1", 20, 30, 0.7, model.ScoreSimilarity),
	}

	out := dedupe(hits, model.ScoreSimilarity, 2)
	require.Len(t, out, 2)
	assert.Equal(t, 0.9, out[0].Score)
	assert.Equal(t, 0.7, out[1].Score)
}

func TestSearch_DefaultLimit(t *testing.T) {
	c, _, primary, _ := newFixture()

	var got []model.SearchHit
	for i := 0; i < 15; i++ {
		got = append(got, hit("v1", float64(i*10), float64(i*10+10), 0.5, model.ScoreSimilarity))
	}
	primary.QueryHits = got

	comparison, err := c.Search(context.Background(), "crowded", 0, nil)
	require.NoError(t, err)
	assert.Len(t, comparison.Results["qdrant"].Hits, DefaultLimit)
}
