package job

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/gateway"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/jobstore"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/vector"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/logger"
)

func rawSegments() []gateway.RawSegment {
	return []gateway.RawSegment{
		{StartSec: 0, EndSec: 10, EmbeddingOption: "visual-text", Embedding: []float32{0.1, 0.2}},
		{StartSec: 0, EndSec: 10, EmbeddingOption: "audio", Embedding: []float32{0.3, 0.4}},
		{StartSec: 10, EndSec: 20, EmbeddingOption: "visual-text", Embedding: []float32{0.5, 0.6}},
	}
}

func newEmbeddingFixture() (*EmbeddingManager, *gateway.MockGateway, *vector.MockSink, *vector.MockSink, jobstore.Store) {
	gw := gateway.NewMockGateway()
	primary := vector.NewMockSink("qdrant", model.ScoreSimilarity)
	secondary := vector.NewMockSink("pgvector", model.ScoreDistance)
	store := jobstore.NewMemoryStore()
	m := NewEmbeddingManager(store, gw, []vector.Sink{primary, secondary}, &stubChecker{}, logger.NopSugar())
	return m, gw, primary, secondary, store
}

func TestEmbeddingSubmit_Validation(t *testing.T) {
	m, _, _, _, _ := newEmbeddingFixture()

	_, err := m.Submit(context.Background(), model.VideoReference{}, "v1")
	assert.True(t, errors.IsValidation(err))

	_, err = m.Submit(context.Background(), model.VideoReference{Key: "videos/cat.mp4"}, "v1")
	assert.True(t, errors.IsValidation(err))

	_, err = m.Submit(context.Background(), testRef(), "  ")
	assert.True(t, errors.IsValidation(err))
}

func TestEmbeddingSubmit_JobKeyedByHandle(t *testing.T) {
	m, gw, _, _, store := newEmbeddingFixture()
	gw.StartHandle = "arn:mock:invocation/embed-42"

	handle, err := m.Submit(context.Background(), testRef(), "video-42")
	require.NoError(t, err)
	assert.Equal(t, "arn:mock:invocation/embed-42", handle)

	j, err := store.Get(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, model.JobKindEmbedding, j.Kind)
	assert.Equal(t, model.JobStateSubmitted, j.State)
	assert.Equal(t, "video-42", j.VideoID)
}

func TestEmbedding_CompletionFansOutToBothSinks(t *testing.T) {
	m, gw, primary, secondary, _ := newEmbeddingFixture()
	gw.EmbeddingStatuses = []gateway.EmbeddingStatus{
		{Phase: gateway.PhaseCompleted, Segments: rawSegments()},
	}

	handle, err := m.Submit(context.Background(), testRef(), "video-42")
	require.NoError(t, err)

	v, err := m.Poll(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateCompleted, v.State)
	assert.Equal(t, 3, v.SegmentCount)
	require.Len(t, v.PerSinkOutcomes, 2)
	for _, o := range v.PerSinkOutcomes {
		assert.True(t, o.OK())
		assert.Equal(t, 3, o.SegmentsWritten)
	}
	assert.Equal(t, 3, primary.StoredCount())
	assert.Equal(t, 3, secondary.StoredCount())
}

// One sink failing is recorded in its outcome; the job still completes and
// the healthy sink keeps its writes.
func TestEmbedding_SinkFailureIsIsolated(t *testing.T) {
	m, gw, primary, secondary, _ := newEmbeddingFixture()
	gw.EmbeddingStatuses = []gateway.EmbeddingStatus{
		{Phase: gateway.PhaseCompleted, Segments: rawSegments()},
	}
	secondary.WriteErr = errors.Transient(nil, "connection refused")

	handle, err := m.Submit(context.Background(), testRef(), "video-42")
	require.NoError(t, err)

	v, err := m.Poll(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateCompleted, v.State)

	byName := map[string]model.SinkWriteOutcome{}
	for _, o := range v.PerSinkOutcomes {
		byName[o.SinkName] = o
	}
	assert.True(t, byName["qdrant"].OK())
	assert.Equal(t, 3, byName["qdrant"].SegmentsWritten)
	assert.False(t, byName["pgvector"].OK())
	assert.Equal(t, 0, byName["pgvector"].SegmentsWritten)
	assert.Contains(t, byName["pgvector"].Error, "connection refused")
	assert.Equal(t, 3, primary.StoredCount())
}

// Both sinks failing still completes the job: the embeddings are
// retrievable from the model and indexing can be retried.
func TestEmbedding_BothSinksFailStillCompletes(t *testing.T) {
	m, gw, primary, secondary, _ := newEmbeddingFixture()
	gw.EmbeddingStatuses = []gateway.EmbeddingStatus{
		{Phase: gateway.PhaseCompleted, Segments: rawSegments()},
	}
	primary.WriteErr = errors.Transient(nil, "timeout")
	secondary.WriteErr = errors.Transient(nil, "timeout")

	handle, err := m.Submit(context.Background(), testRef(), "video-42")
	require.NoError(t, err)

	v, err := m.Poll(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateCompleted, v.State)
	for _, o := range v.PerSinkOutcomes {
		assert.False(t, o.OK())
		assert.Equal(t, 0, o.SegmentsWritten)
	}
	// The count reports parsed segments; the per-sink outcomes carry what
	// actually landed.
	assert.Equal(t, 3, v.SegmentCount)
	assert.Equal(t, 0, primary.StoredCount())
	assert.Equal(t, 0, secondary.StoredCount())
}

func TestEmbedding_ProviderFailure(t *testing.T) {
	m, gw, _, _, _ := newEmbeddingFixture()
	gw.EmbeddingStatuses = []gateway.EmbeddingStatus{
		{Phase: gateway.PhaseFailed, ErrorReason: "ModelErrorException: unsupported codec"},
	}

	handle, err := m.Submit(context.Background(), testRef(), "video-42")
	require.NoError(t, err)

	v, err := m.Poll(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateFailed, v.State)
	assert.Equal(t, "ModelErrorException: unsupported codec", v.Error)
}

// Concurrent polls observing the same completed invocation must fan out
// exactly once per sink.
func TestEmbedding_ConcurrentPollsWriteOnce(t *testing.T) {
	m, gw, primary, secondary, _ := newEmbeddingFixture()
	gw.EmbeddingStatuses = []gateway.EmbeddingStatus{
		{Phase: gateway.PhaseCompleted, Segments: rawSegments()},
	}

	handle, err := m.Submit(context.Background(), testRef(), "video-42")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Poll(context.Background(), handle)
			assert.NoError(t, err)
			assert.Equal(t, model.JobStateCompleted, v.State)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, primary.WriteCalls)
	assert.Equal(t, 1, secondary.WriteCalls)
}

// Re-polling after completion returns the cached outcome without rewriting.
func TestEmbedding_TerminalRepollDoesNotRewrite(t *testing.T) {
	m, gw, primary, _, _ := newEmbeddingFixture()
	gw.EmbeddingStatuses = []gateway.EmbeddingStatus{
		{Phase: gateway.PhaseCompleted, Segments: rawSegments()},
	}

	handle, err := m.Submit(context.Background(), testRef(), "video-42")
	require.NoError(t, err)

	_, err = m.Poll(context.Background(), handle)
	require.NoError(t, err)
	v, err := m.Poll(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateCompleted, v.State)
	assert.Equal(t, 1, primary.WriteCalls)
}

func TestParseSegments(t *testing.T) {
	segs := ParseSegments("video-42", testRef(), rawSegments())
	require.Len(t, segs, 3)

	assert.Equal(t, "video-42_segment_0_0", segs[0].SegmentID)
	assert.Equal(t, model.EmbeddingVisualText, segs[0].EmbeddingKind)
	assert.Equal(t, model.EmbeddingAudio, segs[1].EmbeddingKind)
	assert.Equal(t, "video-42_segment_2_10", segs[2].SegmentID)
	assert.Equal(t, "s3://videos/videos/cat.mp4", segs[0].Metadata["videoS3Uri"])

	// Same window, different modality: distinct upsert keys.
	assert.NotEqual(t, segs[0].Key(), segs[1].Key())
}

func TestParseSegments_DefaultKind(t *testing.T) {
	segs := ParseSegments("v", testRef(), []gateway.RawSegment{{StartSec: 0, EndSec: 5}})
	require.Len(t, segs, 1)
	assert.Equal(t, model.EmbeddingVisualText, segs[0].EmbeddingKind)
}
