package vector

import (
	"context"
	"sync"
	"time"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// MockSink is an in-memory Sink for tests. It honors the overwrite contract
// by keying stored segments on the segment key, and can be scripted with a
// per-call latency and errors.
type MockSink struct {
	mu       sync.Mutex
	name     string
	dir      model.ScoreDirection
	segments map[string]model.Segment

	WriteErr   error
	QueryErr   error
	FlushErr   error
	QueryHits  []model.SearchHit
	CallDelay  time.Duration
	WriteCalls int
	QueryCalls int
	FlushCalls int
}

// NewMockSink creates a mock sink reporting the given score direction.
func NewMockSink(name string, dir model.ScoreDirection) *MockSink {
	return &MockSink{
		name:     name,
		dir:      dir,
		segments: make(map[string]model.Segment),
	}
}

// Name implements Sink.
func (m *MockSink) Name() string { return m.name }

// ScoreDirection implements Sink.
func (m *MockSink) ScoreDirection() model.ScoreDirection { return m.dir }

// Write implements Sink with idempotent key-based overwrite.
func (m *MockSink) Write(ctx context.Context, segments []model.Segment) (int, error) {
	m.delay(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls++
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	for _, seg := range segments {
		m.segments[seg.Key()] = seg
	}
	return len(segments), nil
}

// Query implements Sink. When QueryHits is scripted those are returned;
// otherwise every stored segment becomes a hit tagged with this sink's
// direction.
func (m *MockSink) Query(ctx context.Context, _ []float32, limit int, filter map[string]string) ([]model.SearchHit, error) {
	m.delay(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls++
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if m.QueryHits != nil {
		return m.QueryHits, nil
	}

	var hits []model.SearchHit
	for _, seg := range m.segments {
		if v, ok := filter["videoId"]; ok && v != seg.VideoID {
			continue
		}
		score := 0.9
		if m.dir == model.ScoreDistance {
			score = 0.1
		}
		hits = append(hits, model.SearchHit{
			VideoID:        seg.VideoID,
			SegmentID:      seg.SegmentID,
			StartSec:       seg.StartSec,
			EndSec:         seg.EndSec,
			EmbeddingKind:  seg.EmbeddingKind,
			Score:          score,
			ScoreDirection: m.dir,
			Metadata:       seg.Metadata,
		})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

// Flush implements Sink by dropping every stored segment.
func (m *MockSink) Flush(ctx context.Context) error {
	m.delay(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCalls++
	if m.FlushErr != nil {
		return m.FlushErr
	}
	m.segments = make(map[string]model.Segment)
	return nil
}

// StoredCount returns how many unique segment keys the sink holds.
func (m *MockSink) StoredCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.segments)
}

// Close implements Sink.
func (m *MockSink) Close() error { return nil }

func (m *MockSink) delay(ctx context.Context) {
	if m.CallDelay > 0 {
		select {
		case <-time.After(m.CallDelay):
		case <-ctx.Done():
		}
	}
}
