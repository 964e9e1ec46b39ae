package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentID(t *testing.T) {
	tests := []struct {
		name     string
		videoID  string
		index    int
		startSec float64
		expected string
	}{
		{"integral_start", "video-42", 0, 0, "video-42_segment_0_0"},
		{"later_segment", "video-42", 3, 30, "video-42_segment_3_30"},
		{"fractional_start", "clip", 1, 7.5, "clip_segment_1_7.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SegmentID(tt.videoID, tt.index, tt.startSec))
		})
	}
}

func TestSegmentKey(t *testing.T) {
	seg := Segment{VideoID: "v1", SegmentID: "v1_segment_0_0", EmbeddingKind: EmbeddingAudio}
	assert.Equal(t, "v1/v1_segment_0_0/audio", seg.Key())
}

func TestScoreDirection_Better(t *testing.T) {
	assert.True(t, ScoreSimilarity.Better(0.9, 0.5))
	assert.False(t, ScoreSimilarity.Better(0.5, 0.9))
	assert.True(t, ScoreDistance.Better(0.1, 0.4))
	assert.False(t, ScoreDistance.Better(0.4, 0.1))
}

func TestJobState_Terminal(t *testing.T) {
	assert.False(t, JobStateSubmitted.Terminal())
	assert.False(t, JobStateRunning.Terminal())
	assert.True(t, JobStateCompleted.Terminal())
	assert.True(t, JobStateFailed.Terminal())
}

func TestVideoReference(t *testing.T) {
	ref := VideoReference{Bucket: "videos", Key: "videos/cat.mp4"}
	assert.Equal(t, "s3://videos/videos/cat.mp4", ref.URI())
	assert.False(t, ref.IsZero())
	assert.True(t, VideoReference{}.IsZero())
	assert.True(t, VideoReference{Bucket: "videos"}.IsZero())
	assert.True(t, VideoReference{Key: "videos/cat.mp4"}.IsZero())
}

func TestSinkWriteOutcome_OK(t *testing.T) {
	assert.True(t, SinkWriteOutcome{SinkName: "qdrant", SegmentsWritten: 4}.OK())
	assert.False(t, SinkWriteOutcome{SinkName: "pgvector", Error: "timeout"}.OK())
}
