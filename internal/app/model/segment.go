package model

import "fmt"

// EmbeddingKind distinguishes the modality a segment vector was derived from.
type EmbeddingKind string

const (
	EmbeddingVisualText  EmbeddingKind = "visual-text"
	EmbeddingVisualImage EmbeddingKind = "visual-image"
	EmbeddingAudio       EmbeddingKind = "audio"
)

// VectorDimension is the fixed length of the video embedding space.
const VectorDimension = 1024

// Segment is a time-bounded slice of a video's embedding output.
// (VideoID, SegmentID, EmbeddingKind) is the upsert key: re-running
// embedding for the same video overwrites, never duplicates.
type Segment struct {
	VideoID       string            `json:"videoId"`
	SegmentID     string            `json:"segmentId"`
	StartSec      float64           `json:"startSec"`
	EndSec        float64           `json:"endSec"`
	EmbeddingKind EmbeddingKind     `json:"embeddingKind"`
	Vector        []float32         `json:"-"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Key returns the unique upsert key for the segment.
func (s Segment) Key() string {
	return fmt.Sprintf("%s/%s/%s", s.VideoID, s.SegmentID, s.EmbeddingKind)
}

// SegmentID builds the canonical segment identifier, matching the layout the
// storage backends were seeded with: {videoId}_segment_{index}_{startSec}.
func SegmentID(videoID string, index int, startSec float64) string {
	return fmt.Sprintf("%s_segment_%d_%g", videoID, index, startSec)
}

// SinkWriteOutcome is the per-sink result of writing one batch of segments.
// The two outcomes of an embedding job are independent: one sink failing
// neither blocks nor rolls back the other.
type SinkWriteOutcome struct {
	SinkName        string `json:"sinkName"`
	SegmentsWritten int    `json:"segmentsWritten"`
	ElapsedMillis   int64  `json:"elapsedMillis"`
	Error           string `json:"error,omitempty"`
}

// OK reports whether the write succeeded.
func (o SinkWriteOutcome) OK() bool {
	return o.Error == ""
}
