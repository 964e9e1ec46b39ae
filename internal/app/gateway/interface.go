package gateway

import (
	"context"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// JobPhase is the external model's view of an asynchronous invocation.
type JobPhase string

const (
	PhaseRunning   JobPhase = "running"
	PhaseCompleted JobPhase = "completed"
	PhaseFailed    JobPhase = "failed"
)

// UnderstandingResult is the response to an understanding invocation. The
// deployed model may answer synchronously or hand back a pollable handle;
// exactly one of Text or Handle is set.
type UnderstandingResult struct {
	Text         string
	FinishReason string
	Handle       string
}

// SyncComplete reports whether the model produced its answer inline.
func (r UnderstandingResult) SyncComplete() bool {
	return r.Handle == ""
}

// UnderstandingStatus is one poll of an asynchronous understanding invocation.
type UnderstandingStatus struct {
	Phase        JobPhase
	Text         string
	FinishReason string
	// ErrorReason carries the model's failure message verbatim.
	ErrorReason string
}

// RawSegment is one (time-window, embedding-kind) entry of the embedding
// model's raw output, before it is shaped into model.Segment records.
type RawSegment struct {
	StartSec        float64   `json:"startSec"`
	EndSec          float64   `json:"endSec"`
	EmbeddingOption string    `json:"embeddingOption"`
	Embedding       []float32 `json:"embedding"`
}

// EmbeddingStatus is one poll of an asynchronous video-embedding invocation.
// Segments is populated only when Phase is PhaseCompleted.
type EmbeddingStatus struct {
	Phase       JobPhase
	Segments    []RawSegment
	ErrorReason string
}

// UnderstandingProvider is the call surface over the external
// video-understanding model.
type UnderstandingProvider interface {
	// Invoke asks the model to analyze the video. Blocks up to the model-side
	// timeout when the deployment answers synchronously; otherwise returns a
	// pollable handle immediately.
	Invoke(ctx context.Context, ref model.VideoReference, prompt string) (UnderstandingResult, error)
	// CheckUnderstanding polls an asynchronous invocation by its handle.
	CheckUnderstanding(ctx context.Context, handle string) (UnderstandingStatus, error)
}

// EmbeddingProvider is the call surface over the external video-embedding
// model. Video embedding is always asynchronous.
type EmbeddingProvider interface {
	StartVideoEmbedding(ctx context.Context, ref model.VideoReference, videoID string) (handle string, err error)
	CheckVideoEmbedding(ctx context.Context, handle string) (EmbeddingStatus, error)
}

// TextEmbedder converts query text into the embedding space the stored
// segment vectors live in.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	ProviderInfo() ProviderInfo
}

// ProviderInfo describes a text-embedding provider.
type ProviderInfo struct {
	Name      string
	Model     string
	Dimension int
}

// Gateway is the uniform call surface over both external model operations.
type Gateway interface {
	UnderstandingProvider
	EmbeddingProvider
	TextEmbedder
}
