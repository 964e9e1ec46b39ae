package model

import (
	"time"
)

// JobKind identifies which external model a job runs against.
type JobKind string

const (
	JobKindUnderstanding JobKind = "understanding"
	JobKindEmbedding     JobKind = "embedding"
)

// JobState is the closed set of lifecycle states for an asynchronous job.
type JobState string

const (
	JobStateSubmitted JobState = "submitted"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// Terminal reports whether the state can never change again.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// JobResult holds the payload of a completed job. Exactly one of the
// kind-specific sections is populated, matching the job's Kind.
type JobResult struct {
	// Understanding
	Text         string `json:"text,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`

	// Embedding
	SegmentCount    int                `json:"segmentCount,omitempty"`
	PerSinkOutcomes []SinkWriteOutcome `json:"perSinkOutcomes,omitempty"`
}

// Job represents one handle-tracked asynchronous operation against an
// external model. State transitions are monotonic:
// Submitted -> Running -> {Completed | Failed}. A terminal job never mutates;
// re-polling it returns the identical result.
type Job struct {
	ID             string         `json:"id" db:"id"`
	Kind           JobKind        `json:"kind" db:"kind"`
	State          JobState       `json:"state" db:"state"`
	VideoRef       VideoReference `json:"videoRef" db:"video_ref"`
	VideoID        string         `json:"videoId" db:"video_id"`
	Prompt         string         `json:"prompt,omitempty" db:"prompt"`
	ProviderHandle string         `json:"providerHandle,omitempty" db:"provider_handle"`
	Result         *JobResult     `json:"result,omitempty" db:"result"`
	ErrorDetail    string         `json:"errorDetail,omitempty" db:"error_detail"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	LastPolledAt   time.Time      `json:"lastPolledAt" db:"last_polled_at"`
}

// VideoReference is the opaque durable locator for an uploaded video,
// produced by the upload collaborator. Immutable once created.
type VideoReference struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// URI renders the reference in s3://bucket/key form, the shape the external
// model backends consume.
func (r VideoReference) URI() string {
	return "s3://" + r.Bucket + "/" + r.Key
}

// IsZero reports whether the reference is missing its bucket or key. A
// half-set reference cannot address a stored object.
func (r VideoReference) IsZero() bool {
	return r.Bucket == "" || r.Key == ""
}
