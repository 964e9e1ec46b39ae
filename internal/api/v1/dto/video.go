package dto

import (
	"time"
)

// UploadRequest asks for a presigned upload slot for one video file.
type UploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType"`
}

// UploadResponse carries the presigned URL plus the storage location the
// client should quote back in analyze/embed requests.
type UploadResponse struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	VideoURI  string    `json:"videoUri"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PlaybackURLResponse carries a presigned GET URL for a stored video.
type PlaybackURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AnalyzeRequest submits a video understanding job.
type AnalyzeRequest struct {
	Bucket string `json:"bucket" binding:"required"`
	Key    string `json:"key" binding:"required"`
	Prompt string `json:"prompt"`
}

// EmbedRequest submits a video embedding job.
type EmbedRequest struct {
	Bucket  string `json:"bucket" binding:"required"`
	Key     string `json:"key" binding:"required"`
	VideoID string `json:"videoId" binding:"required"`
}

// SubmitResponse acknowledges an accepted async job.
type SubmitResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// FlushResponse reports the per-sink outcome of a vector store flush.
type FlushResponse struct {
	Sinks map[string]string `json:"sinks"`
}
