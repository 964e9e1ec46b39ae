package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/logger"
)

func fastOptions() Options {
	return Options{
		CallTimeout:   5 * time.Second,
		MaxRetries:    2,
		RetryBackoff:  10 * time.Millisecond,
		TextEmbedWait: 3 * time.Second,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *TwelveLabsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTwelveLabsClient(srv.URL, "test-key", fastOptions(), logger.NopSugar())
}

func ref() model.VideoReference {
	return model.VideoReference{Bucket: "videos", Key: "videos/cat.mp4"}
}

func TestInvoke_SyncResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/model/")
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "describe this", body["inputPrompt"])
		src := body["mediaSource"].(map[string]interface{})["s3Location"].(map[string]interface{})
		assert.Equal(t, "s3://videos/videos/cat.mp4", src["uri"])

		json.NewEncoder(w).Encode(map[string]string{
			"message":      "a cat video",
			"finishReason": "stop",
		})
	})

	result, err := client.Invoke(context.Background(), ref(), "describe this")
	require.NoError(t, err)
	assert.True(t, result.SyncComplete())
	assert.Equal(t, "a cat video", result.Text)
	assert.Equal(t, "stop", result.FinishReason)
}

func TestInvoke_AsyncResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"invocationArn": "arn:invocation/analysis-1"})
	})

	result, err := client.Invoke(context.Background(), ref(), "describe this")
	require.NoError(t, err)
	assert.False(t, result.SyncComplete())
	assert.Equal(t, "arn:invocation/analysis-1", result.Handle)
}

func TestDo_RetriesThrottling(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "ok", "finishReason": "stop"})
	})

	result, err := client.Invoke(context.Background(), ref(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_ExhaustedRetriesSurfaceTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Invoke(context.Background(), ref(), "p")
	assert.True(t, errors.IsTransient(err))
}

func TestDo_NotFoundIsTerminal(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.CheckUnderstanding(context.Background(), "arn:invocation/gone")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_ClientErrorIsTerminal(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad input"}`))
	})

	_, err := client.Invoke(context.Background(), ref(), "p")
	require.Error(t, err)
	assert.False(t, errors.IsTransient(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCheckUnderstanding_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected JobPhase
	}{
		{"in_progress", "InProgress", PhaseRunning},
		{"completed", "Completed", PhaseCompleted},
		{"failed", "Failed", PhaseFailed},
		{"cancelled", "Cancelled", PhaseFailed},
		{"expired", "Expired", PhaseFailed},
		{"unknown_defaults_to_running", "Submitted", PhaseRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"status": tt.status})
			})
			st, err := client.CheckUnderstanding(context.Background(), "arn:invocation/x")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, st.Phase)
		})
	}
}

func TestStartVideoEmbedding_RequestShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "video", body["inputType"])
		assert.Equal(t, float64(10), body["useFixedLengthSec"])
		assert.Equal(t, float64(2), body["minClipSec"])
		opts := body["embeddingOption"].([]interface{})
		assert.ElementsMatch(t, []interface{}{"visual-text", "audio"}, opts)

		json.NewEncoder(w).Encode(map[string]string{"invocationArn": "arn:invocation/embed-1"})
	})

	handle, err := client.StartVideoEmbedding(context.Background(), ref(), "video-42")
	require.NoError(t, err)
	assert.Equal(t, "arn:invocation/embed-1", handle)
}

func TestStartVideoEmbedding_MissingHandle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := client.StartVideoEmbedding(context.Background(), ref(), "video-42")
	assert.Error(t, err)
}

func TestCheckVideoEmbedding_Segments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "Completed",
			"data": []map[string]interface{}{
				{"startSec": 0, "endSec": 10, "embeddingOption": "visual-text", "embedding": []float64{0.1, 0.2}},
				{"startSec": 0, "endSec": 10, "embeddingOption": "audio", "embedding": []float64{0.3, 0.4}},
			},
		})
	})

	st, err := client.CheckVideoEmbedding(context.Background(), "arn:invocation/embed-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, st.Phase)
	require.Len(t, st.Segments, 2)
	assert.Equal(t, "audio", st.Segments[1].EmbeddingOption)
	assert.Equal(t, []float32{0.1, 0.2}, st.Segments[0].Embedding)
}

func TestEmbedText_PollsUntilComplete(t *testing.T) {
	var statusCalls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"invocationArn": "arn:invocation/text-1"})
			return
		}
		if atomic.AddInt32(&statusCalls, 1) < 2 {
			json.NewEncoder(w).Encode(map[string]string{"status": "InProgress"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "Completed",
			"data":   []map[string]interface{}{{"embedding": []float64{0.5, 0.6}}},
		})
	})

	vec, err := client.EmbedText(context.Background(), "cat chasing laser")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.6}, vec)
}

func TestEmbedText_FailureReported(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"invocationArn": "arn:invocation/text-2"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "Failed", "failureMessage": "input too long"})
	})

	_, err := client.EmbedText(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input too long")
}
