package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// Model identifiers for the two TwelveLabs models behind the serving endpoint.
const (
	PegasusModelID = "us.twelvelabs.pegasus-1-2-v1:0"
	MarengoModelID = "twelvelabs.marengo-embed-2-7-v1:0"
)

// Options tunes the HTTP client. Zero values fall back to defaults.
type Options struct {
	// CallTimeout bounds a single HTTP round trip. The understanding model
	// can block for minutes when it answers synchronously.
	CallTimeout time.Duration
	// MaxRetries bounds retries of throttled or 5xx responses.
	MaxRetries int
	// RetryBackoff is the initial backoff, doubled per attempt.
	RetryBackoff time.Duration
	// TextEmbedWait bounds the inline poll loop for query-text embeddings.
	TextEmbedWait time.Duration
}

func (o *Options) withDefaults() {
	if o.CallTimeout == 0 {
		o.CallTimeout = 5 * time.Minute
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.RetryBackoff == 0 {
		o.RetryBackoff = 500 * time.Millisecond
	}
	if o.TextEmbedWait == 0 {
		o.TextEmbedWait = 25 * time.Second
	}
}

// TwelveLabsClient talks to a TwelveLabs model-serving endpoint: synchronous
// invoke for Pegasus, async invoke plus status polling for Marengo.
type TwelveLabsClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	opts    Options
	log     *zap.SugaredLogger
}

// NewTwelveLabsClient creates a gateway client for the given endpoint.
func NewTwelveLabsClient(baseURL, apiKey string, opts Options, log *zap.SugaredLogger) *TwelveLabsClient {
	opts.withDefaults()
	return &TwelveLabsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: opts.CallTimeout},
		opts:    opts,
		log:     log,
	}
}

type mediaSource struct {
	S3Location struct {
		URI string `json:"uri"`
	} `json:"s3Location"`
}

func sourceFor(ref model.VideoReference) mediaSource {
	var src mediaSource
	src.S3Location.URI = ref.URI()
	return src
}

type understandingRequest struct {
	InputPrompt     string      `json:"inputPrompt"`
	MediaSource     mediaSource `json:"mediaSource"`
	Temperature     float64     `json:"temperature"`
	MaxOutputTokens int         `json:"maxOutputTokens"`
}

type understandingResponse struct {
	Message       string `json:"message"`
	FinishReason  string `json:"finishReason"`
	InvocationArn string `json:"invocationArn"`
}

// Invoke calls the Pegasus model. A deployment configured for synchronous
// serving answers with the text inline; one configured for asynchronous
// serving answers 202 with an invocation handle. Both shapes are supported
// and the caller decides from the result which one it got.
func (c *TwelveLabsClient) Invoke(ctx context.Context, ref model.VideoReference, prompt string) (UnderstandingResult, error) {
	req := understandingRequest{
		InputPrompt:     prompt,
		MediaSource:     sourceFor(ref),
		Temperature:     0.2,
		MaxOutputTokens: 4096,
	}
	var resp understandingResponse
	if err := c.post(ctx, fmt.Sprintf("/model/%s/invoke", url.PathEscape(PegasusModelID)), req, &resp); err != nil {
		return UnderstandingResult{}, err
	}
	if resp.InvocationArn != "" {
		return UnderstandingResult{Handle: resp.InvocationArn}, nil
	}
	return UnderstandingResult{Text: resp.Message, FinishReason: resp.FinishReason}, nil
}

type invocationStatus struct {
	Status         string       `json:"status"`
	Message        string       `json:"message"`
	FinishReason   string       `json:"finishReason"`
	FailureMessage string       `json:"failureMessage"`
	Data           []RawSegment `json:"data"`
}

func (s invocationStatus) phase() JobPhase {
	switch s.Status {
	case "Completed":
		return PhaseCompleted
	case "Failed", "Cancelled", "Expired":
		return PhaseFailed
	default:
		return PhaseRunning
	}
}

// CheckUnderstanding polls an asynchronous Pegasus invocation.
func (c *TwelveLabsClient) CheckUnderstanding(ctx context.Context, handle string) (UnderstandingStatus, error) {
	var st invocationStatus
	if err := c.get(ctx, "/invocations/"+url.PathEscape(handle), &st); err != nil {
		return UnderstandingStatus{}, err
	}
	return UnderstandingStatus{
		Phase:        st.phase(),
		Text:         st.Message,
		FinishReason: st.FinishReason,
		ErrorReason:  st.FailureMessage,
	}, nil
}

type embeddingRequest struct {
	InputType         string       `json:"inputType"`
	InputText         string       `json:"inputText,omitempty"`
	MediaSource       *mediaSource `json:"mediaSource,omitempty"`
	UseFixedLengthSec int          `json:"useFixedLengthSec,omitempty"`
	MinClipSec        int          `json:"minClipSec,omitempty"`
	EmbeddingOption   []string     `json:"embeddingOption,omitempty"`
}

type asyncInvokeResponse struct {
	InvocationArn string `json:"invocationArn"`
}

// StartVideoEmbedding starts an asynchronous Marengo invocation over the
// video, segmented into fixed 10s windows with visual-text and audio
// embeddings per window.
func (c *TwelveLabsClient) StartVideoEmbedding(ctx context.Context, ref model.VideoReference, videoID string) (string, error) {
	src := sourceFor(ref)
	req := embeddingRequest{
		InputType:         "video",
		MediaSource:       &src,
		UseFixedLengthSec: 10,
		MinClipSec:        2,
		EmbeddingOption:   []string{string(model.EmbeddingVisualText), string(model.EmbeddingAudio)},
	}
	var resp asyncInvokeResponse
	if err := c.post(ctx, fmt.Sprintf("/model/%s/invoke-async", url.PathEscape(MarengoModelID)), req, &resp); err != nil {
		return "", err
	}
	if resp.InvocationArn == "" {
		return "", errors.New("embedding start returned no invocation handle")
	}
	c.log.Infow("started video embedding", "videoId", videoID, "handle", resp.InvocationArn)
	return resp.InvocationArn, nil
}

// CheckVideoEmbedding polls an asynchronous Marengo invocation.
func (c *TwelveLabsClient) CheckVideoEmbedding(ctx context.Context, handle string) (EmbeddingStatus, error) {
	var st invocationStatus
	if err := c.get(ctx, "/invocations/"+url.PathEscape(handle), &st); err != nil {
		return EmbeddingStatus{}, err
	}
	return EmbeddingStatus{
		Phase:       st.phase(),
		Segments:    st.Data,
		ErrorReason: st.FailureMessage,
	}, nil
}

// EmbedText embeds query text in the Marengo space. The serving endpoint only
// exposes the asynchronous path, so this starts an invocation and polls it
// inline under a bounded wait.
func (c *TwelveLabsClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var resp asyncInvokeResponse
	req := embeddingRequest{InputType: "text", InputText: text}
	if err := c.post(ctx, fmt.Sprintf("/model/%s/invoke-async", url.PathEscape(MarengoModelID)), req, &resp); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.TextEmbedWait)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		var st invocationStatus
		if err := c.get(ctx, "/invocations/"+url.PathEscape(resp.InvocationArn), &st); err != nil {
			return nil, err
		}
		switch st.phase() {
		case PhaseCompleted:
			if len(st.Data) == 0 || len(st.Data[0].Embedding) == 0 {
				return nil, errors.New("text embedding completed with no vector")
			}
			return st.Data[0].Embedding, nil
		case PhaseFailed:
			return nil, errors.Newf("text embedding failed: %s", st.FailureMessage)
		}
		select {
		case <-ctx.Done():
			return nil, errors.Timeout("query embedding", c.opts.TextEmbedWait.String())
		case <-ticker.C:
		}
	}
}

// ProviderInfo implements TextEmbedder.
func (c *TwelveLabsClient) ProviderInfo() ProviderInfo {
	return ProviderInfo{Name: "twelvelabs", Model: MarengoModelID, Dimension: model.VectorDimension}
}

func (c *TwelveLabsClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *TwelveLabsClient) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// do runs one request with bounded retries on throttling and server errors.
func (c *TwelveLabsClient) do(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	backoff := c.opts.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Transient(ctx.Err(), "model call canceled")
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = errors.Transient(err, "model endpoint unreachable")
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = errors.Transient(readErr, "failed to read model response")
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return errors.NotFound("invocation", path)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = errors.Transient(nil, "model endpoint returned %d: %s", resp.StatusCode, truncate(data, 200))
			continue
		case resp.StatusCode >= 400:
			return errors.Newf("model endpoint returned %d: %s", resp.StatusCode, truncate(data, 200))
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode model response: %w", err)
		}
		return nil
	}
	return lastErr
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
