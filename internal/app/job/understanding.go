package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/gateway"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/jobstore"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/metrics"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

const (
	// understandingVisibilityBudget bounds the wait for a fresh upload to
	// become visible before the model is invoked.
	understandingVisibilityBudget = 30 * time.Second
	// understandingModelBudget bounds a synchronous model invocation.
	understandingModelBudget = 10 * time.Minute

	defaultPrompt = "Analyze this video and provide a detailed description"
)

// UnderstandingManager drives the understanding job lifecycle. The deployed
// model may answer synchronously or hand back a pollable handle; neither
// distinction leaks to callers, who always submit and then poll.
type UnderstandingManager struct {
	store   jobstore.Store
	gateway gateway.UnderstandingProvider
	checker VisibilityChecker
	log     *zap.SugaredLogger
}

// NewUnderstandingManager wires the manager's collaborators.
func NewUnderstandingManager(store jobstore.Store, gw gateway.UnderstandingProvider, checker VisibilityChecker, log *zap.SugaredLogger) *UnderstandingManager {
	return &UnderstandingManager{store: store, gateway: gw, checker: checker, log: log}
}

// Submit records a new understanding job and kicks off processing in the
// background, returning the job handle immediately.
func (m *UnderstandingManager) Submit(ctx context.Context, ref model.VideoReference, videoID, prompt string) (string, error) {
	if ref.IsZero() {
		return "", errors.RequiredField("video reference")
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultPrompt
	}

	id := fmt.Sprintf("analysis_%d_%s", time.Now().Unix(), uuid.New().String()[:8])
	now := time.Now()
	j := model.Job{
		ID:           id,
		Kind:         model.JobKindUnderstanding,
		State:        model.JobStateSubmitted,
		VideoRef:     ref,
		VideoID:      videoID,
		Prompt:       prompt,
		CreatedAt:    now,
		LastPolledAt: now,
	}
	if err := m.store.Put(ctx, j); err != nil {
		return "", errors.Wrap(err, "failed to record understanding job")
	}
	metrics.JobSubmitted(string(model.JobKindUnderstanding))

	go m.process(id, ref, prompt)

	m.log.Infow("understanding job submitted", "jobId", id, "video", ref.URI())
	return id, nil
}

// process runs detached from the submitting request: wait through the upload
// propagation window, invoke the model, and record the outcome. When the
// deployment answers asynchronously only the handle is recorded and polls
// take over.
func (m *UnderstandingManager) process(id string, ref model.VideoReference, prompt string) {
	ctx, cancel := context.WithTimeout(context.Background(), understandingModelBudget)
	defer cancel()

	if err := waitVisible(ctx, m.checker, ref, understandingVisibilityBudget); err != nil {
		m.fail(ctx, id, err.Error())
		return
	}

	result, err := m.gateway.Invoke(ctx, ref, prompt)
	if err != nil {
		m.fail(ctx, id, err.Error())
		return
	}

	if result.SyncComplete() {
		m.complete(ctx, id, result.Text, result.FinishReason)
		return
	}

	// Async deployment: park the handle and let polls drive the rest.
	_, err = m.store.Update(ctx, id, func(j model.Job) (model.Job, error) {
		j.State = model.JobStateRunning
		j.ProviderHandle = result.Handle
		return j, nil
	})
	if err != nil {
		m.log.Errorw("failed to record understanding handle", "jobId", id, "error", err)
	}
}

// Poll returns the job's current view. Terminal jobs are a pure read;
// a running job with a provider handle re-checks the external model.
func (m *UnderstandingManager) Poll(ctx context.Context, id string) (View, error) {
	j, err := m.store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if j.State.Terminal() {
		return viewOf(j), nil
	}

	if j.ProviderHandle == "" {
		// Background processing still owns the job; just stamp the poll.
		j, err = m.store.Update(ctx, id, func(j model.Job) (model.Job, error) {
			j.LastPolledAt = time.Now()
			return j, nil
		})
		if err != nil {
			return View{}, err
		}
		return viewOf(j), nil
	}

	status, err := m.gateway.CheckUnderstanding(ctx, j.ProviderHandle)
	if err != nil {
		// The check failing is not the job failing; report current state.
		m.log.Warnw("understanding status check failed", "jobId", id, "error", err)
		return viewOf(j), err
	}

	switch status.Phase {
	case gateway.PhaseCompleted:
		j = m.complete(ctx, id, status.Text, status.FinishReason)
	case gateway.PhaseFailed:
		j = m.fail(ctx, id, status.ErrorReason)
	default:
		j, err = m.store.Update(ctx, id, func(j model.Job) (model.Job, error) {
			j.State = model.JobStateRunning
			j.LastPolledAt = time.Now()
			return j, nil
		})
		if err != nil {
			return View{}, err
		}
	}
	return viewOf(j), nil
}

func (m *UnderstandingManager) complete(ctx context.Context, id, text, finishReason string) model.Job {
	j, err := m.store.Update(ctx, id, func(j model.Job) (model.Job, error) {
		j.State = model.JobStateCompleted
		j.Result = &model.JobResult{Text: text, FinishReason: finishReason}
		j.LastPolledAt = time.Now()
		return j, nil
	})
	if err != nil {
		m.log.Errorw("failed to complete understanding job", "jobId", id, "error", err)
		return j
	}
	metrics.JobFinished(string(model.JobKindUnderstanding), string(model.JobStateCompleted))
	m.log.Infow("understanding job completed", "jobId", id)
	return j
}

func (m *UnderstandingManager) fail(ctx context.Context, id, reason string) model.Job {
	j, err := m.store.Update(ctx, id, func(j model.Job) (model.Job, error) {
		j.State = model.JobStateFailed
		// The model's error message is preserved verbatim.
		j.ErrorDetail = reason
		j.LastPolledAt = time.Now()
		return j, nil
	})
	if err != nil {
		m.log.Errorw("failed to mark understanding job failed", "jobId", id, "error", err)
		return j
	}
	metrics.JobFinished(string(model.JobKindUnderstanding), string(model.JobStateFailed))
	m.log.Warnw("understanding job failed", "jobId", id, "reason", reason)
	return j
}
