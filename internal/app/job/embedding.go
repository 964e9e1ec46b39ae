package job

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/gateway"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/jobstore"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/metrics"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/vector"
)

const (
	// embeddingVisibilityBudget is longer than the understanding one:
	// embedding submissions tend to follow the upload immediately.
	embeddingVisibilityBudget = 45 * time.Second
	// sinkWriteTimeout bounds each sink's half of the fan-out write.
	sinkWriteTimeout = 30 * time.Second
)

// EmbeddingManager drives the embedding job lifecycle: start the async model
// invocation, poll it, and on completion fan the parsed segments out to every
// sink in parallel. Sink failures are recorded as per-sink outcomes, never as
// job failure; the embeddings stay retrievable for re-indexing.
type EmbeddingManager struct {
	store   jobstore.Store
	gateway gateway.EmbeddingProvider
	sinks   []vector.Sink
	checker VisibilityChecker
	log     *zap.SugaredLogger

	// finalizing serializes the terminal fan-out per job so concurrent polls
	// of a just-completed invocation write each sink exactly once.
	finalizing sync.Map // job id -> *sync.Mutex
}

// NewEmbeddingManager wires the manager's collaborators.
func NewEmbeddingManager(store jobstore.Store, gw gateway.EmbeddingProvider, sinks []vector.Sink, checker VisibilityChecker, log *zap.SugaredLogger) *EmbeddingManager {
	return &EmbeddingManager{store: store, gateway: gw, sinks: sinks, checker: checker, log: log}
}

// Submit waits through the upload propagation window, starts the async model
// invocation, and records the job under the provider's handle.
func (m *EmbeddingManager) Submit(ctx context.Context, ref model.VideoReference, videoID string) (string, error) {
	if ref.IsZero() {
		return "", errors.RequiredField("video reference")
	}
	if strings.TrimSpace(videoID) == "" {
		return "", errors.RequiredField("videoId")
	}

	if err := waitVisible(ctx, m.checker, ref, embeddingVisibilityBudget); err != nil {
		return "", err
	}

	handle, err := m.gateway.StartVideoEmbedding(ctx, ref, videoID)
	if err != nil {
		return "", errors.Wrap(err, "failed to start embedding")
	}

	now := time.Now()
	j := model.Job{
		ID:             handle,
		Kind:           model.JobKindEmbedding,
		State:          model.JobStateSubmitted,
		VideoRef:       ref,
		VideoID:        videoID,
		ProviderHandle: handle,
		CreatedAt:      now,
		LastPolledAt:   now,
	}
	if err := m.store.Put(ctx, j); err != nil {
		return "", errors.Wrap(err, "failed to record embedding job")
	}
	metrics.JobSubmitted(string(model.JobKindEmbedding))

	m.log.Infow("embedding job submitted", "handle", handle, "videoId", videoID)
	return handle, nil
}

// Poll returns the job's current view, re-checking the external model while
// the job is live. The transition into Completed performs the fan-out write;
// re-polling a terminal job returns the cached outcome without rewriting.
func (m *EmbeddingManager) Poll(ctx context.Context, handle string) (View, error) {
	j, err := m.store.Get(ctx, handle)
	if err != nil {
		return View{}, err
	}
	if j.State.Terminal() {
		return viewOf(j), nil
	}

	status, err := m.gateway.CheckVideoEmbedding(ctx, handle)
	if err != nil {
		m.log.Warnw("embedding status check failed", "handle", handle, "error", err)
		return viewOf(j), err
	}

	switch status.Phase {
	case gateway.PhaseFailed:
		j, err = m.store.Update(ctx, handle, func(j model.Job) (model.Job, error) {
			j.State = model.JobStateFailed
			j.ErrorDetail = status.ErrorReason
			j.LastPolledAt = time.Now()
			return j, nil
		})
		if err != nil {
			return View{}, err
		}
		metrics.JobFinished(string(model.JobKindEmbedding), string(model.JobStateFailed))
	case gateway.PhaseCompleted:
		j, err = m.finalize(ctx, j, status.Segments)
		if err != nil {
			return View{}, err
		}
	default:
		j, err = m.store.Update(ctx, handle, func(j model.Job) (model.Job, error) {
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

// finalize performs the one-time terminal transition: parse the model's raw
// output, fan the batch out to every sink in parallel, and commit Completed
// with the per-sink outcomes in a single store update. A poller arriving
// while another holds the lock waits, then observes the terminal job.
func (m *EmbeddingManager) finalize(ctx context.Context, j model.Job, raw []gateway.RawSegment) (model.Job, error) {
	muAny, _ := m.finalizing.LoadOrStore(j.ID, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	defer func() {
		mu.Unlock()
		m.finalizing.Delete(j.ID)
	}()

	// Another poller may have finished the job while we waited on the lock.
	current, err := m.store.Get(ctx, j.ID)
	if err != nil {
		return model.Job{}, err
	}
	if current.State.Terminal() {
		return current, nil
	}

	segments := ParseSegments(current.VideoID, current.VideoRef, raw)
	outcomes := m.fanOut(ctx, segments)

	written := lo.SumBy(outcomes, func(o model.SinkWriteOutcome) int { return o.SegmentsWritten })
	final, err := m.store.Update(ctx, j.ID, func(j model.Job) (model.Job, error) {
		j.State = model.JobStateCompleted
		j.Result = &model.JobResult{
			SegmentCount:    len(segments),
			PerSinkOutcomes: outcomes,
		}
		j.LastPolledAt = time.Now()
		return j, nil
	})
	if err != nil {
		return model.Job{}, err
	}
	metrics.JobFinished(string(model.JobKindEmbedding), string(model.JobStateCompleted))
	m.log.Infow("embedding job completed",
		"handle", j.ID, "segments", len(segments), "written", written)
	return final, nil
}

// fanOut writes the batch to every sink in parallel. Each write is
// independently timed, independently time-bounded, and independently
// fallible; a failed sink becomes an error-flagged outcome, nothing more.
func (m *EmbeddingManager) fanOut(ctx context.Context, segments []model.Segment) []model.SinkWriteOutcome {
	outcomes := make([]model.SinkWriteOutcome, len(m.sinks))
	var wg sync.WaitGroup

	for i, sink := range m.sinks {
		wg.Add(1)
		go func(i int, sink vector.Sink) {
			defer wg.Done()
			wctx, cancel := context.WithTimeout(ctx, sinkWriteTimeout)
			defer cancel()

			start := time.Now()
			written, err := sink.Write(wctx, segments)
			outcome := model.SinkWriteOutcome{
				SinkName:        sink.Name(),
				SegmentsWritten: written,
				ElapsedMillis:   time.Since(start).Milliseconds(),
			}
			if err != nil {
				outcome.SegmentsWritten = 0
				outcome.Error = err.Error()
				m.log.Warnw("sink write failed", "sink", sink.Name(), "error", err)
			}
			metrics.SinkWrite(sink.Name(), time.Since(start), err)
			outcomes[i] = outcome
		}(i, sink)
	}
	wg.Wait()
	return outcomes
}

// ParseSegments shapes the model's raw output into segment records, one per
// (time-window, embedding-kind) entry.
func ParseSegments(videoID string, ref model.VideoReference, raw []gateway.RawSegment) []model.Segment {
	return lo.Map(raw, func(r gateway.RawSegment, i int) model.Segment {
		kind := model.EmbeddingKind(r.EmbeddingOption)
		if kind == "" {
			kind = model.EmbeddingVisualText
		}
		return model.Segment{
			VideoID:       videoID,
			SegmentID:     model.SegmentID(videoID, i, r.StartSec),
			StartSec:      r.StartSec,
			EndSec:        r.EndSec,
			EmbeddingKind: kind,
			Vector:        r.Embedding,
			Metadata: map[string]string{
				"videoS3Uri": ref.URI(),
			},
		}
	})
}
