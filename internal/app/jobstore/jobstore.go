package jobstore

import (
	"context"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// ErrJobNotFound signals an unknown job id, a distinct condition from a job
// that exists and is still running.
var ErrJobNotFound = errors.NotFound("job", "unknown id")

// Mutator transforms a job during Update. It receives a copy of the current
// job and returns the replacement, or an error to abort the update.
type Mutator func(model.Job) (model.Job, error)

// Store is the durable key -> state mapping for in-flight asynchronous jobs.
// The one piece of shared mutable state in the system: implementations must
// serialize updates per key so that concurrent polls never produce lost
// updates, and must refuse any transition out of a terminal state.
type Store interface {
	Put(ctx context.Context, job model.Job) error
	Get(ctx context.Context, id string) (model.Job, error)
	// Update applies fn to the job under a per-key critical section and
	// returns the stored result. Terminal jobs are returned unchanged
	// without invoking fn, keeping re-polls idempotent.
	Update(ctx context.Context, id string, fn Mutator) (model.Job, error)
	Close() error
}

// guardTerminal wraps a mutator with the monotonic-transition invariant:
// once a job is terminal its state and result never change.
func guardTerminal(job model.Job, fn Mutator) (model.Job, bool, error) {
	if job.State.Terminal() {
		return job, false, nil
	}
	next, err := fn(job)
	if err != nil {
		return job, false, err
	}
	return next, true, nil
}
