package job

import (
	"context"
	"time"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// VisibilityChecker answers whether a video reference has propagated to
// durable storage. Satisfied by the upload collaborator.
type VisibilityChecker interface {
	Visible(ctx context.Context, ref model.VideoReference) (bool, error)
}

// waitVisible retries through the object-store propagation window: 1s
// initial wait, 1.5x backoff capped at 5s, until the budget runs out. A
// reference that never appears gets a not-found error, distinguishing a
// genuinely bad reference from transient unavailability.
func waitVisible(ctx context.Context, checker VisibilityChecker, ref model.VideoReference, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	wait := time.Second

	for {
		visible, err := checker.Visible(ctx, ref)
		if err != nil {
			return err
		}
		if visible {
			return nil
		}
		if time.Now().Add(wait).After(deadline) {
			return errors.NotFound("video", ref.URI())
		}
		select {
		case <-ctx.Done():
			return errors.Transient(ctx.Err(), "visibility wait canceled")
		case <-time.After(wait):
		}
		wait = time.Duration(float64(wait) * 1.5)
		if wait > 5*time.Second {
			wait = 5 * time.Second
		}
	}
}
