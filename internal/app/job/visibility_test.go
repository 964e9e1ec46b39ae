package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// stubChecker reports visible after a configured number of calls, or always
// fails with Err.
type stubChecker struct {
	visibleAfter int
	calls        int
	Err          error
}

func (s *stubChecker) Visible(_ context.Context, _ model.VideoReference) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.calls++
	return s.calls > s.visibleAfter, nil
}

func testRef() model.VideoReference {
	return model.VideoReference{Bucket: "videos", Key: "videos/cat.mp4"}
}

func TestWaitVisible_ImmediatelyVisible(t *testing.T) {
	checker := &stubChecker{}
	err := waitVisible(context.Background(), checker, testRef(), 30*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 1, checker.calls)
}

func TestWaitVisible_VisibleAfterRetry(t *testing.T) {
	checker := &stubChecker{visibleAfter: 1}
	start := time.Now()
	err := waitVisible(context.Background(), checker, testRef(), 30*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 2, checker.calls)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestWaitVisible_BudgetExhaustedIsNotFound(t *testing.T) {
	checker := &stubChecker{visibleAfter: 100}
	err := waitVisible(context.Background(), checker, testRef(), 500*time.Millisecond)
	assert.True(t, errors.IsNotFound(err))
}

func TestWaitVisible_CheckerErrorPropagates(t *testing.T) {
	checker := &stubChecker{Err: errors.Transient(nil, "object store unreachable")}
	err := waitVisible(context.Background(), checker, testRef(), 30*time.Second)
	assert.True(t, errors.IsTransient(err))
}
