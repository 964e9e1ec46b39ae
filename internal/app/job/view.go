package job

import (
	"time"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// View is the poll response shape shared by both managers. Always
// well-formed: a failed backend turns into a Failed state or an error-flagged
// outcome, never a missing response.
type View struct {
	ID              string                   `json:"id"`
	Kind            model.JobKind            `json:"kind"`
	State           model.JobState           `json:"state"`
	VideoID         string                   `json:"videoId,omitempty"`
	Text            string                   `json:"text,omitempty"`
	FinishReason    string                   `json:"finishReason,omitempty"`
	SegmentCount    int                      `json:"segmentCount,omitempty"`
	PerSinkOutcomes []model.SinkWriteOutcome `json:"perSinkOutcomes,omitempty"`
	Error           string                   `json:"error,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	LastPolledAt    time.Time                `json:"lastPolledAt"`
}

func viewOf(j model.Job) View {
	v := View{
		ID:           j.ID,
		Kind:         j.Kind,
		State:        j.State,
		VideoID:      j.VideoID,
		Error:        j.ErrorDetail,
		CreatedAt:    j.CreatedAt,
		LastPolledAt: j.LastPolledAt,
	}
	if j.Result != nil {
		v.Text = j.Result.Text
		v.FinishReason = j.Result.FinishReason
		v.SegmentCount = j.Result.SegmentCount
		v.PerSinkOutcomes = j.Result.PerSinkOutcomes
	}
	return v
}
