package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

func testSegment(videoID string, index int, startSec float64) model.Segment {
	id := model.SegmentID(videoID, index, startSec)
	return model.Segment{
		VideoID:       videoID,
		SegmentID:     id,
		EmbeddingKind: model.EmbeddingVisualText,
		StartSec:      startSec,
		EndSec:        startSec + 10,
		Vector:        []float32{0.1, 0.2, 0.3},
		Metadata:      map[string]string{"videoS3Uri": "s3://videos/" + videoID},
	}
}

// TestPgVectorSink_Write_Unit tests the upsert batch with a mocked database
func TestPgVectorSink_Write_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink := NewPgVectorSink(db)
	ctx := context.Background()

	tests := []struct {
		name        string
		segments    []model.Segment
		setupMock   func()
		expectedErr bool
		expectedN   int
	}{
		{
			name:      "empty_batch_is_noop",
			segments:  nil,
			setupMock: func() {},
			expectedN: 0,
		},
		{
			name: "two_segments_written",
			segments: []model.Segment{
				testSegment("video-42", 0, 0),
				testSegment("video-42", 1, 10),
			},
			setupMock: func() {
				prep := mock.ExpectPrepare("INSERT INTO video_segments")
				prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
				prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedN: 2,
		},
		{
			name: "second_segment_fails_partial_count",
			segments: []model.Segment{
				testSegment("video-42", 0, 0),
				testSegment("video-42", 1, 10),
			},
			setupMock: func() {
				prep := mock.ExpectPrepare("INSERT INTO video_segments")
				prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
				prep.ExpectExec().WillReturnError(errors.New("connection reset"))
			},
			expectedErr: true,
			expectedN:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			n, err := sink.Write(ctx, tt.segments)
			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedN, n)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestPgVectorSink_Query_Unit tests nearest-neighbor queries with a mocked database
func TestPgVectorSink_Query_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink := NewPgVectorSink(db)
	ctx := context.Background()
	vec := []float32{0.1, 0.2, 0.3}

	t.Run("hits_are_distance_tagged", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"video_id", "segment_id", "embedding_kind", "start_sec", "end_sec", "metadata", "distance"}).
			AddRow("video-42", "video-42_segment_0_0", "visual-text", 0.0, 10.0, `{"videoS3Uri":"s3://videos/video-42"}`, 0.12).
			AddRow("video-42", "video-42_segment_1_10", "audio", 10.0, 20.0, nil, 0.34)
		mock.ExpectQuery("SELECT video_id, segment_id, embedding_kind, start_sec, end_sec, metadata, embedding <=> \\$1 AS distance").
			WillReturnRows(rows)

		hits, err := sink.Query(ctx, vec, 10, nil)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, model.ScoreDistance, hits[0].ScoreDirection)
		assert.Equal(t, 0.12, hits[0].Score)
		assert.Equal(t, "s3://videos/video-42", hits[0].Metadata["videoS3Uri"])
		assert.Equal(t, model.EmbeddingAudio, hits[1].EmbeddingKind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("video_filter_adds_where_clause", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"video_id", "segment_id", "embedding_kind", "start_sec", "end_sec", "metadata", "distance"})
		mock.ExpectQuery("WHERE video_id = \\$2 ORDER BY embedding <=> \\$1 LIMIT \\$3").
			WillReturnRows(rows)

		hits, err := sink.Query(ctx, vec, 5, map[string]string{"videoId": "video-42"})
		require.NoError(t, err)
		assert.Empty(t, hits)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("backend_error_is_propagated", func(t *testing.T) {
		mock.ExpectQuery("SELECT video_id").WillReturnError(errors.New("database connection lost"))

		_, err := sink.Query(ctx, vec, 10, nil)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// Re-sending a batch goes through the same ON CONFLICT upsert, so every
// segment is an update of its primary key rather than a second row.
func TestPgVectorSink_RepeatedBatchUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink := NewPgVectorSink(db)
	ctx := context.Background()
	batch := []model.Segment{
		testSegment("video-42", 0, 0),
		testSegment("video-42", 1, 10),
	}

	for i := 0; i < 2; i++ {
		prep := mock.ExpectPrepare("ON CONFLICT \\(video_id, segment_id, embedding_kind\\) DO UPDATE")
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	}

	n, err := sink.Write(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = sink.Write(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorSink_Flush(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink := NewPgVectorSink(db)

	mock.ExpectExec("DELETE FROM video_segments").WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, sink.Flush(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("DELETE FROM video_segments").WillReturnError(errors.New("connection refused"))
	assert.Error(t, sink.Flush(context.Background()))
}

func TestPgVectorSink_Direction(t *testing.T) {
	sink := NewPgVectorSink(nil)
	assert.Equal(t, "pgvector", sink.Name())
	assert.Equal(t, model.ScoreDistance, sink.ScoreDirection())
}
