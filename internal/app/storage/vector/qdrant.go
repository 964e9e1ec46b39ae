package vector

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// segmentIDNamespace derives deterministic point ids from segment keys, so a
// rewrite of the same segment lands on the same point and overwrites it.
var segmentIDNamespace = uuid.MustParse("7b1c4b52-58f4-4f3e-91a8-6f2dc1a0d9b4")

// QdrantSink stores segments in a Qdrant collection with cosine similarity.
// Query scores are similarity-directed: higher is a closer match.
type QdrantSink struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewQdrantSink connects to Qdrant at the given gRPC address and ensures the
// collection exists with the configured dimension.
func NewQdrantSink(addr, collection string, dims int) (*QdrantSink, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial qdrant %s: %w", addr, err)
	}
	s := &QdrantSink{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}
	if err := s.ensureCollection(context.Background(), dims); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Name implements Sink.
func (s *QdrantSink) Name() string { return "qdrant" }

// ScoreDirection implements Sink.
func (s *QdrantSink) ScoreDirection() model.ScoreDirection { return model.ScoreSimilarity }

func (s *QdrantSink) ensureCollection(ctx context.Context, dims int) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list qdrant collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create qdrant collection %s: %w", s.collection, err)
	}
	return nil
}

// Write upserts the batch as points keyed by a UUID derived from the segment
// key. Waits for the write to be applied so a subsequent poll never observes
// a torn batch.
func (s *QdrantSink) Write(ctx context.Context, segments []model.Segment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	points := make([]*pb.PointStruct, len(segments))
	for i, seg := range segments {
		payload := map[string]*pb.Value{
			"videoId":       stringValue(seg.VideoID),
			"segmentId":     stringValue(seg.SegmentID),
			"startSec":      {Kind: &pb.Value_DoubleValue{DoubleValue: seg.StartSec}},
			"endSec":        {Kind: &pb.Value_DoubleValue{DoubleValue: seg.EndSec}},
			"embeddingKind": stringValue(string(seg.EmbeddingKind)),
		}
		for k, v := range seg.Metadata {
			payload["meta_"+k] = stringValue(v)
		}

		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: uuid.NewSHA1(segmentIDNamespace, []byte(seg.Key())).String(),
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: seg.Vector}},
			},
			Payload: payload,
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	return len(points), nil
}

// Query implements Sink.
func (s *QdrantSink) Query(ctx context.Context, vec []float32, limit int, filter map[string]string) ([]model.SearchHit, error) {
	req := &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vec,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	if len(filter) > 0 {
		must := make([]*pb.Condition, 0, len(filter))
		for k, v := range filter {
			must = append(must, fieldMatch(k, v))
		}
		req.Filter = &pb.Filter{Must: must}
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	hits := make([]model.SearchHit, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		payload := r.GetPayload()
		hit := model.SearchHit{
			VideoID:        payload["videoId"].GetStringValue(),
			SegmentID:      payload["segmentId"].GetStringValue(),
			StartSec:       payload["startSec"].GetDoubleValue(),
			EndSec:         payload["endSec"].GetDoubleValue(),
			EmbeddingKind:  model.EmbeddingKind(payload["embeddingKind"].GetStringValue()),
			Score:          float64(r.GetScore()),
			ScoreDirection: model.ScoreSimilarity,
		}
		for k, v := range payload {
			if len(k) > 5 && k[:5] == "meta_" {
				if hit.Metadata == nil {
					hit.Metadata = make(map[string]string)
				}
				hit.Metadata[k[5:]] = v.GetStringValue()
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Flush deletes every point in the collection. An empty filter matches all
// points; the collection itself stays so writers need no re-create step.
func (s *QdrantSink) Flush(ctx context.Context) error {
	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{Filter: &pb.Filter{}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to flush collection %s: %w", s.collection, err)
	}
	return nil
}

// Close closes the underlying gRPC connection.
func (s *QdrantSink) Close() error {
	return s.conn.Close()
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func fieldMatch(key, value string) *pb.Condition {
	// Numeric filters arrive as strings from the API layer; match keywords.
	if _, err := strconv.ParseFloat(value, 64); err == nil && (key == "startSec" || key == "endSec") {
		f, _ := strconv.ParseFloat(value, 64)
		return &pb.Condition{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key:   key,
					Range: &pb.Range{Gte: &f, Lte: &f},
				},
			},
		}
	}
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   key,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
			},
		},
	}
}
