// qdrant.go generalizes the teacher's 1024-dimension-hardcoded Qdrant
// client into a configurable-dimension client serving two collections
// (candidates, jobs) with cosine distance, per spec.md §3/§6.2.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nexus-talent/resume-match/internal/apperr"
)

// QdrantClient stores and searches combined embedding vectors.
type QdrantClient struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	conn        *grpc.ClientConn
	dimension   uint64
}

// VectorPoint is one stored combined-embedding with its metadata payload.
type VectorPoint struct {
	ID       string
	Vector   []float32
	Metadata map[string]interface{}
}

// CandidateCollection and JobCollection are the two collections spec.md
// §6.2 names. Each is created with the configured vector dimension and
// cosine distance; no index-list size is set.
const (
	CandidateCollection = "candidate_embeddings"
	JobCollection        = "job_embeddings"
)

// NewQdrantClient connects over gRPC and ensures both collections exist at
// the configured dimension.
func NewQdrantClient(ctx context.Context, address string, dimension int) (*QdrantClient, error) {
	if address == "" {
		return nil, apperr.Unavailable("qdrant address is required", nil)
	}
	if dimension <= 0 {
		dimension = 384
	}

	conn, err := grpc.DialContext(ctx, address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, apperr.Unavailable("failed to connect to qdrant", err)
	}

	qc := &QdrantClient{
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		conn:        conn,
		dimension:   uint64(dimension),
	}

	for _, name := range []string{CandidateCollection, JobCollection} {
		if err := qc.ensureCollection(ctx, name); err != nil {
			conn.Close()
			return nil, apperr.Unavailable(fmt.Sprintf("failed to ensure collection %q", name), err)
		}
	}

	return qc, nil
}

func (q *QdrantClient) ensureCollection(ctx context.Context, name string) error {
	listResp, err := q.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, col := range listResp.Collections {
		if col.Name == name {
			return nil
		}
	}

	_, err = q.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     q.dimension,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Upsert stores or updates a combined-embedding vector in the given
// collection.
func (q *QdrantClient) Upsert(ctx context.Context, collection string, point VectorPoint) error {
	if uint64(len(point.Vector)) != q.dimension {
		return apperr.BadInput(fmt.Sprintf("invalid vector dimension: expected %d, got %d", q.dimension, len(point.Vector)), nil)
	}
	if point.ID == "" {
		point.ID = uuid.New().String()
	}

	payload := make(map[string]*qdrant.Value, len(point.Metadata))
	for k, v := range point.Metadata {
		payload[k] = toQdrantValue(v)
	}

	pointStruct := &qdrant.PointStruct{
		Id: &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: point.ID}},
		Vectors: &qdrant.Vectors{
			VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: point.Vector}},
		},
		Payload: payload,
	}

	_, err := q.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         []*qdrant.PointStruct{pointStruct},
	})
	if err != nil {
		return apperr.Internal("failed to upsert vector", err)
	}
	return nil
}

// Search returns the nearest limit points to query in the given
// collection, ordered by the store's native distance ranking.
func (q *QdrantClient) Search(ctx context.Context, collection string, query []float32, limit int) ([]VectorPoint, error) {
	if uint64(len(query)) != q.dimension {
		return nil, apperr.BadInput(fmt.Sprintf("invalid query vector dimension: expected %d, got %d", q.dimension, len(query)), nil)
	}
	if limit <= 0 {
		limit = 10
	}

	resp, err := q.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: collection,
		Vector:         query,
		Limit:          uint64(limit),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, apperr.Internal("failed to search vectors", err)
	}

	out := make([]VectorPoint, 0, len(resp.Result))
	for _, r := range resp.Result {
		p := VectorPoint{Metadata: fromQdrantPayload(r.Payload)}
		if r.Id != nil {
			p.ID = r.Id.GetUuid()
		}
		p.Metadata["score"] = float64(r.Score)
		out = append(out, p)
	}
	return out, nil
}

// Get retrieves one point with its vector by id.
func (q *QdrantClient) Get(ctx context.Context, collection, pointID string) (*VectorPoint, error) {
	resp, err := q.points.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            []*qdrant.PointId{{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID}}},
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, apperr.Internal("failed to get vector", err)
	}
	if len(resp.Result) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("vector %q not found", pointID), nil)
	}

	r := resp.Result[0]
	point := &VectorPoint{ID: pointID, Metadata: fromQdrantPayload(r.Payload)}
	if r.Vectors != nil {
		if vec := r.Vectors.GetVector(); vec != nil {
			point.Vector = vec.Data
		}
	}
	return point, nil
}

// Delete removes a point and returns only an error from the call; Qdrant's
// delete API does not report per-id affected counts, so the caller should
// treat absence as a no-op success rather than an error (mirroring the
// store's idempotent-delete semantics).
func (q *QdrantClient) Delete(ctx context.Context, collection, pointID string) error {
	_, err := q.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID}}}},
			},
		},
	})
	if err != nil {
		return apperr.Internal("failed to delete vector", err)
	}
	return nil
}

func (q *QdrantClient) Close() error {
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

func toQdrantValue(v interface{}) *qdrant.Value {
	switch val := v.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
	default:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", val)}}
	}
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		switch val := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			out[k] = val.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = val.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = val.BoolValue
		}
	}
	return out
}
