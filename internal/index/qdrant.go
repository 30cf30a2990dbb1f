package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// QdrantStore keeps the collection in Qdrant over gRPC. Qdrant reports cosine
// similarity, so distances are derived as 1-score to keep the ascending
// contract of Store.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	embed       Embedder
}

func NewQdrantStore(addr, collection string, embed Embedder) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("index: dial qdrant %s: %w", addr, err)
	}
	return &QdrantStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		embed:       embed,
	}, nil
}

func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dims int) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("index: list collections: %w", err)
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
		return fmt.Errorf("index: create collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *QdrantStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(docs))
	for i, d := range docs {
		vec, err := s.embed.GenerateEmbedding(ctx, d.Content)
		if err != nil {
			return &WriteError{Op: "embed", Err: err}
		}

		id := d.ID
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: id},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vec},
				},
			},
			Payload: map[string]*pb.Value{
				"content":          stringValue(d.Content),
				"cv_id":            stringValue(d.Meta.CVID),
				"type":             stringValue(d.Meta.Type),
				"filename":         stringValue(d.Meta.Filename),
				"candidate_name":   stringValue(d.Meta.CandidateName),
				"years_experience": {Kind: &pb.Value_DoubleValue{DoubleValue: d.Meta.YearsExperience}},
				"page":             {Kind: &pb.Value_IntegerValue{IntegerValue: int64(d.Meta.Page)}},
				"start_offset":     {Kind: &pb.Value_IntegerValue{IntegerValue: int64(d.Meta.StartOffset)}},
			},
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return &WriteError{Op: "add", Err: err}
	}
	return nil
}

func (s *QdrantStore) DeleteByCV(ctx context.Context, cvID string) error {
	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{
						fieldMatch("cv_id", cvID),
					},
				},
			},
		},
	})
	if err != nil {
		return &WriteError{Op: "delete", Err: err}
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, text string, topK int, filter Filter) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}

	vec, err := s.embed.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vec,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}

	var must []*pb.Condition
	if filter.Type != "" {
		must = append(must, fieldMatch("type", filter.Type))
	}
	if filter.CVID != "" {
		must = append(must, fieldMatch("cv_id", filter.CVID))
	}
	if len(must) > 0 {
		req.Filter = &pb.Filter{Must: must}
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]Result, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		payload := r.GetPayload()
		results[i] = Result{
			Document: Document{
				ID:      r.GetId().GetUuid(),
				Content: payload["content"].GetStringValue(),
				Meta: Metadata{
					CVID:            payload["cv_id"].GetStringValue(),
					Type:            payload["type"].GetStringValue(),
					Filename:        payload["filename"].GetStringValue(),
					CandidateName:   payload["candidate_name"].GetStringValue(),
					YearsExperience: payload["years_experience"].GetDoubleValue(),
					Page:            int(payload["page"].GetIntegerValue()),
					StartOffset:     int(payload["start_offset"].GetIntegerValue()),
				},
			},
			Distance: 1 - float64(r.GetScore()),
		}
	}
	return results, nil
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}
