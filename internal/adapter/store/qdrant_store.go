package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"productcopy-core/internal/domain/entity"
)

// QdrantArchive keeps accepted descriptions as vectors for similarity lookups.
type QdrantArchive struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.Logger
}

func NewQdrantArchive(client *qdrant.Client, collectionName string, logger *zap.Logger) *QdrantArchive {
	return &QdrantArchive{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}
}

func (s *QdrantArchive) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return err
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "created_at",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		// Index may already exist.
		s.logger.Warn("could not create created_at index", zap.String("collection", s.collectionName), zap.Error(err))
	}

	return nil
}

func (s *QdrantArchive) Save(ctx context.Context, item entity.ArchivedDescription, vector []float32) error {
	payload := map[string]any{
		"product_name": item.ProductName,
		"description":  item.Description,
		"seo_title":    item.SEOTitle,
		"score":        int64(item.Score),
		"created_at":   item.CreatedAt.Unix(),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(uuid.NewString()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(payload),
			},
		},
	})
	return err
}

func (s *QdrantArchive) Search(ctx context.Context, vector []float32, limit uint64) ([]entity.ArchivedDescription, error) {
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	items := make([]entity.ArchivedDescription, 0, len(res))
	for _, hit := range res {
		p := hit.Payload
		items = append(items, entity.ArchivedDescription{
			ProductName: p["product_name"].GetStringValue(),
			Description: p["description"].GetStringValue(),
			SEOTitle:    p["seo_title"].GetStringValue(),
			Score:       int(p["score"].GetIntegerValue()),
			Similarity:  hit.Score,
			CreatedAt:   time.Unix(p["created_at"].GetIntegerValue(), 0).UTC(),
		})
	}
	return items, nil
}
