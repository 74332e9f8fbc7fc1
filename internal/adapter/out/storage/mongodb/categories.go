package mongodb

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/model"
	"inkwell/internal/service"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type categoryDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

type CategoryStorage struct {
	coll *mongo.Collection
}

func NewCategoryStorage(db *mongo.Database) *CategoryStorage {
	return &CategoryStorage{coll: db.Collection(categoriesCollection)}
}

func (s *CategoryStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create category index: %w", err)
	}
	return nil
}

func (s *CategoryStorage) CreateCategory(ctx context.Context, in model.Category) (model.Category, error) {
	doc := categoryDoc{ID: primitive.NewObjectID(), Name: in.Name}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Category{}, fmt.Errorf("%w: category %q", service.ErrConflict, in.Name)
		}
		return model.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return model.Category{ID: doc.ID.Hex(), Name: doc.Name}, nil
}

func (s *CategoryStorage) GetCategoryByID(ctx context.Context, categoryID string) (model.Category, error) {
	oid, err := parseObjectID(categoryID)
	if err != nil {
		return model.Category{}, err
	}

	var doc categoryDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Category{}, service.ErrNotFound
		}
		return model.Category{}, fmt.Errorf("find category: %w", err)
	}
	return model.Category{ID: doc.ID.Hex(), Name: doc.Name}, nil
}

func (s *CategoryStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	out := make([]model.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.Category{ID: d.ID.Hex(), Name: d.Name})
	}
	return out, nil
}

func (s *CategoryStorage) GetCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]model.Category, error) {
	oids := make([]primitive.ObjectID, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return map[string]model.Category{}, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	out := make(map[string]model.Category, len(docs))
	for _, d := range docs {
		out[d.ID.Hex()] = model.Category{ID: d.ID.Hex(), Name: d.Name}
	}
	return out, nil
}
