package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/model"
	"inkwell/internal/service"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

type UserStorage struct {
	coll *mongo.Collection
}

func NewUserStorage(db *mongo.Database) *UserStorage {
	return &UserStorage{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique indexes backing registration conflicts.
func (s *UserStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *UserStorage) CreateUser(ctx context.Context, in model.User) (model.User, error) {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    in.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, fmt.Errorf("%w: email or username already used", service.ErrConflict)
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return fromUserDoc(doc), nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return model.User{}, err
	}

	var doc userDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.User{}, service.ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return fromUserDoc(doc), nil
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.User{}, service.ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return fromUserDoc(doc), nil
}

func (s *UserStorage) GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]model.User, error) {
	oids := make([]primitive.ObjectID, 0, len(userIDs))
	for _, id := range userIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue // dangling reference, resolves to nothing
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return map[string]model.User{}, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make(map[string]model.User, len(docs))
	for _, d := range docs {
		u := fromUserDoc(d)
		out[u.ID] = u
	}
	return out, nil
}

func fromUserDoc(d userDoc) model.User {
	return model.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}
