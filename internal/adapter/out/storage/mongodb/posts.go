package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"inkwell/internal/adapter/out/storage"
	"inkwell/internal/model"
	"inkwell/internal/service"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postDoc struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Title     string              `bson:"title"`
	Content   string              `bson:"content"`
	Image     string              `bson:"image,omitempty"`
	Likes     int64               `bson:"likes"`
	Category  *primitive.ObjectID `bson:"category,omitempty"`
	Author    primitive.ObjectID  `bson:"author"`
	Comments  []commentDoc        `bson:"comments"`
	CreatedAt time.Time           `bson:"createdAt"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Content   string             `bson:"content"`
	Author    primitive.ObjectID `bson:"author"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type PostStorage struct {
	coll *mongo.Collection
}

func NewPostStorage(db *mongo.Database) *PostStorage {
	return &PostStorage{coll: db.Collection(postsCollection)}
}

func (s *PostStorage) CreatePost(ctx context.Context, in model.Post) (model.Post, error) {
	doc, err := toPostDoc(in)
	if err != nil {
		return model.Post{}, err
	}
	doc.ID = primitive.NewObjectID()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if doc.Comments == nil {
		doc.Comments = []commentDoc{}
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return model.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return fromPostDoc(doc), nil
}

func (s *PostStorage) GetPostByID(ctx context.Context, postID string) (model.Post, error) {
	oid, err := parseObjectID(postID)
	if err != nil {
		return model.Post{}, err
	}

	var doc postDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("find post: %w", err)
	}
	return fromPostDoc(doc), nil
}

func (s *PostStorage) ListPosts(ctx context.Context, params storage.ListPostsParams) ([]model.Post, int64, error) {
	filter, err := listFilter(params)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(params.Offset))
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find posts: %w", err)
	}
	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode posts: %w", err)
	}

	count, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	out := make([]model.Post, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromPostDoc(d))
	}
	return out, count, nil
}

func (s *PostStorage) UpdatePost(ctx context.Context, postID string, patch storage.PostPatch) (model.Post, error) {
	oid, err := parseObjectID(postID)
	if err != nil {
		return model.Post{}, err
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID == "" {
			set["category"] = nil
		} else {
			catID, err := primitive.ObjectIDFromHex(*patch.CategoryID)
			if err != nil {
				return model.Post{}, fmt.Errorf("%w: bad category id", service.ErrInvalidRequest)
			}
			set["category"] = catID
		}
	}
	if len(set) == 0 {
		return s.GetPostByID(ctx, postID)
	}

	var doc postDoc
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("update post: %w", err)
	}
	return fromPostDoc(doc), nil
}

func (s *PostStorage) DeletePost(ctx context.Context, postID string) error {
	oid, err := parseObjectID(postID)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *PostStorage) GetPostAuthorID(ctx context.Context, postID string) (string, error) {
	oid, err := parseObjectID(postID)
	if err != nil {
		return "", err
	}

	var doc struct {
		Author primitive.ObjectID `bson:"author"`
	}
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"author": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", service.ErrNotFound
		}
		return "", fmt.Errorf("find post author: %w", err)
	}
	return doc.Author.Hex(), nil
}

// IncrementLikes relies on the store's atomic $inc so concurrent likes never
// lose updates.
func (s *PostStorage) IncrementLikes(ctx context.Context, postID string) (int64, error) {
	oid, err := parseObjectID(postID)
	if err != nil {
		return 0, err
	}

	var doc struct {
		Likes int64 `bson:"likes"`
	}
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"likes": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, service.ErrNotFound
		}
		return 0, fmt.Errorf("increment likes: %w", err)
	}
	return doc.Likes, nil
}

func (s *PostStorage) AddComment(ctx context.Context, postID string, comment model.Comment) (model.Post, error) {
	oid, err := parseObjectID(postID)
	if err != nil {
		return model.Post{}, err
	}
	authorID, err := primitive.ObjectIDFromHex(comment.AuthorID)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: bad author id", service.ErrInvalidRequest)
	}

	createdAt := comment.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	push := commentDoc{
		ID:        primitive.NewObjectID(),
		Content:   comment.Content,
		Author:    authorID,
		CreatedAt: createdAt,
	}

	var doc postDoc
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"comments": push}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("push comment: %w", err)
	}
	return fromPostDoc(doc), nil
}

func listFilter(params storage.ListPostsParams) (bson.M, error) {
	filter := bson.M{}
	if params.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(params.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}
	if params.CategoryID != "" {
		catID, err := primitive.ObjectIDFromHex(params.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad category id", service.ErrInvalidRequest)
		}
		filter["category"] = catID
	}
	return filter, nil
}

// parseObjectID treats a malformed hex id the same as an unknown one: there is
// no document it could refer to.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, service.ErrNotFound
	}
	return oid, nil
}

func toPostDoc(p model.Post) (postDoc, error) {
	author, err := primitive.ObjectIDFromHex(p.AuthorID)
	if err != nil {
		return postDoc{}, fmt.Errorf("%w: bad author id", service.ErrInvalidRequest)
	}
	doc := postDoc{
		Title:     p.Title,
		Content:   p.Content,
		Image:     p.Image,
		Likes:     p.Likes,
		Author:    author,
		CreatedAt: p.CreatedAt,
	}
	if p.CategoryID != "" {
		catID, err := primitive.ObjectIDFromHex(p.CategoryID)
		if err != nil {
			return postDoc{}, fmt.Errorf("%w: bad category id", service.ErrInvalidRequest)
		}
		doc.Category = &catID
	}
	return doc, nil
}

func fromPostDoc(d postDoc) model.Post {
	p := model.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Image:     d.Image,
		Likes:     d.Likes,
		AuthorID:  d.Author.Hex(),
		CreatedAt: d.CreatedAt,
	}
	if d.Category != nil {
		p.CategoryID = d.Category.Hex()
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, model.Comment{
			ID:        c.ID.Hex(),
			AuthorID:  c.Author.Hex(),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return p
}
