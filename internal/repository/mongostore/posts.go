package mongostore

import (
	"context"

	"firenet/internal/models"
	"firenet/internal/observability"
	"firenet/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Body         string             `bson:"body"`
	UserHandle   string             `bson:"userHandle"`
	UserImage    string             `bson:"userImage"`
	CreatedAt    string             `bson:"createdAt"`
	LikeCount    int                `bson:"likeCount"`
	CommentCount int                `bson:"commentCount"`
}

func (d *postDoc) model() *models.Post {
	return &models.Post{
		ID:           d.ID.Hex(),
		Body:         d.Body,
		UserHandle:   d.UserHandle,
		UserImage:    d.UserImage,
		CreatedAt:    d.CreatedAt,
		LikeCount:    d.LikeCount,
		CommentCount: d.CommentCount,
	}
}

type postRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	doc := postDoc{
		ID:           primitive.NewObjectID(),
		Body:         post.Body,
		UserHandle:   post.UserHandle,
		UserImage:    post.UserImage,
		CreatedAt:    post.CreatedAt,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.LogError(ctx, err, "create")
		return translate(err)
	}
	post.ID = doc.ID.Hex()
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc postDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	posts := []*models.Post{}
	for cur.Next(ctx) {
		var doc postDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		posts = append(posts, doc.model())
	}
	return posts, cur.Err()
}

func (r *postRepository) IncrementLikes(ctx context.Context, id string, delta int) error {
	return r.adjust(ctx, id, "likeCount", delta)
}

func (r *postRepository) IncrementComments(ctx context.Context, id string, delta int) error {
	return r.adjust(ctx, id, "commentCount", delta)
}

func (r *postRepository) adjust(ctx context.Context, id, field string, delta int) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter[field] = bson.M{"$gte": -delta}
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		r.log.LogError(ctx, err, "increment", "field", field)
		return translate(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
