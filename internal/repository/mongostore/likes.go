package mongostore

import (
	"context"

	"firenet/internal/models"
	"firenet/internal/observability"
	"firenet/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type likeDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	PostID     string             `bson:"postId"`
	UserHandle string             `bson:"userHandle"`
}

type likeRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	doc := likeDoc{ID: primitive.NewObjectID(), PostID: like.PostID, UserHandle: like.UserHandle}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	like.ID = doc.ID.Hex()
	return nil
}

func (r *likeRepository) FindOne(ctx context.Context, userHandle, postID string) (*models.Like, error) {
	var doc likeDoc
	err := r.coll.FindOne(ctx, bson.M{"userHandle": userHandle, "postId": postID}).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	return &models.Like{ID: doc.ID.Hex(), PostID: doc.PostID, UserHandle: doc.UserHandle}, nil
}

func (r *likeRepository) Delete(ctx context.Context, id string) error {
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

func (r *likeRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		r.log.LogError(ctx, err, "delete_many", "post_id", postID)
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}
