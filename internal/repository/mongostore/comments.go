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

type commentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Body       string             `bson:"body"`
	PostID     string             `bson:"postId"`
	UserHandle string             `bson:"userHandle"`
	UserImage  string             `bson:"userImage"`
	CreatedAt  string             `bson:"createdAt"`
}

type commentRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	doc := commentDoc{
		ID:         primitive.NewObjectID(),
		Body:       comment.Body,
		PostID:     comment.PostID,
		UserHandle: comment.UserHandle,
		UserImage:  comment.UserImage,
		CreatedAt:  comment.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.LogError(ctx, err, "create", "post_id", comment.PostID)
		return translate(err)
	}
	comment.ID = doc.ID.Hex()
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		r.log.LogError(ctx, err, "list", "post_id", postID)
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	comments := []*models.Comment{}
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		comments = append(comments, &models.Comment{
			ID:         doc.ID.Hex(),
			Body:       doc.Body,
			PostID:     doc.PostID,
			UserHandle: doc.UserHandle,
			UserImage:  doc.UserImage,
			CreatedAt:  doc.CreatedAt,
		})
	}
	return comments, cur.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
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
