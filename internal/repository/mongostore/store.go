// Package mongostore implements the repository contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"

	"firenet/internal/database"
	"firenet/internal/observability"
	"firenet/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// New builds a Store whose repositories read and write db.
func New(client *mongo.Client, db *mongo.Database) *repository.Store {
	return &repository.Store{
		Posts:    &postRepository{coll: db.Collection(database.CollectionPosts), log: observability.NewRepoLogger(database.CollectionPosts)},
		Comments: &commentRepository{coll: db.Collection(database.CollectionComments), log: observability.NewRepoLogger(database.CollectionComments)},
		Likes:    &likeRepository{coll: db.Collection(database.CollectionLikes), log: observability.NewRepoLogger(database.CollectionLikes)},
		Users:    &userRepository{coll: db.Collection(database.CollectionUsers), log: observability.NewRepoLogger(database.CollectionUsers)},
		Backend:  &backend{client: client},
	}
}

type backend struct {
	client *mongo.Client
}

func (b *backend) Name() string { return "mongo" }

func (b *backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}

func (b *backend) Close() error {
	return b.client.Disconnect(context.Background())
}

// objectID parses a hex identifier. Malformed identifiers cannot name any
// document, so they are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	}
	return err
}
