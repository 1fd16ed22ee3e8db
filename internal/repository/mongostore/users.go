package mongostore

import (
	"context"

	"firenet/internal/models"
	"firenet/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Handle    string             `bson:"handle"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	ImageURL  string             `bson:"imageUrl"`
	CreatedAt string             `bson:"createdAt"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:        d.ID.Hex(),
		Handle:    d.Handle,
		Email:     d.Email,
		Password:  d.Password,
		ImageURL:  d.ImageURL,
		CreatedAt: d.CreatedAt,
	}
}

type userRepository struct {
	coll *mongo.Collection
	log  *observability.RepoLogger
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Handle:    user.Handle,
		Email:     user.Email,
		Password:  user.Password,
		ImageURL:  user.ImageURL,
		CreatedAt: user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"handle": handle})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	users := []*models.User{}
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.model())
	}
	return users, cur.Err()
}
