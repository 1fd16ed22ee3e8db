package mongostore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"firenet/internal/config"
	"firenet/internal/database"
	"firenet/internal/models"
	"firenet/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestObjectID_MalformedIsNotFound(t *testing.T) {
	_, err := objectID("not-a-hex-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	oid, err := objectID("65f0c0ffee0123456789abcd")
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee0123456789abcd", oid.Hex())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), repository.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), repository.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), repository.ErrDuplicate)

	other := errors.New("server selection timeout")
	assert.Same(t, other, translate(other))
}

// setupMongo starts a disposable MongoDB and returns a Store over it.
func setupMongo(t *testing.T) *repository.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("MongoDB container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	cfg := &config.Config{
		MongoURI:      fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		MongoDatabase: "firenet_test",
	}
	client, db, err := database.ConnectMongo(ctx, cfg)
	require.NoError(t, err)

	store := New(client, db)
	t.Cleanup(func() { _ = store.Backend.Close() })
	return store
}

func TestMongoStore(t *testing.T) {
	store := setupMongo(t)
	ctx := context.Background()
	base := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)

	older := &models.Post{Body: "older", UserHandle: "alice", CreatedAt: models.Timestamp(base)}
	newer := &models.Post{Body: "newer", UserHandle: "bob", CreatedAt: models.Timestamp(base.Add(time.Millisecond))}
	require.NoError(t, store.Posts.Create(ctx, older))
	require.NoError(t, store.Posts.Create(ctx, newer))
	require.NotEmpty(t, older.ID)

	t.Run("list newest first", func(t *testing.T) {
		posts, err := store.Posts.List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "newer", posts[0].Body)
	})

	t.Run("get missing and malformed", func(t *testing.T) {
		_, err := store.Posts.GetByID(ctx, "65f0c0ffee0123456789abcd")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = store.Posts.GetByID(ctx, "zzz")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("counters", func(t *testing.T) {
		require.NoError(t, store.Posts.IncrementLikes(ctx, older.ID, 1))
		require.NoError(t, store.Posts.IncrementLikes(ctx, older.ID, -1))
		require.NoError(t, store.Posts.IncrementLikes(ctx, older.ID, -1))
		got, err := store.Posts.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.LikeCount)
	})

	t.Run("likes unique", func(t *testing.T) {
		require.NoError(t, store.Likes.Create(ctx, &models.Like{PostID: older.ID, UserHandle: "carol"}))
		err := store.Likes.Create(ctx, &models.Like{PostID: older.ID, UserHandle: "carol"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		like, err := store.Likes.FindOne(ctx, "carol", older.ID)
		require.NoError(t, err)
		require.NoError(t, store.Likes.Delete(ctx, like.ID))
	})

	t.Run("comments and delete", func(t *testing.T) {
		c := &models.Comment{Body: "hi", PostID: older.ID, UserHandle: "dave", CreatedAt: models.Timestamp(base)}
		require.NoError(t, store.Comments.Create(ctx, c))
		comments, err := store.Comments.ListByPost(ctx, older.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)

		require.NoError(t, store.Comments.Delete(ctx, c.ID))
		require.NoError(t, store.Posts.Delete(ctx, older.ID))
		assert.ErrorIs(t, store.Posts.Delete(ctx, older.ID), repository.ErrNotFound)
	})

	t.Run("users", func(t *testing.T) {
		u := &models.User{Handle: "erin", Email: "erin@x.io", Password: "h", CreatedAt: models.Timestamp(base)}
		require.NoError(t, store.Users.Create(ctx, u))
		err := store.Users.Create(ctx, &models.User{Handle: "erin", Email: "other@x.io", Password: "h"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		got, err := store.Users.GetByEmail(ctx, "erin@x.io")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	assert.NoError(t, store.Backend.Ping(ctx))
	assert.Equal(t, "mongo", store.Backend.Name())
}
