package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"firenet/internal/models"
	"firenet/internal/notifications"
	"firenet/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &models.Identity{Handle: "alice", ImageURL: "https://img.example/alice.png"}
	bob   = &models.Identity{Handle: "bob", ImageURL: "https://img.example/bob.png"}
)

func newTestPostService(t *testing.T) (*PostService, *memStore, *recordingPublisher) {
	t.Helper()
	mem := newMemStore()
	pub := &recordingPublisher{}
	svc := NewPostService(mem.store(), pub, 4)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}
	return svc, mem, pub
}

func assertAppError(t *testing.T, err error, kind models.ErrorKind, msg string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind)
	if msg != "" {
		assert.Equal(t, msg, appErr.Message)
	}
}

func TestPostService_CreateAndList(t *testing.T) {
	svc, _, pub := newTestPostService(t)
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "first"})
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, CreatePostInput{Author: bob, Body: "second"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "alice", first.UserHandle)
	assert.Equal(t, alice.ImageURL, first.UserImage)
	assert.Zero(t, first.LikeCount)
	assert.Zero(t, first.CommentCount)
	assert.Equal(t, "2024-03-01T12:00:00.001Z", first.CreatedAt)

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)

	assert.Equal(t, []string{notifications.EventPostCreated, notifications.EventPostCreated}, pub.types())
}

func TestPostService_CreatePost_AllowsEmptyBody(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{Author: alice, Body: ""})
	require.NoError(t, err)
	assert.Equal(t, "", post.Body)
}

func TestPostService_PublishFailureDoesNotFailRequest(t *testing.T) {
	svc, _, pub := newTestPostService(t)
	pub.err = errors.New("broker down")

	_, err := svc.CreatePost(context.Background(), CreatePostInput{Author: alice, Body: "hi"})
	assert.NoError(t, err)
}

func TestPostService_GetPost(t *testing.T) {
	svc, _, _ := newTestPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "hello"})
	require.NoError(t, err)
	c1, err := svc.CreateComment(ctx, CreateCommentInput{Author: bob, PostID: post.ID, Body: "one"})
	require.NoError(t, err)
	c2, err := svc.CreateComment(ctx, CreateCommentInput{Author: alice, PostID: post.ID, Body: "two"})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		detail, err := svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.ID, detail.ID)
		assert.Equal(t, 2, detail.CommentCount)
		require.Len(t, detail.Comments, 2)
		assert.Equal(t, c2.ID, detail.Comments[0].ID)
		assert.Equal(t, c1.ID, detail.Comments[1].ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.GetPost(ctx, "nope")
		assertAppError(t, err, models.KindNotFound, MsgPostNotFound)
	})
}

func TestPostService_CreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("stores body as sent", func(t *testing.T) {
		svc, mem, pub := newTestPostService(t)
		post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "p"})
		require.NoError(t, err)

		comment, err := svc.CreateComment(ctx, CreateCommentInput{Author: bob, PostID: post.ID, Body: "  nice  "})
		require.NoError(t, err)
		assert.Equal(t, "  nice  ", comment.Body)
		assert.Equal(t, post.ID, comment.PostID)
		assert.Equal(t, "bob", comment.UserHandle)
		assert.Equal(t, bob.ImageURL, comment.UserImage)
		assert.Equal(t, 1, mem.post(post.ID).CommentCount)
		assert.Contains(t, pub.types(), notifications.EventCommentCreated)
	})

	t.Run("blank body is checked before the post", func(t *testing.T) {
		svc, _, _ := newTestPostService(t)
		_, err := svc.CreateComment(ctx, CreateCommentInput{Author: bob, PostID: "missing", Body: " \t\n"})
		assertAppError(t, err, models.KindValidation, MsgEmptyBody)
	})

	t.Run("missing post", func(t *testing.T) {
		svc, _, _ := newTestPostService(t)
		_, err := svc.CreateComment(ctx, CreateCommentInput{Author: bob, PostID: "missing", Body: "hi"})
		assertAppError(t, err, models.KindNotFound, MsgPostNotFound)
	})

	t.Run("counter failure", func(t *testing.T) {
		svc, mem, _ := newTestPostService(t)
		post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "p"})
		require.NoError(t, err)
		mem.incCommentsErr = errBackend

		_, err = svc.CreateComment(ctx, CreateCommentInput{Author: bob, PostID: post.ID, Body: "hi"})
		assertAppError(t, err, models.KindInternal, errBackend.Error())
		assert.Empty(t, mem.comments)
	})

	t.Run("insert failure rolls back the counter", func(t *testing.T) {
		svc, mem, _ := newTestPostService(t)
		post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "p"})
		require.NoError(t, err)
		mem.createCommentErr = errBackend

		_, err = svc.CreateComment(ctx, CreateCommentInput{Author: bob, PostID: post.ID, Body: "hi"})
		assertAppError(t, err, models.KindInternal, errBackend.Error())
		assert.Equal(t, 0, mem.post(post.ID).CommentCount)
	})
}

func TestPostService_LikeUnlike(t *testing.T) {
	ctx := context.Background()
	svc, mem, pub := newTestPostService(t)
	post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "p"})
	require.NoError(t, err)
	action := PostActionInput{Actor: bob, PostID: post.ID}

	liked, err := svc.LikePost(ctx, action)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikeCount)

	_, err = svc.LikePost(ctx, action)
	assertAppError(t, err, models.KindConflict, MsgAlreadyLiked)
	assert.Equal(t, 1, mem.post(post.ID).LikeCount)

	unliked, err := svc.UnlikePost(ctx, action)
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.LikeCount)

	_, err = svc.UnlikePost(ctx, action)
	assertAppError(t, err, models.KindConflict, MsgNotLiked)
	assert.Equal(t, 0, mem.post(post.ID).LikeCount)

	assert.Equal(t, []string{
		notifications.EventPostCreated,
		notifications.EventPostLiked,
		notifications.EventPostUnliked,
	}, pub.types())
}

func TestPostService_LikePost_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing post", func(t *testing.T) {
		svc, _, _ := newTestPostService(t)
		_, err := svc.LikePost(ctx, PostActionInput{Actor: bob, PostID: "missing"})
		assertAppError(t, err, models.KindNotFound, MsgPostNotFound)

		_, err = svc.UnlikePost(ctx, PostActionInput{Actor: bob, PostID: "missing"})
		assertAppError(t, err, models.KindNotFound, MsgPostNotFound)
	})

	t.Run("duplicate insert reported as conflict", func(t *testing.T) {
		svc, mem, _ := newTestPostService(t)
		post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "p"})
		require.NoError(t, err)
		mem.createLikeErr = repository.ErrDuplicate

		_, err = svc.LikePost(ctx, PostActionInput{Actor: bob, PostID: post.ID})
		assertAppError(t, err, models.KindConflict, MsgAlreadyLiked)
	})

	t.Run("counter failure removes the like", func(t *testing.T) {
		svc, mem, _ := newTestPostService(t)
		post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "p"})
		require.NoError(t, err)
		mem.incLikesErr = errBackend

		_, err = svc.LikePost(ctx, PostActionInput{Actor: bob, PostID: post.ID})
		assertAppError(t, err, models.KindInternal, errBackend.Error())
		assert.Empty(t, mem.likes)
	})
}

func TestPostService_ConcurrentLikesCountOnce(t *testing.T) {
	ctx := context.Background()
	svc, mem, _ := newTestPostService(t)
	post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "p"})
	require.NoError(t, err)

	const n = 10
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := svc.LikePost(ctx, PostActionInput{Actor: bob, PostID: post.ID})
			errs <- err
		}()
	}
	succeeded := 0
	for i := 0; i < n; i++ {
		if err := <-errs; err == nil {
			succeeded++
		} else {
			assertAppError(t, err, models.KindConflict, MsgAlreadyLiked)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, mem.post(post.ID).LikeCount)
}

func TestPostService_DeletePost(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*PostService, *memStore, *recordingPublisher, *models.Post) {
		svc, mem, pub := newTestPostService(t)
		post, err := svc.CreatePost(ctx, CreatePostInput{Author: alice, Body: "p"})
		require.NoError(t, err)
		for i := 0; i < 6; i++ {
			_, err := svc.CreateComment(ctx, CreateCommentInput{Author: bob, PostID: post.ID, Body: fmt.Sprintf("c%d", i)})
			require.NoError(t, err)
		}
		_, err = svc.LikePost(ctx, PostActionInput{Actor: bob, PostID: post.ID})
		require.NoError(t, err)
		return svc, mem, pub, post
	}

	t.Run("owner deletes post and cascade", func(t *testing.T) {
		svc, mem, pub, post := seed(t)
		other, err := svc.CreatePost(ctx, CreatePostInput{Author: bob, Body: "keep"})
		require.NoError(t, err)
		_, err = svc.CreateComment(ctx, CreateCommentInput{Author: alice, PostID: other.ID, Body: "stays"})
		require.NoError(t, err)

		require.NoError(t, svc.DeletePost(ctx, PostActionInput{Actor: alice, PostID: post.ID}))

		assert.NotContains(t, mem.posts, post.ID)
		assert.Len(t, mem.comments, 1)
		assert.Empty(t, mem.likes)
		assert.Contains(t, pub.types(), notifications.EventPostDeleted)

		_, err = svc.GetPost(ctx, post.ID)
		assertAppError(t, err, models.KindNotFound, MsgPostNotFound)
	})

	t.Run("not owner", func(t *testing.T) {
		svc, mem, _, post := seed(t)
		err := svc.DeletePost(ctx, PostActionInput{Actor: bob, PostID: post.ID})
		assertAppError(t, err, models.KindForbidden, MsgNotOwner)
		assert.Contains(t, mem.posts, post.ID)
		assert.Len(t, mem.comments, 6)
	})

	t.Run("missing", func(t *testing.T) {
		svc, _, _ := newTestPostService(t)
		err := svc.DeletePost(ctx, PostActionInput{Actor: alice, PostID: "missing"})
		assertAppError(t, err, models.KindNotFound, MsgPostNotFound)
	})

	t.Run("failed comment delete keeps the post", func(t *testing.T) {
		svc, mem, _, post := seed(t)
		var failed string
		for id := range mem.comments {
			failed = id
			break
		}
		mem.deleteCommentFn = func(id string) error {
			if id == failed {
				return errBackend
			}
			return nil
		}

		err := svc.DeletePost(ctx, PostActionInput{Actor: alice, PostID: post.ID})
		assertAppError(t, err, models.KindInternal, "")
		assert.ErrorIs(t, err, errBackend)
		assert.Contains(t, mem.posts, post.ID)
		assert.Len(t, mem.comments, 1)

		mem.deleteCommentFn = nil
		require.NoError(t, svc.DeletePost(ctx, PostActionInput{Actor: alice, PostID: post.ID}))
		assert.Empty(t, mem.comments)
	})

	t.Run("post delete failure", func(t *testing.T) {
		svc, mem, _, post := seed(t)
		mem.deletePostErr = errBackend
		err := svc.DeletePost(ctx, PostActionInput{Actor: alice, PostID: post.ID})
		assertAppError(t, err, models.KindInternal, errBackend.Error())
	})
}

func TestNewPostService_DefaultCascadeLimit(t *testing.T) {
	svc := NewPostService(newMemStore().store(), nil, 0)
	assert.Equal(t, defaultCascadeLimit, svc.cascadeLimit)
}
