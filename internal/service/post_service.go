// Package service holds the business operations behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"firenet/internal/middleware"
	"firenet/internal/models"
	"firenet/internal/notifications"
	"firenet/internal/observability"
	"firenet/internal/repository"
	"firenet/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Client-facing messages.
const (
	MsgPostNotFound = "Post not found."
	MsgEmptyBody    = "Must not be empty"
	MsgAlreadyLiked = "Post already liked"
	MsgNotLiked     = "Post not liked"
	MsgNotOwner     = "Unauthorised."
	MsgPostDeleted  = "Post deleted successfully."
)

const defaultCascadeLimit = 8

type PostService struct {
	posts        repository.PostRepository
	comments     repository.CommentRepository
	likes        repository.LikeRepository
	events       notifications.Publisher
	cascadeLimit int
	now          func() time.Time
}

type CreatePostInput struct {
	Author *models.Identity
	Body   string
}

type CreateCommentInput struct {
	Author *models.Identity
	PostID string
	Body   string
}

type PostActionInput struct {
	Actor  *models.Identity
	PostID string
}

// NewPostService wires the service to a store. events may be nil, and a
// non-positive cascadeLimit selects the default.
func NewPostService(store *repository.Store, events notifications.Publisher, cascadeLimit int) *PostService {
	if cascadeLimit <= 0 {
		cascadeLimit = defaultCascadeLimit
	}
	return &PostService{
		posts:        store.Posts,
		comments:     store.Comments,
		likes:        store.Likes,
		events:       events,
		cascadeLimit: cascadeLimit,
		now:          time.Now,
	}
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) (posts []*models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.ListPosts")
	defer func() {
		observability.RecordPostAction("list", err)
		observability.EndSpan(span, err)
	}()

	posts, err = s.posts.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// CreatePost stores a new post authored by in.Author with zeroed counters.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.CreatePost")
	defer func() {
		observability.RecordPostAction("create", err)
		observability.EndSpan(span, err)
	}()

	post = &models.Post{
		Body:       in.Body,
		UserHandle: in.Author.Handle,
		UserImage:  in.Author.ImageURL,
		CreatedAt:  models.Timestamp(s.now()),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.publish(ctx, notifications.EventPostCreated, post)
	return post, nil
}

// GetPost returns the post with its comments, newest first.
func (s *PostService) GetPost(ctx context.Context, postID string) (detail *models.PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.GetPost", attribute.String("post.id", postID))
	defer func() {
		observability.RecordPostAction("get", err)
		observability.EndSpan(span, err)
	}()

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.PostDetail{Post: post, Comments: comments}, nil
}

// CreateComment attaches a comment to an existing post and bumps its comment
// counter. The body is stored exactly as sent.
func (s *PostService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.CreateComment", attribute.String("post.id", in.PostID))
	defer func() {
		observability.RecordPostAction("comment", err)
		observability.EndSpan(span, err)
	}()

	if validation.IsBlank(in.Body) {
		return nil, models.NewValidationError(MsgEmptyBody)
	}
	if _, err := s.findPost(ctx, in.PostID); err != nil {
		return nil, err
	}

	if err := s.posts.IncrementComments(ctx, in.PostID, 1); err != nil {
		return nil, storeError(err)
	}

	comment = &models.Comment{
		Body:       in.Body,
		PostID:     in.PostID,
		UserHandle: in.Author.Handle,
		UserImage:  in.Author.ImageURL,
		CreatedAt:  models.Timestamp(s.now()),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if undoErr := s.posts.IncrementComments(ctx, in.PostID, -1); undoErr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to roll back comment counter",
				slog.String("post_id", in.PostID),
				slog.String("error", undoErr.Error()),
			)
		}
		return nil, models.NewInternalError(err)
	}

	s.publish(ctx, notifications.EventCommentCreated, comment)
	return comment, nil
}

// LikePost records the actor's like and returns the updated post.
func (s *PostService) LikePost(ctx context.Context, in PostActionInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.LikePost", attribute.String("post.id", in.PostID))
	defer func() {
		observability.RecordPostAction("like", err)
		observability.EndSpan(span, err)
	}()

	if _, err := s.findPost(ctx, in.PostID); err != nil {
		return nil, err
	}

	switch _, err := s.likes.FindOne(ctx, in.Actor.Handle, in.PostID); {
	case err == nil:
		return nil, models.NewConflictError(MsgAlreadyLiked)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, models.NewInternalError(err)
	}

	like := &models.Like{PostID: in.PostID, UserHandle: in.Actor.Handle}
	if err := s.likes.Create(ctx, like); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewConflictError(MsgAlreadyLiked)
		}
		return nil, models.NewInternalError(err)
	}

	if err := s.posts.IncrementLikes(ctx, in.PostID, 1); err != nil {
		if undoErr := s.likes.Delete(ctx, like.ID); undoErr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to roll back like",
				slog.String("post_id", in.PostID),
				slog.String("error", undoErr.Error()),
			)
		}
		return nil, storeError(err)
	}

	post, err = s.findPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.EventPostLiked, likePayload(post, in.Actor.Handle))
	return post, nil
}

// UnlikePost removes the actor's like and returns the updated post.
func (s *PostService) UnlikePost(ctx context.Context, in PostActionInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.UnlikePost", attribute.String("post.id", in.PostID))
	defer func() {
		observability.RecordPostAction("unlike", err)
		observability.EndSpan(span, err)
	}()

	if _, err := s.findPost(ctx, in.PostID); err != nil {
		return nil, err
	}

	like, err := s.likes.FindOne(ctx, in.Actor.Handle, in.PostID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewConflictError(MsgNotLiked)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.likes.Delete(ctx, like.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewConflictError(MsgNotLiked)
		}
		return nil, models.NewInternalError(err)
	}
	if err := s.posts.IncrementLikes(ctx, in.PostID, -1); err != nil {
		return nil, storeError(err)
	}

	post, err = s.findPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.EventPostUnliked, likePayload(post, in.Actor.Handle))
	return post, nil
}

// DeletePost removes a post owned by the actor together with its comments and
// likes. Comments are deleted concurrently; if any of them fails the post is
// kept so that a retry can finish the cleanup.
func (s *PostService) DeletePost(ctx context.Context, in PostActionInput) (err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.DeletePost", attribute.String("post.id", in.PostID))
	defer func() {
		observability.RecordPostAction("delete", err)
		observability.EndSpan(span, err)
	}()

	post, err := s.findPost(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserHandle != in.Actor.Handle {
		return models.NewForbiddenError(MsgNotOwner)
	}

	comments, err := s.comments.ListByPost(ctx, in.PostID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.deleteComments(ctx, comments); err != nil {
		return models.NewInternalError(err)
	}
	observability.CascadeDeletes.Observe(float64(len(comments)))

	if _, err := s.likes.DeleteByPost(ctx, in.PostID); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.posts.Delete(ctx, in.PostID); err != nil {
		return storeError(err)
	}

	s.publish(ctx, notifications.EventPostDeleted, map[string]string{"postId": in.PostID})
	return nil
}

// deleteComments deletes every comment with bounded parallelism and returns
// all failures joined. Comments already gone are not failures.
func (s *PostService) deleteComments(ctx context.Context, comments []*models.Comment) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(s.cascadeLimit)

	for _, c := range comments {
		c := c
		g.Go(func() error {
			if err := s.comments.Delete(ctx, c.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				mu.Lock()
				errs = append(errs, fmt.Errorf("delete comment %s: %w", c.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *PostService) findPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, storeError(err)
	}
	return post, nil
}

func (s *PostService) publish(ctx context.Context, eventType string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, notifications.Event{Type: eventType, Payload: payload}); err != nil {
		middleware.Logger.WarnContext(ctx, "post event not delivered",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

func likePayload(post *models.Post, handle string) map[string]any {
	return map[string]any{
		"postId":     post.ID,
		"userHandle": handle,
		"likeCount":  post.LikeCount,
	}
}

// storeError maps a missing post onto the client-facing not-found error and
// everything else onto an internal error.
func storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(MsgPostNotFound)
	}
	return models.NewInternalError(err)
}
