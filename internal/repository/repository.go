// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"firenet/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*models.Post, error)
	// IncrementLikes atomically adds delta to the like counter. Decrements
	// never take the counter below zero.
	IncrementLikes(ctx context.Context, id string, delta int) error
	// IncrementComments atomically adds delta to the comment counter. Decrements
	// never take the counter below zero.
	IncrementComments(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByPost returns the post's comments, newest first.
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// LikeRepository defines interface for like operations
type LikeRepository interface {
	// Create returns ErrDuplicate when the user already liked the post.
	Create(ctx context.Context, like *models.Like) error
	// FindOne returns the user's like on the post or ErrNotFound.
	FindOne(ctx context.Context, userHandle, postID string) (*models.Like, error)
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

// UserRepository defines the interface for account data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByHandle(ctx context.Context, handle string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// Backend is the connection underneath a Store.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// Store bundles the repositories of one document store.
type Store struct {
	Posts    PostRepository
	Comments CommentRepository
	Likes    LikeRepository
	Users    UserRepository
	Backend  Backend
}
