// Package seed provides helpers to create demo data for development. These
// helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"firenet/internal/models"
	"firenet/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password every generated user gets.
const DefaultPassword = "password123"

// Options tune the amount and shape of generated data.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	LikesPerPost    int
	// MaxDays spreads createdAt timestamps over the last MaxDays days.
	MaxDays int
	// SkipBcrypt stores DefaultPassword hashed with the minimum cost.
	SkipBcrypt bool
	// Seed makes generation deterministic when non-zero.
	Seed int64
}

// Factory builds domain entities and persists them through the store's
// repositories, keeping post counters in step with what it writes.
type Factory struct {
	store *repository.Store
	opts  Options
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewFactory creates a Factory bound to store.
func NewFactory(store *repository.Store, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Factory{store: store, opts: opts, faker: gofakeit.New(seed), now: time.Now}
}

// timestamp returns a random instant within the configured window.
func (f *Factory) timestamp() string {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	return models.Timestamp(f.now().Add(-back))
}

func (f *Factory) hash(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CreateUser constructs and persists a user. Optional overrides may modify
// the generated user before it is saved; a plain-text Password set by an
// override is hashed.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	handle := strings.ToLower(f.faker.Username()) + fmt.Sprintf("%d", f.faker.Number(100, 999))
	user := &models.User{
		Handle:    sanitizeHandle(handle),
		Email:     strings.ToLower(f.faker.Email()),
		Password:  DefaultPassword,
		ImageURL:  fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		CreatedAt: f.timestamp(),
	}
	for _, override := range overrides {
		override(user)
	}

	hashed, err := f.hash(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	if err := f.store.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Handle, err)
	}
	return user, nil
}

// CreatePost persists a post by author.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Body:       f.faker.Sentence(f.faker.Number(4, 20)),
		UserHandle: author.Handle,
		UserImage:  author.ImageURL,
		CreatedAt:  f.timestamp(),
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.store.Posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment persists a comment on post and bumps its comment counter.
func (f *Factory) CreateComment(ctx context.Context, post *models.Post, author *models.User, body string) (*models.Comment, error) {
	if body == "" {
		body = f.faker.Sentence(f.faker.Number(3, 12))
	}
	comment := &models.Comment{
		Body:       body,
		PostID:     post.ID,
		UserHandle: author.Handle,
		UserImage:  author.ImageURL,
		CreatedAt:  f.timestamp(),
	}
	if comment.CreatedAt < post.CreatedAt {
		comment.CreatedAt = post.CreatedAt
	}
	if err := f.store.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if err := f.store.Posts.IncrementComments(ctx, post.ID, 1); err != nil {
		return nil, fmt.Errorf("bump comment count: %w", err)
	}
	post.CommentCount++
	return comment, nil
}

// Like records that user liked post. An existing like is left alone and
// reported as false.
func (f *Factory) Like(ctx context.Context, post *models.Post, user *models.User) (bool, error) {
	err := f.store.Likes.Create(ctx, &models.Like{PostID: post.ID, UserHandle: user.Handle})
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("create like: %w", err)
	}
	if err := f.store.Posts.IncrementLikes(ctx, post.ID, 1); err != nil {
		return false, fmt.Errorf("bump like count: %w", err)
	}
	post.LikeCount++
	return true, nil
}

// pick returns a random user.
func (f *Factory) pick(users []*models.User) *models.User {
	return users[f.faker.Number(0, len(users)-1)]
}

func sanitizeHandle(h string) string {
	var b strings.Builder
	for _, r := range h {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 30 {
		out = out[:30]
	}
	for len(out) < 3 {
		out += "x"
	}
	return out
}
