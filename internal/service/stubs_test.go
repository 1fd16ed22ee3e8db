package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"firenet/internal/models"
	"firenet/internal/notifications"
	"firenet/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory document store. The *Err fields inject failures
// into single operations.
type memStore struct {
	mu       sync.Mutex
	posts    map[string]*models.Post
	comments map[string]*models.Comment
	likes    map[string]*models.Like
	users    map[string]*models.User

	incCommentsErr   error
	incLikesErr      error
	createCommentErr error
	createLikeErr    error
	deletePostErr    error
	deleteCommentFn  func(id string) error
}

func newMemStore() *memStore {
	return &memStore{
		posts:    map[string]*models.Post{},
		comments: map[string]*models.Comment{},
		likes:    map[string]*models.Like{},
		users:    map[string]*models.User{},
	}
}

func (m *memStore) store() *repository.Store {
	return &repository.Store{
		Posts:    (*memPosts)(m),
		Comments: (*memComments)(m),
		Likes:    (*memLikes)(m),
		Users:    (*memUsers)(m),
	}
}

func (m *memStore) post(id string) models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.posts[id]
}

type memPosts memStore

func (r *memPosts) Create(_ context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPosts) List(_ context.Context) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func bump(v *int, delta int) {
	*v += delta
	if *v < 0 {
		*v = 0
	}
}

func (r *memPosts) IncrementLikes(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incLikesErr != nil {
		return r.incLikesErr
	}
	p, ok := r.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	bump(&p.LikeCount, delta)
	return nil
}

func (r *memPosts) IncrementComments(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incCommentsErr != nil && delta > 0 {
		return r.incCommentsErr
	}
	p, ok := r.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	bump(&p.CommentCount, delta)
	return nil
}

func (r *memPosts) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deletePostErr != nil {
		return r.deletePostErr
	}
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type memComments memStore

func (r *memComments) Create(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createCommentErr != nil {
		return r.createCommentErr
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *memComments) ListByPost(_ context.Context, postID string) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (r *memComments) Delete(_ context.Context, id string) error {
	if r.deleteCommentFn != nil {
		if err := r.deleteCommentFn(id); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

type memLikes memStore

func (r *memLikes) Create(_ context.Context, l *models.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createLikeErr != nil {
		return r.createLikeErr
	}
	for _, existing := range r.likes {
		if existing.PostID == l.PostID && existing.UserHandle == l.UserHandle {
			return repository.ErrDuplicate
		}
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	cp := *l
	r.likes[l.ID] = &cp
	return nil
}

func (r *memLikes) FindOne(_ context.Context, userHandle, postID string) (*models.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.likes {
		if l.PostID == postID && l.UserHandle == userHandle {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memLikes) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.likes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.likes, id)
	return nil
}

func (r *memLikes) DeleteByPost(_ context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, l := range r.likes {
		if l.PostID == postID {
			delete(r.likes, id)
			n++
		}
	}
	return n, nil
}

type memUsers memStore

func (r *memUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Handle == u.Handle || existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUsers) GetByHandle(_ context.Context, handle string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Handle == handle })
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUsers) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var errBackend = errors.New("backend unavailable")
