package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"firenet/internal/models"
	"firenet/internal/repository"
)

// Summary counts what a seeding run wrote.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d posts, %d comments, %d likes", s.Users, s.Posts, s.Comments, s.Likes)
}

// Seeder populates a store with generated or fixture data.
type Seeder struct {
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder writing to store.
func NewSeeder(store *repository.Store, opts Options) *Seeder {
	return &Seeder{factory: NewFactory(store, opts), opts: opts}
}

// Run generates users and then posts with comments and likes spread across
// them.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.opts.Users <= 0 {
		return sum, errors.New("at least one user is required")
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return sum, err
		}
		users = append(users, u)
		sum.Users++
	}
	log.Printf("seeded %d users", len(users))

	for i := 0; i < s.opts.Posts; i++ {
		post, err := s.factory.CreatePost(ctx, s.factory.pick(users))
		if err != nil {
			return sum, err
		}
		sum.Posts++

		for j := 0; j < s.opts.CommentsPerPost; j++ {
			if _, err := s.factory.CreateComment(ctx, post, s.factory.pick(users), ""); err != nil {
				return sum, err
			}
			sum.Comments++
		}

		for j := 0; j < s.opts.LikesPerPost && j < len(users); j++ {
			liked, err := s.factory.Like(ctx, post, s.factory.pick(users))
			if err != nil {
				return sum, err
			}
			if liked {
				sum.Likes++
			}
		}
	}
	log.Printf("seeded %s", sum)
	return sum, nil
}

// ApplyFixture writes the users and posts described by fx. Users are
// referenced by handle from posts, comments and likes.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (Summary, error) {
	var sum Summary
	byHandle := make(map[string]*models.User, len(fx.Users))

	for _, fu := range fx.Users {
		u, err := s.factory.CreateUser(ctx, func(u *models.User) {
			u.Handle = fu.Handle
			u.Email = fu.Email
			if fu.Password != "" {
				u.Password = fu.Password
			}
			if fu.ImageURL != "" {
				u.ImageURL = fu.ImageURL
			}
		})
		if err != nil {
			return sum, err
		}
		byHandle[u.Handle] = u
		sum.Users++
	}

	lookup := func(handle string) (*models.User, error) {
		u, ok := byHandle[handle]
		if !ok {
			return nil, fmt.Errorf("fixture references unknown user %q", handle)
		}
		return u, nil
	}

	for _, fp := range fx.Posts {
		author, err := lookup(fp.Author)
		if err != nil {
			return sum, err
		}
		post, err := s.factory.CreatePost(ctx, author, func(p *models.Post) {
			p.Body = fp.Body
			if fp.CreatedAt != "" {
				p.CreatedAt = fp.CreatedAt
			}
		})
		if err != nil {
			return sum, err
		}
		sum.Posts++

		for _, fc := range fp.Comments {
			commenter, err := lookup(fc.Author)
			if err != nil {
				return sum, err
			}
			if _, err := s.factory.CreateComment(ctx, post, commenter, fc.Body); err != nil {
				return sum, err
			}
			sum.Comments++
		}

		for _, handle := range fp.Likes {
			liker, err := lookup(handle)
			if err != nil {
				return sum, err
			}
			liked, err := s.factory.Like(ctx, post, liker)
			if err != nil {
				return sum, err
			}
			if liked {
				sum.Likes++
			}
		}
	}
	log.Printf("applied fixture: %s", sum)
	return sum, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
