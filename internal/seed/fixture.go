package seed

import (
	"fmt"
	"io"
	"os"
	"time"

	"firenet/internal/models"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set, usually loaded from YAML:
//
//	users:
//	  - handle: alice
//	    email: alice@example.com
//	posts:
//	  - author: alice
//	    body: hello
//	    comments:
//	      - author: alice
//	        body: first!
//	    likes: [alice]
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

type FixtureUser struct {
	Handle   string `yaml:"handle"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	ImageURL string `yaml:"imageUrl"`
}

type FixturePost struct {
	Author    string           `yaml:"author"`
	Body      string           `yaml:"body"`
	CreatedAt string           `yaml:"createdAt"`
	Comments  []FixtureComment `yaml:"comments"`
	Likes     []string         `yaml:"likes"`
}

type FixtureComment struct {
	Author string `yaml:"author"`
	Body   string `yaml:"body"`
}

// LoadFixture reads a YAML fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseFixture(f)
}

// ParseFixture decodes and checks a YAML fixture. Post timestamps are
// normalized to the stored layout.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate() error {
	handles := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		if u.Handle == "" || u.Email == "" {
			return fmt.Errorf("user %d: handle and email are required", i)
		}
		if handles[u.Handle] {
			return fmt.Errorf("user %d: duplicate handle %q", i, u.Handle)
		}
		handles[u.Handle] = true
	}
	for i, p := range fx.Posts {
		if !handles[p.Author] {
			return fmt.Errorf("post %d: unknown author %q", i, p.Author)
		}
		if p.CreatedAt != "" {
			ts, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
			if err != nil {
				return fmt.Errorf("post %d: createdAt: %w", i, err)
			}
			fx.Posts[i].CreatedAt = models.Timestamp(ts)
		}
	}
	return nil
}
