// Command main populates the configured store with development data.
package main

import (
	"context"
	"flag"
	"log"

	"firenet/internal/bootstrap"
	"firenet/internal/config"
	"firenet/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	comments := flag.Int("comments", 3, "Comments per post")
	likes := flag.Int("likes", 5, "Like attempts per post")
	fixture := flag.String("fixture", "", "Seed from a YAML fixture instead of generated data")
	fast := flag.Bool("fast", false, "Hash passwords with the minimum bcrypt cost")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production environment")
	}

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Backend.Close() }()

	s := seed.NewSeeder(store, seed.Options{
		Users:           *numUsers,
		Posts:           *numPosts,
		CommentsPerPost: *comments,
		LikesPerPost:    *likes,
		SkipBcrypt:      *fast,
	})

	var sum seed.Summary
	if *fixture != "" {
		fx, ferr := seed.LoadFixture(*fixture)
		if ferr != nil {
			log.Fatalf("Failed to load fixture: %v", ferr)
		}
		sum, err = s.ApplyFixture(ctx, fx)
	} else {
		sum, err = s.Run(ctx)
	}
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %s into %s", sum, store.Backend.Name())
	log.Printf("Generated users have the password: %s", seed.DefaultPassword)
}
