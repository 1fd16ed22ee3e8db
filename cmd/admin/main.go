// Package main provides operator utilities for firenet.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"firenet/internal/auth"
	"firenet/internal/bootstrap"
	"firenet/internal/config"
	"firenet/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin token <handle>   - Print a bearer token for the user")
	fmt.Println("  go run ./cmd/admin list-users       - List all users")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Backend.Close() }()

	users := service.NewUserService(store.Users,
		auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour))

	switch os.Args[1] {
	case "token":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		token, err := users.IssueToken(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)

	case "list-users":
		list, err := users.ListUsers(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tHANDLE\tEMAIL\tCREATED")
		for _, u := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Handle, u.Email, u.CreatedAt)
		}
		_ = w.Flush()

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}
