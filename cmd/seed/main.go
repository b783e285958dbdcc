// Package main provides a tool to seed a library with sample books.
//
// This reads existing users from the database and fills the chosen
// account with the demo catalog, useful for trying out stats, tags,
// and list features against realistic data.
//
// Usage:
//
//	DB_PATH=~/onlibrary/db go run ./cmd/seed --email reader@example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/onlibrary/onlibrary-server/internal/service"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

var email = flag.String("email", "", "Email of the account to seed (defaults to the only user)")

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/onlibrary/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	ownerID, err := resolveOwner(ctx, s, *email)
	if err != nil {
		log.Fatalf("Failed to resolve account: %v", err)
	}

	count, err := service.SeedLibrary(ctx, s, ownerID)
	if err != nil {
		log.Fatalf("Failed to seed library: %v", err)
	}

	fmt.Printf("Seeded %d books for user %s\n", count, ownerID)
}

func resolveOwner(ctx context.Context, s *store.Store, email string) (string, error) {
	if email != "" {
		user, err := s.GetUserByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("no user with email %s: %w", email, err)
		}
		return user.ID, nil
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		return "", err
	}
	switch len(users) {
	case 0:
		return "", fmt.Errorf("no users in database, register an account first")
	case 1:
		return users[0].ID, nil
	default:
		return "", fmt.Errorf("multiple users in database, pick one with --email")
	}
}
