package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run cmd/create-admin/main.go <name> <email> <api-key> [role]")
		fmt.Println("Example: go run cmd/create-admin/main.go \"Ops Team\" ops@fitkart.in \"ops-api-key-12345\" admin")
		os.Exit(1)
	}

	name := os.Args[1]
	email := os.Args[2]
	apiKey := os.Args[3]

	role := domain.RoleAdmin
	if len(os.Args) > 4 {
		role = domain.Role(os.Args[4])
		if role != domain.RoleAdmin && role != domain.RoleCustomer {
			fmt.Fprintf(os.Stderr, "Unknown role %q, expected admin or customer\n", os.Args[4])
			os.Exit(1)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	// Create repositories
	repos := postgres.NewRepositories(db, logger)

	user := &domain.User{
		Name:       name,
		Email:      email,
		Role:       role,
		APIKeyHash: string(apiKeyHash),
		IsActive:   true,
	}

	if err := repos.User.Create(context.Background(), user); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ User created successfully!\n\n")
	fmt.Printf("User ID: %s\n", user.ID.String())
	fmt.Printf("Name: %s\n", user.Name)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Role: %s\n", user.Role)
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\n⚠️  IMPORTANT: Save this API key securely! You won't be able to see it again.\n")
	fmt.Printf("\nUse this API key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
