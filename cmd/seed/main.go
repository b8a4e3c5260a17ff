// seed inserts a demo user and a handful of shipments into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ErlanBelekov/shiptrack/internal/auth"
	"github.com/ErlanBelekov/shiptrack/internal/domain"
	"github.com/ErlanBelekov/shiptrack/internal/infrastructure/postgres"
)

const (
	seedName     = "Ana Demo"
	seedAddress  = "123 Oak Street, Springfield"
	seedEmail    = "ana@shiptrack.local"
	seedPassword = "demo-password"
)

var shipments = []domain.Shipment{
	{RecipientName: "Bob Stone", RecipientAddress: "1 Main Street, Shelbyville", PackageDescription: "Books and a desk lamp", PackageWeight: 4.2, Status: domain.StatusPending},
	{RecipientName: "Carol King", RecipientAddress: "77 Harbour Road, Portsmouth", PackageDescription: "Ceramic tea set, fragile", PackageWeight: 2.75, Status: domain.StatusInTransit},
	{RecipientName: "Dan Brown", RecipientAddress: "9 Hill Avenue, Riverside", PackageDescription: "Winter jackets (two)", PackageWeight: 3.1, Status: domain.StatusOutForDelivery},
	{RecipientName: "Eve Adams", RecipientAddress: "400 Lake Drive, Northport", PackageDescription: "Mountain bike frame", PackageWeight: 18.5, Status: domain.StatusDelivered},
	{RecipientName: "Finn Cole", RecipientAddress: "12 Elm Street, Oakdale", PackageDescription: "Wrong-size running shoes", PackageWeight: 1.2, Status: domain.StatusReturned},
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, add it to .env or the environment")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := postgres.NewUserRepository(pool)
	repo := postgres.NewShipmentRepository(pool)

	user, err := users.FindByEmail(ctx, seedEmail)
	if errors.Is(err, domain.ErrUserNotFound) {
		hash, herr := auth.NewPasswordHasher(auth.DefaultCost).Hash(seedPassword)
		if herr != nil {
			log.Fatalf("hash password: %v", herr)
		}
		user, err = users.Create(ctx, &domain.User{
			Name:         seedName,
			Address:      seedAddress,
			Email:        seedEmail,
			PasswordHash: hash,
			Role:         domain.RoleUser,
		})
	}
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	// Re-runs leave an already seeded user alone.
	existing, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		log.Fatalf("list shipments: %v", err)
	}

	var ids []string
	if len(existing) == 0 {
		for _, s := range shipments {
			s.UserID = &user.ID
			created, err := repo.Create(ctx, &s)
			if err != nil {
				log.Fatalf("insert shipment for %s: %v", s.RecipientName, err)
			}
			ids = append(ids, created.ID)
		}
	} else {
		for _, s := range existing {
			ids = append(ids, s.ID)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:      %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:   %s\n", user.ID)
	fmt.Printf("  Shipments: %d (created %d)\n", len(ids), len(ids)-len(existing))
	fmt.Println()
	fmt.Println("  Tracking IDs:")
	for _, id := range ids {
		fmt.Printf("    %s\n", id)
	}

	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in as the seed user:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println("    # → {\"token\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2: track a shipment anonymously (recipient name is hidden):")
	fmt.Println()
	fmt.Println("    curl -s http://localhost:8080/shipments/TRACKING_ID")
	fmt.Println()
	fmt.Println("  Step 3: list and edit with the token:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/shipments/all -H \"Authorization: Bearer $JWT\"")
	fmt.Println("    curl -s -X PUT http://localhost:8080/shipments/TRACKING_ID -H \"Authorization: Bearer $JWT\" \\")
	fmt.Println("      -H 'Content-Type: application/json' -d '{\"recipientAddress\":\"12 Elm Street, Oakdale\"}'")
	fmt.Println()
	fmt.Println("  Or use the CLI:")
	fmt.Println()
	fmt.Printf("    go run ./cmd/shipctl edit -email %s -password %s -weight 5 TRACKING_ID\n", seedEmail, seedPassword)
}
