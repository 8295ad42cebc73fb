// seed inserts development sample data for local testing. Run via go run ./cmd/seed.
// Idempotent: skips inserts if the dev account (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	accountdomain "todo-api/internal/account/domain"
	accountrepo "todo-api/internal/account/repository"
	"todo-api/internal/config"
	"todo-api/internal/db"
	"todo-api/internal/security"
	tododomain "todo-api/internal/todo/domain"
	todorepo "todo-api/internal/todo/repository"
	listdomain "todo-api/internal/todolist/domain"
	listrepo "todo-api/internal/todolist/repository"
)

const (
	devUsername = "devuser"
	devEmail    = "dev@example.com"
	devPassword = "Password123!"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	accounts := accountrepo.NewPostgresRepository(conn)

	existing, err := accounts.GetByEmail(ctx, devEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		return
	}

	passwordHash, err := security.NewHasher(cfg.BcryptCost).Hash(devPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	acc := &accountdomain.Account{Username: devUsername, Email: devEmail, PasswordHash: passwordHash}
	if err := accounts.Create(ctx, acc); err != nil {
		log.Fatalf("create dev account: %v", err)
	}

	list := &listdomain.TodoList{CreatorID: acc.ID, Name: "Groceries", Color: "#2e7d32"}
	if err := listrepo.NewPostgresRepository(conn).Create(ctx, list); err != nil {
		log.Fatalf("create todo list: %v", err)
	}

	desc := "Whole milk, two litres"
	due := time.Now().UTC().AddDate(0, 0, 1).Truncate(time.Hour)
	item := &tododomain.Todo{
		Title:       "Buy milk",
		CreatorID:   acc.ID,
		Description: &desc,
		DueAt:       &due,
		ListID:      &list.ID,
		Priority:    1,
	}
	if err := todorepo.NewPostgresRepository(conn).Create(ctx, item); err != nil {
		log.Fatalf("create todo item: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login: %s (or %s) / %s\n", devUsername, devEmail, devPassword)
}
