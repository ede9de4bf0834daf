//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hugh/orgbook/internal/accounts"
	"github.com/hugh/orgbook/internal/attachments"
	"github.com/hugh/orgbook/internal/auth"
	"github.com/hugh/orgbook/internal/database"
	"github.com/hugh/orgbook/internal/organizations"
	"github.com/hugh/orgbook/internal/roles"
	"github.com/hugh/orgbook/pkg/config"
	"github.com/hugh/orgbook/pkg/util"
	"github.com/joho/godotenv"
)

// Seeds the initial SUPERADMIN. The API's create entry points only accept
// USER and ADMIN, so the first superadmin has to come from here.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	hasher := auth.NewHasher(cfg.Password.BcryptCost)
	store := attachments.NewStore(db)
	accountService := accounts.NewService(db, hasher, store)
	accountService.BindOrganizations(organizations.NewService(db, accountService, store))

	handle := os.Getenv("SUPERADMIN_HANDLE")
	email := os.Getenv("SUPERADMIN_EMAIL")
	password := os.Getenv("SUPERADMIN_PASSWORD")

	if handle == "" {
		handle = "superadmin"
	}
	if email == "" {
		email = "superadmin@example.com"
	}
	if password == "" {
		password = "Sup3radmin!"
	}

	account, err := accountService.Create(context.Background(), accounts.CreateInput{
		Handle:   handle,
		Email:    email,
		Password: password,
		Role:     roles.SuperAdmin,
	}, 0)
	if err != nil {
		log.Fatalf("failed to seed superadmin: %v", err)
	}

	fmt.Printf("seeded superadmin %s (id %d)\n", account.Handle, account.ID)
}
