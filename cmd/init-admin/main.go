package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kayinbooks/internal/auth"
	"kayinbooks/pkg/database"
)

// One-shot bootstrap for the admin account. Refuses to run twice.
func main() {
	var (
		email    = flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
		password = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	)
	flag.Parse()

	if *email == "" {
		*email = "admin@kayinbooks.com"
	}
	if *password == "" {
		log.Fatal("admin password required (flag -password or ADMIN_PASSWORD)")
	}
	if len(*password) < 8 {
		log.Fatal("admin password must be at least 8 chars")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := auth.NewRepo(db)

	exists, err := repo.AdminExists(ctx)
	if err != nil {
		log.Fatalf("check admin: %v", err)
	}
	if exists {
		log.Fatal("admin user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	u := auth.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(strings.ToLower(*email)),
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Fatalf("create admin: %v", err)
	}

	log.Printf("admin user created: %s", u.Email)
}
