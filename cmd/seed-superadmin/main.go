// Command seed-superadmin creates the first superadmin account from a JSON file
// of the form {"email": "...", "password": "...", "name": "..."}.
// It does nothing when the email is already registered.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"techtalks/config"
	"techtalks/internal/adapters/auth"
	"techtalks/internal/domain"
	"techtalks/internal/repository/postgres"
	"techtalks/internal/services"
)

type seedFile struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func main() {
	path := flag.String("file", "superadmin.json", "path to the superadmin JSON file")
	flag.Parse()

	logger := config.NewLogger()
	if err := run(logger, *path); err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, path string) error {
	seed, err := readSeed(path)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret)
	svc := services.NewAuthService(
		postgres.NewUserRepository(db),
		auth.NewBcryptHasher(auth.DefaultBcryptCost),
		tokens,
		tokens,
		cfg.TokenTTL,
		nil,
		logger,
	)
	user, err := svc.CreateAdmin(ctx, seed.Email, seed.Password, seed.Name, domain.RoleSuperAdmin)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		logger.Info("superadmin already exists, skipping", "email", seed.Email)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("superadmin created", "id", user.ID, "email", user.Email)
	return nil
}

func readSeed(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	seed.Email = strings.TrimSpace(seed.Email)
	if seed.Email == "" || seed.Password == "" || seed.Name == "" {
		return nil, errors.New("email, password and name are required")
	}
	return &seed, nil
}
