package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paystub/internal/domain/auth"
)

// Seed creates the initial preparer account when SEED_USER_EMAIL and
// SEED_USER_PASSWORD are provided and the user does not exist yet.
func Seed(ctx context.Context, pool *pgxpool.Pool, email, name, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil
	}

	var existing string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if name == "" {
		name = email
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, password_hash)
    VALUES ($1,$2,$3)
  `, name, email, hash)
	return err
}
