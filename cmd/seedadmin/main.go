// Command seedadmin creates or promotes an admin account directly against
// the database. Intended for bootstrapping a fresh deployment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"bizportal/internal/domain"
	"bizportal/internal/infra"
)

const (
	selectByEmail = `select id from users where email = lower($1) limit 1;`
	promote       = `update users set role = 'admin', updated_at = now() where id = $1::uuid;`
	insertAdmin   = `
insert into users (id, business_name, owner_name, industry, contact_info, email, password_hash, role, progress)
values (gen_random_uuid(), $1, $2, 'Administration', '', lower($3), $4, 'admin', '[]'::jsonb)
returning id;`
)

func main() {
	var (
		emailFlag    string
		passwordFlag string
		nameFlag     string
	)

	flag.StringVar(&emailFlag, "email", "", "admin email (required)")
	flag.StringVar(&passwordFlag, "password", "", "admin password, required when creating a new account")
	flag.StringVar(&nameFlag, "name", "Portal Admin", "owner name for a newly created account")
	flag.Parse()

	email := strings.TrimSpace(emailFlag)
	if email == "" {
		exitWithError(errors.New("-email is required"))
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		exitWithError(fmt.Errorf("connect database: %w", err))
	}
	defer pool.Close()

	var id string
	err = pool.QueryRow(ctx, selectByEmail, email).Scan(&id)
	switch {
	case err == nil:
		if _, err := pool.Exec(ctx, promote, id); err != nil {
			exitWithError(fmt.Errorf("promote user: %w", err))
		}
		fmt.Printf("promoted %s (%s) to admin\n", email, id)
	case errors.Is(err, pgx.ErrNoRows):
		if strings.TrimSpace(passwordFlag) == "" {
			exitWithError(errors.New("-password is required to create a new admin"))
		}
		hash, err := domain.HashPassword(passwordFlag)
		if err != nil {
			exitWithError(err)
		}
		if err := pool.QueryRow(ctx, insertAdmin, nameFlag, nameFlag, email, hash).Scan(&id); err != nil {
			exitWithError(fmt.Errorf("create admin: %w", err))
		}
		fmt.Printf("created admin %s (%s)\n", email, id)
	default:
		exitWithError(fmt.Errorf("lookup user: %w", err))
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
