// Command dbinit applies the database schema and optionally seeds an
// admin account. Idempotent: every statement uses IF NOT EXISTS and the
// seed skips when the email is already present.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rahi-Raushan/stu-mag-api/pkg/config"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('student', 'admin')),
		age INTEGER NOT NULL DEFAULT 0,
		city TEXT NOT NULL DEFAULT '',
		contact_number TEXT NOT NULL DEFAULT '',
		father_name TEXT NOT NULL DEFAULT '',
		erp_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_erp_number
		ON accounts (erp_number) WHERE erp_number <> ''`,
	`CREATE TABLE IF NOT EXISTS courses (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS enrollment_requests (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL,
		course_id UUID NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		decided_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pending_once
		ON enrollment_requests (student_id, course_id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS idx_requests_student ON enrollment_requests (student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_course_status ON enrollment_requests (course_id, status)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		account_id UUID,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		resource_id TEXT,
		old_values JSONB,
		new_values JSONB,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func main() {
	var (
		adminEmail    string
		adminPassword string
		adminName     string
		timeout       time.Duration
	)

	flag.StringVar(&adminEmail, "admin-email", "", "Seed an admin account with this email (skipped when empty)")
	flag.StringVar(&adminPassword, "admin-password", "", "Password for the seeded admin account")
	flag.StringVar(&adminName, "admin-name", "Administrator", "Display name for the seeded admin account")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
	}
	fmt.Println("schema applied")

	if adminEmail == "" {
		return
	}
	if adminPassword == "" {
		log.Fatal("-admin-password is required when -admin-email is set")
	}
	if err := seedAdmin(ctx, db, adminName, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
}

func seedAdmin(ctx context.Context, db *sqlx.DB, name, email, password string) error {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM accounts WHERE email = $1", email); err != nil {
		return err
	}
	if count > 0 {
		fmt.Printf("admin %s already exists, skipping\n", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, email, password_hash, role) VALUES ($1, $2, $3, $4, 'admin')`,
		uuid.NewString(), name, email, string(hash))
	if err != nil {
		return err
	}
	fmt.Printf("admin %s created\n", email)
	return nil
}
