package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			telegram_id BIGINT NOT NULL UNIQUE,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			zenmoney_token TEXT,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (user_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS tags (
			id TEXT NOT NULL,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			parent_id TEXT,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, id)
		)`,

		`ALTER TABLE tags ADD COLUMN IF NOT EXISTS description TEXT NOT NULL DEFAULT ''`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT NOT NULL,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			instrument_id INTEGER NOT NULL DEFAULT 0,
			type TEXT,
			archived BOOLEAN NOT NULL DEFAULT FALSE,
			zen_user_id INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_tags_user_parent ON tags(user_id, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tags_user_title ON tags(user_id, LOWER(title))`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user_title ON accounts(user_id, LOWER(title))`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(LOWER(username))`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
