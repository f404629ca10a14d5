package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/database"
)

// SettingRepository handles global and per-user named settings, such
// as the default account titles.
type SettingRepository struct {
	db database.PGXDB
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(db database.PGXDB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns a global setting value, or "" when it is not set.
func (r *SettingRepository) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE name = $1`, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, nil
}

// GetForUser returns a per-user setting value, or "" when unset.
func (r *SettingRepository) GetForUser(ctx context.Context, userID int64, name string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `
		SELECT value FROM user_settings WHERE user_id = $1 AND name = $2
	`, userID, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user setting %s: %w", name, err)
	}
	return value, nil
}

// Resolve returns the effective value of a setting: the user's own
// value, then the global one, then the fallback.
func (r *SettingRepository) Resolve(ctx context.Context, userID int64, name, fallback string) (string, error) {
	value, err := r.GetForUser(ctx, userID, name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), nil
	}

	value, err = r.Get(ctx, name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), nil
	}

	return fallback, nil
}

// Set stores a global setting value.
func (r *SettingRepository) Set(ctx context.Context, name, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`, name, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}

// SetForUser stores a per-user setting value.
func (r *SettingRepository) SetForUser(ctx context.Context, userID int64, name, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_settings (user_id, name, value) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET value = EXCLUDED.value
	`, userID, name, value)
	if err != nil {
		return fmt.Errorf("failed to set user setting %s: %w", name, err)
	}
	return nil
}
