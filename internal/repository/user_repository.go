package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/database"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''),
	COALESCE(last_name, ''), COALESCE(zenmoney_token, ''), is_admin, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.TelegramID, &user.Username, &user.FirstName,
		&user.LastName, &user.ZenMoneyToken, &user.IsAdmin, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authorize looks up an active user by Telegram ID, falling back to
// username for accounts registered before their first contact. Returns
// nil without error when nobody matches.
func (r *UserRepository) Authorize(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE is_active AND (telegram_id = $1 OR (username <> '' AND LOWER(username) = LOWER($2)))
		ORDER BY telegram_id = $1 DESC
		LIMIT 1
	`, telegramID, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to authorize user: %w", err)
	}

	// Username matches backfill the Telegram ID on first contact.
	if user.TelegramID != telegramID {
		if _, err := r.db.Exec(ctx, `
			UPDATE users SET telegram_id = $1, updated_at = NOW() WHERE id = $2
		`, telegramID, user.ID); err != nil {
			return nil, fmt.Errorf("failed to bind telegram id: %w", err)
		}
		user.TelegramID = telegramID
	}

	return user, nil
}

// Create registers a new user (admin flow).
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username, first_name, last_name, is_admin, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id
	`, user.TelegramID, user.Username, user.FirstName, user.LastName, user.IsAdmin, user.IsActive).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateToken stores a validated ZenMoney token for the user.
func (r *UserRepository) UpdateToken(ctx context.Context, userID int64, token string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET zenmoney_token = $1, updated_at = NOW() WHERE id = $2
	`, token, userID)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	return nil
}
