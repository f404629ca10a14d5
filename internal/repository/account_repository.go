package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/database"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// AccountRepository handles the per-user ZenMoney account snapshot.
type AccountRepository struct {
	db database.PGXDB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db database.PGXDB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, title, instrument_id, type, archived, zen_user_id`

// GetAll returns every synced account of the user.
func (r *AccountRepository) GetAll(ctx context.Context, userID int64) ([]models.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY title
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.Title, &account.InstrumentID,
			&account.Type, &account.Archived, &account.ZenUserID); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.UserID = userID
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

// GetByTitle resolves an account by its display title, the only
// account identity a rendered message carries. Returns nil when no
// account matches.
func (r *AccountRepository) GetByTitle(ctx context.Context, userID int64, title string) (*models.Account, error) {
	var account models.Account
	err := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1 AND LOWER(title) = LOWER($2)
		LIMIT 1
	`, userID, title).Scan(&account.ID, &account.Title, &account.InstrumentID,
		&account.Type, &account.Archived, &account.ZenUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by title: %w", err)
	}
	account.UserID = userID
	return &account, nil
}

// Count returns how many accounts the user has synced.
func (r *AccountRepository) Count(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// Replace swaps the user's account snapshot for a freshly synced one.
// The swap runs in a transaction, so a failed sync keeps the previous
// snapshot intact.
func (r *AccountRepository) Replace(ctx context.Context, userID int64, accounts []models.Account) error {
	return database.InTx(ctx, r.db, func(db database.PGXDB) error {
		if _, err := db.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear accounts: %w", err)
		}

		for _, account := range accounts {
			_, err := db.Exec(ctx, `
				INSERT INTO accounts (id, user_id, title, instrument_id, type, archived, zen_user_id, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			`, account.ID, userID, account.Title, account.InstrumentID, account.Type, account.Archived, account.ZenUserID)
			if err != nil {
				return fmt.Errorf("failed to insert account %s: %w", account.ID, err)
			}
		}

		return nil
	})
}
