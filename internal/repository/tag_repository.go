package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/database"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// TagRepository handles the per-user ZenMoney tag snapshot.
type TagRepository struct {
	db database.PGXDB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db database.PGXDB) *TagRepository {
	return &TagRepository{db: db}
}

const tagSelect = `
	SELECT t.id, t.title, t.parent_id, COALESCE(p.title, ''), t.description
	FROM tags t
	LEFT JOIN tags p ON p.id = t.parent_id AND p.user_id = t.user_id`

func scanTagRows(rows pgx.Rows) ([]models.Tag, error) {
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Title, &tag.ParentID, &tag.ParentTitle, &tag.Description); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return tags, nil
}

// GetAll returns every tag of the user with parent titles resolved.
func (r *TagRepository) GetAll(ctx context.Context, userID int64) ([]models.Tag, error) {
	rows, err := r.db.Query(ctx, tagSelect+`
		WHERE t.user_id = $1
		ORDER BY t.title
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	return scanTagRows(rows)
}

// GetLeaf returns only subcategories, the suggestion candidates.
func (r *TagRepository) GetLeaf(ctx context.Context, userID int64) ([]models.Tag, error) {
	rows, err := r.db.Query(ctx, tagSelect+`
		WHERE t.user_id = $1 AND t.parent_id IS NOT NULL
		ORDER BY t.title
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaf tags: %w", err)
	}
	return scanTagRows(rows)
}

// GetByID returns one tag, or nil when the user has no such tag.
func (r *TagRepository) GetByID(ctx context.Context, userID int64, id string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.QueryRow(ctx, tagSelect+`
		WHERE t.user_id = $1 AND t.id = $2
	`, userID, id).Scan(&tag.ID, &tag.Title, &tag.ParentID, &tag.ParentTitle, &tag.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// GetByTitle resolves a tag by its title, case-insensitively. Returns
// nil when no tag matches.
func (r *TagRepository) GetByTitle(ctx context.Context, userID int64, title string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.QueryRow(ctx, tagSelect+`
		WHERE t.user_id = $1 AND LOWER(t.title) = LOWER($2)
		LIMIT 1
	`, userID, title).Scan(&tag.ID, &tag.Title, &tag.ParentID, &tag.ParentTitle, &tag.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag by title: %w", err)
	}
	return &tag, nil
}

// Count returns how many tags the user has synced.
func (r *TagRepository) Count(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tags WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return count, nil
}

// Replace swaps the user's tag snapshot for a freshly synced one. The
// swap runs in a transaction, so a failed sync keeps the previous
// snapshot intact. Curated descriptions carry over to tags that still
// exist, since the sync payload has none.
func (r *TagRepository) Replace(ctx context.Context, userID int64, tags []models.Tag) error {
	return database.InTx(ctx, r.db, func(db database.PGXDB) error {
		descriptions, err := tagDescriptions(ctx, db, userID)
		if err != nil {
			return err
		}

		if _, err := db.Exec(ctx, `DELETE FROM tags WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}

		for _, tag := range tags {
			description := tag.Description
			if description == "" {
				description = descriptions[tag.ID]
			}
			_, err := db.Exec(ctx, `
				INSERT INTO tags (id, user_id, title, parent_id, description, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
			`, tag.ID, userID, tag.Title, tag.ParentID, description)
			if err != nil {
				return fmt.Errorf("failed to insert tag %s: %w", tag.ID, err)
			}
		}

		return nil
	})
}

func tagDescriptions(ctx context.Context, db database.PGXDB, userID int64) (map[string]string, error) {
	rows, err := db.Query(ctx, `
		SELECT id, description FROM tags WHERE user_id = $1 AND description <> ''
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag descriptions: %w", err)
	}
	defer rows.Close()

	descriptions := make(map[string]string)
	for rows.Next() {
		var id, description string
		if err := rows.Scan(&id, &description); err != nil {
			return nil, fmt.Errorf("failed to scan tag description: %w", err)
		}
		descriptions[id] = description
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tag descriptions: %w", err)
	}
	return descriptions, nil
}
