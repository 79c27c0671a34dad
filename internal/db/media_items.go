package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"recshelf/internal/listview"
	"recshelf/internal/models"
)

const mediaItemColumns = `
	id, user_id, domain, external_id, title, creator, platform, genres,
	release_year, status, rating, notes, consumed_at, custom_order,
	created_at, updated_at`

func scanMediaItem(row pgx.Row) (*models.MediaItem, error) {
	var item models.MediaItem
	err := row.Scan(
		&item.ID, &item.UserID, &item.Domain, &item.ExternalID, &item.Title,
		&item.Creator, &item.Platform, &item.Genres, &item.ReleaseYear,
		&item.Status, &item.Rating, &item.Notes, &item.ConsumedAt,
		&item.CustomOrder, &item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMediaItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateMediaItem adds an entry to the owner's collection, placed at the
// end of that domain's custom ordering.
func (d *DB) CreateMediaItem(ctx context.Context, item *models.MediaItem) error {
	query := `
		INSERT INTO media_items (
			user_id, domain, external_id, title, creator, platform, genres,
			release_year, rating, notes, custom_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			COALESCE((SELECT MAX(custom_order) + 1 FROM media_items WHERE user_id = $1 AND domain = $2), 1))
		RETURNING id, status, custom_order, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		item.UserID,
		item.Domain,
		item.ExternalID,
		item.Title,
		item.Creator,
		item.Platform,
		item.Genres,
		item.ReleaseYear,
		item.Rating,
		item.Notes,
	).Scan(&item.ID, &item.Status, &item.CustomOrder, &item.CreatedAt, &item.UpdatedAt)
}

// GetMediaItemByID retrieves a collection entry by ID, scoped to the owner.
func (d *DB) GetMediaItemByID(ctx context.Context, id, userID uuid.UUID) (*models.MediaItem, error) {
	query := `SELECT ` + mediaItemColumns + ` FROM media_items WHERE id = $1 AND user_id = $2`
	return scanMediaItem(d.Pool.QueryRow(ctx, query, id, userID))
}

// GetMediaItems returns a user's collection for one domain in custom order.
func (d *DB) GetMediaItems(ctx context.Context, userID uuid.UUID, domain string) ([]models.MediaItem, error) {
	query := `
		SELECT ` + mediaItemColumns + `
		FROM media_items
		WHERE user_id = $1 AND ($2 = '' OR domain = $2)
		ORDER BY custom_order, created_at DESC
	`

	rows, err := d.Pool.Query(ctx, query, userID, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var item models.MediaItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Domain, &item.ExternalID, &item.Title,
			&item.Creator, &item.Platform, &item.Genres, &item.ReleaseYear,
			&item.Status, &item.Rating, &item.Notes, &item.ConsumedAt,
			&item.CustomOrder, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateMediaItem patches the user-editable fields of a collection entry.
// The consumption timestamp is stamped on the first departure from pending
// and kept on later revisions.
func (d *DB) UpdateMediaItem(ctx context.Context, item *models.MediaItem) error {
	query := `
		UPDATE media_items
		SET title = $3, creator = $4, platform = $5, genres = $6,
		    release_year = $7, status = $8, rating = $9, notes = $10,
		    consumed_at = CASE WHEN $8 <> 'pending' THEN COALESCE(consumed_at, NOW()) ELSE consumed_at END,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING consumed_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		item.ID,
		item.UserID,
		item.Title,
		item.Creator,
		item.Platform,
		item.Genres,
		item.ReleaseYear,
		item.Status,
		item.Rating,
		item.Notes,
	).Scan(&item.ConsumedAt, &item.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMediaItemNotFound
	}
	return err
}

// DeleteMediaItem removes a collection entry, scoped to the owner.
func (d *DB) DeleteMediaItem(ctx context.Context, id, userID uuid.UUID) error {
	result, err := d.Pool.Exec(ctx,
		`DELETE FROM media_items WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMediaItemNotFound
	}
	return nil
}

// ApplyMediaItemOrder persists reorder patches for a user's collection.
func (d *DB) ApplyMediaItemOrder(ctx context.Context, userID uuid.UUID, patches []listview.OrderPatch) error {
	for _, p := range patches {
		result, err := d.Pool.Exec(ctx,
			`UPDATE media_items SET custom_order = $3, updated_at = NOW()
			 WHERE id = $1 AND user_id = $2`,
			p.ID, userID, p.CustomOrder,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrMediaItemNotFound
		}
	}
	return nil
}
