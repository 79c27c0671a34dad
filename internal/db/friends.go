package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"recshelf/internal/models"
)

// CreateFriendRequest inserts a pending friendship from requester to
// addressee.
func (d *DB) CreateFriendRequest(ctx context.Context, f *models.Friendship) error {
	// A request in either direction counts as existing.
	var exists bool
	err := d.Pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE (requester_id = $1 AND addressee_id = $2)
			   OR (requester_id = $2 AND addressee_id = $1)
		)`,
		f.RequesterID, f.AddresseeID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateFriendship
	}

	query := `
		INSERT INTO friendships (requester_id, addressee_id)
		VALUES ($1, $2)
		RETURNING id, status, created_at
	`
	err = d.Pool.QueryRow(ctx, query, f.RequesterID, f.AddresseeID).
		Scan(&f.ID, &f.Status, &f.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return ErrDuplicateFriendship
			}
			if pgErr.Code == "23514" && pgErr.ConstraintName == "no_self_friend" {
				return ErrSelfFriend
			}
		}
		return err
	}

	return nil
}

// GetFriendshipByID returns a friendship row.
func (d *DB) GetFriendshipByID(ctx context.Context, id uuid.UUID) (*models.Friendship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, responded_at
		FROM friendships WHERE id = $1
	`
	var f models.Friendship
	err := d.Pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.RespondedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// RespondToFriendRequest records the addressee's accept or decline.
func (d *DB) RespondToFriendRequest(ctx context.Context, id, addresseeID uuid.UUID, status string) (*models.Friendship, error) {
	if status != models.FriendshipAccepted && status != models.FriendshipDeclined {
		return nil, errors.New("invalid friendship status")
	}

	query := `
		UPDATE friendships
		SET status = $3, responded_at = NOW()
		WHERE id = $1 AND addressee_id = $2 AND status = 'pending'
		RETURNING id, requester_id, addressee_id, status, created_at, responded_at
	`
	var f models.Friendship
	err := d.Pool.QueryRow(ctx, query, id, addresseeID, status).Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.RespondedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// AreFriends reports whether two users share an accepted friendship.
func (d *DB) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var friends bool
	err := d.Pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			  AND ((requester_id = $1 AND addressee_id = $2)
			    OR (requester_id = $2 AND addressee_id = $1))
		)`,
		a, b,
	).Scan(&friends)
	return friends, err
}

// ListFriends returns the users sharing an accepted friendship with userID.
func (d *DB) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	query := `
		SELECT u.id, u.sub, COALESCE(u.username, ''), u.email, u.name, u.picture, u.role, u.created_at, u.updated_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END
		WHERE f.status = 'accepted' AND (f.requester_id = $1 OR f.addressee_id = $1)
		ORDER BY u.name
	`

	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Sub, &u.Username, &u.Email, &u.Name, &u.Picture, &u.Role, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// ListFriendRequests returns pending requests involving userID in either
// direction, with the other user's display info.
func (d *DB) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestSummary, error) {
	query := `
		SELECT f.id,
		       CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END,
		       COALESCE(NULLIF(u.name, ''), NULLIF(u.username, ''), u.email),
		       COALESCE(NULLIF(u.email, ''), u.sub),
		       CASE WHEN f.requester_id = $1 THEN 'outgoing' ELSE 'incoming' END,
		       f.created_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END
		WHERE f.status = 'pending' AND (f.requester_id = $1 OR f.addressee_id = $1)
		ORDER BY f.created_at DESC
	`

	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.FriendRequestSummary
	for rows.Next() {
		var r models.FriendRequestSummary
		if err := rows.Scan(&r.ID, &r.UserID, &r.UserName, &r.UserEmail, &r.Direction, &r.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}

	return requests, rows.Err()
}

// DeleteFriendship removes a friendship; either party may do so.
func (d *DB) DeleteFriendship(ctx context.Context, id, userID uuid.UUID) error {
	result, err := d.Pool.Exec(ctx,
		`DELETE FROM friendships WHERE id = $1 AND (requester_id = $2 OR addressee_id = $2)`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}
