package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"recshelf/internal/models"
)

// UpsertUser creates or updates a user based on their OIDC subject.
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (sub, username, email, name, picture, role)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, 'user'))
		ON CONFLICT (sub) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, users.username),
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			picture = EXCLUDED.picture,
			updated_at = NOW()
		RETURNING id, role, created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query,
		user.Sub,
		nullIfEmpty(user.Username),
		user.Email,
		user.Name,
		user.Picture,
		nullIfEmpty(user.Role),
	).Scan(&user.ID, &user.Role, &user.CreatedAt, &user.UpdatedAt)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GetUserBySub retrieves a user by their OIDC subject identifier.
func (d *DB) GetUserBySub(ctx context.Context, sub string) (*models.User, error) {
	query := `
		SELECT id, sub, COALESCE(username, ''), email, name, picture, role, created_at, updated_at
		FROM users WHERE sub = $1
	`
	return d.scanUser(d.Pool.QueryRow(ctx, query, sub))
}

// GetUserByID retrieves a user by ID.
func (d *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, sub, COALESCE(username, ''), email, name, picture, role, created_at, updated_at
		FROM users WHERE id = $1
	`
	return d.scanUser(d.Pool.QueryRow(ctx, query, id))
}

func (d *DB) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Sub,
		&user.Username,
		&user.Email,
		&user.Name,
		&user.Picture,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// SearchUsers finds users by name, username or email for the friend search
// box. Excludes the searching user.
func (d *DB) SearchUsers(ctx context.Context, viewerID uuid.UUID, q string, limit int) ([]models.User, error) {
	query := `
		SELECT id, sub, COALESCE(username, ''), email, name, picture, role, created_at, updated_at
		FROM users
		WHERE id <> $1
		  AND (name ILIKE '%' || $2 || '%' OR username ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT $3
	`

	rows, err := d.Pool.Query(ctx, query, viewerID, q, limit)
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

// DeleteUser removes a user and, via cascades, everything they own.
func (d *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
