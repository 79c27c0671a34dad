package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"recshelf/internal/listview"
	"recshelf/internal/models"
)

const recommendationColumns = `
	id, from_user_id, to_user_id, domain, external_id, title, creator, platform,
	genres, release_year, status, sent_message, comment, sender_comment,
	sent_at, opened_at, consumed_at, hidden_for_sender, hidden_for_recipient,
	custom_order, created_at, updated_at`

func scanRecommendation(row pgx.Row) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := row.Scan(
		&rec.ID, &rec.FromUserID, &rec.ToUserID, &rec.Domain, &rec.ExternalID,
		&rec.Title, &rec.Creator, &rec.Platform, &rec.Genres, &rec.ReleaseYear,
		&rec.Status, &rec.SentMessage, &rec.Comment, &rec.SenderComment,
		&rec.SentAt, &rec.OpenedAt, &rec.ConsumedAt,
		&rec.HiddenForSender, &rec.HiddenForRecipient,
		&rec.CustomOrder, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecommendationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateRecommendation inserts a new recommendation. The new row is placed
// at the end of the recipient's custom ordering.
func (d *DB) CreateRecommendation(ctx context.Context, rec *models.Recommendation) error {
	query := `
		INSERT INTO recommendations (
			from_user_id, to_user_id, domain, external_id, title, creator,
			platform, genres, release_year, sent_message, custom_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			COALESCE((SELECT MAX(custom_order) + 1 FROM recommendations WHERE to_user_id = $2), 1))
		RETURNING id, status, sent_at, custom_order, created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		rec.FromUserID,
		rec.ToUserID,
		rec.Domain,
		rec.ExternalID,
		rec.Title,
		rec.Creator,
		rec.Platform,
		rec.Genres,
		rec.ReleaseYear,
		rec.SentMessage,
	).Scan(&rec.ID, &rec.Status, &rec.SentAt, &rec.CustomOrder, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" && pgErr.ConstraintName == "no_self_recommend" {
			return ErrSelfRecommend
		}
		return err
	}

	return nil
}

// GetRecommendation returns a single recommendation by ID regardless of
// visibility flags; callers enforce role rules.
func (d *DB) GetRecommendation(ctx context.Context, id uuid.UUID) (*models.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE id = $1`
	return scanRecommendation(d.Pool.QueryRow(ctx, query, id))
}

// GetIncomingRecommendations returns the recommendations visible to a
// recipient (rows they have hidden are filtered out), with sender info,
// in custom order. domain narrows to one media domain when non-empty.
func (d *DB) GetIncomingRecommendations(ctx context.Context, recipientID uuid.UUID, domain string) ([]models.RecommendationWithUser, error) {
	query := `
		SELECT ` + qualifiedRecommendationColumns + `,
		       COALESCE(NULLIF(u.name, ''), NULLIF(u.username, ''), u.email),
		       COALESCE(NULLIF(u.email, ''), u.sub)
		FROM recommendations r
		JOIN users u ON u.id = r.from_user_id
		WHERE r.to_user_id = $1 AND NOT r.hidden_for_recipient
		  AND ($2 = '' OR r.domain = $2)
		ORDER BY r.custom_order, r.sent_at DESC
	`
	return d.queryRecommendationsWithUser(ctx, query, recipientID, domain)
}

// GetOutgoingRecommendations returns the recommendations a sender can still
// see, with recipient info, newest first.
func (d *DB) GetOutgoingRecommendations(ctx context.Context, senderID uuid.UUID, domain string) ([]models.RecommendationWithUser, error) {
	query := `
		SELECT ` + qualifiedRecommendationColumns + `,
		       COALESCE(NULLIF(u.name, ''), NULLIF(u.username, ''), u.email),
		       COALESCE(NULLIF(u.email, ''), u.sub)
		FROM recommendations r
		JOIN users u ON u.id = r.to_user_id
		WHERE r.from_user_id = $1 AND NOT r.hidden_for_sender
		  AND ($2 = '' OR r.domain = $2)
		ORDER BY r.sent_at DESC
	`
	return d.queryRecommendationsWithUser(ctx, query, senderID, domain)
}

const qualifiedRecommendationColumns = `
	r.id, r.from_user_id, r.to_user_id, r.domain, r.external_id, r.title,
	r.creator, r.platform, r.genres, r.release_year, r.status, r.sent_message,
	r.comment, r.sender_comment, r.sent_at, r.opened_at, r.consumed_at,
	r.hidden_for_sender, r.hidden_for_recipient, r.custom_order,
	r.created_at, r.updated_at`

func (d *DB) queryRecommendationsWithUser(ctx context.Context, query string, args ...any) ([]models.RecommendationWithUser, error) {
	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.RecommendationWithUser
	for rows.Next() {
		var r models.RecommendationWithUser
		if err := rows.Scan(
			&r.ID, &r.FromUserID, &r.ToUserID, &r.Domain, &r.ExternalID,
			&r.Title, &r.Creator, &r.Platform, &r.Genres, &r.ReleaseYear,
			&r.Status, &r.SentMessage, &r.Comment, &r.SenderComment,
			&r.SentAt, &r.OpenedAt, &r.ConsumedAt,
			&r.HiddenForSender, &r.HiddenForRecipient,
			&r.CustomOrder, &r.CreatedAt, &r.UpdatedAt,
			&r.UserName, &r.UserEmail,
		); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}

	return recs, rows.Err()
}

// StampRecommendationOpened sets opened_at if it is still unset. COALESCE
// keeps the first timestamp under concurrent opens.
func (d *DB) StampRecommendationOpened(ctx context.Context, id uuid.UUID, openedAt time.Time) error {
	result, err := d.Pool.Exec(ctx,
		`UPDATE recommendations SET opened_at = COALESCE(opened_at, $2), updated_at = NOW() WHERE id = $1`,
		id, openedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRecommendationNotFound
	}
	return nil
}

// UpdateRecommendationStatus patches only the status-owned columns:
// status, the one-shot consumed_at stamp, and optionally the recipient
// comment. A nil comment leaves the stored comment untouched. Columns owned
// by the sender are never written here, so a concurrent sender-comment edit
// survives.
func (d *DB) UpdateRecommendationStatus(ctx context.Context, id uuid.UUID, status string, consumedAt *time.Time, comment *string) (*models.Recommendation, error) {
	query := `
		UPDATE recommendations
		SET status = $2,
		    consumed_at = COALESCE(consumed_at, $3),
		    comment = COALESCE($4, comment),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + recommendationColumns
	return scanRecommendation(d.Pool.QueryRow(ctx, query, id, status, consumedAt, comment))
}

// UpdateRecommendationSenderComment patches the sender-owned comment only.
func (d *DB) UpdateRecommendationSenderComment(ctx context.Context, id uuid.UUID, text string) (*models.Recommendation, error) {
	query := `
		UPDATE recommendations
		SET sender_comment = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + recommendationColumns
	return scanRecommendation(d.Pool.QueryRow(ctx, query, id, text))
}

// HideRecommendationForRecipient hides the row from the recipient's view.
// The sender's sent list is unaffected.
func (d *DB) HideRecommendationForRecipient(ctx context.Context, id uuid.UUID) error {
	return d.setHidden(ctx, id, "hidden_for_recipient")
}

// HideRecommendationForSender hides the row from the sender's view. The
// recipient keeps theirs.
func (d *DB) HideRecommendationForSender(ctx context.Context, id uuid.UUID) error {
	return d.setHidden(ctx, id, "hidden_for_sender")
}

func (d *DB) setHidden(ctx context.Context, id uuid.UUID, column string) error {
	result, err := d.Pool.Exec(ctx,
		`UPDATE recommendations SET `+column+` = TRUE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRecommendationNotFound
	}
	return nil
}

// DeleteRecommendation hard-deletes a row. Only used for the sender's
// unsend of a never-opened recommendation and by the janitor once both
// parties have hidden the row.
func (d *DB) DeleteRecommendation(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM recommendations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRecommendationNotFound
	}
	return nil
}

// ApplyRecommendationOrder persists reorder patches. Each row updates
// independently; no multi-row transaction is assumed.
func (d *DB) ApplyRecommendationOrder(ctx context.Context, recipientID uuid.UUID, patches []listview.OrderPatch) error {
	for _, p := range patches {
		result, err := d.Pool.Exec(ctx,
			`UPDATE recommendations SET custom_order = $3, updated_at = NOW()
			 WHERE id = $1 AND to_user_id = $2`,
			p.ID, recipientID, p.CustomOrder,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrRecommendationNotFound
		}
	}
	return nil
}

// GetFriendSummaries aggregates the viewer's visible incoming
// recommendations per sender. Always computed fresh from the live rows.
func (d *DB) GetFriendSummaries(ctx context.Context, viewerID uuid.UUID) ([]models.FriendSummary, error) {
	query := `
		SELECT r.from_user_id,
		       COALESCE(NULLIF(u.name, ''), NULLIF(u.username, ''), u.email),
		       COALESCE(NULLIF(u.email, ''), u.sub),
		       COUNT(*) FILTER (WHERE r.status = 'pending'),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE r.status = 'hit'),
		       COUNT(*) FILTER (WHERE r.status = 'miss')
		FROM recommendations r
		JOIN users u ON u.id = r.from_user_id
		WHERE r.to_user_id = $1 AND NOT r.hidden_for_recipient
		GROUP BY r.from_user_id, u.name, u.username, u.email, u.sub
		ORDER BY COUNT(*) DESC
	`

	rows, err := d.Pool.Query(ctx, query, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.FriendSummary
	for rows.Next() {
		var s models.FriendSummary
		if err := rows.Scan(
			&s.UserID, &s.UserName, &s.UserEmail,
			&s.PendingCount, &s.TotalCount, &s.HitCount, &s.MissCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// PurgeHiddenRecommendations hard-deletes rows both parties have hidden.
// Returns the number of rows removed.
func (d *DB) PurgeHiddenRecommendations(ctx context.Context) (int64, error) {
	result, err := d.Pool.Exec(ctx,
		`DELETE FROM recommendations WHERE hidden_for_sender AND hidden_for_recipient`,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// StatusCount is one cell of the recommendations-by-status metric.
type StatusCount struct {
	Domain string
	Status string
	Count  int64
}

// GetRecommendationStatusCounts returns live row counts grouped by domain
// and status, for the Prometheus collector.
func (d *DB) GetRecommendationStatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT domain, status, COUNT(*) FROM recommendations GROUP BY domain, status`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Domain, &c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
