package comments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kayinbooks/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Insert(ctx context.Context, c *models.Comment) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO comments (id, review_id, parent_id, body, author_name, author_email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.ReviewID, nullString(c.ParentID), c.Body, c.AuthorName, nullString(c.AuthorEmail), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, review_id, parent_id, body, author_name, author_email, created_at
		FROM comments
		WHERE id = ?
	`, id)

	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ListByReview returns all comments for a review, newest first. The tree
// builder depends on this ordering.
func (r *Repo) ListByReview(ctx context.Context, reviewID string) ([]models.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, review_id, parent_id, body, author_name, author_email, created_at
		FROM comments
		WHERE review_id = ?
		ORDER BY created_at DESC
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// FindRecentByIdentity returns the identity's latest comment created at or
// after since, or nil. The identity key is the author email when present,
// else the display name, matching IdentityKey.
func (r *Repo) FindRecentByIdentity(ctx context.Context, identityKey string, since time.Time) (*models.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, review_id, parent_id, body, author_name, author_email, created_at
		FROM comments
		WHERE (CASE
			WHEN author_email IS NOT NULL AND author_email != '' THEN LOWER(author_email)
			ELSE author_name
		END) = ?
		AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT 1
	`, identityKey, since)

	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		c           models.Comment
		parentID    sql.NullString
		authorEmail sql.NullString
		createdAt   time.Time
	)

	if err := row.Scan(&c.ID, &c.ReviewID, &parentID, &c.Body, &c.AuthorName, &authorEmail, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}

	c.ParentID = parentID.String
	c.AuthorEmail = authorEmail.String
	c.CreatedAt = createdAt
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
