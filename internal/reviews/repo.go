package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"kayinbooks/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Status string // "", "draft" or "published"
	Search string // keyword match in title/authors
	Tag    string
	Sort   string // "newest", "oldest", "rating-high", "rating-low"
	Limit  int
	Offset int
}

const reviewColumns = `id, slug, title, authors, isbn, publisher, year, cover_url,
		rating, bullet_points, ai_draft, final_text, tags, status, created_at, published_at`

func (r *Repo) Insert(ctx context.Context, rev *models.Review) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rev.ID, rev.Slug, rev.Title, marshalStrings(rev.Authors),
		nullString(rev.ISBN), nullString(rev.Publisher), nullInt(rev.Year), rev.CoverURL,
		rev.Rating, marshalStrings(rev.BulletPoints), nullString(rev.AIDraft), rev.FinalText,
		marshalStrings(rev.Tags), rev.Status, rev.CreatedAt, nullTime(rev.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, rev *models.Review) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE reviews
		SET slug = ?, title = ?, authors = ?, isbn = ?, publisher = ?, year = ?,
		    cover_url = ?, rating = ?, bullet_points = ?, ai_draft = ?,
		    final_text = ?, tags = ?, status = ?, published_at = ?
		WHERE id = ?
	`,
		rev.Slug, rev.Title, marshalStrings(rev.Authors),
		nullString(rev.ISBN), nullString(rev.Publisher), nullInt(rev.Year),
		rev.CoverURL, rev.Rating, marshalStrings(rev.BulletPoints), nullString(rev.AIDraft),
		rev.FinalText, marshalStrings(rev.Tags), rev.Status, nullTime(rev.PublishedAt),
		rev.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("update review: not found")
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE id = ?
	`, id)
	return scanReview(row)
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*models.Review, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE slug = ?
	`, slug)
	return scanReview(row)
}

// GetByIDOrSlug resolves a path parameter that may be either form.
func (r *Repo) GetByIDOrSlug(ctx context.Context, key string) (*models.Review, error) {
	rev, err := r.GetByID(ctx, key)
	if err != nil || rev != nil {
		return rev, err
	}
	return r.GetBySlug(ctx, key)
}

// SlugExists reports whether slug is taken by a review other than
// excludeID. It is the existence check behind slug allocation.
func (r *Repo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM reviews
		WHERE slug = ? AND id != ?
	`, slug, excludeID)

	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Review, int, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	var where []string
	var args []any

	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Search != "" {
		where = append(where, "(title LIKE ? OR authors LIKE ?)")
		like := "%" + q.Search + "%"
		args = append(args, like, like)
	}
	if q.Tag != "" {
		// tags column holds a JSON array of strings
		where = append(where, "tags LIKE ?")
		args = append(args, `%"`+q.Tag+`"%`)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var order string
	switch q.Sort {
	case "oldest":
		order = "published_at ASC"
	case "rating-high":
		order = "rating DESC, published_at DESC"
	case "rating-low":
		order = "rating ASC, published_at DESC"
	default:
		order = "published_at DESC"
	}

	var total int
	countRow := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM reviews "+whereClause, args...)
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		`+whereClause+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?
	`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.Review, 0, q.Limit)
	for rows.Next() {
		rev, err := scanReviewRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

// All returns every review, newest first. Used by CSV export.
func (r *Repo) All(ctx context.Context) ([]models.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("all reviews: %w", err)
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		rev, err := scanReviewRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM reviews
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row *sql.Row) (*models.Review, error) {
	rev, err := scanReviewRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rev, err
}

func scanReviewRow(row rowScanner) (*models.Review, error) {
	var (
		rev          models.Review
		authors      string
		isbn         sql.NullString
		publisher    sql.NullString
		year         sql.NullInt64
		bulletPoints sql.NullString
		aiDraft      sql.NullString
		tags         string
		createdAt    time.Time
		publishedAt  sql.NullTime
	)

	if err := row.Scan(
		&rev.ID, &rev.Slug, &rev.Title, &authors, &isbn, &publisher, &year, &rev.CoverURL,
		&rev.Rating, &bulletPoints, &aiDraft, &rev.FinalText, &tags, &rev.Status,
		&createdAt, &publishedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	rev.Authors = unmarshalStrings(authors)
	rev.ISBN = isbn.String
	rev.Publisher = publisher.String
	rev.Year = int(year.Int64)
	rev.BulletPoints = unmarshalStrings(bulletPoints.String)
	rev.AIDraft = aiDraft.String
	rev.Tags = unmarshalStrings(tags)
	rev.CreatedAt = createdAt
	if publishedAt.Valid {
		t := publishedAt.Time
		rev.PublishedAt = &t
	}
	return &rev, nil
}

func marshalStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func unmarshalStrings(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{}
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
