package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kayinbooks/internal/reviews"
	"kayinbooks/pkg/database"
)

func main() {
	var (
		reviewsOut  = flag.String("reviews", "data/reviews.csv", "output CSV path for reviews")
		commentsOut = flag.String("comments", "data/comments.csv", "output CSV path for comments")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportReviews(ctx, db, *reviewsOut); err != nil {
		log.Fatalf("export reviews failed: %v", err)
	}
	if err := exportComments(ctx, db, *commentsOut); err != nil {
		log.Fatalf("export comments failed: %v", err)
	}

	log.Printf("exported reviews to %s and comments to %s", *reviewsOut, *commentsOut)
}

func exportReviews(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "slug", "title", "authors", "isbn", "rating", "tags", "status", "created_at", "published_at"}); err != nil {
		return err
	}

	repo := reviews.NewRepo(db)
	all, err := repo.All(ctx)
	if err != nil {
		return err
	}

	for _, rev := range all {
		published := ""
		if rev.PublishedAt != nil {
			published = rev.PublishedAt.Format(time.RFC3339)
		}

		if err := w.Write([]string{
			rev.ID,
			rev.Slug,
			rev.Title,
			strings.Join(rev.Authors, "; "),
			rev.ISBN,
			strconvRating(rev.Rating),
			strings.Join(rev.Tags, "; "),
			rev.Status,
			rev.CreatedAt.Format(time.RFC3339),
			published,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportComments(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "review_id", "parent_id", "author_name", "author_email", "created_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, review_id, parent_id, author_name, author_email, created_at
        FROM comments
        ORDER BY created_at DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          string
			reviewID    string
			parentID    sql.NullString
			authorName  string
			authorEmail sql.NullString
			createdAt   sql.NullTime
		)

		if err := rows.Scan(&id, &reviewID, &parentID, &authorName, &authorEmail, &createdAt); err != nil {
			return err
		}

		created := ""
		if createdAt.Valid {
			created = createdAt.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{
			id,
			reviewID,
			parentID.String,
			authorName,
			authorEmail.String,
			created,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func strconvRating(r float64) string {
	return strconv.FormatFloat(r, 'f', 1, 64)
}
