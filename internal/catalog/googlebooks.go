package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"kayinbooks/pkg/models"
)

const googleBooksBase = "https://www.googleapis.com/books/v1"

// GoogleBooks is the fallback catalog, queried when Open Library has no
// record for an ISBN.
type GoogleBooks struct {
	BaseURL     string
	Client      *http.Client
	Placeholder string
}

func NewGoogleBooks(placeholder string, timeout time.Duration) *GoogleBooks {
	return &GoogleBooks{
		BaseURL:     googleBooksBase,
		Client:      &http.Client{Timeout: timeout},
		Placeholder: placeholder,
	}
}

func (s *GoogleBooks) Name() string { return "googlebooks" }

type gbResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
			ImageLinks    struct {
				SmallThumbnail string `json:"smallThumbnail"`
				Thumbnail      string `json:"thumbnail"`
				Small          string `json:"small"`
				Medium         string `json:"medium"`
				Large          string `json:"large"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (s *GoogleBooks) Lookup(ctx context.Context, isbn string) (*models.BookMetadata, error) {
	u := fmt.Sprintf("%s/volumes?q=%s", s.BaseURL, url.QueryEscape("isbn:"+isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("googlebooks: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("googlebooks: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("googlebooks: status %d: %s", resp.StatusCode, string(body))
	}

	var payload gbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("googlebooks: decode: %w", err)
	}

	if len(payload.Items) == 0 {
		return nil, nil
	}

	info := payload.Items[0].VolumeInfo
	links := info.ImageLinks

	return &models.BookMetadata{
		Title:     info.Title,
		Authors:   append([]string{}, info.Authors...),
		Publisher: info.Publisher,
		Year:      parseYearToken(info.PublishedDate),
		CoverURL: pickCover(s.Placeholder,
			links.Large, links.Medium, links.Small, links.Thumbnail, links.SmallThumbnail),
		Description: info.Description,
	}, nil
}
