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

const openLibraryBase = "https://openlibrary.org"

// OpenLibrary fetches book data from the Open Library books API.
type OpenLibrary struct {
	BaseURL     string
	Client      *http.Client
	Placeholder string
}

func NewOpenLibrary(placeholder string, timeout time.Duration) *OpenLibrary {
	return &OpenLibrary{
		BaseURL:     openLibraryBase,
		Client:      &http.Client{Timeout: timeout},
		Placeholder: placeholder,
	}
}

func (s *OpenLibrary) Name() string { return "openlibrary" }

type olBook struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	PublishDate string `json:"publish_date"`
	Cover       struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
	Excerpts []struct {
		Text string `json:"text"`
	} `json:"excerpts"`
}

// Lookup queries GET /api/books?bibkeys=ISBN:<isbn>&format=json&jscmd=data.
// The payload is a map keyed by the bibkey; a missing key means the ISBN is
// unknown to Open Library.
func (s *OpenLibrary) Lookup(ctx context.Context, isbn string) (*models.BookMetadata, error) {
	bibkey := "ISBN:" + isbn

	u := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data",
		s.BaseURL, url.QueryEscape(bibkey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("openlibrary: status %d: %s", resp.StatusCode, string(body))
	}

	var payload map[string]olBook
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openlibrary: decode: %w", err)
	}

	book, ok := payload[bibkey]
	if !ok {
		return nil, nil
	}

	authors := make([]string, 0, len(book.Authors))
	for _, a := range book.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	publisher := ""
	if len(book.Publishers) > 0 {
		publisher = book.Publishers[0].Name
	}

	description := ""
	if len(book.Excerpts) > 0 {
		description = book.Excerpts[0].Text
	}

	return &models.BookMetadata{
		Title:       book.Title,
		Authors:     authors,
		Publisher:   publisher,
		Year:        parseYearToken(book.PublishDate),
		CoverURL:    pickCover(s.Placeholder, book.Cover.Large, book.Cover.Medium, book.Cover.Small),
		Description: description,
	}, nil
}
