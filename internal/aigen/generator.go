package aigen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"kayinbooks/pkg/utils"
)

// Generator produces review drafts from an admin's bullet notes via a
// hosted text-generation model. Every remote failure falls back to the
// deterministic template, so callers always get usable text.
type Generator struct {
	endpoint   string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewGenerator(cfg utils.AIConfig, log zerolog.Logger) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Generator{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// GenerateDraft never fails: any upstream problem (unconfigured token,
// network error, timeout, empty payload) is absorbed and the fallback
// draft is returned instead.
func (g *Generator) GenerateDraft(ctx context.Context, title, author string, bulletPoints []string) string {
	text, err := g.remote(ctx, title, author, bulletPoints)
	if err != nil {
		g.log.Warn().Err(err).Str("title", title).Msg("ai generation failed, using fallback draft")
		return FallbackDraft(title, author, bulletPoints)
	}
	return text
}

func (g *Generator) remote(ctx context.Context, title, author string, bulletPoints []string) (string, error) {
	if g.token == "" || g.endpoint == "" {
		return "", errors.New("generator not configured")
	}

	body, err := json.Marshal(map[string]any{
		"inputs": buildPrompt(title, author, bulletPoints),
		"parameters": map[string]any{
			"max_new_tokens":   1000,
			"temperature":      0.75,
			"top_p":            0.92,
			"return_full_text": false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("generator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 || strings.TrimSpace(out[0].GeneratedText) == "" {
		return "", errors.New("empty generation")
	}

	return strings.TrimSpace(out[0].GeneratedText), nil
}

func buildPrompt(title, author string, bulletPoints []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a passionate book reviewer with an elegant, literary writing style. Write a detailed book review for %q by %s.\n\n", title, author)
	b.WriteString("Key thoughts from the reviewer:\n")
	for i, point := range bulletPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, point)
	}
	b.WriteString("\nWrite 4-5 substantial paragraphs (600-800 words) in a conversational yet literary tone. ")
	b.WriteString("Open by setting the scene, cover the premise without spoilers, explore characters and emotional impact, ")
	b.WriteString("offer honest but kind critique, and close with a warm recommendation. ")
	b.WriteString("Don't use a title or rating - just the review text.")
	return b.String()
}

// FallbackDraft composes a draft directly from the bullet points with
// fixed connective phrases. Same inputs, same output, every time.
func FallbackDraft(title, author string, bulletPoints []string) string {
	intro := fmt.Sprintf("There's something special about %q by %s that stayed with me long after I turned the final page.", title, author)

	paragraphs := make([]string, 0, len(bulletPoints))
	for i, point := range bulletPoints {
		switch {
		case i == 0:
			paragraphs = append(paragraphs, point+" From the very first chapter, I found myself drawn into the story, eager to see where it would take me.")
		case i == len(bulletPoints)-1:
			paragraphs = append(paragraphs, point+" It's these kinds of thoughtful touches that elevate this book beyond the ordinary.")
		default:
			paragraphs = append(paragraphs, point+" This aspect of the book particularly resonated with me and added depth to my reading experience.")
		}
	}

	conclusion := fmt.Sprintf("Overall, I found %q to be a compelling read that balanced emotional depth with engaging storytelling. %s's writing style drew me in and kept me invested throughout. While no book is perfect, this one certainly left an impression. I'd recommend it to anyone looking for a thoughtful, well-crafted story that lingers in your mind long after you've finished.", title, author)

	parts := append([]string{intro}, paragraphs...)
	parts = append(parts, conclusion)
	return strings.Join(parts, "\n\n")
}
