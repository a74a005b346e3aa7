package reviews

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kayinbooks/internal/auth"
	"kayinbooks/pkg/models"
)

type Handler struct {
	Repo     *Repo
	Tokens   auth.TokenService
	AuthRepo *auth.Repo
	Log      zerolog.Logger
}

func NewHandler(repo *Repo, tokens auth.TokenService, authRepo *auth.Repo, log zerolog.Logger) *Handler {
	return &Handler{Repo: repo, Tokens: tokens, AuthRepo: authRepo, Log: log}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:key", h.get)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/reviews", h.create)
	rg.PUT("/reviews/:key", h.update)
	rg.DELETE("/reviews/:key", h.delete)
	rg.GET("/export/reviews.csv", h.exportCSV)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Status: c.DefaultQuery("status", models.StatusPublished),
		Search: strings.TrimSpace(c.Query("search")),
		Tag:    strings.TrimSpace(c.Query("tag")),
		Sort:   c.DefaultQuery("sort", "newest"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	// drafts are only listable by the admin
	if q.Status != models.StatusPublished && !auth.IsAdmin(c, h.Tokens, h.AuthRepo) {
		q.Status = models.StatusPublished
	}

	items, total, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.Log.Error().Err(err).Msg("list reviews failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": items,
		"total":   total,
		"limit":   q.Limit,
		"offset":  q.Offset,
	})
}

func (h *Handler) get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id or slug required"})
		return
	}

	rev, err := h.Repo.GetByIDOrSlug(c.Request.Context(), key)
	if err != nil {
		h.Log.Error().Err(err).Str("key", key).Msg("get review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	c.JSON(http.StatusOK, rev)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	rev, err := CreateReview(c.Request.Context(), h.Repo, in, time.Now().UTC())
	if err != nil {
		h.writeError(c, err, "create review failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "review": rev})
}

func (h *Handler) update(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	// updates address reviews by id, but accept a slug too
	rev, err := h.Repo.GetByIDOrSlug(c.Request.Context(), key)
	if err != nil {
		h.Log.Error().Err(err).Str("key", key).Msg("load review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if rev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	var patch UpdateInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updated, err := UpdateReview(c.Request.Context(), h.Repo, rev.ID, patch, time.Now().UTC())
	if err != nil {
		h.writeError(c, err, "update review failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": updated})
}

func (h *Handler) delete(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	rev, err := h.Repo.GetByIDOrSlug(c.Request.Context(), key)
	if err != nil {
		h.Log.Error().Err(err).Str("key", key).Msg("load review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if rev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), rev.ID)
	if err != nil || !ok {
		h.Log.Error().Err(err).Str("id", rev.ID).Msg("delete review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "review deleted"})
}

func (h *Handler) exportCSV(c *gin.Context) {
	items, err := h.Repo.All(c.Request.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("export reviews failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="reviews.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "slug", "title", "authors", "rating", "status", "created_at", "published_at"})
	for _, rev := range items {
		published := ""
		if rev.PublishedAt != nil {
			published = rev.PublishedAt.Format(time.RFC3339)
		}
		_ = w.Write([]string{
			rev.ID,
			rev.Slug,
			rev.Title,
			strings.Join(rev.Authors, "; "),
			strconv.FormatFloat(rev.Rating, 'f', 1, 64),
			rev.Status,
			rev.CreatedAt.Format(time.RFC3339),
			published,
		})
	}
	w.Flush()
}

func (h *Handler) writeError(c *gin.Context, err error, logMsg string) {
	var ie *InputError
	switch {
	case errors.As(err, &ie):
		c.JSON(http.StatusBadRequest, gin.H{"error": ie.Error()})
	case errors.Is(err, ErrInvalidTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidTitle.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
	case errors.Is(err, ErrSlugConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "slug conflict, please retry"})
	default:
		h.Log.Error().Err(err).Msg(logMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
