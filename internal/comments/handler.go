package comments

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kayinbooks/internal/reviews"
	"kayinbooks/pkg/models"
)

type Handler struct {
	Repo    *Repo
	Reviews *reviews.Repo
	Limiter Limiter
	Log     zerolog.Logger
}

func NewHandler(repo *Repo, reviewsRepo *reviews.Repo, limiter Limiter, log zerolog.Logger) *Handler {
	return &Handler{Repo: repo, Reviews: reviewsRepo, Limiter: limiter, Log: log}
}

// RegisterReviewRoutes mounts the threaded listing under the reviews group.
func (h *Handler) RegisterReviewRoutes(rg *gin.RouterGroup) {
	rg.GET("/:key/comments", h.listThreaded)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
}

func (h *Handler) listThreaded(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "review id required"})
		return
	}

	rev, err := h.Reviews.GetByIDOrSlug(c.Request.Context(), key)
	if err != nil {
		h.Log.Error().Err(err).Str("key", key).Msg("load review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if rev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	flat, err := h.Repo.ListByReview(c.Request.Context(), rev.ID)
	if err != nil {
		h.Log.Error().Err(err).Str("review_id", rev.ID).Msg("list comments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": BuildTree(flat),
		"total":    len(flat),
	})
}

type createReq struct {
	ReviewID    string `json:"review_id"`
	ParentID    string `json:"parent_id"`
	Body        string `json:"body"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.ReviewID = strings.TrimSpace(req.ReviewID)
	req.Body = strings.TrimSpace(req.Body)
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	req.AuthorEmail = strings.TrimSpace(strings.ToLower(req.AuthorEmail))

	if req.ReviewID == "" || req.Body == "" || req.AuthorName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "review_id, body and author_name are required"})
		return
	}
	if len(req.Body) < 2 || len(req.Body) > 2000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment must be between 2 and 2000 characters"})
		return
	}
	if len(req.AuthorName) < 2 || len(req.AuthorName) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must be between 2 and 50 characters"})
		return
	}

	ctx := c.Request.Context()

	rev, err := h.Reviews.GetByID(ctx, req.ReviewID)
	if err != nil {
		h.Log.Error().Err(err).Str("review_id", req.ReviewID).Msg("load review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	if rev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	if req.ParentID != "" {
		parent, err := h.Repo.GetByID(ctx, req.ParentID)
		if err != nil {
			h.Log.Error().Err(err).Str("parent_id", req.ParentID).Msg("load parent failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		if parent == nil || parent.ReviewID != rev.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "parent comment not found"})
			return
		}
	}

	now := time.Now().UTC()
	identity := IdentityKey(req.AuthorEmail, req.AuthorName)

	recent, err := h.Repo.FindRecentByIdentity(ctx, identity, h.Limiter.Since(now))
	if err != nil {
		h.Log.Error().Err(err).Msg("rate limit lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	if recent != nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "please wait before posting another comment"})
		return
	}

	comment := &models.Comment{
		ID:          uuid.NewString(),
		ReviewID:    rev.ID,
		ParentID:    req.ParentID,
		Body:        req.Body,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		CreatedAt:   now,
	}

	if err := h.Repo.Insert(ctx, comment); err != nil {
		h.Log.Error().Err(err).Msg("insert comment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
}
