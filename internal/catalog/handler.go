package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{Resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	isbn := c.Query("isbn")
	if isbn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isbn is required"})
		return
	}

	meta, err := h.Resolver.Resolve(c.Request.Context(), isbn)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidISBN):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid isbn"})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		}
		return
	}

	c.JSON(http.StatusOK, meta)
}
