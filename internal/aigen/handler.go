package aigen

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Generator *Generator
}

func NewHandler(generator *Generator) *Handler {
	return &Handler{Generator: generator}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.generate)
}

type generateReq struct {
	BookTitle    string   `json:"book_title"`
	Author       string   `json:"author"`
	BulletPoints []string `json:"bullet_points"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if len(req.BulletPoints) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bullet_points are required"})
		return
	}
	if strings.TrimSpace(req.BookTitle) == "" || strings.TrimSpace(req.Author) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book_title and author are required"})
		return
	}

	draft := h.Generator.GenerateDraft(c.Request.Context(), req.BookTitle, req.Author, req.BulletPoints)

	c.JSON(http.StatusOK, gin.H{"success": true, "review": draft})
}
