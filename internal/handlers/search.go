package handlers

import (
	"strconv"

	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SearchHandler provides a global search across clients, consultants and projects.
type SearchHandler struct {
	db *gorm.DB
}

func NewSearchHandler(db *gorm.DB) *SearchHandler {
	return &SearchHandler{db: db}
}

type SearchResult struct {
	Clients     []SearchItem `json:"clients"`
	Consultants []SearchItem `json:"consultants"`
	Projects    []SearchItem `json:"projects"`
	Total       int          `json:"total"`
}

type SearchItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Status string `json:"status"`
}

// Search matches names (and emails for people).
// GET /api/search?q=
func (h *SearchHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if len(q) < 2 {
		response.BadRequest(c, "search query must be at least 2 characters")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 50 {
		limit = 20
	}

	db := h.db.WithContext(c.Request.Context())
	pattern := "%" + q + "%"
	result := SearchResult{
		Clients:     []SearchItem{},
		Consultants: []SearchItem{},
		Projects:    []SearchItem{},
	}

	var clients []models.Client
	if err := db.Where("name LIKE ? OR email LIKE ?", pattern, pattern).
		Order("name").Limit(limit).Find(&clients).Error; err != nil {
		fail(c, err)
		return
	}
	for _, x := range clients {
		result.Clients = append(result.Clients, SearchItem{ID: string(x.ID), Name: x.Name, Email: x.Email, Status: x.Status})
	}

	var consultants []models.Consultant
	if err := db.Where("name LIKE ? OR email LIKE ?", pattern, pattern).
		Order("name").Limit(limit).Find(&consultants).Error; err != nil {
		fail(c, err)
		return
	}
	for _, x := range consultants {
		result.Consultants = append(result.Consultants, SearchItem{ID: string(x.ID), Name: x.Name, Email: x.Email, Status: x.Status})
	}

	var projects []models.Project
	if err := db.Where("name LIKE ?", pattern).
		Order("name").Limit(limit).Find(&projects).Error; err != nil {
		fail(c, err)
		return
	}
	for _, p := range projects {
		result.Projects = append(result.Projects, SearchItem{ID: string(p.ID), Name: p.Name, Status: p.Status})
	}

	result.Total = len(result.Clients) + len(result.Consultants) + len(result.Projects)
	response.Success(c, result)
}
