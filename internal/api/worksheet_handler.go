package api

import (
	"net/http"
	"strings"

	"stepladder/practice-app/internal/catalog"
	"stepladder/practice-app/internal/domain"

	"github.com/gin-gonic/gin"
)

// WorksheetHandler serves the read-only worksheet template catalog.
type WorksheetHandler struct {
	registry *catalog.Registry
}

// NewWorksheetHandler creates a new WorksheetHandler.
func NewWorksheetHandler(registry *catalog.Registry) *WorksheetHandler {
	return &WorksheetHandler{registry: registry}
}

// WorksheetSummary is the catalog listing shape: template metadata without
// the full field definitions.
type WorksheetSummary struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Modality       domain.Modality `json:"modality"`
	Modules        []string        `json:"modules"`
	ProblemDomains []string        `json:"problemDomains"`
	EvidenceTag    string          `json:"evidenceTag,omitempty"`
	Description    string          `json:"description,omitempty"`
	FieldCount     int             `json:"fieldCount"`
}

// ListWorksheets godoc
// @Summary Browse the worksheet catalog
// @Description Lists worksheet templates, optionally filtered by modality,
// problem domains (comma separated) and a free-text search term.
// @Tags Worksheets
// @Produce json
// @Security BearerAuth
// @Param modality query string false "Modality filter ('All' or empty disables)"
// @Param domains query string false "Comma separated problem domains"
// @Param search query string false "Case-insensitive search term"
// @Success 200 {array} WorksheetSummary "Matching templates"
// @Router /worksheets [get]
func (h *WorksheetHandler) ListWorksheets(c *gin.Context) {
	filter := catalog.Filter{
		Modality: c.Query("modality"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("domains"); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				filter.Domains = append(filter.Domains, d)
			}
		}
	}

	templates := h.registry.Filter(filter)
	summaries := make([]WorksheetSummary, 0, len(templates))
	for _, t := range templates {
		summaries = append(summaries, WorksheetSummary{
			ID:             t.ID,
			Title:          t.Title,
			Modality:       t.Modality,
			Modules:        t.Modules,
			ProblemDomains: t.ProblemDomains,
			EvidenceTag:    t.EvidenceTag,
			Description:    t.Description,
			FieldCount:     len(t.Fields),
		})
	}
	c.JSON(http.StatusOK, summaries)
}

// GetWorksheet godoc
// @Summary Get one worksheet template with its full field definitions
// @Tags Worksheets
// @Produce json
// @Security BearerAuth
// @Param worksheetId path string true "Worksheet template ID"
// @Success 200 {object} domain.WorksheetTemplate "The template"
// @Failure 404 {object} gin.H "Template not found"
// @Router /worksheets/{worksheetId} [get]
func (h *WorksheetHandler) GetWorksheet(c *gin.Context) {
	template := h.registry.GetByID(c.Param("worksheetId"))
	if template == nil {
		abortWithError(c, http.StatusNotFound, "Worksheet template not found.")
		return
	}
	c.JSON(http.StatusOK, template)
}

// GetDomains godoc
// @Summary List all problem domains across the catalog
// @Tags Worksheets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string "Sorted, de-duplicated domains"
// @Router /worksheets/domains [get]
func (h *WorksheetHandler) GetDomains(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Domains())
}
