package api

import (
	"errors"
	"net/http"

	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PortalHandler covers the token-authenticated client portal. Every route
// resolves the magic link token from the path; there is no session state.
type PortalHandler struct {
	portalService service.PortalService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portalService service.PortalService) *PortalHandler {
	return &PortalHandler{portalService: portalService}
}

// --- DTOs ---

type PortalHomeResponse struct {
	DisplayName string                       `json:"displayName"`
	Assignments []domain.WorksheetAssignment `json:"assignments"`
}

type PortalValuesRequest struct {
	Values map[string]any `json:"values" binding:"required"`
}

// PortalSubmitResponse carries either the completed assignment or the
// per-field validation errors, never both.
type PortalSubmitResponse struct {
	Assignment  *domain.WorksheetAssignment `json:"assignment,omitempty"`
	FieldErrors map[string]string           `json:"fieldErrors,omitempty"`
}

// --- Handler Methods ---

// GetHome godoc
// @Summary Resolve a portal link and list the client's assignments
// @Tags Portal
// @Produce json
// @Param token path string true "Magic link token"
// @Success 200 {object} PortalHomeResponse "Client name and assignments"
// @Failure 404 {object} gin.H "Invalid or deactivated link"
// @Router /public/client/{token}/home [get]
func (h *PortalHandler) GetHome(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	assignments, err := h.portalService.GetAssignments(c.Request.Context(), session.ClientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}
	if assignments == nil {
		assignments = []domain.WorksheetAssignment{}
	}

	c.JSON(http.StatusOK, PortalHomeResponse{
		DisplayName: session.DisplayName,
		Assignments: assignments,
	})
}

// GetAssignment godoc
// @Summary Load one assignment with its rendered worksheet form
// @Description Completed assignments render read-only.
// @Tags Portal
// @Produce json
// @Param token path string true "Magic link token"
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} service.PortalAssignment "Assignment, template and rendered fields"
// @Failure 403 {object} gin.H "Assignment belongs to another client"
// @Failure 404 {object} gin.H "Invalid link or unknown assignment"
// @Router /public/client/{token}/assignments/{assignmentId} [get]
func (h *PortalHandler) GetAssignment(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	assignmentID, ok := objectIDParam(c, "assignmentId")
	if !ok {
		return
	}

	pa, err := h.portalService.GetAssignment(c.Request.Context(), session.ClientID, assignmentID)
	if err != nil {
		abortWithPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, pa)
}

// SaveDraft godoc
// @Summary Save in-progress worksheet values without validation
// @Description A first draft moves the assignment to in_progress.
// @Tags Portal
// @Accept json
// @Produce json
// @Param token path string true "Magic link token"
// @Param assignmentId path string true "Assignment ID"
// @Param values body PortalValuesRequest true "Field values"
// @Success 200 {object} domain.WorksheetAssignment "Updated assignment"
// @Failure 409 {object} gin.H "Assignment already completed"
// @Router /public/client/{token}/assignments/{assignmentId}/response [put]
func (h *PortalHandler) SaveDraft(c *gin.Context) {
	var req PortalValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}
	assignmentID, ok := objectIDParam(c, "assignmentId")
	if !ok {
		return
	}

	assignment, err := h.portalService.SaveDraft(c.Request.Context(), session.ClientID, assignmentID, req.Values)
	if err != nil {
		abortWithPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// Submit godoc
// @Summary Submit a worksheet, completing the assignment
// @Description Required-field failures come back as a 422 with one message
// per failing field; nothing is persisted in that case.
// @Tags Portal
// @Accept json
// @Produce json
// @Param token path string true "Magic link token"
// @Param assignmentId path string true "Assignment ID"
// @Param values body PortalValuesRequest true "Field values"
// @Success 200 {object} PortalSubmitResponse "Completed assignment"
// @Failure 409 {object} gin.H "Assignment already completed"
// @Failure 422 {object} PortalSubmitResponse "Per-field validation errors"
// @Router /public/client/{token}/assignments/{assignmentId}/submit [post]
func (h *PortalHandler) Submit(c *gin.Context) {
	var req PortalValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}
	assignmentID, ok := objectIDParam(c, "assignmentId")
	if !ok {
		return
	}

	assignment, fieldErrors, err := h.portalService.Submit(c.Request.Context(), session.ClientID, assignmentID, req.Values)
	if err != nil {
		abortWithPortalError(c, err)
		return
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, PortalSubmitResponse{FieldErrors: fieldErrors})
		return
	}
	c.JSON(http.StatusOK, PortalSubmitResponse{Assignment: assignment})
}

// --- Helpers ---

// session resolves the magic link token from the path. An invalid link is a
// 404; the portal never confirms whether a token ever existed.
func (h *PortalHandler) session(c *gin.Context) (*service.PortalSession, bool) {
	session, err := h.portalService.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidPortalToken) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return nil, false
	}
	return session, true
}

func abortWithPortalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound), errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAssignmentNotForClient):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAssignmentCompleted):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
