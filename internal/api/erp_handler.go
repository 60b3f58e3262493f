package api

import (
	"errors"
	"net/http"

	"stepladder/practice-app/internal/repository"
	"stepladder/practice-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ERPHandler covers the exposure ladder routes: therapist-facing hierarchy
// management and run review, plus the portal route clients log runs through.
type ERPHandler struct {
	erpService    service.ERPService
	portalService service.PortalService
}

// NewERPHandler creates a new ERPHandler.
func NewERPHandler(erpService service.ERPService, portalService service.PortalService) *ERPHandler {
	return &ERPHandler{
		erpService:    erpService,
		portalService: portalService,
	}
}

// --- DTOs ---

type HierarchyItemRequest struct {
	Label        string `json:"label" binding:"required"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	BaselineSUDS *int   `json:"baselineSuds" binding:"required,min=0,max=100"`
}

type CreateHierarchyItemsRequest struct {
	Items []HierarchyItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateHierarchyItemRequest names the fields a PATCH may change. Absent
// fields stay untouched.
type UpdateHierarchyItemRequest struct {
	Label        *string `json:"label,omitempty" binding:"omitempty,min=1"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	BaselineSUDS *int    `json:"baselineSuds,omitempty" binding:"omitempty,min=0,max=100"`
	OrderIndex   *int    `json:"orderIndex,omitempty" binding:"omitempty,min=0"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

type LogExposureRequest struct {
	AssignmentID    string `json:"assignmentId" binding:"required"`
	HierarchyItemID string `json:"hierarchyItemId" binding:"required"`
	SUDSBefore      *int   `json:"sudsBefore" binding:"required,min=0,max=100"`
	SUDSPeak        *int   `json:"sudsPeak" binding:"required,min=0,max=100"`
	SUDSAfter       *int   `json:"sudsAfter" binding:"required,min=0,max=100"`
	DurationMinutes *int   `json:"durationMinutes" binding:"required,min=1"`
	DidRitual       bool   `json:"didRitual"`
	RitualNotes     string `json:"ritualNotes,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// --- Handler Methods ---

// CreateHierarchyItems godoc
// @Summary Append rungs to a client's exposure hierarchy
// @Description New items continue the order index from the current maximum.
// @Tags ERP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param items body CreateHierarchyItemsRequest true "Hierarchy items"
// @Success 201 {array} domain.HierarchyItem "Created items"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Client not found"
// @Router /clients/{clientId}/erp/hierarchy-items [post]
func (h *ERPHandler) CreateHierarchyItems(c *gin.Context) {
	var req CreateHierarchyItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}

	inputs := make([]service.HierarchyItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, service.HierarchyItemInput{
			Label:        item.Label,
			Description:  item.Description,
			Category:     item.Category,
			BaselineSUDS: *item.BaselineSUDS,
		})
	}

	items, err := h.erpService.CreateHierarchyItems(c.Request.Context(), therapistID, clientID, inputs)
	if err != nil {
		abortWithClientError(c, err)
		return
	}
	c.JSON(http.StatusCreated, items)
}

// GetHierarchy godoc
// @Summary Get a client's exposure hierarchy with run metrics
// @Description Items come back easiest rung first. Averages fall back to the
// item's baseline when no runs exist.
// @Tags ERP
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} service.HierarchyItemWithMetrics "Hierarchy items"
// @Failure 403 {object} gin.H "Client belongs to another therapist"
// @Failure 404 {object} gin.H "Client not found"
// @Router /clients/{clientId}/erp/hierarchy-items [get]
func (h *ERPHandler) GetHierarchy(c *gin.Context) {
	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}

	items, err := h.erpService.GetHierarchy(c.Request.Context(), therapistID, clientID)
	if err != nil {
		abortWithClientError(c, err)
		return
	}
	if items == nil {
		items = []service.HierarchyItemWithMetrics{}
	}
	c.JSON(http.StatusOK, items)
}

// UpdateHierarchyItem godoc
// @Summary Update one hierarchy item
// @Description Retire an item by setting isActive false; items are never
// deleted so logged runs keep their referent.
// @Tags ERP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param itemId path string true "Hierarchy item ID"
// @Param item body UpdateHierarchyItemRequest true "Fields to change"
// @Success 200 {object} domain.HierarchyItem "Updated item"
// @Failure 403 {object} gin.H "Item belongs to another client"
// @Failure 404 {object} gin.H "Client or item not found"
// @Router /clients/{clientId}/erp/hierarchy-items/{itemId} [patch]
func (h *ERPHandler) UpdateHierarchyItem(c *gin.Context) {
	var req UpdateHierarchyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}
	itemID, ok := objectIDParam(c, "itemId")
	if !ok {
		return
	}

	item, err := h.erpService.UpdateHierarchyItem(c.Request.Context(), therapistID, clientID, itemID, repository.HierarchyItemUpdate{
		Label:        req.Label,
		Description:  req.Description,
		Category:     req.Category,
		BaselineSUDS: req.BaselineSUDS,
		OrderIndex:   req.OrderIndex,
		IsActive:     req.IsActive,
	})
	if err != nil {
		abortWithERPError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetExposureRuns godoc
// @Summary List a client's exposure runs
// @Tags ERP
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param range query string false "last_7_days or last_30_days (default)"
// @Success 200 {array} service.ExposureRunWithLabel "Runs, most recent first"
// @Failure 400 {object} gin.H "Unknown range"
// @Failure 404 {object} gin.H "Client not found"
// @Router /clients/{clientId}/erp/exposure-runs [get]
func (h *ERPHandler) GetExposureRuns(c *gin.Context) {
	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}

	runs, err := h.erpService.ListExposureRuns(c.Request.Context(), therapistID, clientID, c.Query("range"))
	if err != nil {
		abortWithERPError(c, err)
		return
	}
	if runs == nil {
		runs = []service.ExposureRunWithLabel{}
	}
	c.JSON(http.StatusOK, runs)
}

// LogExposure godoc
// @Summary Log a completed exposure run from the client portal
// @Tags Portal
// @Accept json
// @Produce json
// @Param token path string true "Magic link token"
// @Param run body LogExposureRequest true "Run details"
// @Success 201 {object} domain.ExposureRun "Logged run"
// @Failure 403 {object} gin.H "Assignment or item belongs to another client"
// @Failure 404 {object} gin.H "Invalid link, assignment, or item"
// @Router /public/client/{token}/erp/exposure-runs [post]
func (h *ERPHandler) LogExposure(c *gin.Context) {
	var req LogExposureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	session, err := h.portalService.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidPortalToken) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	assignmentID, err := primitive.ObjectIDFromHex(req.AssignmentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignmentId format.")
		return
	}
	itemID, err := primitive.ObjectIDFromHex(req.HierarchyItemID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid hierarchyItemId format.")
		return
	}

	run, err := h.erpService.LogExposureRun(c.Request.Context(), session.ClientID, service.LogExposureInput{
		AssignmentID:    assignmentID,
		HierarchyItemID: itemID,
		SUDSBefore:      *req.SUDSBefore,
		SUDSPeak:        *req.SUDSPeak,
		SUDSAfter:       *req.SUDSAfter,
		DurationMinutes: *req.DurationMinutes,
		DidRitual:       req.DidRitual,
		RitualNotes:     req.RitualNotes,
		Notes:           req.Notes,
	})
	if err != nil {
		abortWithERPError(c, err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

// --- Helpers ---

// abortWithERPError maps exposure ladder errors to HTTP statuses.
func abortWithERPError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHierarchyItemNotFound), errors.Is(err, service.ErrAssignmentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrHierarchyItemNotForClient), errors.Is(err, service.ErrAssignmentNotForClient):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidExposureRange):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithClientError(c, err)
	}
}
