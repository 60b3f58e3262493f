package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientHandler covers the therapist-facing caseload and assignment routes.
type ClientHandler struct {
	therapistService service.TherapistService
	portalBaseURL    string
}

// NewClientHandler creates a new ClientHandler. portalBaseURL is the public
// origin used when building shareable magic link URLs.
func NewClientHandler(therapistService service.TherapistService, portalBaseURL string) *ClientHandler {
	return &ClientHandler{
		therapistService: therapistService,
		portalBaseURL:    strings.TrimRight(portalBaseURL, "/"),
	}
}

// --- DTOs ---

type CreateClientRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
}

type AssignWorksheetRequest struct {
	WorksheetID           string         `json:"worksheetId" binding:"required"`
	DueDate               *time.Time     `json:"dueDate,omitempty"`
	Note                  string         `json:"note,omitempty"`
	ClinicianConfigValues map[string]any `json:"clinicianConfigValues,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type MagicLinkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Handler Methods ---

// CreateClient godoc
// @Summary Add a client to the therapist's caseload
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body CreateClientRequest true "Client details"
// @Success 201 {object} domain.Client "Client created"
// @Failure 400 {object} gin.H "Invalid input"
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}

	client, err := h.therapistService.CreateClient(c.Request.Context(), therapistID, req.DisplayName, req.Email)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create client.")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients godoc
// @Summary List the therapist's caseload
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Client "Clients, most recently added first"
// @Router /clients [get]
func (h *ClientHandler) GetClients(c *gin.Context) {
	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}

	clients, err := h.therapistService.GetClients(c.Request.Context(), therapistID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve clients.")
		return
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	c.JSON(http.StatusOK, clients)
}

// GetClient godoc
// @Summary Get one client from the caseload
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {object} domain.Client "The client"
// @Failure 403 {object} gin.H "Client belongs to another therapist"
// @Failure 404 {object} gin.H "Client not found"
// @Router /clients/{clientId} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}

	client, err := h.therapistService.GetClient(c.Request.Context(), therapistID, clientID)
	if err != nil {
		abortWithClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// AssignWorksheet godoc
// @Summary Assign a worksheet from the catalog to a client
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param assignment body AssignWorksheetRequest true "Assignment details"
// @Success 201 {object} domain.WorksheetAssignment "Assignment created"
// @Failure 400 {object} gin.H "Invalid input or non-configurable field pre-filled"
// @Failure 404 {object} gin.H "Client or template not found"
// @Router /clients/{clientId}/assignments [post]
func (h *ClientHandler) AssignWorksheet(c *gin.Context) {
	var req AssignWorksheetRequest
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

	assignment, err := h.therapistService.AssignWorksheet(c.Request.Context(), therapistID, clientID, service.AssignWorksheetInput{
		WorksheetID:           req.WorksheetID,
		DueDate:               req.DueDate,
		Note:                  req.Note,
		ClinicianConfigValues: req.ClinicianConfigValues,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrConfigFieldNotAllowed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithClientError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// GetClientAssignments godoc
// @Summary List a client's worksheet assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} domain.WorksheetAssignment "Assignments, most recent first"
// @Failure 403 {object} gin.H "Client belongs to another therapist"
// @Failure 404 {object} gin.H "Client not found"
// @Router /clients/{clientId}/assignments [get]
func (h *ClientHandler) GetClientAssignments(c *gin.Context) {
	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}

	assignments, err := h.therapistService.GetClientAssignments(c.Request.Context(), therapistID, clientID)
	if err != nil {
		abortWithClientError(c, err)
		return
	}
	if assignments == nil {
		assignments = []domain.WorksheetAssignment{}
	}
	c.JSON(http.StatusOK, assignments)
}

// GetAssignment godoc
// @Summary Get one assignment, including the client's response
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} domain.WorksheetAssignment "The assignment"
// @Failure 403 {object} gin.H "Assignment belongs to another therapist"
// @Failure 404 {object} gin.H "Assignment not found"
// @Router /assignments/{assignmentId} [get]
func (h *ClientHandler) GetAssignment(c *gin.Context) {
	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	assignmentID, ok := objectIDParam(c, "assignmentId")
	if !ok {
		return
	}

	assignment, err := h.therapistService.GetAssignment(c.Request.Context(), therapistID, assignmentID)
	if err != nil {
		abortWithAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// UpdateAssignmentStatus godoc
// @Summary Move an assignment forward in its lifecycle
// @Description The lifecycle is monotonic; moving backward is rejected.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} domain.WorksheetAssignment "Updated assignment"
// @Failure 400 {object} gin.H "Unknown status"
// @Failure 409 {object} gin.H "Backward transition"
// @Router /assignments/{assignmentId}/status [patch]
func (h *ClientHandler) UpdateAssignmentStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	assignmentID, ok := objectIDParam(c, "assignmentId")
	if !ok {
		return
	}

	assignment, err := h.therapistService.UpdateAssignmentStatus(c.Request.Context(), therapistID, assignmentID, domain.AssignmentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAssignmentStatus), errors.Is(err, domain.ErrUnknownStatus):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrStatusRegression):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithAssignmentError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// RotateMagicLink godoc
// @Summary Issue a fresh portal link for a client
// @Description Deactivates any previous link; at most one stays active.
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 201 {object} MagicLinkResponse "The new link"
// @Failure 403 {object} gin.H "Client belongs to another therapist"
// @Failure 404 {object} gin.H "Client not found"
// @Router /clients/{clientId}/magic-link/rotate [post]
func (h *ClientHandler) RotateMagicLink(c *gin.Context) {
	therapistID, ok := therapistIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}

	link, err := h.therapistService.RotateMagicLink(c.Request.Context(), therapistID, clientID)
	if err != nil {
		abortWithClientError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MagicLinkResponse{
		Token:     link.Token,
		URL:       h.portalBaseURL + "/portal/" + link.Token,
		CreatedAt: link.CreatedAt,
	})
}

// --- Helpers ---

func therapistIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify therapist from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid therapist ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// abortWithClientError maps caseload ownership errors to HTTP statuses.
func abortWithClientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// abortWithAssignmentError maps assignment ownership errors to HTTP statuses.
func abortWithAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAssignmentAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
