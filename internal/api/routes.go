package api

import (
	"net/http"

	"stepladder/practice-app/internal/catalog"
	"stepladder/practice-app/internal/config"
	"stepladder/practice-app/internal/logger"
	"stepladder/practice-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler into the router. Therapist routes require
// a JWT; portal routes authenticate via the magic link token in the path.
func SetupRoutes(
	router *gin.Engine,
	cfg config.Config,
	log *logger.Logger,
	authService service.AuthService,
	therapistService service.TherapistService,
	portalService service.PortalService,
	erpService service.ERPService,
	registry *catalog.Registry,
) {
	authHandler := NewAuthHandler(authService)
	worksheetHandler := NewWorksheetHandler(registry)
	clientHandler := NewClientHandler(therapistService, cfg.Portal.BaseURL)
	portalHandler := NewPortalHandler(portalService)
	erpHandler := NewERPHandler(erpService, portalService)

	authMiddleware := AuthMiddleware(cfg.JWT.Secret)
	router.Use(RequestLogMiddleware(log))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// --- Client Portal (magic link in path, no JWT) ---
		portalGroup := apiV1.Group("/public/client/:token")
		{
			portalGroup.GET("/home", portalHandler.GetHome)
			portalGroup.GET("/assignments/:assignmentId", portalHandler.GetAssignment)
			portalGroup.PUT("/assignments/:assignmentId/response", portalHandler.SaveDraft)
			portalGroup.POST("/assignments/:assignmentId/submit", portalHandler.Submit)
			portalGroup.POST("/erp/exposure-runs", erpHandler.LogExposure)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Worksheet Catalog ---
		worksheetGroup := protected.Group("/worksheets")
		{
			// GET /api/v1/worksheets?modality=&domains=&search=
			worksheetGroup.GET("", worksheetHandler.ListWorksheets)
			worksheetGroup.GET("/domains", worksheetHandler.GetDomains)
			worksheetGroup.GET("/:worksheetId", worksheetHandler.GetWorksheet)
		}

		// --- Caseload Management ---
		clientGroup := protected.Group("/clients")
		{
			clientGroup.POST("", clientHandler.CreateClient)
			clientGroup.GET("", clientHandler.GetClients)
			clientGroup.GET("/:clientId", clientHandler.GetClient)
			clientGroup.POST("/:clientId/magic-link/rotate", clientHandler.RotateMagicLink)

			// --- Assignment Management ---
			clientGroup.POST("/:clientId/assignments", clientHandler.AssignWorksheet)
			clientGroup.GET("/:clientId/assignments", clientHandler.GetClientAssignments)

			// --- Exposure Ladder ---
			erpGroup := clientGroup.Group("/:clientId/erp")
			{
				erpGroup.POST("/hierarchy-items", erpHandler.CreateHierarchyItems)
				erpGroup.GET("/hierarchy-items", erpHandler.GetHierarchy)
				erpGroup.PATCH("/hierarchy-items/:itemId", erpHandler.UpdateHierarchyItem)
				// GET /api/v1/clients/:clientId/erp/exposure-runs?range=
				erpGroup.GET("/exposure-runs", erpHandler.GetExposureRuns)
			}
		}

		assignmentGroup := protected.Group("/assignments")
		{
			assignmentGroup.GET("/:assignmentId", clientHandler.GetAssignment)
			assignmentGroup.PATCH("/:assignmentId/status", clientHandler.UpdateAssignmentStatus)
		}
	}
}
