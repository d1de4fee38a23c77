package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rtigo/backend/internal/complaint"
	"rtigo/backend/internal/content"
	"rtigo/backend/internal/lifecycle"
	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
)

// Handler містить залежності HTTP-шару.
type Handler struct {
	Storage    storage.Storage
	Engine     *lifecycle.Engine
	Complaints *complaint.Service
	Content    content.Store
	JWTSecret  []byte
}

func NewHandler(s storage.Storage, e *lifecycle.Engine, c *complaint.Service, cs content.Store, jwtSecret []byte) *Handler {
	return &Handler{Storage: s, Engine: e, Complaints: c, Content: cs, JWTSecret: jwtSecret}
}

// RegisterRoutes wires every endpoint onto the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/download/:id", h.Download)

	client := r.Group("/client", h.RequireRole(models.RoleClient))
	{
		client.GET("/requests", h.ClientRequests)
		client.POST("/requests", h.SubmitRequest)
		client.GET("/complaints", h.ClientComplaints)
		client.POST("/complaints", h.FileComplaint)
		client.POST("/complaints/:id/resolve", h.ResolveByClient)
	}

	officer := r.Group("/officer", h.RequireRole(models.RoleOfficer))
	{
		officer.GET("/requests", h.OfficerRequests)
		officer.POST("/requests/:id/response", h.SubmitResponse)
		officer.GET("/complaints", h.OfficerComplaints)
		officer.POST("/complaints/:id/evidence", h.AttachEvidence)
	}

	admin := r.Group("/admin", h.RequireRole(models.RoleAdmin))
	{
		admin.GET("/requests", h.AdminRequests)
		admin.GET("/requests/overdue", h.OverdueRequests)
		admin.POST("/assign", h.AssignRequest)
		admin.GET("/officers", h.Officers)
		admin.GET("/complaints", h.AdminComplaints)
		admin.GET("/complaints/archived", h.ArchivedComplaints)
		admin.POST("/complaints/:id/notify", h.NotifyAdmin)
		admin.POST("/complaints/:id/resolve", h.ResolveByAdmin)
	}
}

// fail maps domain errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrComplaintNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidAssignee),
		errors.Is(err, models.ErrDuplicateComplaint),
		errors.Is(err, models.ErrNotYetResponded),
		errors.Is(err, models.ErrIdentityRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
