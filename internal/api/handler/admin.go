package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rtigo/backend/internal/config"
	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
)

// AdminRequests lists requests, optionally filtered by ?status=.
func (h *Handler) AdminRequests(c *gin.Context) {
	pred := storage.AllRequests()
	if name := c.Query("status"); name != "" {
		status, ok := models.ParseRequestStatus(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		pred = storage.RequestsByStatus(status)
	}
	requests, err := h.Engine.ListRequestsBy(pred)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// OverdueRequests lists assigned requests older than the threshold
// (?threshold= accepts a Go duration, default 5m).
func (h *Handler) OverdueRequests(c *gin.Context) {
	threshold := config.OverdueThreshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad threshold"})
			return
		}
		threshold = parsed
	}
	requests, err := h.Engine.OverdueAssigned(threshold)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type assignForm struct {
	RequestID     string `json:"requestId" binding:"required"`
	OfficerUserID string `json:"officerUserId" binding:"required"`
}

// AssignRequest assigns a pending request to an officer.
func (h *Handler) AssignRequest(c *gin.Context) {
	adminID := c.GetString("user_id")
	var form assignForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := gatewayContext(c)
	defer cancel()
	req, err := h.Engine.AssignRequest(ctx, adminID, form.RequestID, form.OfficerUserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// Officers lists registered officers for the assignment form.
func (h *Handler) Officers(c *gin.Context) {
	officers, err := h.Storage.ListUsersByRole(models.RoleOfficer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"officers": officers})
}

// AdminComplaints lists all active complaints.
func (h *Handler) AdminComplaints(c *gin.Context) {
	complaints, err := h.Complaints.ListActiveBy(storage.AllComplaints())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// ArchivedComplaints lists the permanent records of resolved complaints.
func (h *Handler) ArchivedComplaints(c *gin.Context) {
	archived, err := h.Complaints.ListArchived()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": archived})
}

// NotifyAdmin flips a complaint's notified flag. Idempotent.
func (h *Handler) NotifyAdmin(c *gin.Context) {
	updated, err := h.Complaints.NotifyAdmin(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint": updated})
}

// ResolveByAdmin is the admin's resolution acknowledgement.
func (h *Handler) ResolveByAdmin(c *gin.Context) {
	archived, err := h.Complaints.MarkResolvedByAdmin(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": archived != nil})
}
