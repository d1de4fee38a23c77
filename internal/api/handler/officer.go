package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
)

// OfficerRequests lists the requests assigned to the calling officer that
// still await a response.
func (h *Handler) OfficerRequests(c *gin.Context) {
	officerID := c.GetString("user_id")
	requests, err := h.Engine.ListRequestsBy(
		storage.RequestsByOfficerAndStatus(officerID, models.StatusAssigned))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// SubmitResponse handles the officer's response document for a request.
func (h *Handler) SubmitResponse(c *gin.Context) {
	officerID := c.GetString("user_id")
	blob, filename, ok := readUpload(c)
	if !ok {
		return
	}
	ctx, cancel := gatewayContext(c)
	defer cancel()
	req, err := h.Engine.SubmitResponse(ctx, officerID, c.Param("id"), blob, filename)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// OfficerComplaints lists active complaints against the calling officer.
func (h *Handler) OfficerComplaints(c *gin.Context) {
	officerID := c.GetString("user_id")
	complaints, err := h.Complaints.ListActiveBy(storage.ComplaintsByOfficer(officerID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// AttachEvidence uploads the officer's resolution evidence for a complaint.
func (h *Handler) AttachEvidence(c *gin.Context) {
	officerID := c.GetString("user_id")
	blob, filename, ok := readUpload(c)
	if !ok {
		return
	}
	ctx, cancel := gatewayContext(c)
	defer cancel()
	updated, err := h.Complaints.AttachResolutionEvidence(ctx, officerID, c.Param("id"), blob, filename)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint": updated})
}
