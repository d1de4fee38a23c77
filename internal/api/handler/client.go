package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"rtigo/backend/internal/config"
	"rtigo/backend/internal/storage"
)

// readUpload pulls the uploaded document out of the multipart form.
func readUpload(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return nil, "", false
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return nil, "", false
	}
	defer file.Close()
	blob, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return nil, "", false
	}
	return blob, fileHeader.Filename, true
}

// gatewayContext bounds an external-gateway call with the configured timeout.
func gatewayContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), config.GatewayTimeout)
}

// SubmitRequest handles a client's new information request with its document.
func (h *Handler) SubmitRequest(c *gin.Context) {
	clientID := c.GetString("user_id")
	description := c.PostForm("description")
	blob, filename, ok := readUpload(c)
	if !ok {
		return
	}
	ctx, cancel := gatewayContext(c)
	defer cancel()
	req, err := h.Engine.SubmitRequest(ctx, clientID, blob, filename, description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// ClientRequests lists the calling client's requests.
func (h *Handler) ClientRequests(c *gin.Context) {
	clientID := c.GetString("user_id")
	requests, err := h.Engine.ListRequestsBy(storage.RequestsByClient(clientID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type fileComplaintForm struct {
	RequestID string `json:"requestId" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// FileComplaint opens a complaint against a responded request.
func (h *Handler) FileComplaint(c *gin.Context) {
	clientID := c.GetString("user_id")
	var form fileComplaintForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.Complaints.FileComplaint(clientID, form.RequestID, form.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"complaint": created})
}

// ClientComplaints lists the calling client's active complaints.
func (h *Handler) ClientComplaints(c *gin.Context) {
	clientID := c.GetString("user_id")
	complaints, err := h.Complaints.ListActiveBy(storage.ComplaintsByClient(clientID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// ResolveByClient is the client's resolution acknowledgement.
func (h *Handler) ResolveByClient(c *gin.Context) {
	clientID := c.GetString("user_id")
	archived, err := h.Complaints.MarkResolvedByClient(clientID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": archived != nil})
}
