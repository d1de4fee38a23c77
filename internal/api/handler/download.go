package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"rtigo/backend/internal/models"
)

// Download streams a stored document by its content id. The filename comes
// from the query string or, failing that, from whichever mirrored request
// references the hash.
func (h *Handler) Download(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := gatewayContext(c)
	defer cancel()
	blob, err := h.Content.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	filename := c.Query("filename")
	if filename == "" {
		filename = h.lookupFilename(id)
	}
	if filename == "" {
		filename = "document"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/octet-stream", blob)
}

func (h *Handler) lookupFilename(contentID string) string {
	matches, err := h.Storage.ListRequestsBy(func(r models.Request) bool {
		return r.RequestHash == contentID || r.ResponseHash == contentID
	})
	if err != nil || len(matches) == 0 {
		return ""
	}
	r := matches[0]
	if r.RequestHash == contentID && r.RequestFilename != "" {
		return r.RequestFilename
	}
	if r.ResponseHash == contentID && r.ResponseFilename != "" {
		return r.ResponseFilename
	}
	return ""
}
