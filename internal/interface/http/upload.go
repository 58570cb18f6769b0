package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-community-leaderboard/pkg/response"
)

const maxUploadBytes = 5 << 20

// openImage reads the multipart "file" field. It writes the error response
// itself and reports false when the upload is unusable.
func openImage(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payload", map[string]string{"file": "is required"})
		return nil, nil, false
	}
	if fh.Size > maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "File too large", map[string]string{"file": "must be at most 5MB"})
		return nil, nil, false
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		response.Error(c, http.StatusBadRequest, "Invalid payload", map[string]string{"file": "must be an image"})
		return nil, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payload", map[string]string{"file": "could not be read"})
		return nil, nil, false
	}
	return f, fh, true
}
