package rest

import (
	"fmt"
	"net/http"

	"inkwell/internal/service"

	"github.com/gin-gonic/gin"
)

// upload accepts a multipart file under the "image" field and stores it,
// answering with the public URL the stored file is served at.
func (h *Handler) upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		writeError(c, fmt.Errorf("%w: missing image file", service.ErrInvalidRequest))
		return
	}

	src, err := file.Open()
	if err != nil {
		writeError(c, fmt.Errorf("opening uploaded file: %w", err))
		return
	}
	defer src.Close()

	name, err := h.uploads.Save(file.Filename, src)
	if err != nil {
		writeError(c, fmt.Errorf("storing uploaded file: %w", err))
		return
	}

	c.JSON(http.StatusCreated, uploadResponse{URL: "/uploads/" + name})
}
