package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/steelhall/steelhall/internal/media"
	"github.com/steelhall/steelhall/internal/models"
)

// Upload handles POST /admin/api/uploads (multipart field "file")
func (h *Handlers) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		errs := models.FieldErrors{}
		errs.Add("file", "is required")
		validationFailed(c, errs)
		return
	}

	up, err := media.SaveUpload(c.Request.Context(), h.Storage, file, h.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, media.ErrInvalidType) || errors.Is(err, media.ErrTooLarge) {
			errs := models.FieldErrors{}
			errs.Add("file", err.Error())
			validationFailed(c, errs)
			return
		}
		serverError(c, h.Logger, "upload failed", err)
		return
	}

	h.Logger.Info("media uploaded", "key", up.Key, "size", up.Size)
	c.JSON(http.StatusCreated, gin.H{"data": up})
}

// Asset serves stored media under /assets/*filepath
func (h *Handlers) Asset(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filepath"), "/")

	rc, err := h.Storage.Get(c.Request.Context(), key)
	if errors.Is(err, media.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("failed to read asset", "key", key, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
