// SPDX-License-Identifier: MIT
package handlers

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/steelhall/steelhall/internal/cache"
	"github.com/steelhall/steelhall/internal/email"
	"github.com/steelhall/steelhall/internal/events"
	"github.com/steelhall/steelhall/internal/icons"
	"github.com/steelhall/steelhall/internal/media"
	"github.com/steelhall/steelhall/internal/models"
	"gorm.io/gorm"
)

// Handlers carries the collaborators shared by every HTTP handler
type Handlers struct {
	DB             *gorm.DB
	Cache          cache.Cache
	CacheTTL       time.Duration
	Events         events.Publisher
	Mailer         email.Sender // nil disables lead notification mail
	Storage        media.Storage
	MaxUploadBytes int64
	Logger         *slog.Logger

	policy *bluemonday.Policy
}

// New fills unset optional collaborators with no-op implementations
func New(h Handlers) *Handlers {
	if h.Cache == nil {
		h.Cache = cache.Noop{}
	}
	if h.CacheTTL <= 0 {
		h.CacheTTL = time.Minute
	}
	if h.Events == nil {
		h.Events = events.Noop{}
	}
	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = 10 << 20
	}
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
	h.policy = bluemonday.StrictPolicy()
	configureBinding()
	return &h
}

var bindingOnce sync.Once

// configureBinding makes gin's validator report JSON field names
func configureBinding() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			models.ConfigureValidator(v)
		}
	})
}

// plainText strips markup from user input, keeping the text readable
func (h *Handlers) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(h.policy.Sanitize(s)))
}

// invalidate drops cached public payloads after a mutation
func (h *Handlers) invalidate(ctx context.Context) {
	if err := h.Cache.Invalidate(ctx, cache.ListingsKey, cache.SettingsKey); err != nil {
		h.Logger.Warn("cache invalidation failed", "error", err)
	}
}

func (h *Handlers) publish(name string, payload any) {
	if err := h.Events.Publish(name, payload); err != nil {
		h.Logger.Warn("event publish failed", "event", name, "error", err)
	}
}

// validationFailed writes the 422 body clients turn into per-field errors
func validationFailed(c *gin.Context, errs models.FieldErrors) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"message": "The given data was invalid.",
		"errors":  errs,
	})
}

func notFound(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": what + " not found"})
}

func serverError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err, "path", c.Request.URL.Path)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// bindError maps a binding failure to a response. Validation failures and
// unknown feature icons are 422; anything else is a malformed body.
func bindError(c *gin.Context, err error) {
	if errs := models.TranslateValidation(err); errs != nil {
		validationFailed(c, errs)
		return
	}
	if errors.Is(err, icons.ErrUnknown) {
		errs := models.FieldErrors{}
		errs.Add("features", err.Error())
		validationFailed(c, errs)
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Malformed request body"})
}

// parseID reads the :id path parameter
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
