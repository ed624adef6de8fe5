package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/steelhall/steelhall/internal/db"
	"github.com/steelhall/steelhall/internal/events"
	"github.com/steelhall/steelhall/internal/models"
)

// ShowSettings handles GET /admin/api/settings
func (h *Handlers) ShowSettings(c *gin.Context) {
	settings, err := db.LoadSettings(h.DB.WithContext(c.Request.Context()))
	if err != nil {
		serverError(c, h.Logger, "failed to load settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateSettings handles PUT /admin/api/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	settings, err := db.LoadSettings(h.DB.WithContext(c.Request.Context()))
	if err != nil {
		serverError(c, h.Logger, "failed to load settings", err)
		return
	}

	if err := c.ShouldBindJSON(&settings); err != nil {
		bindError(c, err)
		return
	}

	settings.CompanyName = h.plainText(settings.CompanyName)
	settings.Tagline = h.plainText(settings.Tagline)
	settings.HeroTitle = h.plainText(settings.HeroTitle)
	settings.HeroSubtitle = h.plainText(settings.HeroSubtitle)
	settings.Address = h.plainText(settings.Address)
	if err := binding.Validator.ValidateStruct(&settings); err != nil {
		bindError(c, err)
		return
	}

	if err := db.SaveSettings(h.DB.WithContext(c.Request.Context()), &settings); err != nil {
		serverError(c, h.Logger, "failed to save settings", err)
		return
	}

	h.invalidate(c.Request.Context())
	h.publish(events.ResourceUpdated, events.ResourceChange{Resource: "settings", Item: settings})
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// currentSettings is used by public pages; errors fall back to defaults
func (h *Handlers) currentSettings(c *gin.Context) models.SiteSettings {
	settings, err := db.LoadSettings(h.DB.WithContext(c.Request.Context()))
	if err != nil {
		h.Logger.Warn("using default settings", "error", err)
		return models.DefaultSettings()
	}
	return settings
}
