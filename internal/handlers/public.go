// SPDX-License-Identifier: MIT
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/steelhall/steelhall/internal/cache"
	"github.com/steelhall/steelhall/internal/email"
	"github.com/steelhall/steelhall/internal/events"
	"github.com/steelhall/steelhall/internal/middleware"
	"github.com/steelhall/steelhall/internal/models"
	"github.com/steelhall/steelhall/internal/search"
)

// listingsPayload is the body of GET /listings
type listingsPayload struct {
	Data       []models.CarouselItem `json:"data"`
	IntervalMS int                   `json:"interval_ms"`
}

// featured loads the active listings shown in the carousel
func (h *Handlers) featured(c *gin.Context, limit int) ([]models.CarouselItem, error) {
	var warehouses []models.Warehouse
	q := h.DB.WithContext(c.Request.Context()).
		Where("status = ? AND featured = ?", models.StatusActive, true).
		Order("sort_order ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&warehouses).Error; err != nil {
		return nil, err
	}

	items := make([]models.CarouselItem, 0, len(warehouses))
	for _, w := range warehouses {
		items = append(items, w.CarouselItem())
	}
	return items, nil
}

// Home renders the public homepage
func (h *Handlers) Home(c *gin.Context) {
	settings := h.currentSettings(c)

	listings, err := h.featured(c, settings.FeaturedLimit)
	if err != nil {
		h.Logger.Error("failed to load featured listings", "error", err)
		listings = []models.CarouselItem{}
	}

	var testimonials []models.Testimonial
	if err := h.DB.WithContext(c.Request.Context()).
		Where("published = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&testimonials).Error; err != nil {
		h.Logger.Error("failed to load testimonials", "error", err)
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"Settings":     settings,
		"Listings":     listings,
		"Testimonials": testimonials,
		"CSRF":         middleware.GetCSRFToken(c),
		"ContactSent":  c.Query("contact") == "sent",
	})
}

// Listings serves the carousel items as JSON, through the cache
func (h *Handlers) Listings(c *gin.Context) {
	ctx := c.Request.Context()

	if data, err := h.Cache.Get(ctx, cache.ListingsKey); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		h.Logger.Warn("listing cache unavailable", "error", err)
	}

	settings := h.currentSettings(c)
	items, err := h.featured(c, settings.FeaturedLimit)
	if err != nil {
		serverError(c, h.Logger, "failed to load listings", err)
		return
	}

	data, err := json.Marshal(listingsPayload{Data: items, IntervalMS: settings.CarouselIntervalMS})
	if err != nil {
		serverError(c, h.Logger, "failed to encode listings", err)
		return
	}
	if err := h.Cache.Set(ctx, cache.ListingsKey, data, h.CacheTTL); err != nil {
		h.Logger.Warn("failed to cache listings", "error", err)
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// SearchListings handles GET /listings/search?q=
func (h *Handlers) SearchListings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	results, err := search.Listings(h.DB.WithContext(c.Request.Context()), c.Query("q"), limit)
	if err != nil {
		serverError(c, h.Logger, "search failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

type contactRequest struct {
	Name    string `json:"name" form:"name" binding:"required,max=200"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Phone   string `json:"phone" form:"phone" binding:"max=50"`
	Company string `json:"company" form:"company" binding:"max=200"`
	Message string `json:"message" form:"message" binding:"required,max=5000"`
}

// Contact stores a lead from the public contact form, notifies sales and
// publishes a lead event.
func (h *Handlers) Contact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBind(&req); err != nil {
		if wantsJSON(c) {
			bindError(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/?contact=invalid#contact")
		return
	}

	contact := models.Contact{
		Name:    h.plainText(req.Name),
		Email:   req.Email,
		Phone:   h.plainText(req.Phone),
		Company: h.plainText(req.Company),
		Message: h.plainText(req.Message),
		Type:    models.ContactLead,
		Source:  "website",
	}
	if contact.Name == "" || contact.Message == "" {
		errs := models.FieldErrors{}
		if contact.Name == "" {
			errs.Add("name", "is required")
		}
		if contact.Message == "" {
			errs.Add("message", "is required")
		}
		validationFailed(c, errs)
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&contact).Error; err != nil {
		serverError(c, h.Logger, "failed to store lead", err)
		return
	}
	h.Logger.Info("lead received", "contact_id", contact.ID, "request_id", middleware.RequestID(c))

	h.notifySales(c, contact)
	h.publish(events.LeadCreated, contact)

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"data": contact})
		return
	}
	c.Redirect(http.StatusFound, "/?contact=sent#contact")
}

// notifySales mails the lead in the background so a slow SMTP server does
// not hold up the visitor.
func (h *Handlers) notifySales(c *gin.Context, contact models.Contact) {
	if h.Mailer == nil {
		return
	}
	settings := h.currentSettings(c)
	to := settings.SalesEmail
	if to == "" {
		to = settings.Email
	}
	if to == "" {
		return
	}

	go func() {
		if err := email.SendLeadNotification(h.Mailer, to, settings.CompanyName, contact); err != nil {
			h.Logger.Error("lead notification failed", "contact_id", contact.ID, "error", err)
		}
	}()
}

// Health reports database connectivity
func (h *Handlers) Health(c *gin.Context) {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
