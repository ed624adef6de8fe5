package handlers

import (
	"strings"

	"github.com/steelhall/steelhall/internal/models"
	"github.com/steelhall/steelhall/internal/routes"
)

// Warehouses serves the listing CRUD endpoints
func (h *Handlers) Warehouses() *Resource[models.Warehouse, *models.Warehouse] {
	r := NewResource[models.Warehouse](h, routes.Warehouses, "sort_order ASC, id ASC")
	r.Prepare = func(h *Handlers, w *models.Warehouse) {
		w.Name = h.plainText(w.Name)
		w.Location = h.plainText(w.Location)
		w.Description = h.plainText(w.Description)
		for i := range w.Features {
			w.Features[i].Label = h.plainText(w.Features[i].Label)
		}
		if w.Features == nil {
			w.Features = []models.Feature{}
		}
	}
	return r
}

// Contacts serves the lead/relation CRUD endpoints
func (h *Handlers) Contacts() *Resource[models.Contact, *models.Contact] {
	r := NewResource[models.Contact](h, routes.Contacts, "created_at DESC, id DESC")
	r.Prepare = func(h *Handlers, c *models.Contact) {
		c.Name = h.plainText(c.Name)
		c.Email = strings.ToLower(strings.TrimSpace(c.Email))
		c.Company = h.plainText(c.Company)
		c.Message = h.plainText(c.Message)
		if c.Source == "" {
			c.Source = "admin"
		}
	}
	return r
}

// Testimonials serves the testimonial CRUD endpoints
func (h *Handlers) Testimonials() *Resource[models.Testimonial, *models.Testimonial] {
	r := NewResource[models.Testimonial](h, routes.Testimonials, "sort_order ASC, id ASC")
	r.Prepare = func(h *Handlers, t *models.Testimonial) {
		t.Author = h.plainText(t.Author)
		t.Company = h.plainText(t.Company)
		t.Quote = h.plainText(t.Quote)
	}
	return r
}

// Products serves the webshop product CRUD endpoints
func (h *Handlers) Products() *Resource[models.Product, *models.Product] {
	r := NewResource[models.Product](h, routes.Products, "name ASC, id ASC")
	r.Prepare = func(h *Handlers, p *models.Product) {
		p.Name = h.plainText(p.Name)
		p.SKU = strings.TrimSpace(p.SKU)
		p.Description = h.plainText(p.Description)
	}
	return r
}
