// SPDX-License-Identifier: MIT

// Package admin holds the list/detail/form controller behind the admin
// screens: a cached collection per resource, local search, and mutations
// that only touch the cache after the server has accepted them.
package admin

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/steelhall/steelhall/internal/client"
	"github.com/steelhall/steelhall/internal/models"
	"github.com/steelhall/steelhall/internal/routes"
)

// Item is a server-owned record with a server-assigned id
type Item interface {
	ItemID() uint
}

// API is the server side of a resource
type API[T Item] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id uint, item T) (T, error)
	Delete(ctx context.Context, id uint) error
}

// Resource describes one admin resource
type Resource[T Item] struct {
	// Name is the route resource name, e.g. "warehouses"
	Name string
	// Singular is used in prompts and notices
	Singular string
	// SearchFields returns the values matched by Search
	SearchFields func(T) []string
	// Label identifies an item to a human, e.g. in the delete prompt
	Label func(T) string
	// Validate runs the client-side checks before anything is sent
	Validate func(T) models.FieldErrors
	// Less orders items the way the server lists them
	Less func(a, b T) bool
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// bindingRules validates against the same tags the server binds with
func bindingRules[T Item](item T) models.FieldErrors {
	validateOnce.Do(func() { validate = models.NewValidator() })
	return models.Validate(validate, item)
}

// Warehouses is the listing resource
func Warehouses() Resource[models.Warehouse] {
	return Resource[models.Warehouse]{
		Name:     routes.Warehouses,
		Singular: "warehouse",
		SearchFields: func(w models.Warehouse) []string {
			return []string{w.Name, w.Location}
		},
		Label:    func(w models.Warehouse) string { return w.Name },
		Validate: bindingRules[models.Warehouse],
		Less: func(a, b models.Warehouse) bool {
			return bySortOrder(a.SortOrder, a.ID, b.SortOrder, b.ID)
		},
	}
}

// Contacts is the lead/relation resource
func Contacts() Resource[models.Contact] {
	return Resource[models.Contact]{
		Name:     routes.Contacts,
		Singular: "contact",
		SearchFields: func(c models.Contact) []string {
			return []string{c.Name, c.Email, c.Company, c.Type}
		},
		Label:    func(c models.Contact) string { return c.Name + " <" + c.Email + ">" },
		Validate: bindingRules[models.Contact],
		// newest first
		Less: func(a, b models.Contact) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		},
	}
}

// Testimonials is the customer quote resource
func Testimonials() Resource[models.Testimonial] {
	return Resource[models.Testimonial]{
		Name:     routes.Testimonials,
		Singular: "testimonial",
		SearchFields: func(t models.Testimonial) []string {
			return []string{t.Author, t.Company, t.Quote}
		},
		Label:    func(t models.Testimonial) string { return t.Author },
		Validate: bindingRules[models.Testimonial],
		Less: func(a, b models.Testimonial) bool {
			return bySortOrder(a.SortOrder, a.ID, b.SortOrder, b.ID)
		},
	}
}

// Products is the webshop resource
func Products() Resource[models.Product] {
	return Resource[models.Product]{
		Name:     routes.Products,
		Singular: "product",
		SearchFields: func(p models.Product) []string {
			return []string{p.Name, p.SKU}
		},
		Label:    func(p models.Product) string { return p.Name },
		Validate: bindingRules[models.Product],
		Less: func(a, b models.Product) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		},
	}
}

func bySortOrder(aOrder int, aID uint, bOrder int, bID uint) bool {
	if aOrder != bOrder {
		return aOrder < bOrder
	}
	return aID < bID
}

// clientAPI adapts the HTTP client to API
type clientAPI[T Item] struct {
	c        *client.Client
	resource string
}

// NewClientAPI serves a resource through the admin HTTP API
func NewClientAPI[T Item](c *client.Client, resource string) API[T] {
	return &clientAPI[T]{c: c, resource: resource}
}

func (a *clientAPI[T]) List(ctx context.Context) ([]T, error) {
	return client.List[T](ctx, a.c, a.resource)
}

func (a *clientAPI[T]) Create(ctx context.Context, item T) (T, error) {
	return client.Create(ctx, a.c, a.resource, item)
}

func (a *clientAPI[T]) Update(ctx context.Context, id uint, item T) (T, error) {
	return client.Update(ctx, a.c, a.resource, id, item)
}

func (a *clientAPI[T]) Delete(ctx context.Context, id uint) error {
	return client.Delete(ctx, a.c, a.resource, id)
}
