// SPDX-License-Identifier: MIT
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/steelhall/steelhall/internal/events"
	"gorm.io/gorm"
)

// model is satisfied by pointers to the admin-managed models
type model[T any] interface {
	*T
	SetItemID(uint)
}

// Resource serves the admin JSON CRUD endpoints for one model
type Resource[T any, PT model[T]] struct {
	h     *Handlers
	name  string
	order string

	// Prepare normalizes a bound item before it is written
	Prepare func(h *Handlers, item PT)
}

// NewResource creates CRUD handlers for the named resource, listing rows in
// the given SQL order.
func NewResource[T any, PT model[T]](h *Handlers, name, order string) *Resource[T, PT] {
	return &Resource[T, PT]{h: h, name: name, order: order}
}

func (r *Resource[T, PT]) prepare(item PT) {
	if r.Prepare != nil {
		r.Prepare(r.h, item)
	}
}

// Index handles GET /admin/api/<resource>
func (r *Resource[T, PT]) Index(c *gin.Context) {
	items := make([]T, 0)
	if err := r.h.DB.WithContext(c.Request.Context()).Order(r.order).Find(&items).Error; err != nil {
		serverError(c, r.h.Logger, "failed to list "+r.name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// Show handles GET /admin/api/<resource>/:id
func (r *Resource[T, PT]) Show(c *gin.Context) {
	item, ok := r.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

// Store handles POST /admin/api/<resource>
func (r *Resource[T, PT]) Store(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		bindError(c, err)
		return
	}
	PT(&item).SetItemID(0)
	r.prepare(&item)
	if err := binding.Validator.ValidateStruct(&item); err != nil {
		bindError(c, err)
		return
	}

	if err := r.h.DB.WithContext(c.Request.Context()).Create(&item).Error; err != nil {
		serverError(c, r.h.Logger, "failed to create "+r.name, err)
		return
	}

	r.h.invalidate(c.Request.Context())
	r.h.publish(events.ResourceCreated, events.ResourceChange{Resource: r.name, Item: item})
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

// Update handles PUT/PATCH /admin/api/<resource>/:id. Fields absent from the
// body keep their stored values.
func (r *Resource[T, PT]) Update(c *gin.Context) {
	item, ok := r.find(c)
	if !ok {
		return
	}
	id, _ := parseID(c)

	if err := c.ShouldBindJSON(item); err != nil {
		bindError(c, err)
		return
	}
	PT(item).SetItemID(id)
	r.prepare(item)
	if err := binding.Validator.ValidateStruct(item); err != nil {
		bindError(c, err)
		return
	}

	if err := r.h.DB.WithContext(c.Request.Context()).Save(item).Error; err != nil {
		serverError(c, r.h.Logger, "failed to update "+r.name, err)
		return
	}

	r.h.invalidate(c.Request.Context())
	r.h.publish(events.ResourceUpdated, events.ResourceChange{Resource: r.name, Item: item})
	c.JSON(http.StatusOK, gin.H{"data": item})
}

// Destroy handles DELETE /admin/api/<resource>/:id
func (r *Resource[T, PT]) Destroy(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, r.name)
		return
	}

	res := r.h.DB.WithContext(c.Request.Context()).Delete(PT(new(T)), id)
	if res.Error != nil {
		serverError(c, r.h.Logger, "failed to delete "+r.name, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		notFound(c, r.name)
		return
	}

	r.h.invalidate(c.Request.Context())
	r.h.publish(events.ResourceDeleted, events.ResourceChange{Resource: r.name, Item: gin.H{"id": id}})
	c.Status(http.StatusNoContent)
}

func (r *Resource[T, PT]) find(c *gin.Context) (*T, bool) {
	id, ok := parseID(c)
	if !ok {
		notFound(c, r.name)
		return nil, false
	}

	item := new(T)
	err := r.h.DB.WithContext(c.Request.Context()).First(item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, r.name)
		return nil, false
	}
	if err != nil {
		serverError(c, r.h.Logger, "failed to load "+r.name, err)
		return nil, false
	}
	return item, true
}
