// SPDX-License-Identifier: MIT
package admin

import "github.com/steelhall/steelhall/internal/models"

// Draft is the working copy behind one create or edit form. A draft belongs
// to a single form; switching targets means starting a new draft.
type Draft[T Item] struct {
	Item   T
	Errors models.FieldErrors
	// Saved is only set after the server accepted the draft
	Saved bool
}

// NewDraft starts a create form
func NewDraft[T Item]() *Draft[T] {
	return &Draft[T]{Errors: models.FieldErrors{}}
}

// EditDraft starts an edit form from a stored item
func EditDraft[T Item](item T) *Draft[T] {
	return &Draft[T]{Item: item, Errors: models.FieldErrors{}}
}

// FieldError returns the first message for field, or ""
func (d *Draft[T]) FieldError(field string) string {
	if msgs := d.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
