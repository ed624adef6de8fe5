// SPDX-License-Identifier: MIT
package search

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/steelhall/steelhall/internal/models"
	"gorm.io/gorm"
)

// MaxResults caps a single search
const MaxResults = 50

const snippetRadius = 60

var textOnly = bluemonday.StrictPolicy()

// Result is one matching listing
type Result struct {
	ID       uint    `json:"id"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Snippet  string  `json:"snippet"`
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}

// Listings searches active warehouses by name, location and description.
// Featured listings rank first, then sort order.
func Listings(db *gorm.DB, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var warehouses []models.Warehouse
	err := db.
		Where("status = ?", models.StatusActive).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(location) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern).
		Order("featured DESC").Order("sort_order ASC").Order("id ASC").
		Limit(limit).
		Find(&warehouses).Error
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	results := make([]Result, 0, len(warehouses))
	for _, w := range warehouses {
		results = append(results, Result{
			ID:       w.ID,
			Title:    w.Name,
			Location: w.Location,
			Image:    w.Image,
			Price:    w.Price,
			Snippet:  Snippet(w.Description, query),
		})
	}
	return results, nil
}

// Snippet returns an HTML-escaped excerpt of text around the first match of
// query, with the match wrapped in <mark>. Markup in text is stripped first.
func Snippet(text, query string) string {
	plain := strings.Join(strings.Fields(html.UnescapeString(textOnly.Sanitize(text))), " ")
	if plain == "" {
		return ""
	}

	idx := strings.Index(strings.ToLower(plain), strings.ToLower(query))
	if idx < 0 || query == "" || idx+len(query) > len(plain) {
		return html.EscapeString(truncate(plain, 2*snippetRadius))
	}

	start := idx - snippetRadius
	prefix := "..."
	if start <= 0 {
		start = 0
		prefix = ""
	}
	for start > 0 && !utf8.RuneStart(plain[start]) {
		start--
	}

	end := idx + len(query) + snippetRadius
	suffix := "..."
	if end >= len(plain) {
		end = len(plain)
		suffix = ""
	}
	for end < len(plain) && !utf8.RuneStart(plain[end]) {
		end++
	}

	return prefix +
		html.EscapeString(plain[start:idx]) +
		"<mark>" + html.EscapeString(plain[idx:idx+len(query)]) + "</mark>" +
		html.EscapeString(plain[idx+len(query):end]) +
		suffix
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
