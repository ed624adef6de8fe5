// SPDX-License-Identifier: MIT

// Package routes maps logical route names to HTTP methods and path templates.
// The server registers its handlers from a Table and clients resolve URLs from
// the same Table, so the two sides cannot drift apart.
package routes

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrUnknownRoute is returned when a route name is not registered
var ErrUnknownRoute = errors.New("unknown route")

// Route is a named method + path template. Path segments starting with ':'
// are parameters, matching gin's syntax.
type Route struct {
	Name   string
	Method string
	Path   string
}

// Table holds named routes
type Table struct {
	routes map[string]Route
}

// NewTable creates an empty routing table
func NewTable() *Table {
	return &Table{routes: make(map[string]Route)}
}

// Add registers a route. Registering the same name twice is a programming
// error and returns an error instead of silently overwriting.
func (t *Table) Add(name, method, path string) error {
	if _, exists := t.routes[name]; exists {
		return fmt.Errorf("route %q already registered", name)
	}
	t.routes[name] = Route{Name: name, Method: method, Path: path}
	return nil
}

// MustAdd is Add for static tables built at startup
func (t *Table) MustAdd(name, method, path string) {
	if err := t.Add(name, method, path); err != nil {
		panic(err)
	}
}

// Get returns the named route
func (t *Table) Get(name string) (Route, error) {
	r, ok := t.routes[name]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	return r, nil
}

// Path resolves a route name to a concrete path. params supplies a value for
// every ':param' segment; extra params are an error.
func (t *Table) Path(name string, params map[string]string) (string, error) {
	r, err := t.Get(name)
	if err != nil {
		return "", err
	}

	used := 0
	segments := strings.Split(r.Path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		key := seg[1:]
		val, ok := params[key]
		if !ok || val == "" {
			return "", fmt.Errorf("route %s: missing parameter %q", name, key)
		}
		segments[i] = url.PathEscape(val)
		used++
	}
	if used != len(params) {
		return "", fmt.Errorf("route %s: unexpected parameters", name)
	}

	return strings.Join(segments, "/"), nil
}

// All returns every route sorted by name
func (t *Table) All() []Route {
	all := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// AddResource registers the five CRUD routes for a resource under prefix:
// <resource>.index, .store, .show, .update and .destroy.
func (t *Table) AddResource(prefix, resource string) {
	base := strings.TrimSuffix(prefix, "/") + "/" + resource
	t.MustAdd(resource+".index", "GET", base)
	t.MustAdd(resource+".store", "POST", base)
	t.MustAdd(resource+".show", "GET", base+"/:id")
	t.MustAdd(resource+".update", "PUT", base+"/:id")
	t.MustAdd(resource+".destroy", "DELETE", base+"/:id")
}

// Resource names managed through the admin API
const (
	Warehouses   = "warehouses"
	Contacts     = "contacts"
	Testimonials = "testimonials"
	Products     = "products"
)

// AdminAPIPrefix is the mount point of the admin JSON API
const AdminAPIPrefix = "/admin/api"

// Default returns the application's routing table
func Default() *Table {
	t := NewTable()

	t.MustAdd("health", "GET", "/health")
	t.MustAdd("home", "GET", "/")
	t.MustAdd("listings.index", "GET", "/listings")
	t.MustAdd("listings.search", "GET", "/listings/search")
	t.MustAdd("contact.store", "POST", "/contact")
	t.MustAdd("assets.show", "GET", "/assets/*filepath")

	t.MustAdd("auth.form", "GET", "/admin/login")
	t.MustAdd("auth.login", "POST", "/admin/login")
	t.MustAdd("auth.logout", "POST", "/admin/logout")

	for _, resource := range []string{Warehouses, Contacts, Testimonials, Products} {
		t.AddResource(AdminAPIPrefix, resource)
	}
	t.MustAdd("settings.show", "GET", AdminAPIPrefix+"/settings")
	t.MustAdd("settings.update", "PUT", AdminAPIPrefix+"/settings")
	t.MustAdd("uploads.store", "POST", AdminAPIPrefix+"/uploads")

	return t
}
