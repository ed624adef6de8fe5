// SPDX-License-Identifier: MIT

// Package server assembles the gin engine from the routing table and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/steelhall/steelhall/internal/auth"
	"github.com/steelhall/steelhall/internal/handlers"
	"github.com/steelhall/steelhall/internal/middleware"
	"github.com/steelhall/steelhall/internal/routes"
)

// Options tunes the middleware stack
type Options struct {
	BlockedIPs       []string
	AdminAllowedIPs  []string
	LoginPerMinute   int
	ContactPerMinute int
	HSTS             bool
	Logger           *slog.Logger
}

// Router is the configured engine plus the limiters it owns
type Router struct {
	*gin.Engine
	limiters []*middleware.RateLimiter
}

// Close stops background work owned by the router
func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Stop()
	}
}

// NewRouter registers a handler for every route in table. A route without a
// handler is an error so the table and the server cannot drift apart.
func NewRouter(h *handlers.Handlers, table *routes.Table, opts Options) (*Router, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LoginPerMinute <= 0 {
		opts.LoginPerMinute = 5
	}
	if opts.ContactPerMinute <= 0 {
		opts.ContactPerMinute = 3
	}

	engine := gin.New()
	engine.SetHTMLTemplate(handlers.Templates())
	engine.Use(
		gin.Recovery(),
		middleware.RequestLogger(opts.Logger),
		middleware.SecurityHeadersMiddleware(opts.HSTS),
		middleware.IPFilterMiddleware(opts.BlockedIPs, opts.AdminAllowedIPs, "/admin"),
		middleware.CSRFMiddleware(),
	)

	loginLimiter := middleware.NewRateLimiter(opts.LoginPerMinute, time.Minute)
	contactLimiter := middleware.NewRateLimiter(opts.ContactPerMinute, time.Minute)
	router := &Router{Engine: engine, limiters: []*middleware.RateLimiter{loginLimiter, contactLimiter}}

	requireAuth := auth.RequireAuth()
	chains := map[string][]gin.HandlerFunc{
		"health":          {h.Health},
		"home":            {h.Home},
		"listings.index":  {h.Listings},
		"listings.search": {h.SearchListings},
		"contact.store":   {middleware.RateLimit(contactLimiter), h.Contact},
		"assets.show":     {h.Asset},
		"auth.form":       {h.LoginForm},
		"auth.login":      {middleware.RateLimit(loginLimiter), h.Login},
		"auth.logout":     {h.Logout},
		"settings.show":   {requireAuth, h.ShowSettings},
		"settings.update": {requireAuth, h.UpdateSettings},
		"uploads.store":   {requireAuth, h.Upload},
	}
	addResource(chains, routes.Warehouses, requireAuth, h.Warehouses())
	addResource(chains, routes.Contacts, requireAuth, h.Contacts())
	addResource(chains, routes.Testimonials, requireAuth, h.Testimonials())
	addResource(chains, routes.Products, requireAuth, h.Products())

	for _, r := range table.All() {
		chain, ok := chains[r.Name]
		if !ok {
			router.Close()
			return nil, fmt.Errorf("no handler for route %s", r.Name)
		}
		engine.Handle(r.Method, r.Path, chain...)
		if strings.HasSuffix(r.Name, ".update") && r.Method == http.MethodPut {
			engine.Handle(http.MethodPatch, r.Path, chain...)
		}
		delete(chains, r.Name)
	}
	for name := range chains {
		router.Close()
		return nil, fmt.Errorf("handler %s has no route", name)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return router, nil
}

// crud is the handler set of one admin resource
type crud interface {
	Index(*gin.Context)
	Show(*gin.Context)
	Store(*gin.Context)
	Update(*gin.Context)
	Destroy(*gin.Context)
}

func addResource(chains map[string][]gin.HandlerFunc, name string, guard gin.HandlerFunc, r crud) {
	chains[name+".index"] = []gin.HandlerFunc{guard, r.Index}
	chains[name+".show"] = []gin.HandlerFunc{guard, r.Show}
	chains[name+".store"] = []gin.HandlerFunc{guard, r.Store}
	chains[name+".update"] = []gin.HandlerFunc{guard, r.Update}
	chains[name+".destroy"] = []gin.HandlerFunc{guard, r.Destroy}
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
