// SPDX-License-Identifier: MIT
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/steelhall/steelhall/internal/cache"
	"github.com/steelhall/steelhall/internal/db"
	"github.com/steelhall/steelhall/internal/media"
	"gorm.io/gorm"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *memCache) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type published struct {
	name    string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingPublisher) Publish(name string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{name, payload})
	return nil
}

func (r *recordingPublisher) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.events {
		names = append(names, e.name)
	}
	return names
}

type mail struct{ to, subject, body string }

type chanMailer chan mail

func (c chanMailer) SendEmail(to, subject, body string) error {
	c <- mail{to, subject, body}
	return nil
}

type testEnv struct {
	db     *gorm.DB
	h      *Handlers
	cache  *memCache
	events *recordingPublisher
	mails  chanMailer
}

func setupHandlerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("STEELHALL_JWT_SECRET", "test-secret")

	database, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetDB(database)

	env := &testEnv{
		db:     database,
		cache:  newMemCache(),
		events: &recordingPublisher{},
		mails:  make(chanMailer, 4),
	}
	env.h = New(Handlers{
		DB:      database,
		Cache:   env.cache,
		Events:  env.events,
		Mailer:  env.mails,
		Storage: media.NewLocalStorage(t.TempDir()),
	})
	return env
}

// engine wires the handlers under test without auth or CSRF
func (env *testEnv) engine() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(Templates())

	w := env.h.Warehouses()
	r.GET("/admin/api/warehouses", w.Index)
	r.POST("/admin/api/warehouses", w.Store)
	r.GET("/admin/api/warehouses/:id", w.Show)
	r.PUT("/admin/api/warehouses/:id", w.Update)
	r.DELETE("/admin/api/warehouses/:id", w.Destroy)

	t := env.h.Testimonials()
	r.POST("/admin/api/testimonials", t.Store)
	c := env.h.Contacts()
	r.POST("/admin/api/contacts", c.Store)

	r.GET("/admin/api/settings", env.h.ShowSettings)
	r.PUT("/admin/api/settings", env.h.UpdateSettings)
	r.POST("/admin/api/uploads", env.h.Upload)
	r.GET("/assets/*filepath", env.h.Asset)

	r.GET("/", env.h.Home)
	r.GET("/listings", env.h.Listings)
	r.GET("/listings/search", env.h.SearchListings)
	r.POST("/contact", env.h.Contact)
	r.GET("/health", env.h.Health)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Response is not JSON: %v (%s)", err, w.Body.String())
	}
	return env
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
