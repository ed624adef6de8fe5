package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/steelhall/steelhall/internal/db"
	"github.com/steelhall/steelhall/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := database.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return database
}

func TestRequireAuthWithValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	database := setupAuthTestDB(t)
	db.SetDB(database)

	user := models.User{Email: "admin@example.com", PasswordHash: "hash"}
	database.Create(&user)

	token, err := GenerateToken(&user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/admin/api/warehouses", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})

	RequireAuth()(c)

	if c.IsAborted() {
		t.Fatal("Middleware should not abort with valid token")
	}

	contextUser, ok := CurrentUser(c)
	if !ok {
		t.Fatal("User should be set in context")
	}
	if contextUser.ID != user.ID {
		t.Error("User ID in context should match")
	}
}

func TestRequireAuthAPIWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db.SetDB(setupAuthTestDB(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/admin/api/contacts", nil)

	RequireAuth()(c)

	if !c.IsAborted() {
		t.Error("Middleware should abort without token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestRequireAuthPageRedirects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db.SetDB(setupAuthTestDB(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/admin/dashboard", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})

	RequireAuth()(c)

	if w.Code != http.StatusFound {
		t.Errorf("Expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("Expected redirect to /admin/login, got %s", loc)
	}
}

func TestRequireAuthDeletedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	database := setupAuthTestDB(t)
	db.SetDB(database)

	user := models.User{Email: "gone@example.com", PasswordHash: "hash"}
	database.Create(&user)
	token, _ := GenerateToken(&user)
	database.Delete(&user)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/admin/api/contacts", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})

	RequireAuth()(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for deleted user, got %d", w.Code)
	}
}
