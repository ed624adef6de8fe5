package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/steelhall/steelhall/internal/cache"
	"github.com/steelhall/steelhall/internal/events"
	"github.com/steelhall/steelhall/internal/icons"
	"github.com/steelhall/steelhall/internal/models"
)

func validWarehouse() map[string]any {
	return map[string]any{
		"name":     "Steel hall Zwolle",
		"location": "Zwolle",
		"price":    125000,
		"status":   "active",
		"features": []map[string]string{{"icon": "crane", "label": "5t crane"}},
	}
}

func TestIndexEmptyReturnsEmptyArray(t *testing.T) {
	env := setupHandlerTest(t)

	w := doJSON(env.engine(), "GET", "/admin/api/warehouses", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"data":[]}` {
		t.Errorf("Expected empty data array, got %s", w.Body.String())
	}
}

func TestStoreAssignsID(t *testing.T) {
	env := setupHandlerTest(t)
	env.cache.data[cache.ListingsKey] = []byte("stale")

	body := validWarehouse()
	body["id"] = 999
	w := doJSON(env.engine(), "POST", "/admin/api/warehouses", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created models.Warehouse
	if err := json.Unmarshal(decode(t, w).Data, &created); err != nil {
		t.Fatalf("Bad data: %v", err)
	}
	if created.ID == 0 || created.ID == 999 {
		t.Errorf("Expected server-assigned id, got %d", created.ID)
	}
	if len(created.Features) != 1 || created.Features[0].Icon != icons.Crane {
		t.Errorf("Features not stored: %+v", created.Features)
	}

	if _, ok := env.cache.data[cache.ListingsKey]; ok {
		t.Error("Expected listing cache to be invalidated")
	}
	if names := env.events.names(); len(names) != 1 || names[0] != events.ResourceCreated {
		t.Errorf("Expected one created event, got %v", names)
	}
}

func TestStoreValidationErrors(t *testing.T) {
	env := setupHandlerTest(t)

	body := validWarehouse()
	delete(body, "name")
	body["status"] = "demolished"
	w := doJSON(env.engine(), "POST", "/admin/api/warehouses", body)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	resp := decode(t, w)
	if resp.Errors["name"][0] != "is required" {
		t.Errorf("Expected name error, got %v", resp.Errors)
	}
	if !strings.HasPrefix(resp.Errors["status"][0], "must be one of") {
		t.Errorf("Expected status error, got %v", resp.Errors)
	}

	var count int64
	env.db.Model(&models.Warehouse{}).Count(&count)
	if count != 0 {
		t.Errorf("Nothing should be stored, have %d", count)
	}
}

func TestStoreRejectsUnknownIcon(t *testing.T) {
	env := setupHandlerTest(t)

	body := validWarehouse()
	body["features"] = []map[string]string{{"icon": "helipad", "label": "Roof pad"}}
	w := doJSON(env.engine(), "POST", "/admin/api/warehouses", body)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	if errs := decode(t, w).Errors["features"]; len(errs) != 1 || !strings.Contains(errs[0], "helipad") {
		t.Errorf("Expected features error, got %v", errs)
	}
}

func TestStoreNestedFeatureValidation(t *testing.T) {
	env := setupHandlerTest(t)

	body := validWarehouse()
	body["features"] = []map[string]string{{"icon": "power"}}
	w := doJSON(env.engine(), "POST", "/admin/api/warehouses", body)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	if _, ok := decode(t, w).Errors["features.0.label"]; !ok {
		t.Errorf("Expected nested field path, got %s", w.Body.String())
	}
}

func TestStoreMarkupOnlyNameIsRequired(t *testing.T) {
	env := setupHandlerTest(t)

	body := map[string]any{"author": "<script>x</script>", "quote": "Great", "rating": 5}
	w := doJSON(env.engine(), "POST", "/admin/api/testimonials", body)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422 after sanitising, got %d", w.Code)
	}
}

func TestStoreTestimonialRatingRange(t *testing.T) {
	env := setupHandlerTest(t)

	w := doJSON(env.engine(), "POST", "/admin/api/testimonials", map[string]any{"author": "Piet", "quote": "Solid", "rating": 6})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	if msg := decode(t, w).Errors["rating"]; len(msg) == 0 || msg[0] != "must be at most 5" {
		t.Errorf("Unexpected rating error %v", msg)
	}
}

func TestStoreMalformedBody(t *testing.T) {
	env := setupHandlerTest(t)

	w := doJSON(env.engine(), "POST", "/admin/api/warehouses", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestContactDefaultsToAdminSource(t *testing.T) {
	env := setupHandlerTest(t)

	w := doJSON(env.engine(), "POST", "/admin/api/contacts", map[string]any{"name": "Anna", "email": "Anna@Example.COM", "type": "Customer"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var c models.Contact
	_ = json.Unmarshal(decode(t, w).Data, &c)
	if c.Source != "admin" || c.Email != "anna@example.com" {
		t.Errorf("Unexpected contact %+v", c)
	}
}

func TestUpdateKeepsAbsentFields(t *testing.T) {
	env := setupHandlerTest(t)
	wh := models.Warehouse{Name: "Old", Location: "Ede", Status: models.StatusActive, Price: 10}
	env.db.Create(&wh)

	w := doJSON(env.engine(), "PUT", "/admin/api/warehouses/"+itoa(wh.ID), map[string]any{"name": "New", "id": 42})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Warehouse
	env.db.First(&stored, wh.ID)
	if stored.Name != "New" || stored.Location != "Ede" || stored.Price != 10 {
		t.Errorf("Unexpected stored warehouse %+v", stored)
	}
	if !stored.CreatedAt.Equal(wh.CreatedAt) {
		t.Error("CreatedAt must not change on update")
	}
}

func TestUpdateAndDestroyNotFound(t *testing.T) {
	env := setupHandlerTest(t)
	r := env.engine()

	if w := doJSON(r, "PUT", "/admin/api/warehouses/77", validWarehouse()); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on update, got %d", w.Code)
	}
	w := doJSON(r, "DELETE", "/admin/api/warehouses/77", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on delete, got %d", w.Code)
	}
	if decode(t, w).Message == "" {
		t.Error("Expected a message on 404")
	}
	if w := doJSON(r, "DELETE", "/admin/api/warehouses/abc", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for non-numeric id, got %d", w.Code)
	}
}

func TestDestroy(t *testing.T) {
	env := setupHandlerTest(t)
	wh := models.Warehouse{Name: "Gone", Location: "Ede", Status: models.StatusSold}
	env.db.Create(&wh)

	w := doJSON(env.engine(), "DELETE", "/admin/api/warehouses/"+itoa(wh.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", w.Body.String())
	}

	var count int64
	env.db.Model(&models.Warehouse{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected row to be deleted, have %d", count)
	}
	if names := env.events.names(); len(names) != 1 || names[0] != events.ResourceDeleted {
		t.Errorf("Expected delete event, got %v", names)
	}
}

func TestIndexOrder(t *testing.T) {
	env := setupHandlerTest(t)
	env.db.Create(&models.Warehouse{Name: "B", Location: "x", Status: "active", SortOrder: 2})
	env.db.Create(&models.Warehouse{Name: "A", Location: "x", Status: "active", SortOrder: 1})

	var list []models.Warehouse
	_ = json.Unmarshal(decode(t, doJSON(env.engine(), "GET", "/admin/api/warehouses", nil)).Data, &list)
	if len(list) != 2 || list[0].Name != "A" {
		t.Errorf("Expected sort_order ordering, got %+v", list)
	}
}
