// SPDX-License-Identifier: MIT
package db

import (
	"path/filepath"
	"testing"

	"github.com/steelhall/steelhall/internal/models"
)

func TestOpenMigratesAllTables(t *testing.T) {
	database, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for _, table := range []string{"users", "warehouses", "contacts", "testimonials", "products", "site_settings"} {
		if !database.Migrator().HasTable(table) {
			t.Errorf("table %s not found", table)
		}
	}
}

func TestOpenUnsupportedType(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestSettingsDefaultsAndSave(t *testing.T) {
	database, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	settings, err := LoadSettings(database)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings.CompanyName != models.DefaultSettings().CompanyName {
		t.Errorf("expected default company name, got %q", settings.CompanyName)
	}

	settings.CompanyName = "Hallen BV"
	if err := SaveSettings(database, &settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	// Saving twice must update the same row
	settings.Phone = "+31 10 000 0000"
	if err := SaveSettings(database, &settings); err != nil {
		t.Fatalf("second SaveSettings failed: %v", err)
	}

	var count int64
	database.Model(&models.SiteSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("expected one settings row, got %d", count)
	}

	loaded, _ := LoadSettings(database)
	if loaded.CompanyName != "Hallen BV" || loaded.Phone != "+31 10 000 0000" {
		t.Errorf("unexpected settings: %+v", loaded)
	}
}
