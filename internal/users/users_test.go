// SPDX-License-Identifier: MIT
package users

import (
	"errors"
	"testing"

	"github.com/steelhall/steelhall/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)

	user, err := CreateUser(db, " Admin@Example.com ", "password123")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.Email != "admin@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}

	if user.PasswordHash == "password123" {
		t.Error("Password should be hashed, not stored in plain text")
	}

	if _, err := CreateUser(db, "admin@example.com", "password456"); err == nil {
		t.Error("Expected duplicate email to fail")
	}
}

func TestListUsers(t *testing.T) {
	db := setupTestDB(t)

	if _, err := CreateUser(db, "user1@example.com", "password1"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if _, err := CreateUser(db, "user2@example.com", "password2"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	users, err := ListUsers(db)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}

	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}

func TestDeleteAndRestoreUser(t *testing.T) {
	db := setupTestDB(t)

	user, _ := CreateUser(db, "delete@example.com", "password")

	if err := DeleteUser(db, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := GetUserByEmail(db, "delete@example.com"); err == nil {
		t.Error("Expected error when getting deleted user, got nil")
	}
	if err := DeleteUser(db, user.ID); err == nil {
		t.Error("Expected error deleting an already deleted user")
	}

	restored, err := CreateUser(db, "delete@example.com", "new-password")
	if err != nil {
		t.Fatalf("CreateUser (restore) failed: %v", err)
	}
	if restored.ID != user.ID {
		t.Errorf("Expected restored user to keep ID %d, got %d", user.ID, restored.ID)
	}
	if _, err := Authenticate(db, "delete@example.com", "new-password"); err != nil {
		t.Errorf("Expected restored user to log in with new password: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	CreateUser(db, "sales@example.com", "correct-horse")

	if _, err := Authenticate(db, "SALES@example.com", "correct-horse"); err != nil {
		t.Errorf("Authenticate failed: %v", err)
	}
	if _, err := Authenticate(db, "sales@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := Authenticate(db, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}
