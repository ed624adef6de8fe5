// SPDX-License-Identifier: MIT
package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/steelhall/steelhall/internal/config"
	"github.com/steelhall/steelhall/internal/models"
)

// Claims represents JWT claims for an admin session
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ErrNoSecret means neither STEELHALL_JWT_SECRET nor auth.jwt_secret is set
var ErrNoSecret = errors.New("jwt secret not configured")

// getJWTSecret returns the JWT secret from env var or config
func getJWTSecret() ([]byte, error) {
	// Environment variable takes precedence
	if secret := os.Getenv("STEELHALL_JWT_SECRET"); secret != "" {
		return []byte(secret), nil
	}
	if secret := config.GetString("auth.jwt_secret"); secret != "" {
		return []byte(secret), nil
	}
	return nil, ErrNoSecret
}

// SessionTTL is the lifetime of an admin session
func SessionTTL() time.Duration {
	expiryHours := config.GetInt("auth.jwt_expiry_hours")
	if expiryHours == 0 {
		expiryHours = 8
	}
	return time.Duration(expiryHours) * time.Hour
}

// GenerateToken creates a JWT token for an admin user
func GenerateToken(user *models.User) (string, error) {
	return generateToken(user, time.Now(), SessionTTL())
}

func generateToken(user *models.User, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		secret, err := getJWTSecret()
		if err != nil {
			return nil, err
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
