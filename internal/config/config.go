// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// InitConfig initializes the configuration system
func InitConfig(configPath string) error {
	v = viper.New()

	setDefaults()

	// STEELHALL_SERVER_HTTP_PORT overrides server.http_port, etc.
	v.SetEnvPrefix("steelhall")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, create it with defaults
		if os.IsNotExist(err) {
			if err := v.WriteConfigAs(configPath); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.behind_proxy", false)

	// Logging
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	// Database
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "/var/lib/steelhall/steelhall.db")

	// Auth
	v.SetDefault("auth.jwt_secret", "CHANGE_ME_IN_PRODUCTION_USE_ENV_VAR")
	v.SetDefault("auth.jwt_expiry_hours", 8)

	// Security
	v.SetDefault("security.admin_allowed_ips", []string{})
	v.SetDefault("security.blocked_ips", []string{})
	v.SetDefault("security.login_attempts_per_minute", 5)
	v.SetDefault("security.contact_posts_per_minute", 3)

	// Media storage: "local" or "s3"
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.media_dir", "/var/lib/steelhall/media")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "eu-west-1")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.s3_access_key", "")
	v.SetDefault("storage.s3_secret_key", "")
	v.SetDefault("storage.max_upload_mb", 10)

	// Listing cache (empty address disables Redis)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", "1m")

	// Events (empty URL disables NATS)
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "steelhall")

	// Outgoing mail (empty host disables lead notifications)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@steelhall.local")

	// Admin client
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.email", "")
	v.SetDefault("client.timeout", "15s")

	// Showcase carousel
	v.SetDefault("carousel.interval", "3s")
	v.SetDefault("carousel.increment", 320)
	v.SetDefault("carousel.card_width", 320)
	v.SetDefault("carousel.viewport_width", 960)
}

// GetString returns a config value as string
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt returns a config value as int
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetBool returns a config value as bool
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetDuration returns a config value as time.Duration
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice returns a config value as []string
func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	return v.GetStringSlice(key)
}

// Set sets a config value and saves to file
func Set(key string, value interface{}) error {
	if v == nil {
		return fmt.Errorf("config not initialized")
	}

	v.Set(key, value)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetAll returns all config values as a map
func GetAll() map[string]interface{} {
	if v == nil {
		return nil
	}
	return v.AllSettings()
}
