// SPDX-License-Identifier: MIT

// Package settings loads and saves the site settings through an explicit
// store, either a local YAML file or the admin API.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/steelhall/steelhall/internal/client"
	"github.com/steelhall/steelhall/internal/models"
)

// Store persists site settings
type Store interface {
	Load(ctx context.Context) (models.SiteSettings, error)
	Save(ctx context.Context, s models.SiteSettings) (models.SiteSettings, error)
}

// Provider holds the current settings. Until a Load succeeds it serves the
// defaults.
type Provider struct {
	store    Store
	validate *validator.Validate

	mu      sync.RWMutex
	current models.SiteSettings
	loaded  bool
}

// NewProvider creates a provider backed by store
func NewProvider(store Store) *Provider {
	return &Provider{
		store:    store,
		validate: models.NewValidator(),
		current:  models.DefaultSettings(),
	}
}

// Current returns the last loaded or saved settings
func (p *Provider) Current() models.SiteSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Loaded reports whether Current came from the store
func (p *Provider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Load refreshes the settings from the store. On failure the previous
// settings stay in place.
func (p *Provider) Load(ctx context.Context) (models.SiteSettings, error) {
	s, err := p.store.Load(ctx)
	if err != nil {
		return p.Current(), fmt.Errorf("failed to load settings: %w", err)
	}
	p.mu.Lock()
	p.current = s
	p.loaded = true
	p.mu.Unlock()
	return s, nil
}

// Save validates s and writes it to the store
func (p *Provider) Save(ctx context.Context, s models.SiteSettings) (models.SiteSettings, error) {
	if errs := models.Validate(p.validate, s); !errs.Empty() {
		return p.Current(), &client.ValidationError{Message: "The given data was invalid.", Fields: errs}
	}
	saved, err := p.store.Save(ctx, s)
	if err != nil {
		return p.Current(), fmt.Errorf("failed to save settings: %w", err)
	}
	p.mu.Lock()
	p.current = saved
	p.loaded = true
	p.mu.Unlock()
	return saved, nil
}

// FileStore keeps settings in a YAML file
type FileStore struct {
	Path string
}

// Load reads the file. A missing file yields the defaults.
func (f FileStore) Load(_ context.Context) (models.SiteSettings, error) {
	s := models.DefaultSettings()

	v := viper.New()
	v.SetConfigFile(f.Path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("failed to decode %s: %w", f.Path, err)
	}
	return s, nil
}

// Save writes s to the file, creating its directory when needed
func (f FileStore) Save(_ context.Context, s models.SiteSettings) (models.SiteSettings, error) {
	values := map[string]interface{}{}
	if err := mapstructure.Decode(s, &values); err != nil {
		return s, fmt.Errorf("failed to encode settings: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range values {
		v.Set(key, value)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return s, fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := v.WriteConfigAs(f.Path); err != nil {
		return s, fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return s, nil
}

// RemoteStore reads and writes settings through the admin API
type RemoteStore struct {
	Client *client.Client
}

func (r RemoteStore) Load(ctx context.Context) (models.SiteSettings, error) {
	return r.Client.Settings(ctx)
}

func (r RemoteStore) Save(ctx context.Context, s models.SiteSettings) (models.SiteSettings, error) {
	return r.Client.SaveSettings(ctx, s)
}
