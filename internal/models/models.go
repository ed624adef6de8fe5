package models

import (
	"time"

	"github.com/steelhall/steelhall/internal/icons"
	"gorm.io/gorm"
)

// Listing statuses
const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusInactive = "inactive"
	StatusSold     = "sold"
)

// Contact types
const (
	ContactLead     = "Lead"
	ContactCustomer = "Customer"
	ContactPartner  = "Partner"
)

// User represents an admin account
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Feature is one highlighted property of a warehouse, shown with an icon
type Feature struct {
	Icon  icons.Kind `json:"icon" binding:"required"`
	Label string     `json:"label" binding:"required,max=80"`
}

// Warehouse is an industrial building listed for sale
type Warehouse struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name" binding:"required,max=200"`
	Location    string    `gorm:"not null;index" json:"location" binding:"required,max=200"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `json:"price" binding:"gte=0"`
	SurfaceM2   int       `json:"surface_m2" binding:"gte=0"`
	Image       string    `json:"image"`
	Status      string    `gorm:"not null;default:pending;index" json:"status" binding:"required,oneof=active pending inactive sold"`
	Featured    bool      `gorm:"default:false" json:"featured"`
	Features    []Feature `gorm:"serializer:json;type:text" json:"features" binding:"omitempty,dive"`
	SortOrder   int       `gorm:"default:0" json:"sort_order" binding:"gte=0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Contact is a lead or relation, created from the admin or the public contact form
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name" binding:"required,max=200"`
	Email     string    `gorm:"not null;index" json:"email" binding:"required,email"`
	Phone     string    `json:"phone" binding:"max=50"`
	Company   string    `json:"company" binding:"max=200"`
	Type      string    `gorm:"not null;default:Lead" json:"type" binding:"required,oneof=Lead Customer Partner"`
	Message   string    `gorm:"type:text" json:"message" binding:"max=5000"`
	Source    string    `gorm:"default:admin" json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Testimonial is a customer quote shown on the marketing site
type Testimonial struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Author    string    `gorm:"not null" json:"author" binding:"required,max=200"`
	Company   string    `json:"company" binding:"max=200"`
	Quote     string    `gorm:"type:text;not null" json:"quote" binding:"required,max=2000"`
	Rating    int       `gorm:"not null;default:5" json:"rating" binding:"required,min=1,max=5"`
	SortOrder int       `gorm:"default:0" json:"sort_order" binding:"gte=0"`
	Published bool      `gorm:"default:false" json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a webshop item (parts, racking, doors) sold alongside buildings
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name" binding:"required,max=200"`
	SKU         string    `gorm:"index" json:"sku" binding:"max=64"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `json:"price" binding:"gte=0"`
	Stock       int       `json:"stock" binding:"gte=0"`
	Status      string    `gorm:"not null;default:pending" json:"status" binding:"required,oneof=active pending inactive"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SiteSettings is the single settings record driving the marketing site
type SiteSettings struct {
	ID                 uint      `gorm:"primaryKey" json:"id" mapstructure:"-"`
	CompanyName        string    `json:"company_name" mapstructure:"company_name" binding:"required,max=200"`
	Tagline            string    `json:"tagline" mapstructure:"tagline" binding:"max=300"`
	HeroTitle          string    `json:"hero_title" mapstructure:"hero_title" binding:"max=200"`
	HeroSubtitle       string    `json:"hero_subtitle" mapstructure:"hero_subtitle" binding:"max=500"`
	Email              string    `json:"email" mapstructure:"email" binding:"omitempty,email"`
	Phone              string    `json:"phone" mapstructure:"phone" binding:"max=50"`
	Address            string    `json:"address" mapstructure:"address" binding:"max=300"`
	SalesEmail         string    `json:"sales_email" mapstructure:"sales_email" binding:"omitempty,email"`
	CarouselIntervalMS int       `json:"carousel_interval_ms" mapstructure:"carousel_interval_ms" binding:"gte=0"`
	FeaturedLimit      int       `json:"featured_limit" mapstructure:"featured_limit" binding:"gte=0,lte=50"`
	UpdatedAt          time.Time `json:"updated_at" mapstructure:"-"`
}

// DefaultSettings returns the settings used before an admin saves any
func DefaultSettings() SiteSettings {
	return SiteSettings{
		CompanyName:        "Steelhall",
		Tagline:            "Second-hand industrial buildings",
		HeroTitle:          "Industrial buildings, ready to move",
		HeroSubtitle:       "Warehouses, halls and sheds dismantled and rebuilt where you need them.",
		CarouselIntervalMS: 3000,
		FeaturedLimit:      8,
	}
}

// CarouselItem is the read-only card projection of a warehouse
type CarouselItem struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

// CarouselItem projects the warehouse onto a carousel card
func (w Warehouse) CarouselItem() CarouselItem {
	return CarouselItem{
		ID:          w.ID,
		Title:       w.Name,
		Image:       w.Image,
		Price:       w.Price,
		Description: w.Description,
		Status:      w.Status,
	}
}

// ItemID implementations let the admin controller key its cache

func (w Warehouse) ItemID() uint   { return w.ID }
func (c Contact) ItemID() uint     { return c.ID }
func (t Testimonial) ItemID() uint { return t.ID }
func (p Product) ItemID() uint     { return p.ID }

// SetItemID lets handlers pin the primary key from the URL

func (w *Warehouse) SetItemID(id uint)   { w.ID = id }
func (c *Contact) SetItemID(id uint)     { c.ID = id }
func (t *Testimonial) SetItemID(id uint) { t.ID = id }
func (p *Product) SetItemID(id uint)     { p.ID = id }

// TableName overrides for consistent naming
func (User) TableName() string {
	return "users"
}

func (Warehouse) TableName() string {
	return "warehouses"
}

func (Contact) TableName() string {
	return "contacts"
}

func (Testimonial) TableName() string {
	return "testimonials"
}

func (Product) TableName() string {
	return "products"
}

func (SiteSettings) TableName() string {
	return "site_settings"
}

// All returns every model for auto-migration
func All() []interface{} {
	return []interface{}{
		&User{},
		&Warehouse{},
		&Contact{},
		&Testimonial{},
		&Product{},
		&SiteSettings{},
	}
}
