package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Certifications environnementales reconnues
const (
	CertEnergyStar    = "energy_star"
	CertLEED          = "leed"
	CertEPEAT         = "epeat"
	CertCarbonNeutral = "carbon_neutral"
	CertRenewable     = "renewable"
)

type Product struct {
	ID              gocql.UUID `json:"id" db:"product_id"`
	VendorID        gocql.UUID `json:"vendor_id" db:"vendor_id"`
	CategoryID      gocql.UUID `json:"category_id" db:"category_id"`
	Name            string     `json:"name" db:"name"`
	Slug            string     `json:"slug" db:"slug"`
	Description     string     `json:"description" db:"description"`
	Price           float64    `json:"price" db:"price"`
	DiscountedPrice *float64   `json:"discounted_price,omitempty" db:"discounted_price"`
	Stock           int        `json:"stock" db:"stock"`

	// Métriques environnementales
	EnergyEfficiencyRating string  `json:"energy_efficiency_rating" db:"energy_efficiency_rating"` // A++, A+, A, B, C, D, E
	CarbonFootprint        float64 `json:"carbon_footprint" db:"carbon_footprint"`                 // kg CO2 / an
	EnergyConsumption      float64 `json:"energy_consumption" db:"energy_consumption"`             // kWh / an
	RecyclablePercentage   int     `json:"recyclable_percentage" db:"recyclable_percentage"`
	Certifications         string  `json:"certifications" db:"certifications"`

	WarrantyYears     int        `json:"warranty_years" db:"warranty_years"`
	ImageURLs         []string   `json:"image_urls" db:"image_urls"`
	LowStockThreshold int        `json:"low_stock_threshold" db:"low_stock_threshold"`
	IsFeatured        bool       `json:"is_featured" db:"is_featured"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// FinalPrice retourne le prix remisé s'il existe, sinon le prix normal
func (p Product) FinalPrice() float64 {
	if p.DiscountedPrice != nil && *p.DiscountedPrice > 0 {
		return *p.DiscountedPrice
	}
	return p.Price
}

type ProductImage struct {
	ProductID gocql.UUID `json:"product_id"`
	URL       string     `json:"url"`
	AltText   string     `json:"alt_text"`
	IsPrimary bool       `json:"is_primary"`
}
