package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de vérification d'un vendeur
const (
	VendorStatusPending   = "pending"
	VendorStatusVerified  = "verified"
	VendorStatusRejected  = "rejected"
	VendorStatusSuspended = "suspended"
)

// Vendor : un profil vendeur par utilisateur, créé en "pending".
// Seul un admin fait évoluer le statut.
type Vendor struct {
	ID     gocql.UUID `json:"id" db:"vendor_id"`
	UserID string     `json:"user_id" db:"user_id"`

	CompanyName     string `json:"company_name" db:"company_name"`
	BusinessLicense string `json:"business_license" db:"business_license"`
	TaxID           string `json:"tax_id" db:"tax_id"`
	BusinessAddress string `json:"business_address" db:"business_address"`
	ContactPhone    string `json:"contact_phone" db:"contact_phone"`
	Website         string `json:"website,omitempty" db:"website"`
	Description     string `json:"description" db:"description"`

	VerificationStatus       string `json:"verification_status" db:"verification_status"`
	SustainabilityCertURL    string `json:"sustainability_certificate_url,omitempty" db:"sustainability_certificate_url"`
	VerificationDocumentsURL string `json:"verification_documents_url,omitempty" db:"verification_documents_url"`

	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// IsVerified : seuls les vendeurs "verified" sont considérés de confiance
func (v Vendor) IsVerified() bool {
	return v.VerificationStatus == VendorStatusVerified
}

// VendorApplication est le dossier soumis par un utilisateur
type VendorApplication struct {
	CompanyName     string `json:"company_name" binding:"required"`
	BusinessLicense string `json:"business_license" binding:"required"`
	TaxID           string `json:"tax_id" binding:"required"`
	BusinessAddress string `json:"business_address" binding:"required"`
	ContactPhone    string `json:"contact_phone" binding:"required"`
	Website         string `json:"website"`
	Description     string `json:"description"`
}
