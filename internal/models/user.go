package models

import "time"

// Rôles possibles d'un utilisateur
const (
	RoleConsumer = "consumer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string  `json:"user_id"`
	Email        string  `json:"email"`
	Name         string  `json:"name,omitempty"`
	Password     string  `json:"-"`
	Role         string  `json:"role,omitempty"`
	Provider     string  `json:"provider,omitempty"`
	ProviderID   string  `json:"-"`
	Phone        string  `json:"phone,omitempty"`
	CarbonOffset float64 `json:"carbon_offset"` // kg CO2 compensés, cumulé sur les commandes

	// Profil de livraison (pré-remplit le checkout)
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`

	SustainabilityGoals string     `json:"sustainability_goals,omitempty"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}
