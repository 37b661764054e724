package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Review : un seul avis par couple (utilisateur, produit).
// Quatre sous-notes entre 1 et 5, visible seulement une fois approuvé.
type Review struct {
	ID        gocql.UUID `json:"id" db:"review_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	UserName  string     `json:"user_name" db:"user_name"`

	OverallRating   int `json:"overall_rating" db:"overall_rating"`
	EcoImpactRating int `json:"eco_impact_rating" db:"eco_impact_rating"`
	ValueForMoney   int `json:"value_for_money" db:"value_for_money"`
	BuildQuality    int `json:"build_quality" db:"build_quality"`

	Title          string `json:"title" db:"title"`
	Comment        string `json:"comment" db:"comment"`
	WouldRecommend bool   `json:"would_recommend" db:"would_recommend"`

	IsVerifiedPurchase bool `json:"is_verified_purchase" db:"is_verified_purchase"`
	IsApproved         bool `json:"is_approved" db:"is_approved"`
	HelpfulVotes       int  `json:"helpful_votes" db:"helpful_votes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AverageRating : moyenne des quatre sous-notes d'un avis
func (r Review) AverageRating() float64 {
	return float64(r.OverallRating+r.EcoImpactRating+r.ValueForMoney+r.BuildQuality) / 4
}

// RatingSummary garde toujours la même forme, tout à zéro sans avis approuvé
type RatingSummary struct {
	Overall       float64 `json:"overall"`
	EcoImpact     float64 `json:"eco_impact"`
	ValueForMoney float64 `json:"value_for_money"`
	BuildQuality  float64 `json:"build_quality"`
	TotalReviews  int     `json:"total_reviews"`
}
