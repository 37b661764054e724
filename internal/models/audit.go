package models

import (
	"time"

	"github.com/gocql/gocql"
)

// AuditEntry trace les actions privilégiées (modération, vérification vendeur)
type AuditEntry struct {
	ID         gocql.UUID `json:"id"`
	ActorID    string     `json:"actor_id"`
	Action     string     `json:"action"` // ex: "vendor.verify", "review.approve"
	TargetType string     `json:"target_type"`
	TargetID   string     `json:"target_id"`
	Details    string     `json:"details,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
